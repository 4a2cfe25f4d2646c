package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusToDo       = "To Do"
	StatusInProgress = "In Progress"
	StatusDone       = "Done"
)

const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// Statuses and Priorities list the allowed values in display order.
var (
	Statuses   = []string{StatusToDo, StatusInProgress, StatusDone}
	Priorities = []string{PriorityHigh, PriorityMedium, PriorityLow}
)

type Task struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	SectionID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Title       string    `gorm:"not null"`
	Description string
	Status      string `gorm:"not null"`
	Priority    string `gorm:"not null"`
	Assignee    string
	DueDate     *time.Time `gorm:"type:date"`
	Effort      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func IsValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

func IsValidPriority(p string) bool {
	for _, v := range Priorities {
		if v == p {
			return true
		}
	}
	return false
}

// ApplyDefaults fills the fields a new task may omit.
func (t *Task) ApplyDefaults() {
	if t.Status == "" {
		t.Status = StatusToDo
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
}
