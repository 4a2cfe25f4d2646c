package model

import (
	"github.com/google/uuid"
)

// Section is an ordered grouping of tasks inside a project. It has no owner
// of its own; access is decided by its project.
type Section struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"not null"`
	Order     int       `gorm:"column:sort_order;not null"`
}
