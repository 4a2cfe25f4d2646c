package repository

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskflow/internal/model"
)

type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	ListBySection(ctx context.Context, sectionID uuid.UUID) ([]model.Task, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Task, error)
	Update(ctx context.Context, id uuid.UUID, changes TaskChanges) (*model.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

var _ TaskRepositoryInterface = (*TaskRepository)(nil)

// TaskChanges is a full replacement of a task's mutable fields.
type TaskChanges struct {
	Title       string
	Description string
	Status      string
	Priority    string
	Assignee    string
	DueDate     *time.Time
	Effort      string
}

func (c TaskChanges) columns() map[string]interface{} {
	return map[string]interface{}{
		"title":       c.Title,
		"description": c.Description,
		"status":      c.Status,
		"priority":    c.Priority,
		"assignee":    c.Assignee,
		"due_date":    c.DueDate,
		"effort":      c.Effort,
		"updated_at":  time.Now(),
	}
}

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	err := r.db.WithContext(ctx).Create(task).Error
	if isForeignKeyViolation(err) {
		return ErrSectionNotFound
	}
	return err
}

// GetByID retrieves a task by its ID
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// ListBySection retrieves all tasks in a section, newest first
func (r *TaskRepository) ListBySection(ctx context.Context, sectionID uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("section_id = ?", sectionID).Find(&tasks).Error; err != nil {
		return nil, err
	}

	slices.SortStableFunc(tasks, func(a, b model.Task) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return tasks, nil
}

// ListByProject retrieves every task of every section in the project. The
// result is not sorted.
func (r *TaskRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	sections := r.db.Model(&model.Section{}).Select("id").Where("project_id = ?", projectID)
	if err := r.db.WithContext(ctx).Where("section_id IN (?)", sections).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update replaces the mutable fields of a task
func (r *TaskRepository) Update(ctx context.Context, id uuid.UUID, changes TaskChanges) (*model.Task, error) {
	result := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).Updates(changes.columns())
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrTaskNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a task by its ID
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
