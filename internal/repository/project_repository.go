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

type ProjectRepositoryInterface interface {
	Create(ctx context.Context, project *model.Project) error
	ListByOwner(ctx context.Context, ownerID string) ([]model.Project, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	Update(ctx context.Context, id uuid.UUID, name, description string) (*model.Project, error)
	DeleteCascade(ctx context.Context, id uuid.UUID) (*CascadeResult, error)
}

var _ ProjectRepositoryInterface = (*ProjectRepository)(nil)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// ListByOwner returns the owner's projects, newest first. Ordering is done
// here rather than in SQL.
func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Project, error) {
	var projects []model.Project
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&projects).Error; err != nil {
		return nil, err
	}

	slices.SortStableFunc(projects, func(a, b model.Project) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return projects, nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

// Update merges name and description into the project and refreshes updated_at.
func (r *ProjectRepository) Update(ctx context.Context, id uuid.UUID, name, description string) (*model.Project, error) {
	result := r.db.WithContext(ctx).Model(&model.Project{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"name":        name,
			"description": description,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrProjectNotFound
	}
	return r.GetByID(ctx, id)
}

// DeleteCascade removes the project, all of its sections and all tasks in
// those sections in a single transaction.
func (r *ProjectRepository) DeleteCascade(ctx context.Context, id uuid.UUID) (*CascadeResult, error) {
	result := &CascadeResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sectionIDs []uuid.UUID
		if err := tx.Model(&model.Section{}).
			Where("project_id = ?", id).
			Pluck("id", &sectionIDs).Error; err != nil {
			return err
		}

		if err := deleteSections(tx, sectionIDs, result); err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&model.Project{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrProjectNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
