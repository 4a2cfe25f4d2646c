package repository

import (
	"context"
	"errors"
	"slices"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskflow/internal/model"
)

type SectionRepositoryInterface interface {
	Create(ctx context.Context, section *model.Section) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Section, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Section, error)
	Update(ctx context.Context, id uuid.UUID, name string, order *int) (*model.Section, error)
	Reorder(ctx context.Context, projectID uuid.UUID, orders []SectionOrder) error
	DeleteCascade(ctx context.Context, id uuid.UUID) (*CascadeResult, error)
}

var _ SectionRepositoryInterface = (*SectionRepository)(nil)

// SectionOrder assigns a new order value to a section.
type SectionOrder struct {
	ID    uuid.UUID
	Order int
}

type SectionRepository struct {
	db *gorm.DB
}

func NewSectionRepository(db *gorm.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

func (r *SectionRepository) Create(ctx context.Context, section *model.Section) error {
	err := r.db.WithContext(ctx).Create(section).Error
	if isForeignKeyViolation(err) {
		return ErrProjectNotFound
	}
	return err
}

func (r *SectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Section, error) {
	var section model.Section
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&section).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}
	return &section, nil
}

// ListByProject returns the project's sections sorted by order. Equal orders
// keep the order the store returned them in.
func (r *SectionRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Section, error) {
	var sections []model.Section
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Find(&sections).Error; err != nil {
		return nil, err
	}

	slices.SortStableFunc(sections, func(a, b model.Section) int {
		return a.Order - b.Order
	})
	return sections, nil
}

// Update renames the section and, when order is non-nil, moves it.
func (r *SectionRepository) Update(ctx context.Context, id uuid.UUID, name string, order *int) (*model.Section, error) {
	fields := map[string]interface{}{"name": name}
	if order != nil {
		fields["sort_order"] = *order
	}

	result := r.db.WithContext(ctx).Model(&model.Section{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrSectionNotFound
	}
	return r.GetByID(ctx, id)
}

// Reorder applies all order changes in one transaction. A section that does
// not belong to the project aborts the whole batch.
func (r *SectionRepository) Reorder(ctx context.Context, projectID uuid.UUID, orders []SectionOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, o := range orders {
			res := tx.Model(&model.Section{}).
				Where("id = ? AND project_id = ?", o.ID, projectID).
				Update("sort_order", o.Order)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrSectionNotFound
			}
		}
		return nil
	})
}

// DeleteCascade removes the section and its tasks atomically. The parent
// project is untouched.
func (r *SectionRepository) DeleteCascade(ctx context.Context, id uuid.UUID) (*CascadeResult, error) {
	result := &CascadeResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteSections(tx, []uuid.UUID{id}, result); err != nil {
			return err
		}
		if result.Sections == 0 {
			return ErrSectionNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
