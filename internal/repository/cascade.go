package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskflow/internal/model"
)

// CascadeResult counts the descendant rows removed together with a parent.
type CascadeResult struct {
	Sections int64
	Tasks    int64
}

// deleteSections removes the given sections and every task they hold.
// Callers run it inside a transaction.
func deleteSections(tx *gorm.DB, sectionIDs []uuid.UUID, result *CascadeResult) error {
	if len(sectionIDs) == 0 {
		return nil
	}

	res := tx.Where("section_id IN ?", sectionIDs).Delete(&model.Task{})
	if res.Error != nil {
		return res.Error
	}
	result.Tasks += res.RowsAffected

	res = tx.Where("id IN ?", sectionIDs).Delete(&model.Section{})
	if res.Error != nil {
		return res.Error
	}
	result.Sections += res.RowsAffected
	return nil
}
