package repository_test

import (
	"context"
	"testing"

	"taskflow/internal/model"
	"taskflow/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

var sectionColumns = []string{"id", "project_id", "name", "sort_order"}

func TestSectionRepository_Create_MissingProject(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewSectionRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "sections"`).
		WillReturnError(&pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.Section{ProjectID: uuid.New(), Name: "Backlog"})

	assert.ErrorIs(t, err, repository.ErrProjectNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepository_ListByProject_SortsByOrder(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewSectionRepository(gormDB)

	projectID := uuid.New()
	first, second, third := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "sections" WHERE project_id = \$1`).
		WithArgs(projectID).
		WillReturnRows(sqlmock.NewRows(sectionColumns).
			AddRow(third.String(), projectID.String(), "Done", 2).
			AddRow(first.String(), projectID.String(), "Backlog", 0).
			AddRow(second.String(), projectID.String(), "Doing", 1))

	sections, err := repo.ListByProject(context.Background(), projectID)

	assert.NoError(t, err)
	if assert.Len(t, sections, 3) {
		assert.Equal(t, first, sections[0].ID)
		assert.Equal(t, second, sections[1].ID)
		assert.Equal(t, third, sections[2].ID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepository_DeleteCascade(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewSectionRepository(gormDB)

	sectionID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "tasks" WHERE section_id IN`).
		WithArgs(sectionID).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(`DELETE FROM "sections" WHERE id IN`).
		WithArgs(sectionID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := repo.DeleteCascade(context.Background(), sectionID)

	assert.NoError(t, err)
	assert.Equal(t, &repository.CascadeResult{Sections: 1, Tasks: 4}, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepository_DeleteCascade_NotFoundRollsBack(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewSectionRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "tasks" WHERE section_id IN`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "sections" WHERE id IN`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	result, err := repo.DeleteCascade(context.Background(), uuid.New())

	assert.ErrorIs(t, err, repository.ErrSectionNotFound)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepository_Reorder_ForeignSectionRollsBack(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewSectionRepository(gormDB)

	projectID := uuid.New()
	own, foreign := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "sections" SET "sort_order"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "sections" SET "sort_order"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Reorder(context.Background(), projectID, []repository.SectionOrder{
		{ID: own, Order: 1},
		{ID: foreign, Order: 0},
	})

	assert.ErrorIs(t, err, repository.ErrSectionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
