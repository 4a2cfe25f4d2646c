package repository_test

import (
	"context"
	"testing"
	"time"

	"taskflow/internal/model"
	"taskflow/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

var taskColumns = []string{
	"id", "section_id", "title", "description", "status", "priority",
	"assignee", "due_date", "effort", "created_at", "updated_at",
}

func TestTaskRepository_Create_MissingSection(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "tasks"`).
		WillReturnError(&pgconn.PgError{Code: "23503"})
	mock.ExpectRollback()

	task := &model.Task{SectionID: uuid.New(), Title: "Orphan"}
	task.ApplyDefaults()
	err := repo.Create(context.Background(), task)

	assert.ErrorIs(t, err, repository.ErrSectionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ListBySection_SortsNewestFirst(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	sectionID := uuid.New()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	oldest, middle, newest := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE section_id = \$1`).
		WithArgs(sectionID).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(middle.String(), sectionID.String(), "b", "", "To Do", "Medium", "", nil, "", base.Add(time.Hour), base).
			AddRow(oldest.String(), sectionID.String(), "a", "", "To Do", "Medium", "", nil, "", base, base).
			AddRow(newest.String(), sectionID.String(), "c", "", "Done", "High", "", nil, "", base.Add(2*time.Hour), base))

	tasks, err := repo.ListBySection(context.Background(), sectionID)

	assert.NoError(t, err)
	if assert.Len(t, tasks, 3) {
		assert.Equal(t, newest, tasks[0].ID)
		assert.Equal(t, middle, tasks[1].ID)
		assert.Equal(t, oldest, tasks[2].ID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ListByProject(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	projectID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE section_id IN \(SELECT "id" FROM "sections" WHERE project_id = \$1\)`).
		WithArgs(projectID).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(uuid.New().String(), uuid.New().String(), "t", "", "To Do", "Low", "", nil, "", now, now))

	tasks, err := repo.ListByProject(context.Background(), projectID)

	assert.NoError(t, err)
	assert.Len(t, tasks, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Delete_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "tasks" WHERE id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Update_ReturnsFreshRow(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	taskID, sectionID := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tasks" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(taskID.String(), sectionID.String(), "New title", "", "Done", "High", "ana", nil, "2h", now, now))

	task, err := repo.Update(context.Background(), taskID, repository.TaskChanges{
		Title: "New title", Status: model.StatusDone, Priority: model.PriorityHigh, Assignee: "ana", Effort: "2h",
	})

	assert.NoError(t, err)
	if assert.NotNil(t, task) {
		assert.Equal(t, "New title", task.Title)
		assert.Equal(t, model.StatusDone, task.Status)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
