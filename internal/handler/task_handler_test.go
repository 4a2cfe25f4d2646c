package handler_test

import (
	"net/http"
	"testing"
	"time"

	"taskflow/internal/handler"
	"taskflow/internal/model"
	"taskflow/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTaskRouter(caller string, strict bool) (*gin.Engine, *mocks) {
	m := newMocks(strict)
	h := handler.NewTaskHandler(m.tasks, m.guard, zap.NewNop())

	r := newRouter(caller)
	r.GET("/tasks/section/:sectionId", h.ListBySection)
	r.GET("/tasks/project/:projectId", h.ListByProject)
	r.POST("/tasks", h.Create)
	r.PUT("/tasks/:id", h.Update)
	r.DELETE("/tasks/:id", h.Delete)
	return r, m
}

// ownedChain wires section -> project lookups for a strict guard.
func ownedChain(m *mocks) (projectID, sectionID uuid.UUID) {
	projectID, sectionID = uuid.New(), uuid.New()
	m.sections.On("GetByID", mock.Anything, sectionID).Return(&model.Section{ID: sectionID, ProjectID: projectID}, nil)
	m.projects.On("GetByID", mock.Anything, projectID).Return(ownedProject(projectID), nil)
	return projectID, sectionID
}

func TestTaskCreate_AppliesDefaults(t *testing.T) {
	router, m := setupTaskRouter(ownerID, true)
	_, sectionID := ownedChain(m)
	m.tasks.On("Create", mock.Anything, mock.AnythingOfType("*model.Task")).Return(nil)

	resp := doJSON(router, "POST", "/tasks", map[string]string{"sectionId": sectionID.String(), "title": "Write docs"})

	require.Equal(t, http.StatusCreated, resp.Code)
	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Equal(t, model.StatusToDo, body["status"])
	assert.Equal(t, model.PriorityMedium, body["priority"])
	assert.Equal(t, "", body["assignee"])
	assert.Equal(t, "", body["effort"])
	assert.Nil(t, body["dueDate"])
	m.assertExpectations(t)
}

func TestTaskCreate_ParsesDueDate(t *testing.T) {
	router, m := setupTaskRouter(ownerID, true)
	_, sectionID := ownedChain(m)
	m.tasks.On("Create", mock.Anything, mock.MatchedBy(func(task *model.Task) bool {
		return task.DueDate != nil && task.DueDate.Equal(time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC))
	})).Return(nil)

	resp := doJSON(router, "POST", "/tasks", map[string]string{
		"sectionId": sectionID.String(),
		"title":     "Launch",
		"priority":  "High",
		"dueDate":   "2025-06-30",
	})

	require.Equal(t, http.StatusCreated, resp.Code)
	var body handler.TaskResponse
	decode(t, resp, &body)
	require.NotNil(t, body.DueDate)
	assert.Equal(t, "2025-06-30", *body.DueDate)
	assert.Equal(t, "High", body.Priority)
}

func TestTaskCreate_InvalidStatus(t *testing.T) {
	router, _ := setupTaskRouter(ownerID, true)

	resp := doJSON(router, "POST", "/tasks", map[string]string{
		"sectionId": uuid.New().String(),
		"title":     "x",
		"status":    "Blocked",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "status must be one of To Do, In Progress, Done")
}

func TestTaskCreate_InvalidDueDate(t *testing.T) {
	router, _ := setupTaskRouter(ownerID, true)

	resp := doJSON(router, "POST", "/tasks", map[string]string{
		"sectionId": uuid.New().String(),
		"title":     "x",
		"dueDate":   "next week",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "dueDate")
}

func TestTaskCreate_OpenModeMissingSection(t *testing.T) {
	router, m := setupTaskRouter(ownerID, false)
	m.tasks.On("Create", mock.Anything, mock.Anything).Return(repository.ErrSectionNotFound)

	resp := doJSON(router, "POST", "/tasks", map[string]string{"sectionId": uuid.New().String(), "title": "x"})

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "Section not found")
	m.sections.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestTaskList_BySection(t *testing.T) {
	router, m := setupTaskRouter(ownerID, true)
	_, sectionID := ownedChain(m)
	m.tasks.On("ListBySection", mock.Anything, sectionID).Return([]model.Task{
		{ID: uuid.New(), SectionID: sectionID, Title: "newest"},
	}, nil)

	resp := doJSON(router, "GET", "/tasks/section/"+sectionID.String(), nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "newest")
}

func projectTasks(sectionID uuid.UUID) []model.Task {
	return []model.Task{
		{ID: uuid.New(), SectionID: sectionID, Title: "a", Status: model.StatusDone, Priority: model.PriorityLow, Assignee: "Alice"},
		{ID: uuid.New(), SectionID: sectionID, Title: "b", Status: model.StatusToDo, Priority: model.PriorityHigh},
		{ID: uuid.New(), SectionID: sectionID, Title: "c", Status: model.StatusToDo, Priority: model.PriorityLow, Assignee: "alice b"},
	}
}

func TestTaskList_ByProjectFiltered(t *testing.T) {
	router, m := setupTaskRouter(ownerID, true)
	projectID, sectionID := uuid.New(), uuid.New()
	m.projects.On("GetByID", mock.Anything, projectID).Return(ownedProject(projectID), nil)
	m.tasks.On("ListByProject", mock.Anything, projectID).Return(projectTasks(sectionID), nil)

	resp := doJSON(router, "GET", "/tasks/project/"+projectID.String()+"?assignee=ALICE&status=To+Do", nil)

	require.Equal(t, http.StatusOK, resp.Code)
	var body []handler.TaskResponse
	decode(t, resp, &body)
	require.Len(t, body, 1)
	assert.Equal(t, "c", body[0].Title)
}

func TestTaskList_ByProjectGrouped(t *testing.T) {
	router, m := setupTaskRouter(ownerID, true)
	projectID, sectionID := uuid.New(), uuid.New()
	m.projects.On("GetByID", mock.Anything, projectID).Return(ownedProject(projectID), nil)
	m.tasks.On("ListByProject", mock.Anything, projectID).Return(projectTasks(sectionID), nil)

	resp := doJSON(router, "GET", "/tasks/project/"+projectID.String()+"?groupBy=priority", nil)

	require.Equal(t, http.StatusOK, resp.Code)
	var body handler.GroupedTasksResponse
	decode(t, resp, &body)
	assert.Equal(t, "priority", body.GroupBy)
	require.Len(t, body.Groups, 2)
	assert.Equal(t, "High", body.Groups[0].Key)
	assert.Equal(t, "Low", body.Groups[1].Key)
	assert.Len(t, body.Groups[1].Tasks, 2)
}

func TestTaskList_ByProjectBadGroupBy(t *testing.T) {
	router, _ := setupTaskRouter(ownerID, true)

	resp := doJSON(router, "GET", "/tasks/project/"+uuid.New().String()+"?groupBy=owner", nil)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestTaskUpdate_FullReplacement(t *testing.T) {
	router, m := setupTaskRouter(ownerID, true)
	_, sectionID := ownedChain(m)
	taskID := uuid.New()
	m.tasks.On("GetByID", mock.Anything, taskID).Return(&model.Task{ID: taskID, SectionID: sectionID}, nil)
	m.tasks.On("Update", mock.Anything, taskID, repository.TaskChanges{
		Title:    "Ship",
		Status:   model.StatusDone,
		Priority: model.PriorityHigh,
	}).Return(&model.Task{ID: taskID, SectionID: sectionID, Title: "Ship", Status: model.StatusDone, Priority: model.PriorityHigh}, nil)

	resp := doJSON(router, "PUT", "/tasks/"+taskID.String(), map[string]string{
		"title":    "Ship",
		"status":   "Done",
		"priority": "High",
	})

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"status":"Done"`)
	m.assertExpectations(t)
}

func TestTaskUpdate_RequiresStatus(t *testing.T) {
	router, _ := setupTaskRouter(ownerID, true)

	resp := doJSON(router, "PUT", "/tasks/"+uuid.New().String(), map[string]string{"title": "Ship", "priority": "High"})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "status is required")
}

func TestTaskUpdate_StrictForbidden(t *testing.T) {
	router, m := setupTaskRouter(otherID, true)
	_, sectionID := ownedChain(m)
	taskID := uuid.New()
	m.tasks.On("GetByID", mock.Anything, taskID).Return(&model.Task{ID: taskID, SectionID: sectionID}, nil)

	resp := doJSON(router, "PUT", "/tasks/"+taskID.String(), map[string]string{
		"title": "x", "status": "Done", "priority": "Low",
	})

	assert.Equal(t, http.StatusForbidden, resp.Code)
	m.tasks.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskDelete_NotFound(t *testing.T) {
	router, m := setupTaskRouter(ownerID, false)
	taskID := uuid.New()
	m.tasks.On("GetByID", mock.Anything, taskID).Return(nil, repository.ErrTaskNotFound)

	resp := doJSON(router, "DELETE", "/tasks/"+taskID.String(), nil)

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "Task not found")
}

func TestTaskDelete_Success(t *testing.T) {
	router, m := setupTaskRouter(ownerID, false)
	taskID := uuid.New()
	m.tasks.On("GetByID", mock.Anything, taskID).Return(&model.Task{ID: taskID}, nil)
	m.tasks.On("Delete", mock.Anything, taskID).Return(nil)

	resp := doJSON(router, "DELETE", "/tasks/"+taskID.String(), nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Task deleted successfully")
}
