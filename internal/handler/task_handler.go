package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskflow/internal/access"
	"taskflow/internal/filter"
	"taskflow/internal/metrics"
	"taskflow/internal/model"
	"taskflow/internal/repository"
)

type TaskHandler struct {
	tasks repository.TaskRepositoryInterface
	guard *access.Guard
	log   *zap.Logger
}

func NewTaskHandler(tasks repository.TaskRepositoryInterface, guard *access.Guard, log *zap.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, guard: guard, log: log}
}

type CreateTaskRequest struct {
	SectionID   string  `json:"sectionId" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Status      string  `json:"status" binding:"omitempty,task_status"`
	Priority    string  `json:"priority" binding:"omitempty,task_priority"`
	Assignee    string  `json:"assignee"`
	DueDate     *string `json:"dueDate"`
	Effort      string  `json:"effort"`
}

// UpdateTaskRequest replaces every mutable field; omitted optional fields
// are cleared.
type UpdateTaskRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Status      string  `json:"status" binding:"required,task_status"`
	Priority    string  `json:"priority" binding:"required,task_priority"`
	Assignee    string  `json:"assignee"`
	DueDate     *string `json:"dueDate"`
	Effort      string  `json:"effort"`
}

func (h *TaskHandler) ListBySection(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	sectionID, ok := pathID(c, "sectionId", "section")
	if !ok {
		return
	}

	if h.guard.Strict() {
		if _, err := h.guard.Section(c.Request.Context(), userID, sectionID); err != nil {
			respondError(c, h.log, err, "Failed to fetch tasks")
			return
		}
	}

	tasks, err := h.tasks.ListBySection(c.Request.Context(), sectionID)
	if err != nil {
		respondError(c, h.log, err, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, toTaskResponses(tasks))
}

// ListByProject aggregates tasks across the project's sections, optionally
// narrowed and grouped by query parameters.
func (h *TaskHandler) ListByProject(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "projectId", "project")
	if !ok {
		return
	}

	criteria, err := filter.FromQuery(c.Request.URL.Query())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.guard.ProjectScope(c.Request.Context(), userID, projectID); err != nil {
		respondError(c, h.log, err, "Failed to fetch tasks")
		return
	}

	tasks, err := h.tasks.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, h.log, err, "Failed to fetch tasks")
		return
	}

	if !criteria.IsZero() {
		tasks = criteria.Apply(tasks)
	}
	if criteria.GroupBy != "" {
		c.JSON(http.StatusOK, toGroupedResponse(criteria.GroupBy, criteria.Group(tasks)))
		return
	}
	c.JSON(http.StatusOK, toTaskResponses(tasks))
}

func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	sectionID, err := uuid.Parse(req.SectionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid section ID format"})
		return
	}
	dueDate, ok := dueDateField(c, req.DueDate)
	if !ok {
		return
	}

	// In open mode the foreign key reports a missing section.
	if h.guard.Strict() {
		if _, err := h.guard.Section(c.Request.Context(), userID, sectionID); err != nil {
			respondError(c, h.log, err, "Failed to create task")
			return
		}
	}

	task := &model.Task{
		SectionID:   sectionID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Assignee:    req.Assignee,
		DueDate:     dueDate,
		Effort:      req.Effort,
	}
	task.ApplyDefaults()

	if err := h.tasks.Create(c.Request.Context(), task); err != nil {
		respondError(c, h.log, err, "Failed to create task")
		return
	}

	c.JSON(http.StatusCreated, toTaskResponse(task))
}

func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	dueDate, ok := dueDateField(c, req.DueDate)
	if !ok {
		return
	}

	if _, err := h.guard.Task(c.Request.Context(), userID, taskID); err != nil {
		respondError(c, h.log, err, "Failed to update task")
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), taskID, repository.TaskChanges{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Assignee:    req.Assignee,
		DueDate:     dueDate,
		Effort:      req.Effort,
	})
	if err != nil {
		respondError(c, h.log, err, "Failed to update task")
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	if _, err := h.guard.Task(c.Request.Context(), userID, taskID); err != nil {
		respondError(c, h.log, err, "Failed to delete task")
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), taskID); err != nil {
		respondError(c, h.log, err, "Failed to delete task")
		return
	}
	metrics.RecordCascade("task", 0, 0)

	c.JSON(http.StatusOK, MessageResponse{Message: "Task deleted successfully"})
}

// dueDateField parses an optional due date; an empty string clears it.
func dueDateField(c *gin.Context, raw *string) (*time.Time, bool) {
	if raw == nil || *raw == "" {
		return nil, true
	}
	t, err := model.ParseDate(*raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dueDate must be YYYY-MM-DD or RFC 3339"})
		return nil, false
	}
	return &t, true
}
