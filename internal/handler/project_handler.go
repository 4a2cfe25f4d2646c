package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskflow/internal/access"
	"taskflow/internal/metrics"
	"taskflow/internal/model"
	"taskflow/internal/repository"
)

type ProjectHandler struct {
	projects repository.ProjectRepositoryInterface
	guard    *access.Guard
	log      *zap.Logger
}

func NewProjectHandler(projects repository.ProjectRepositoryInterface, guard *access.Guard, log *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, guard: guard, log: log}
}

// ProjectRequest is the body of project create and update.
type ProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (h *ProjectHandler) List(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	projects, err := h.projects.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err, "Failed to fetch projects")
		return
	}

	response := make([]ProjectResponse, len(projects))
	for i := range projects {
		response[i] = toProjectResponse(&projects[i])
	}
	c.JSON(http.StatusOK, response)
}

func (h *ProjectHandler) GetByID(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project")
	if !ok {
		return
	}

	project, err := h.guard.Project(c.Request.Context(), userID, projectID)
	if err != nil {
		respondError(c, h.log, err, "Failed to fetch project")
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(project))
}

func (h *ProjectHandler) Create(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req ProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project := &model.Project{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     userID,
	}
	if err := h.projects.Create(c.Request.Context(), project); err != nil {
		respondError(c, h.log, err, "Failed to create project")
		return
	}

	c.JSON(http.StatusCreated, toProjectResponse(project))
}

func (h *ProjectHandler) Update(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project")
	if !ok {
		return
	}

	var req ProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	if _, err := h.guard.Project(c.Request.Context(), userID, projectID); err != nil {
		respondError(c, h.log, err, "Failed to update project")
		return
	}

	project, err := h.projects.Update(c.Request.Context(), projectID, req.Name, req.Description)
	if err != nil {
		respondError(c, h.log, err, "Failed to update project")
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(project))
}

// Delete removes the project with all of its sections and tasks.
func (h *ProjectHandler) Delete(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project")
	if !ok {
		return
	}

	if _, err := h.guard.Project(c.Request.Context(), userID, projectID); err != nil {
		respondError(c, h.log, err, "Failed to delete project")
		return
	}

	result, err := h.projects.DeleteCascade(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, h.log, err, "Failed to delete project")
		return
	}
	metrics.RecordCascade("project", result.Sections, result.Tasks)
	h.log.Info("Project deleted",
		zap.String("project_id", projectID.String()),
		zap.Int64("sections", result.Sections),
		zap.Int64("tasks", result.Tasks),
	)

	c.JSON(http.StatusOK, MessageResponse{Message: "Project deleted successfully"})
}
