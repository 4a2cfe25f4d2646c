package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskflow/internal/access"
	"taskflow/internal/metrics"
	"taskflow/internal/model"
	"taskflow/internal/repository"
)

type SectionHandler struct {
	sections repository.SectionRepositoryInterface
	guard    *access.Guard
	log      *zap.Logger
}

func NewSectionHandler(sections repository.SectionRepositoryInterface, guard *access.Guard, log *zap.Logger) *SectionHandler {
	return &SectionHandler{sections: sections, guard: guard, log: log}
}

type CreateSectionRequest struct {
	ProjectID string `json:"projectId" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Order     *int   `json:"order"`
}

type UpdateSectionRequest struct {
	Name  string `json:"name" binding:"required"`
	Order *int   `json:"order"`
}

type ReorderSectionsRequest struct {
	Sections []struct {
		ID    string `json:"id" binding:"required"`
		Order int    `json:"order"`
	} `json:"sections" binding:"required,min=1,dive"`
}

func (h *SectionHandler) ListByProject(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "projectId", "project")
	if !ok {
		return
	}

	if err := h.guard.ProjectScope(c.Request.Context(), userID, projectID); err != nil {
		respondError(c, h.log, err, "Failed to fetch sections")
		return
	}

	sections, err := h.sections.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, h.log, err, "Failed to fetch sections")
		return
	}

	c.JSON(http.StatusOK, toSectionResponses(sections))
}

func (h *SectionHandler) Create(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req CreateSectionRequest
	if !bindJSON(c, &req) {
		return
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
		return
	}

	// In open mode the foreign key reports a missing project.
	if err := h.guard.ProjectScope(c.Request.Context(), userID, projectID); err != nil {
		respondError(c, h.log, err, "Failed to create section")
		return
	}

	section := &model.Section{
		ProjectID: projectID,
		Name:      req.Name,
	}
	if req.Order != nil {
		section.Order = *req.Order
	}

	if err := h.sections.Create(c.Request.Context(), section); err != nil {
		respondError(c, h.log, err, "Failed to create section")
		return
	}

	c.JSON(http.StatusCreated, toSectionResponse(section))
}

func (h *SectionHandler) Update(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	sectionID, ok := pathID(c, "id", "section")
	if !ok {
		return
	}

	var req UpdateSectionRequest
	if !bindJSON(c, &req) {
		return
	}

	if _, err := h.guard.Section(c.Request.Context(), userID, sectionID); err != nil {
		respondError(c, h.log, err, "Failed to update section")
		return
	}

	section, err := h.sections.Update(c.Request.Context(), sectionID, req.Name, req.Order)
	if err != nil {
		respondError(c, h.log, err, "Failed to update section")
		return
	}

	c.JSON(http.StatusOK, toSectionResponse(section))
}

// Delete removes the section and its tasks.
func (h *SectionHandler) Delete(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	sectionID, ok := pathID(c, "id", "section")
	if !ok {
		return
	}

	if _, err := h.guard.Section(c.Request.Context(), userID, sectionID); err != nil {
		respondError(c, h.log, err, "Failed to delete section")
		return
	}

	result, err := h.sections.DeleteCascade(c.Request.Context(), sectionID)
	if err != nil {
		respondError(c, h.log, err, "Failed to delete section")
		return
	}
	metrics.RecordCascade("section", 0, result.Tasks)

	c.JSON(http.StatusOK, MessageResponse{Message: "Section deleted successfully"})
}

func (h *SectionHandler) Reorder(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "projectId", "project")
	if !ok {
		return
	}

	var req ReorderSectionsRequest
	if !bindJSON(c, &req) {
		return
	}

	orders := make([]repository.SectionOrder, 0, len(req.Sections))
	for _, s := range req.Sections {
		id, err := uuid.Parse(s.ID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid section ID format"})
			return
		}
		orders = append(orders, repository.SectionOrder{ID: id, Order: s.Order})
	}

	if err := h.guard.ProjectScope(c.Request.Context(), userID, projectID); err != nil {
		respondError(c, h.log, err, "Failed to reorder sections")
		return
	}

	if err := h.sections.Reorder(c.Request.Context(), projectID, orders); err != nil {
		if errors.Is(err, repository.ErrSectionNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Every section must belong to the project"})
			return
		}
		respondError(c, h.log, err, "Failed to reorder sections")
		return
	}

	sections, err := h.sections.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, h.log, err, "Failed to fetch sections")
		return
	}

	c.JSON(http.StatusOK, toSectionResponses(sections))
}

func toSectionResponses(sections []model.Section) []SectionResponse {
	out := make([]SectionResponse, len(sections))
	for i := range sections {
		out[i] = toSectionResponse(&sections[i])
	}
	return out
}
