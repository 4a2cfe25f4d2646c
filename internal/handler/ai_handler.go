package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskflow/internal/access"
	"taskflow/internal/llm"
	"taskflow/internal/metrics"
	"taskflow/internal/model"
	"taskflow/internal/repository"
	"taskflow/internal/suggest"
	"taskflow/internal/summary"
)

// SummaryComposer produces a project summary from its tasks.
type SummaryComposer interface {
	Compose(ctx context.Context, project model.Project, tasks []model.Task) (summary.Result, error)
}

type AIHandler struct {
	tasks    repository.TaskRepositoryInterface
	guard    *access.Guard
	engine   *suggest.Engine
	composer SummaryComposer
	log      *zap.Logger
}

func NewAIHandler(
	tasks repository.TaskRepositoryInterface,
	guard *access.Guard,
	engine *suggest.Engine,
	composer SummaryComposer,
	log *zap.Logger,
) *AIHandler {
	return &AIHandler{
		tasks:    tasks,
		guard:    guard,
		engine:   engine,
		composer: composer,
		log:      log,
	}
}

type SummaryRequest struct {
	ProjectID string `json:"projectId"`
}

type SuggestionRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"dueDate"`
}

func (h *AIHandler) Summary(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req SummaryRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	if req.ProjectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project ID is required"})
		return
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
		return
	}

	project, err := h.guard.Project(c.Request.Context(), userID, projectID)
	if err != nil {
		respondError(c, h.log, err, "Failed to generate summary")
		return
	}

	tasks, err := h.tasks.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, h.log, err, "Failed to generate summary")
		return
	}

	result, err := h.composer.Compose(c.Request.Context(), *project, tasks)
	if err != nil {
		h.log.Error("Summary generation failed", zap.String("project_id", projectID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": summaryErrorMessage(err)})
		return
	}

	c.JSON(http.StatusOK, result)
}

func summaryErrorMessage(err error) string {
	if errors.Is(err, llm.ErrNotConfigured) {
		return "OpenAI API key not configured. Please add your API key to the .env file."
	}

	var upstream *llm.UpstreamError
	if errors.As(err, &upstream) {
		switch upstream.Kind {
		case llm.KindQuota:
			return "OpenAI API quota exceeded. Please check your OpenAI account billing."
		case llm.KindInvalidCredential:
			return "Invalid OpenAI API key. Please check your .env file."
		}
		if upstream.Message != "" {
			return "Failed to generate summary: " + upstream.Message
		}
	}
	return "Failed to generate summary: " + err.Error()
}

func (h *AIHandler) EstimateEffort(c *gin.Context) {
	var req SuggestionRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	estimate, err := h.engine.EstimateEffort(req.Title, req.Description)
	if err != nil {
		suggestionError(c, err, "Failed to estimate effort")
		return
	}
	metrics.IncrementSuggestion("effort")

	c.JSON(http.StatusOK, estimate)
}

func (h *AIHandler) PredictPriority(c *gin.Context) {
	var req SuggestionRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	prediction, err := h.engine.PredictPriority(req.Title, req.Description, suggestionDueDate(req.DueDate))
	if err != nil {
		suggestionError(c, err, "Failed to predict priority")
		return
	}
	metrics.IncrementSuggestion("priority")

	c.JSON(http.StatusOK, prediction)
}

// Suggest answers with both estimates. Apart from a missing title it
// always succeeds, degrading to the default suggestion.
func (h *AIHandler) Suggest(c *gin.Context) {
	var req SuggestionRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	s, err := h.engine.Suggest(req.Title, req.Description, suggestionDueDate(req.DueDate))
	if err != nil {
		if errors.Is(err, suggest.ErrTitleRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Task title is required"})
			return
		}
		h.log.Warn("Suggestion failed, using defaults", zap.Error(err))
		s = suggest.DefaultSuggestion()
	}

	if s == suggest.DefaultSuggestion() {
		metrics.IncrementSuggestion("default")
	} else {
		metrics.IncrementSuggestion("combined")
	}
	c.JSON(http.StatusOK, s)
}

func suggestionError(c *gin.Context, err error, failMsg string) {
	if errors.Is(err, suggest.ErrTitleRequired) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Task title is required"})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": failMsg})
}

// suggestionDueDate treats an unparseable date as absent. A bare date is
// UTC midnight; a timestamp keeps its instant.
func suggestionDueDate(raw *string) *time.Time {
	if raw == nil || *raw == "" {
		return nil
	}
	if t, err := time.Parse(time.DateOnly, *raw); err == nil {
		return &t
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil
	}
	return &t
}
