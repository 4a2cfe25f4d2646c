package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskflow/internal/access"
	"taskflow/internal/middleware"
	"taskflow/internal/repository"
)

// respondError maps domain errors to status codes. Anything unrecognised is
// logged and answered with a 500 carrying failMsg.
func respondError(c *gin.Context, log *zap.Logger, err error, failMsg string) {
	switch {
	case errors.Is(err, repository.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
	case errors.Is(err, repository.ErrSectionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Section not found"})
	case errors.Is(err, repository.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, access.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	default:
		log.Error(failMsg, zap.Error(err), zap.String("path", c.FullPath()))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": failMsg})
	}
}

// callerID reads the authenticated caller. A missing id means the route
// was registered outside the auth middleware.
func callerID(c *gin.Context) (string, bool) {
	id, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return "", false
	}
	return id, true
}

// pathID parses a UUID route parameter, answering 400 when malformed.
func pathID(c *gin.Context, param, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid %s ID format", label)})
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes the body and answers 400 with a readable message.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return false
	}
	return true
}

// bindOptionalJSON is bindJSON for endpoints that accept an empty body.
func bindOptionalJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return false
	}
	return true
}

func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case statusTag:
			msgs = append(msgs, fmt.Sprintf("%s must be one of %s", fe.Field(), statusList))
		case priorityTag:
			msgs = append(msgs, fmt.Sprintf("%s must be one of %s", fe.Field(), priorityList))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}
