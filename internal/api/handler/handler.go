// Package handler exposes the case engine over HTTP with gin.
package handler

import (
	"crimereport/backend/internal/apperr"
	"crimereport/backend/internal/auth"
	"crimereport/backend/internal/metrics"
	"crimereport/backend/internal/storage"
	"crimereport/backend/internal/thread"
	"crimereport/backend/internal/workflow"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler holds the services behind the HTTP routes.
type Handler struct {
	Workflow *workflow.Service
	Thread   *thread.Service
	Storage  storage.Storage
	Auth     *auth.Manager
	Metrics  *metrics.Collector
	Logger   *zap.Logger
}

func NewHandler(
	wf *workflow.Service,
	th *thread.Service,
	s storage.Storage,
	am *auth.Manager,
	m *metrics.Collector,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Workflow: wf,
		Thread:   th,
		Storage:  s,
		Auth:     am,
		Metrics:  m,
		Logger:   logger.Named("http"),
	}
}

// respondError renders err with the status and code of its taxonomy entry.
// Storage failures are logged and hidden from the client.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		requestID, _ := c.Get(requestIDKey)
		h.Logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Any("request_id", requestID),
			zap.Error(err),
		)
		message = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message, "code": apperr.Code(err)})
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
