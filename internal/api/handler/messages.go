package handler

import (
	"crimereport/backend/internal/apperr"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type sendMessageRequest struct {
	Body string `json:"body"`
}

func (h *Handler) ListMessages(c *gin.Context) {
	msgs, err := h.Thread.List(c.Request.Context(), c.Param("id"), principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", apperr.ErrValidation, err))
		return
	}

	msg, err := h.Thread.Send(c.Request.Context(), c.Param("id"), principal(c), req.Body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *Handler) UnreadCount(c *gin.Context) {
	n, err := h.Thread.UnreadCount(c.Request.Context(), c.Param("id"), principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": n})
}

func (h *Handler) ThreadSummary(c *gin.Context) {
	summary, err := h.Thread.Summary(c.Request.Context(), c.Param("id"), principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) MarkThreadRead(c *gin.Context) {
	n, err := h.Thread.MarkRead(c.Request.Context(), c.Param("id"), principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

func (h *Handler) MarkMessageRead(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	n, err := h.Thread.MarkOneRead(c.Request.Context(), id, principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

// parseID reads a numeric :id path parameter. A malformed id cannot resolve, so it is not found.
func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: id %q", apperr.ErrNotFound, c.Param("id"))
	}
	return uint(id), nil
}
