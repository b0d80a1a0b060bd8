package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListNotifications returns the inbox of the principal, newest first. ?unread=true filters.
func (h *Handler) ListNotifications(c *gin.Context) {
	user := principal(c)
	unreadOnly := c.Query("unread") == "true"

	items, err := h.Storage.ListNotifications(c.Request.Context(), user.ID, unreadOnly)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items})
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	n, err := h.Storage.MarkNotificationRead(c.Request.Context(), principal(c).ID, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	n, err := h.Storage.MarkAllNotificationsRead(c.Request.Context(), principal(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}
