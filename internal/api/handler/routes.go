package handler

import (
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with every route of the API.
func (h *Handler) NewRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), h.LoggingMiddleware())

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/statistics", h.Statistics)
		v1.GET("/departments", h.Departments)
		v1.POST("/classify", h.Classify)
		v1.POST("/cases", h.OptionalAuth(), h.CreateCase)
	}

	authed := v1.Group("", h.RequireAuth())
	{
		authed.GET("/me", h.Me)

		authed.GET("/cases", h.ListCases)
		authed.GET("/cases/:id", h.GetCase)
		authed.GET("/cases/:id/history", h.CaseHistory)
		authed.POST("/cases/:id/status", h.TransitionCase)

		authed.GET("/cases/:id/messages", h.ListMessages)
		authed.POST("/cases/:id/messages", h.SendMessage)
		authed.GET("/cases/:id/messages/unread", h.UnreadCount)
		authed.GET("/cases/:id/messages/summary", h.ThreadSummary)
		authed.POST("/cases/:id/messages/read", h.MarkThreadRead)
		authed.POST("/messages/:id/read", h.MarkMessageRead)

		authed.GET("/notifications", h.ListNotifications)
		authed.POST("/notifications/:id/read", h.MarkNotificationRead)
		authed.POST("/notifications/read-all", h.MarkAllNotificationsRead)
	}
	return r
}
