package handler

import (
	"crimereport/backend/internal/apperr"
	"crimereport/backend/internal/classifier"
	"crimereport/backend/internal/workflow"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type transitionRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

type classifyRequest struct {
	Category    string `json:"category"`
	Region      string `json:"region"`
	Description string `json:"description"`
}

// CreateCase files a new case. Without a bearer token the case is anonymous.
func (h *Handler) CreateCase(c *gin.Context) {
	var in workflow.SubmitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", apperr.ErrValidation, err))
		return
	}

	created, err := h.Workflow.Submit(c.Request.Context(), principal(c), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) ListCases(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		h.respondError(c, err)
		return
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		h.respondError(c, err)
		return
	}

	cases, err := h.Workflow.List(c.Request.Context(), principal(c), workflow.ListFilter{
		Status:     c.Query("status"),
		Category:   c.Query("category"),
		Region:     c.Query("region"),
		Department: c.Query("department"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cases": cases, "count": len(cases)})
}

func (h *Handler) GetCase(c *gin.Context) {
	found, err := h.Workflow.Get(c.Request.Context(), c.Param("id"), principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (h *Handler) CaseHistory(c *gin.Context) {
	events, err := h.Workflow.History(c.Request.Context(), c.Param("id"), principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": events})
}

func (h *Handler) TransitionCase(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", apperr.ErrValidation, err))
		return
	}

	updated, err := h.Workflow.Transition(c.Request.Context(), c.Param("id"), req.Status, req.Comment, principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) Statistics(c *gin.Context) {
	stats, err := h.Workflow.Statistics(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) Departments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"departments": classifier.Departments()})
}

// Classify previews the routing of a case without creating it.
func (h *Handler) Classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", apperr.ErrValidation, err))
		return
	}
	c.JSON(http.StatusOK, classifier.Classify(req.Category, req.Region, req.Description))
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", apperr.ErrValidation, key)
	}
	return n, nil
}
