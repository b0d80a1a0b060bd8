package handler

import (
	"crimereport/backend/internal/apperr"
	"crimereport/backend/internal/models"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// bearerToken returns the token of an "Authorization: Bearer ..." header, or "" if absent.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return "", true
	}
	return strings.TrimSpace(authHeader[7:]), true
}

// authenticate resolves the principal of the request. A missing header yields (nil, nil).
func (h *Handler) authenticate(c *gin.Context) (*models.User, error) {
	token, present := bearerToken(c)
	if !present {
		return nil, nil
	}
	if token == "" {
		return nil, fmt.Errorf("%w: malformed authorization header", apperr.ErrUnauthorized)
	}

	claims, err := h.Auth.Parse(token)
	if err != nil {
		return nil, err
	}

	user, err := h.Storage.GetUserByID(c.Request.Context(), claims.Subject)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown principal", apperr.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account disabled", apperr.ErrUnauthorized)
	}
	return user, nil
}

// RequireAuth rejects requests without a valid bearer token.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := h.authenticate(c)
		if err == nil && user == nil {
			err = fmt.Errorf("%w: authorization token missing", apperr.ErrUnauthorized)
		}
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.Set(principalKey, user)
		c.Next()
	}
}

// OptionalAuth resolves the principal when a token is sent; an invalid token is still rejected.
func (h *Handler) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := h.authenticate(c)
		if err != nil {
			h.respondError(c, err)
			return
		}
		if user != nil {
			c.Set(principalKey, user)
		}
		c.Next()
	}
}

// principal returns the authenticated user, or nil on anonymous requests.
func principal(c *gin.Context) *models.User {
	if v, ok := c.Get(principalKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// Me returns the authenticated principal.
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, principal(c))
}
