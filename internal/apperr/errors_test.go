package apperr_test

import (
	"crimereport/backend/internal/apperr"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"forbidden", apperr.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"wrapped not found", fmt.Errorf("case c1: %w", apperr.ErrNotFound), http.StatusNotFound, "not_found"},
		{"invalid status", fmt.Errorf("%w: %q", apperr.ErrInvalidStatus, "archived"), http.StatusBadRequest, "invalid_status"},
		{"validation", fmt.Errorf("%w: body is empty", apperr.ErrValidation), http.StatusBadRequest, "validation_error"},
		{"unauthorized", apperr.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"storage", fmt.Errorf("%w: %w", apperr.ErrStorage, errors.New("conn reset")), http.StatusInternalServerError, "storage_error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "storage_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, apperr.HTTPStatus(tt.err))
			assert.Equal(t, tt.code, apperr.Code(tt.err))
		})
	}

	assert.Equal(t, http.StatusOK, apperr.HTTPStatus(nil))
}
