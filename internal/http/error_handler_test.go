package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/cherrycherry3/crt-backend/pkg/errors"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{"not found", apperrors.NotFound("College not found"), http.StatusNotFound, "College not found"},
		{"wrapped not found", fmt.Errorf("load: %w", apperrors.NotFound("PDF not found")), http.StatusNotFound, "PDF not found"},
		{"bad request", apperrors.BadRequest("Duplicate email / roll number"), http.StatusBadRequest, "Duplicate email / roll number"},
		{"validation", apperrors.Validation("progress_percentage: lte=100"), http.StatusUnprocessableEntity, "progress_percentage: lte=100"},
		{"forbidden", apperrors.Forbidden("College admin not mapped to any college"), http.StatusForbidden, "College admin not mapped to any college"},
		{"bare sentinel", apperrors.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"), http.StatusMethodNotAllowed, "Method Not Allowed"},
		{"echo unavailable keeps message", echo.NewHTTPError(http.StatusServiceUnavailable, "File storage is not configured"), http.StatusServiceUnavailable, "File storage is not configured"},
		{"internal hides cause", apperrors.InternalServer("failed to load", errors.New("pq: password=hunter2")), http.StatusInternalServerError, "Internal server error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			handler := NewHTTPErrorHandler(zerolog.New(&logs))

			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/x", nil), rec)

			handler(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantDetail, body["detail"])
			assert.NotContains(t, logs.String(), "hunter2")
		})
	}
}

func TestHTTPErrorHandler_CommittedResponseUntouched(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/x", nil), rec)
	require.NoError(t, c.String(http.StatusOK, "done"))

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("late"), c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "done", rec.Body.String())
}
