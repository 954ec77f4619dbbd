package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radarcli/internal/session"
	"radarcli/internal/shared/testutil"
	"radarcli/internal/sources"
)

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantCode   string
	}{
		{
			name:       "context deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "context canceled",
			err:        fmt.Errorf("load: %w", context.Canceled),
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "api error",
			err:        ErrInvalidRequest,
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantCode:   "INVALID_REQUEST",
		},
		{
			name:       "unknown session",
			err:        session.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantType:   TypeSessionNotFound,
			wantCode:   "SESSION_NOT_FOUND",
		},
		{
			name:       "unknown dimension",
			err:        fmt.Errorf("%w: %q", session.ErrUnknownDimension, "Speed"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeDimensionNotFound,
			wantCode:   "DIMENSION_NOT_FOUND",
		},
		{
			name:       "invalid color",
			err:        fmt.Errorf("%w: %q", session.ErrInvalidColor, "blue"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "no table",
			err:        sources.ErrNoTable,
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeNoTable,
			wantCode:   "NO_TABLE",
		},
		{
			name:       "max bytes",
			err:        &http.MaxBytesError{Limit: 10},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   TypePayloadTooLarge,
			wantCode:   "PAYLOAD_TOO_LARGE",
		},
		{
			name:       "plain not found message",
			err:        fmt.Errorf("palette not found"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "generic error",
			err:        fmt.Errorf("something went wrong"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/sessions/abc/data", nil)
			r = r.WithContext(context.WithValue(r.Context(), middleware.RequestIDKey, "req-1"))

			handler.HandleError(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

			body := decodeProblem(t, w)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/sessions/abc/data", body["instance"])
			assert.Equal(t, "req-1", body["trace_id"])
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["error_code"])
			}

			assert.True(t, logs.ContainsMessage("request failed"))
			testutil.AssertLogAttr(t, logs, "component", "error_handler")
		})
	}
}

func TestErrorHandler_HandleError_Nil(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	w := httptest.NewRecorder()
	handler.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, 0, w.Body.Len())
	assert.Equal(t, 0, logs.Count())
}

func TestErrorHandler_Stack(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	tests := []struct {
		name      string
		include   bool
		err       error
		wantStack bool
	}{
		{"internal error with stack enabled", true, fmt.Errorf("boom"), true},
		{"client error with stack enabled", true, ErrInvalidRequest, false},
		{"internal error with stack disabled", false, fmt.Errorf("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewErrorHandler(logger, tt.include)
			w := httptest.NewRecorder()
			handler.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			body := decodeProblem(t, w)
			_, hasStack := body["stack"]
			assert.Equal(t, tt.wantStack, hasStack)
		})
	}
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	w := httptest.NewRecorder()
	handler.NotFound(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, TypeNotFound, decodeProblem(t, w)["type"])

	w = httptest.NewRecorder()
	handler.MethodNotAllowed(w, httptest.NewRequest(http.MethodPatch, "/api/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	body := decodeProblem(t, w)
	assert.Equal(t, TypeMethodNotAllowed, body["type"])
	assert.Contains(t, body["detail"], "PATCH")
}
