package errors

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblemDetails_MarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		problem *ProblemDetails
		want    map[string]any
	}{
		{
			name:    "standard members only",
			problem: NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "", ""),
			want: map[string]any{
				"type":   TypeNotFound,
				"title":  "Not Found",
				"status": float64(404),
			},
		},
		{
			name: "extensions are flattened",
			problem: NewProblemDetails(http.StatusBadRequest, TypeValidation, "Bad Request", "bad color", "/api/sessions/x").
				WithExtension("error_code", "VALIDATION_FAILED").
				WithExtension("trace_id", "abc"),
			want: map[string]any{
				"type":       TypeValidation,
				"title":      "Bad Request",
				"status":     float64(400),
				"detail":     "bad color",
				"instance":   "/api/sessions/x",
				"error_code": "VALIDATION_FAILED",
				"trace_id":   "abc",
			},
		},
		{
			name: "extensions cannot shadow standard members",
			problem: NewProblemDetails(http.StatusConflict, TypeConflict, "Conflict", "", "").
				WithExtension("status", 200),
			want: map[string]any{
				"type":   TypeConflict,
				"title":  "Conflict",
				"status": float64(409),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.problem)
			require.NoError(t, err)

			var got map[string]any
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProblemDetails_WithExtension_NilMap(t *testing.T) {
	problem := &ProblemDetails{Status: http.StatusTeapot}
	problem.WithExtension("k", "v")
	assert.Equal(t, "v", problem.Extensions["k"])
}
