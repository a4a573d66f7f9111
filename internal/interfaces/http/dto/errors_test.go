package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/henrytires/backend/internal/domain/shared"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		code string
		want int
	}{
		{"not found", shared.CodeNotFound, http.StatusNotFound},
		{"validation", shared.CodeValidation, http.StatusBadRequest},
		{"unauthorized maps to forbidden", shared.CodeUnauthorized, http.StatusForbidden},
		{"business rule", shared.CodeBusinessRule, http.StatusUnprocessableEntity},
		{"concurrency conflict", shared.CodeConcurrency, http.StatusConflict},
		{"invalid state", shared.CodeInvalidState, http.StatusConflict},
		{"bad request", ErrCodeBadRequest, http.StatusBadRequest},
		{"unauthenticated", ErrCodeUnauthenticated, http.StatusUnauthorized},
		{"unknown code falls back to 500", "SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestErrorResponseShape(t *testing.T) {
	resp := NewErrorResponseWithRequestID(shared.CodeConcurrency, "summary was modified", "req-1")
	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	assert.Equal(t, shared.CodeConcurrency, resp.Error.Code)
	assert.Equal(t, "summary was modified", resp.Error.Message)
	assert.Equal(t, "req-1", resp.Error.RequestID)

	ok := NewSuccessResponse(map[string]int{"n": 1})
	assert.True(t, ok.Success)
	assert.Nil(t, ok.Error)
}
