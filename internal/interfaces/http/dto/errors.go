package dto

import (
	"net/http"

	"github.com/henrytires/backend/internal/domain/shared"
)

// Transport-level error codes for failures that never reach the application
// layer. Domain errors keep their own codes from the shared package.
const (
	// ErrCodeBadRequest is used for malformed request bodies and parameters
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeUnauthenticated is used when no valid token accompanies the request
	ErrCodeUnauthenticated = "UNAUTHENTICATED"
	// ErrCodeInternal is used for unexpected server errors
	ErrCodeInternal = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes. Authorization
// failures map to 403: the caller is known, they just may not do this.
var errorCodeHTTPStatus = map[string]int{
	shared.CodeNotFound:     http.StatusNotFound,
	shared.CodeValidation:   http.StatusBadRequest,
	shared.CodeUnauthorized: http.StatusForbidden,
	shared.CodeBusinessRule: http.StatusUnprocessableEntity,
	shared.CodeConcurrency:  http.StatusConflict,
	shared.CodeInvalidState: http.StatusConflict,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeUnauthenticated: http.StatusUnauthorized,
	ErrCodeInternal:        http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
