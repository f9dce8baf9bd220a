package apperrors

import "net/http"

// ErrorCode is the machine-readable part of an error response.
type ErrorCode string

const (
	// System
	CodeInternalError   ErrorCode = "INTERNAL_ERROR"
	CodeUpstreamFailure ErrorCode = "UPSTREAM_FAILURE"
	CodeUpstreamTimeout ErrorCode = "UPSTREAM_TIMEOUT"
	CodeRouteNotFound   ErrorCode = "ROUTE_NOT_FOUND"

	// Business logic
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeConflict         ErrorCode = "CONFLICT"

	// Authentication and authorization
	CodeUnauthenticated ErrorCode = "UNAUTHENTICATED"
	CodeForbidden       ErrorCode = "FORBIDDEN"
	CodeInvalidToken    ErrorCode = "INVALID_TOKEN"
	CodeOTPMismatch     ErrorCode = "OTP_MISMATCH"
)

// Conflicts are bad input for this API's clients, hence 400 rather than 409.
var codeStatus = map[ErrorCode]int{
	CodeInternalError:    http.StatusInternalServerError,
	CodeUpstreamFailure:  http.StatusInternalServerError,
	CodeUpstreamTimeout:  http.StatusServiceUnavailable,
	CodeRouteNotFound:    http.StatusNotFound,
	CodeNotFound:         http.StatusNotFound,
	CodeValidationFailed: http.StatusBadRequest,
	CodeConflict:         http.StatusBadRequest,
	CodeUnauthenticated:  http.StatusUnauthorized,
	CodeForbidden:        http.StatusForbidden,
	CodeInvalidToken:     http.StatusBadRequest,
	CodeOTPMismatch:      http.StatusBadRequest,
}

// HTTPStatus is the status an error with this code is rendered with unless
// the error overrides it. Unknown codes render as 500.
func (c ErrorCode) HTTPStatus() int {
	if status, ok := codeStatus[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}
