package apperrors

import (
	"net/http"
)

// =========================================================================
// Factories
// =========================================================================

// ErrConflict reports a uniqueness violation. Clients of this API treat
// duplicates as bad input, so it is a 400 rather than a 409.
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusBadRequest)
}

// ErrUpstream wraps a storage or mail delivery failure.
func ErrUpstream(err error, domain, message string) *AppError {
	return Wrap(err, CodeUpstreamFailure, domain, message, http.StatusInternalServerError)
}

// ErrUpstreamTimeout is returned when a dependency did not answer within the
// request deadline. It is safe to retry.
func ErrUpstreamTimeout(err error) *AppError {
	return Wrap(err, CodeUpstreamTimeout, "system", "Upstream timeout, please retry", http.StatusServiceUnavailable)
}

// =========================================================================
// Predefined errors
// =========================================================================

var (
	// auth
	ErrActivationTokenMissing = New(CodeValidationFailed, "auth", "Activation token missing", http.StatusBadRequest)
	ErrInvalidActivationToken = New(CodeInvalidToken, "auth", "Invalid or expired activation token", http.StatusBadRequest)
	ErrInvalidActivationCode  = New(CodeOTPMismatch, "auth", "Invalid activation code", http.StatusBadRequest)
	ErrInvalidCredentials     = New(CodeValidationFailed, "auth", "Invalid email or password", http.StatusBadRequest)
	ErrInvalidOldPassword     = New(CodeValidationFailed, "auth", "Invalid old password", http.StatusBadRequest)
	ErrLoginRequired          = NewUnauthenticatedError("Please login to access this resource")
	ErrSessionExpired         = NewUnauthenticatedError("Session expired, please login again")

	// user
	ErrEmailTaken    = New(CodeConflict, "user", "Email already exists", http.StatusBadRequest)
	ErrUserExists    = New(CodeConflict, "user", "User already exists", http.StatusBadRequest)
	ErrUsernameTaken = New(CodeConflict, "user", "Username already taken", http.StatusBadRequest)
	ErrUserNotFound  = New(CodeNotFound, "user", "User not found", http.StatusNotFound)
	ErrCannotFollow  = New(CodeValidationFailed, "user", "You cannot follow yourself", http.StatusBadRequest)

	// post
	ErrPostNotFound     = New(CodeNotFound, "post", "Post not found", http.StatusNotFound)
	ErrCommentsNotFound = New(CodeNotFound, "post", "No comments found for this post", http.StatusNotFound)
	ErrNotPostAuthor    = New(CodeForbidden, "post", "Unauthorized: You can only delete your own posts", http.StatusForbidden)
	ErrImageRequired    = New(CodeValidationFailed, "post", "Image required", http.StatusBadRequest)

	// messaging
	ErrReceiverNotFound = New(CodeNotFound, "message", "Receiver not found", http.StatusNotFound)
	ErrMessageToSelf    = New(CodeValidationFailed, "message", "You cannot message yourself", http.StatusBadRequest)
)
