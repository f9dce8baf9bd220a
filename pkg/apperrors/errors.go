package apperrors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// AppError is the error type every handler knows how to render. Predefined
// values are shared, so derive copies with WithDetails instead of mutating.
type AppError struct {
	Code     ErrorCode
	Domain   string
	Message  string
	Details  interface{}
	Err      error
	HTTPCode int
}

func (e *AppError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Domain, e.Message)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another AppError with the same code and message, so a copy made
// by WithDetails or Wrap still satisfies errors.Is against the original.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// WithDetails returns a copy of e carrying details.
func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// New builds an AppError. A zero httpCode falls back to the code's default.
func New(code ErrorCode, domain, message string, httpCode int) *AppError {
	if httpCode == 0 {
		httpCode = code.HTTPStatus()
	}
	return &AppError{
		Code:     code,
		Domain:   domain,
		Message:  message,
		HTTPCode: httpCode,
	}
}

// Wrap is New with an underlying cause.
func Wrap(err error, code ErrorCode, domain, message string, httpCode int) *AppError {
	appErr := New(code, domain, message, httpCode)
	appErr.Err = err
	return appErr
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// ============================================
// Generic constructors
// ============================================

func InternalError(err error) *AppError {
	return Wrap(err, CodeInternalError, "system", "Internal server error", 0)
}

func ValidationError(details interface{}) *AppError {
	return New(CodeValidationFailed, "validation", "Validation failed", 0).WithDetails(details)
}

func NewUnauthenticatedError(message string) *AppError {
	return New(CodeUnauthenticated, "auth", message, 0)
}

func NewForbiddenError(message string) *AppError {
	return New(CodeForbidden, "auth", message, 0)
}

func NewBadRequestError(message string) *AppError {
	return New(CodeValidationFailed, "request", message, 0)
}

func NewNotFoundError(domain, message string) *AppError {
	return New(CodeNotFound, domain, message, 0)
}
