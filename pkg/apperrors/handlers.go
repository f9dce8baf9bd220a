package apperrors

import (
	"context"
	"net/http"

	"agrocommunity_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the uniform failure body.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Code    ErrorCode   `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// GinErrorHandler renders errors for gin handlers.
type GinErrorHandler struct {
	// Debug keeps the message of unexpected errors in responses.
	Debug bool
}

func (h *GinErrorHandler) HandleGinError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	appErr, ok := AsAppError(err)
	switch {
	case Is(err, context.DeadlineExceeded):
		appErr = ErrUpstreamTimeout(err)
		c.Header("Retry-After", "1")
	case !ok:
		appErr = InternalError(err)
		if h.Debug {
			appErr.Details = err.Error()
		}
	}

	if appErr.HTTPCode >= http.StatusInternalServerError {
		logger.CtxWithError(ctx, "Server error", err, "code", appErr.Code, "path", c.Request.URL.Path)
	}

	c.AbortWithStatusJSON(appErr.HTTPCode, ErrorResponse{
		Success: false,
		Message: appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	})
}

var defaultHandler = &GinErrorHandler{}

// SetDebug toggles exposing unexpected error text in responses.
func SetDebug(debug bool) {
	defaultHandler = &GinErrorHandler{Debug: debug}
}

// HandleError renders err with the process-wide handler.
func HandleError(c *gin.Context, err error) {
	defaultHandler.HandleGinError(c, err)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// NoRouteHandler answers unmatched routes with the generic 404 body.
func NoRouteHandler(c *gin.Context) {
	HandleError(c, New(CodeRouteNotFound, "system", "Route "+c.Request.URL.Path+" not found", http.StatusNotFound))
}
