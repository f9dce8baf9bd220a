package handlers

import (
	"errors"

	"agrocommunity_backend/internal/logger"
	"agrocommunity_backend/internal/validator"
	"agrocommunity_backend/pkg/apperrors"
	"agrocommunity_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
)

// ============================================================================
// 1. Base handler
// ============================================================================

type BaseHandler struct {
	validator *validator.Validator
}

func NewBaseHandler(v *validator.Validator) *BaseHandler {
	return &BaseHandler{
		validator: v,
	}
}

// ============================================================================
// 2. Binding and validation
// ============================================================================

func (h *BaseHandler) BindAndValidate_JSON(c *gin.Context, obj interface{}) bool {
	return h.bindAndValidate(c, obj, binding.JSON, "Invalid request body")
}

// BindAndValidate_Form binds multipart and urlencoded fields.
func (h *BaseHandler) BindAndValidate_Form(c *gin.Context, obj interface{}) bool {
	return h.bindAndValidate(c, obj, binding.Default(c.Request.Method, c.ContentType()), "Invalid form data")
}

func (h *BaseHandler) bindAndValidate(c *gin.Context, obj interface{}, b binding.Binding, failure string) bool {
	if err := c.ShouldBindWith(obj, b); err != nil {
		logger.CtxWarn(c.Request.Context(), "Request binding failed",
			"binding", b.Name(),
			"error", err.Error(),
			"path", c.Request.URL.Path,
		)
		apperrors.HandleError(c, apperrors.NewBadRequestError(failure+": "+err.Error()))
		return false
	}
	return h.validate(c, obj)
}

func (h *BaseHandler) validate(c *gin.Context, obj interface{}) bool {
	err := h.validator.Validate(obj)
	if err == nil {
		return true
	}

	var vErr *validator.ValidationError
	if !errors.As(err, &vErr) {
		apperrors.HandleError(c, apperrors.InternalError(err))
		return false
	}
	logger.CtxWarn(c.Request.Context(), "Validation failed", "errors", vErr.Errors, "path", c.Request.URL.Path)
	apperrors.HandleError(c, apperrors.ValidationError(vErr.Errors))
	return false
}

// ============================================================================
// 3. Errors
// ============================================================================

func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var appErr *apperrors.AppError
	if apperrors.As(err, &appErr) && appErr.HTTPCode < 500 {
		logger.CtxWarn(ctx, "Service error",
			"error", appErr.Message,
			"details", appErr.Details,
			"path", c.Request.URL.Path,
		)
	}
	apperrors.HandleError(c, err)
}

// ============================================================================
// 4. Helpers
// ============================================================================

func (h *BaseHandler) GetAndAuthorizeUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(contextkeys.UserIDKey)
	if userID == "" {
		logger.CtxWarn(c.Request.Context(), "Unauthorized access: userID not found in context",
			"path", c.Request.URL.Path,
			"ip", c.ClientIP(),
		)
		apperrors.HandleError(c, apperrors.ErrLoginRequired)
		return "", false
	}
	return userID, true
}

// ParseIDParam reads a uuid path parameter.
func ParseIDParam(c *gin.Context, key string) (string, bool) {
	value := c.Param(key)
	if err := uuid.Validate(value); err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid path parameter: "+key))
		return "", false
	}
	return value, true
}
