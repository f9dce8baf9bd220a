package handlers

import (
	"net/http"

	"agrocommunity_backend/internal/dto"
	"agrocommunity_backend/internal/middleware"
	"agrocommunity_backend/internal/models"
	"agrocommunity_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	*BaseHandler
	userService services.UserService
}

func NewUserHandler(base *BaseHandler, userService services.UserService) *UserHandler {
	return &UserHandler{
		BaseHandler: base,
		userService: userService,
	}
}

// RegisterRoutes expects rg to be behind the session middleware.
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.Me)
	rg.PUT("/update-user-password", h.UpdatePassword)
	rg.PUT("/update-user-info", h.UpdateInfo)
	rg.GET("/user/:id/follow", h.ToggleFollow)

	admin := rg.Group("", middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.GET("/get-users", h.ListUsers)
		admin.PUT("/update-user-role", h.UpdateRole)
	}
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	profile, err := h.userService.Profile(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": profile})
}

func (h *UserHandler) UpdatePassword(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdatePasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.userService.UpdatePassword(c.Request.Context(), userID, &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password updated successfully"})
}

func (h *UserHandler) UpdateInfo(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateInfoRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateInfo(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User info updated successfully",
		"user":    user,
	})
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

func (h *UserHandler) UpdateRole(c *gin.Context) {
	var req dto.UpdateRoleRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if _, err := h.userService.UpdateRole(c.Request.Context(), &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User role updated successfully"})
}

func (h *UserHandler) ToggleFollow(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	targetID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	following, err := h.userService.ToggleFollow(c.Request.Context(), userID, targetID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	message := "User unfollowed"
	if following {
		message = "User followed"
	}
	c.JSON(http.StatusOK, dto.FollowResponse{Success: true, Message: message, Following: following})
}
