package handlers

import (
	"net/http"

	"agrocommunity_backend/internal/dto"
	"agrocommunity_backend/internal/middleware"
	"agrocommunity_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	*BaseHandler
	authService services.AuthService
	session     *middleware.SessionMiddleware
}

func NewAuthHandler(base *BaseHandler, authService services.AuthService, session *middleware.SessionMiddleware) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		authService: authService,
		session:     session,
	}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/registration", h.Register)
	rg.POST("/activate-user", h.Activate)
	rg.POST("/resend-otp", h.ResendOTP)
	rg.POST("/login", h.Login)
	rg.GET("/logout", h.session.Authenticate(), h.Logout)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	token, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ActivationTicketResponse{
		Success:         true,
		Message:         "Please check your email: " + req.Email + " to activate your account!",
		ActivationToken: token,
	})
}

func (h *AuthHandler) Activate(c *gin.Context) {
	var req dto.ActivateRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.authService.Activate(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Account activated successfully",
		"user":    user,
	})
}

func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req dto.ResendOTPRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	token, err := h.authService.ResendOTP(c.Request.Context(), req.ActivationToken)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ActivationTicketResponse{
		Success:         true,
		Message:         "OTP resent successfully",
		ActivationToken: token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, session, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.session.SetSessionCookies(c, session.AccessToken, session.RefreshToken)
	c.JSON(http.StatusOK, dto.SessionResponse{
		Success:     true,
		User:        user,
		AccessToken: session.AccessToken,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.session.ClearSessionCookies(c)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out successfully",
	})
}
