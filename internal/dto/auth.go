package dto

import "agrocommunity_backend/internal/models"

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Username string `json:"username" validate:"required,min=3,max=30,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type ActivateRequest struct {
	ActivationToken string `json:"activation_token"`
	ActivationCode  string `json:"activation_code" validate:"required,otp"`
}

type ResendOTPRequest struct {
	ActivationToken string `json:"activation_token"`
}

type ActivationTicketResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	ActivationToken string `json:"activationToken"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the token pair issued at login.
type Session struct {
	AccessToken  string
	RefreshToken string
}

type SessionResponse struct {
	Success     bool         `json:"success"`
	User        *models.User `json:"user"`
	AccessToken string       `json:"accessToken"`
}
