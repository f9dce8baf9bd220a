package dto

import "agrocommunity_backend/internal/models"

type UpdatePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}

type UpdateInfoRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type UpdateRoleRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,is-user-role"`
}

// UserProfile is a user with the ids of its relations.
type UserProfile struct {
	*models.User
	Followers []string `json:"followers"`
	Following []string `json:"following"`
	Posts     []string `json:"posts"`
	Bookmarks []string `json:"bookmarks"`
}

type FollowResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Following bool   `json:"following"`
}
