package dto

type CreatePostRequest struct {
	Caption string `form:"caption" validate:"max=2200"`
}

type CommentRequest struct {
	Text string `json:"text" validate:"required,max=1000"`
}

type BookmarkResponse struct {
	Success bool   `json:"success"`
	Type    string `json:"type"`
	Message string `json:"message"`
}
