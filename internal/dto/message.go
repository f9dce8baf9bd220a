package dto

type SendMessageRequest struct {
	TextMessage string `json:"textMessage" validate:"required,max=5000"`
}
