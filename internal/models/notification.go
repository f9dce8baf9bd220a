package models

type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationDislike NotificationType = "dislike"
	NotificationComment NotificationType = "comment"
	NotificationFollow  NotificationType = "follow"
)

// Notification is pushed over the realtime channel only, never stored.
type Notification struct {
	Type        NotificationType `json:"type"`
	UserID      string           `json:"userId"`
	UserDetails Public           `json:"userDetails"`
	PostID      string           `json:"postId,omitempty"`
	Message     string           `json:"message"`
}
