package repositories

import (
	"agrocommunity_backend/internal/models"

	"gorm.io/gorm"
)

// Repositories groups the stores the services depend on.
type Repositories struct {
	Users         UserRepository
	Posts         PostRepository
	Conversations ConversationRepository
}

func NewGormRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(db),
		Posts:         NewPostRepository(db),
		Conversations: NewConversationRepository(db),
	}
}

// NewMemoryRepositories returns repositories backed by one shared in-process store.
func NewMemoryRepositories() *Repositories {
	store := NewMemoryStore()
	return &Repositories{
		Users:         store.Users(),
		Posts:         store.Posts(),
		Conversations: store.Conversations(),
	}
}

// AutoMigrate creates or updates every table used by the repositories.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Post{},
		&models.PostLike{},
		&models.Comment{},
		&models.Bookmark{},
		&models.Conversation{},
		&models.Message{},
	)
}
