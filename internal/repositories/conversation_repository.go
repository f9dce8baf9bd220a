package repositories

import (
	"context"
	"errors"

	"agrocommunity_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConversationRepository interface {
	// AppendMessage finds or creates the conversation between sender and
	// receiver and stores a new message in it.
	AppendMessage(ctx context.Context, senderID, receiverID, text string) (*models.Message, error)
	// FindMessages returns the messages between a and b oldest first, or an
	// empty slice when they never talked.
	FindMessages(ctx context.Context, a, b string) ([]models.Message, error)
	FindByParticipants(ctx context.Context, a, b string) (*models.Conversation, error)
}

type ConversationRepositoryImpl struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &ConversationRepositoryImpl{db: db}
}

func (r *ConversationRepositoryImpl) AppendMessage(ctx context.Context, senderID, receiverID, text string) (*models.Message, error) {
	var message *models.Message
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conversation, err := findOrCreateConversation(tx, senderID, receiverID)
		if err != nil {
			return err
		}
		message = &models.Message{
			ConversationID: conversation.ID,
			SenderID:       senderID,
			ReceiverID:     receiverID,
			Text:           text,
		}
		return tx.Create(message).Error
	})
	if err != nil {
		return nil, err
	}
	return message, nil
}

// findOrCreateConversation relies on the unique pair index: concurrent
// creators race on INSERT ... ON CONFLICT DO NOTHING and then both read the
// single surviving row.
func findOrCreateConversation(tx *gorm.DB, a, b string) (*models.Conversation, error) {
	low, high := models.ConversationPair(a, b)

	candidate := models.Conversation{ParticipantA: low, ParticipantB: high}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "participant_a"}, {Name: "participant_b"}},
		DoNothing: true,
	}).Create(&candidate).Error
	if err != nil {
		return nil, err
	}

	var conversation models.Conversation
	if err := tx.Where("participant_a = ? AND participant_b = ?", low, high).First(&conversation).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *ConversationRepositoryImpl) FindByParticipants(ctx context.Context, a, b string) (*models.Conversation, error) {
	low, high := models.ConversationPair(a, b)

	var conversation models.Conversation
	err := r.db.WithContext(ctx).Where("participant_a = ? AND participant_b = ?", low, high).First(&conversation).Error
	if err != nil {
		return nil, notFound(err, ErrConversationNotFound)
	}
	return &conversation, nil
}

func (r *ConversationRepositoryImpl) FindMessages(ctx context.Context, a, b string) ([]models.Message, error) {
	conversation, err := r.FindByParticipants(ctx, a, b)
	if errors.Is(err, ErrConversationNotFound) {
		return []models.Message{}, nil
	}
	if err != nil {
		return nil, err
	}

	messages := []models.Message{}
	err = r.db.WithContext(ctx).Where("conversation_id = ?", conversation.ID).
		Order("created_at ASC").Find(&messages).Error
	return messages, err
}
