package services

import (
	"context"
	"errors"
	"strings"

	"agrocommunity_backend/internal/logger"
	"agrocommunity_backend/internal/models"
	"agrocommunity_backend/internal/repositories"
	"agrocommunity_backend/pkg/apperrors"
	"agrocommunity_backend/ws"
)

type MessageService interface {
	// DeliverMessage stores a message in the conversation between sender
	// and receiver and pushes it to the receiver if online.
	DeliverMessage(ctx context.Context, senderID, receiverID, text string) (*models.Message, error)
	GetMessages(ctx context.Context, userID, otherID string) ([]models.Message, error)
}

type MessageServiceImpl struct {
	conversations repositories.ConversationRepository
	users         repositories.UserRepository
	dispatcher    *Dispatcher
}

func NewMessageService(
	conversations repositories.ConversationRepository,
	users repositories.UserRepository,
	dispatcher *Dispatcher,
) MessageService {
	return &MessageServiceImpl{
		conversations: conversations,
		users:         users,
		dispatcher:    dispatcher,
	}
}

func (s *MessageServiceImpl) DeliverMessage(ctx context.Context, senderID, receiverID, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewBadRequestError("Message text is required")
	}
	if senderID == receiverID {
		return nil, apperrors.ErrMessageToSelf
	}

	if _, err := s.users.FindByID(ctx, receiverID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrReceiverNotFound
		}
		return nil, storeFailure(err, "message")
	}

	message, err := s.conversations.AppendMessage(ctx, senderID, receiverID, text)
	if err != nil {
		return nil, storeFailure(err, "message")
	}

	logger.CtxDebug(ctx, "Message stored", "conversation_id", message.ConversationID, "receiver", receiverID)
	s.dispatcher.Push(ctx, receiverID, ws.EventNewMessage, message)
	return message, nil
}

func (s *MessageServiceImpl) GetMessages(ctx context.Context, userID, otherID string) ([]models.Message, error) {
	messages, err := s.conversations.FindMessages(ctx, userID, otherID)
	if err != nil {
		return nil, storeFailure(err, "message")
	}
	return messages, nil
}
