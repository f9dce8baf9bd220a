package models

// Conversation is the single thread between two users. Participants are
// stored in canonical order, see ConversationPair.
type Conversation struct {
	BaseModel
	ParticipantA string    `gorm:"type:uuid;not null;uniqueIndex:idx_conversation_pair" json:"participantA"`
	ParticipantB string    `gorm:"type:uuid;not null;uniqueIndex:idx_conversation_pair" json:"participantB"`
	Messages     []Message `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

type Message struct {
	BaseModel
	ConversationID string `gorm:"type:uuid;not null;index" json:"conversationId"`
	SenderID       string `gorm:"type:uuid;not null" json:"senderId"`
	ReceiverID     string `gorm:"type:uuid;not null" json:"receiverId"`
	Text           string `gorm:"type:text;not null" json:"message"`
}

// ConversationPair orders two participant ids so that (a, b) and (b, a)
// map to the same conversation.
func ConversationPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}
