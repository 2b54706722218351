package models

import "time"

// Conversation is a two-party message channel. LastMessageID is a
// denormalized pointer to the newest message and is updated in the
// same transaction that inserts the message.
type Conversation struct {
	Base
	ParticipantAID string     `gorm:"index" json:"participant_a_id"`
	ParticipantBID string     `gorm:"index" json:"participant_b_id"`
	LastMessageID  *string    `json:"last_message_id"`
	LastMessageAt  *time.Time `json:"last_message_at"`
}

type MessageEntity struct {
	Base
	ConversationID string     `gorm:"index" json:"conversation_id"`
	SenderID       string     `gorm:"index" json:"sender_id"`
	ReceiverID     string     `gorm:"index" json:"receiver_id"`
	Content        string     `gorm:"not null" json:"content"`
	MessageType    string     `gorm:"default:TEXT" json:"message_type"`
	IsRead         bool       `gorm:"default:false" json:"is_read"`
	ReadAt         *time.Time `json:"read_at"`
}
