package services

import (
	"errors"
	"log"
	"strings"

	"learnspace/backend/models"
	"learnspace/backend/repositories"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrEmptyContent = errors.New("content is empty")
)

type ChatService struct {
	Conversations *repositories.ConversationRepository
	Users         *repositories.UserRepository
	logger        *log.Logger
}

func NewChatService(conversations *repositories.ConversationRepository, users *repositories.UserRepository, logger *log.Logger) *ChatService {
	return &ChatService{Conversations: conversations, Users: users, logger: logger}
}

// SendMessage persists a new message and moves the conversation's
// last-message pointer in one transaction. It returns the stored
// message only after the write landed; callers must not broadcast
// anything on error. The receiver is always the conversation's other
// participant, never client input.
func (s *ChatService) SendMessage(conversationID, senderID, content string) (*models.MessageEntity, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	conversation, err := s.Conversations.GetByID(conversationID)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrNotFound
	}
	if !isParticipant(conversation, senderID) {
		return nil, ErrForbidden
	}

	message := &models.MessageEntity{
		Base:           models.Base{ID: models.NewID()},
		ConversationID: conversationID,
		SenderID:       senderID,
		ReceiverID:     otherParticipant(conversation, senderID),
		Content:        content,
		MessageType:    "TEXT",
	}

	if err := s.Conversations.AppendMessage(message); err != nil {
		s.logger.Printf("chat: persisting message in conversation %s failed: %v", conversationID, err)
		return nil, err
	}
	return message, nil
}

// MarkMessageAsRead transitions a message to read. Only the designated
// receiver may do this; repeating the call on an already-read message
// is a no-op and reports changed=false so read receipts fire once.
func (s *ChatService) MarkMessageAsRead(messageID, userID string) (*models.MessageEntity, bool, error) {
	return s.Conversations.MarkRead(messageID, userID)
}

// EnsureConversation returns the conversation with the given account,
// creating it on first contact. The peer must exist; otherwise every
// typo would mint a conversation nobody can ever answer.
func (s *ChatService) EnsureConversation(userID, otherUserID string) (*models.Conversation, error) {
	peer, err := s.Users.GetByID(otherUserID)
	if err != nil {
		return nil, err
	}
	if peer == nil {
		return nil, ErrNotFound
	}
	return s.Conversations.GetOrCreate(userID, otherUserID)
}

func (s *ChatService) ListConversations(userID string) ([]models.Conversation, error) {
	return s.Conversations.ListByUser(userID)
}

func (s *ChatService) History(conversationID, userID string, page, pageSize int) ([]models.MessageEntity, error) {
	conversation, err := s.Conversations.GetByID(conversationID)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrNotFound
	}
	if !isParticipant(conversation, userID) {
		return nil, ErrForbidden
	}
	return s.Conversations.MessagesPage(conversationID, page, pageSize)
}

func isParticipant(conversation *models.Conversation, userID string) bool {
	return conversation.ParticipantAID == userID || conversation.ParticipantBID == userID
}

func otherParticipant(conversation *models.Conversation, userID string) string {
	if conversation.ParticipantAID == userID {
		return conversation.ParticipantBID
	}
	return conversation.ParticipantAID
}
