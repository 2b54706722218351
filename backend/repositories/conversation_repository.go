package repositories

import (
	"errors"
	"time"

	"learnspace/backend/cache"
	"learnspace/backend/config"
	"learnspace/backend/models"

	"gorm.io/gorm"
)

type ConversationRepository struct {
	DB         *gorm.DB
	Cache      cache.Store
	defaultTTL time.Duration
}

func NewConversationRepository(db *gorm.DB, store cache.Store, cfg *config.Config) *ConversationRepository {
	return &ConversationRepository{
		DB:         db,
		Cache:      store,
		defaultTTL: time.Duration(cfg.CacheDefaultTTLMinutes) * time.Minute,
	}
}

func (r *ConversationRepository) GetByID(conversationID string) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := r.DB.First(&conversation, "id = ?", conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conversation, nil
}

// GetOrCreate returns the conversation between two accounts regardless
// of parameter order, creating it on first contact.
func (r *ConversationRepository) GetOrCreate(userA, userB string) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.DB.First(&conversation,
		"(participant_a_id = ? AND participant_b_id = ?) OR (participant_a_id = ? AND participant_b_id = ?)",
		userA, userB, userB, userA).Error
	if err == nil {
		return &conversation, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conversation = models.Conversation{ParticipantAID: userA, ParticipantBID: userB}
	if err := r.DB.Create(&conversation).Error; err != nil {
		return nil, err
	}
	r.Cache.Delete(cache.UserConversationsKey(userA), cache.UserConversationsKey(userB))
	return &conversation, nil
}

func (r *ConversationRepository) ListByUser(userID string) ([]models.Conversation, error) {
	key := cache.UserConversationsKey(userID)
	if cached, ok := r.Cache.Get(key); ok {
		return cached.([]models.Conversation), nil
	}

	var conversations []models.Conversation
	err := r.DB.
		Where("participant_a_id = ? OR participant_b_id = ?", userID, userID).
		Order("last_message_at DESC NULLS LAST").
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}

	if len(conversations) > 0 {
		r.Cache.Set(key, conversations, r.defaultTTL)
	}
	return conversations, nil
}

// AppendMessage inserts the message and moves the conversation's
// last-message pointer in a single transaction. The pointer must always
// name the most recently created message, so a partial write is never
// visible.
func (r *ConversationRepository) AppendMessage(message *models.MessageEntity) error {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}

		var conversation models.Conversation
		if err := tx.First(&conversation, "id = ?", message.ConversationID).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		return tx.Model(&conversation).Updates(map[string]interface{}{
			"last_message_id": message.ID,
			"last_message_at": now,
		}).Error
	})
	if err != nil {
		return err
	}

	r.Cache.Delete(
		cache.UserConversationsKey(message.SenderID),
		cache.UserConversationsKey(message.ReceiverID),
	)
	return nil
}

func (r *ConversationRepository) GetMessage(messageID string) (*models.MessageEntity, error) {
	var message models.MessageEntity
	if err := r.DB.First(&message, "id = ?", messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

// MessagesPage returns one page of a conversation's history, newest
// first. Clients sort on created_at; the server gives no cross-sender
// ordering guarantee beyond the assigned timestamps.
func (r *ConversationRepository) MessagesPage(conversationID string, page, pageSize int) ([]models.MessageEntity, error) {
	var messages []models.MessageEntity
	err := r.DB.Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&messages).Error
	return messages, err
}

// MarkRead flips a message to read if and only if userID is the
// designated receiver and the message is still unread. The returned
// bool reports whether this call changed anything; a repeat call is a
// no-op and must not re-trigger read receipts.
func (r *ConversationRepository) MarkRead(messageID, userID string) (*models.MessageEntity, bool, error) {
	message, err := r.GetMessage(messageID)
	if err != nil || message == nil {
		return nil, false, err
	}
	if message.ReceiverID != userID || message.IsRead {
		return message, false, nil
	}

	now := time.Now().UTC()
	err = r.DB.Model(message).Updates(map[string]interface{}{
		"is_read": true,
		"read_at": now,
	}).Error
	if err != nil {
		return nil, false, err
	}
	message.IsRead = true
	message.ReadAt = &now
	return message, true, nil
}
