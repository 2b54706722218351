package repositories

import (
	"time"

	"learnspace/backend/models"

	"gorm.io/gorm"
)

// NotificationRepository is deliberately uncached: unread counts are
// always recomputed from persisted state so they cannot drift.
type NotificationRepository struct {
	DB *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) CreateBatch(notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.DB.Create(&notifications).Error
}

func (r *NotificationRepository) ListByUser(userID string, page, pageSize int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&notifications).Error
	return notifications, err
}

func (r *NotificationRepository) UnreadCount(userID string) (int64, error) {
	var count int64
	err := r.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead returns false when the notification does not exist, belongs
// to another user, or was already read.
func (r *NotificationRepository) MarkRead(notificationID, userID string) (bool, error) {
	result := r.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND is_read = ?", notificationID, userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now().UTC()})
	return result.RowsAffected > 0, result.Error
}

func (r *NotificationRepository) MarkAllRead(userID string) error {
	return r.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now().UTC()}).Error
}
