package models

import "time"

const (
	NotificationTargetUser      = "user"
	NotificationTargetCourse    = "course"
	NotificationTargetRole      = "role"
	NotificationTargetBroadcast = "broadcast"
)

// Notification is stored once per recipient so read state is tracked
// per user. TargetType/TargetID record how the fan-out was addressed.
type Notification struct {
	Base
	UserID     string     `gorm:"index" json:"user_id"` // recipient
	Title      string     `gorm:"not null" json:"title"`
	Content    string     `json:"content"`
	Type       string     `json:"type"` // info, warning, achievement, course
	TargetType string     `json:"target_type"`
	TargetID   string     `json:"target_id"`
	CreatedBy  string     `json:"created_by"`
	IsRead     bool       `gorm:"default:false" json:"is_read"`
	ReadAt     *time.Time `json:"read_at"`
}
