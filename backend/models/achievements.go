package models

import "time"

type Achievement struct {
	Base
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"` // course_completion, quiz_master, streak
	IconURL     string `json:"icon_url"`
}

type UserAchievement struct {
	Base
	UserID        string      `gorm:"index" json:"user_id"`
	AchievementID string      `gorm:"index" json:"achievement_id"`
	ReceivedAt    time.Time   `json:"received_at"`
	Achievement   Achievement `json:"achievement"`
}
