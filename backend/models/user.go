package models

import "time"

type Account struct {
	Base
	Username     string     `gorm:"uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	FullName     string     `json:"full_name"`
	Role         string     `gorm:"default:learner" json:"role"` // learner, instructor, admin
	AvatarURL    string     `json:"avatar_url"`
	IsBanned     bool       `gorm:"default:false" json:"is_banned"`
	LastLogin    *time.Time `json:"last_login"`
}

type LoginHistory struct {
	Base
	UserID    string    `gorm:"index" json:"user_id"`
	LoginTime time.Time `json:"login_time"`
	IPAddress string    `json:"ip_address"`
}
