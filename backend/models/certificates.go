package models

import "time"

type Certificate struct {
	Base
	UserID     string    `gorm:"index" json:"user_id"`
	CourseID   string    `gorm:"index" json:"course_id"`
	Code       string    `gorm:"uniqueIndex" json:"code"` // public verification code
	CourseName string    `json:"course_name"`
	IssuedAt   time.Time `json:"issued_at"`
}
