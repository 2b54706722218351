package models

import "time"

const (
	EnrollmentStatusActive    = "active"
	EnrollmentStatusCompleted = "completed"
	EnrollmentStatusDropped   = "dropped"
)

// Enrollment links an account to a course. At most one row may exist
// per (user, course) pair, enforced by the composite unique index.
type Enrollment struct {
	Base
	UserID          string     `gorm:"index:idx_enrollment_user_course,unique" json:"user_id"`
	CourseID        string     `gorm:"index:idx_enrollment_user_course,unique" json:"course_id"`
	Status          string     `gorm:"default:active" json:"status"`
	ProgressPercent float64    `gorm:"default:0" json:"progress_percent"`
	CompletedAt     *time.Time `json:"completed_at"`
}
