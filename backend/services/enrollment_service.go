package services

import (
	"errors"
	"log"
	"time"

	"learnspace/backend/models"
	"learnspace/backend/repositories"
)

var (
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
	ErrPaymentRequired = errors.New("course requires payment")
)

type EnrollmentService struct {
	Enrollments *repositories.EnrollmentRepository
	Courses     *repositories.CourseRepository
	logger      *log.Logger
}

func NewEnrollmentService(
	enrollments *repositories.EnrollmentRepository,
	courses *repositories.CourseRepository,
	logger *log.Logger,
) *EnrollmentService {
	return &EnrollmentService{Enrollments: enrollments, Courses: courses, logger: logger}
}

// Enroll creates the single enrollment row for a (user, course) pair.
// Free courses enroll directly; paid ones must come through a settled
// payment, which calls EnrollPaid instead.
func (s *EnrollmentService) Enroll(userID, courseID string) (*models.Enrollment, error) {
	course, err := s.Courses.GetByID(courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrNotFound
	}
	if course.Price > 0 {
		return nil, ErrPaymentRequired
	}
	return s.create(userID, courseID)
}

// EnrollPaid is invoked by the payment flow once a transaction settled.
func (s *EnrollmentService) EnrollPaid(userID, courseID string) (*models.Enrollment, error) {
	return s.create(userID, courseID)
}

func (s *EnrollmentService) create(userID, courseID string) (*models.Enrollment, error) {
	existing, err := s.Enrollments.GetByUserAndCourse(userID, courseID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyEnrolled
	}

	enrollment := &models.Enrollment{
		Base:     models.Base{ID: models.NewID()},
		UserID:   userID,
		CourseID: courseID,
		Status:   models.EnrollmentStatusActive,
	}
	if err := s.Enrollments.Create(enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// UpdateProgress recomputes the completion percentage from the number
// of finished lessons. Reaching 100% flips the enrollment to completed
// and stamps CompletedAt; the transition only happens once.
func (s *EnrollmentService) UpdateProgress(userID, courseID string, lessonsCompleted int) (*models.Enrollment, error) {
	enrollment, err := s.Enrollments.GetByUserAndCourse(userID, courseID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, ErrNotFound
	}

	totalLessons, err := s.Courses.CountLessons(courseID)
	if err != nil {
		return nil, err
	}

	percent := 100.0
	if totalLessons > 0 {
		percent = float64(lessonsCompleted) / float64(totalLessons) * 100
	}
	if percent > 100 {
		percent = 100
	}

	enrollment.ProgressPercent = percent
	if percent >= 100 && enrollment.Status == models.EnrollmentStatusActive {
		now := time.Now()
		enrollment.Status = models.EnrollmentStatusCompleted
		enrollment.CompletedAt = &now
	}

	if err := s.Enrollments.Update(enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (s *EnrollmentService) ListByUser(userID string) ([]models.Enrollment, error) {
	return s.Enrollments.ListByUser(userID)
}
