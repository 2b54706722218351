package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"learnspace/backend/models"
	"learnspace/backend/repositories"

	"github.com/google/uuid"
)

var ErrCourseNotCompleted = errors.New("course is not completed")

type CertificateService struct {
	Certificates *repositories.CertificateRepository
	Enrollments  *repositories.EnrollmentRepository
	Courses      *repositories.CourseRepository
	logger       *log.Logger
}

func NewCertificateService(
	certificates *repositories.CertificateRepository,
	enrollments *repositories.EnrollmentRepository,
	courses *repositories.CourseRepository,
	logger *log.Logger,
) *CertificateService {
	return &CertificateService{
		Certificates: certificates,
		Enrollments:  enrollments,
		Courses:      courses,
		logger:       logger,
	}
}

// Issue creates a certificate for a completed enrollment. Issuing twice
// for the same (user, course) returns the existing certificate.
func (s *CertificateService) Issue(userID, courseID string) (*models.Certificate, error) {
	existing, err := s.Certificates.GetByUserAndCourse(userID, courseID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	enrollment, err := s.Enrollments.GetByUserAndCourse(userID, courseID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, ErrNotFound
	}
	if enrollment.Status != models.EnrollmentStatusCompleted {
		return nil, ErrCourseNotCompleted
	}

	course, err := s.Courses.GetByID(courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrNotFound
	}

	certificate := &models.Certificate{
		Base:       models.Base{ID: models.NewID()},
		UserID:     userID,
		CourseID:   courseID,
		Code:       newCertificateCode(),
		CourseName: course.Title,
		IssuedAt:   time.Now(),
	}
	if err := s.Certificates.Create(certificate); err != nil {
		return nil, err
	}

	s.logger.Printf("certificate %s issued to user %s for course %s", certificate.Code, userID, courseID)
	return certificate, nil
}

func (s *CertificateService) ListByUser(userID string) ([]models.Certificate, error) {
	return s.Certificates.ListByUser(userID)
}

// Verify resolves a public certificate code. Unknown codes are not an
// error, just a nil result.
func (s *CertificateService) Verify(code string) (*models.Certificate, error) {
	return s.Certificates.GetByCode(strings.ToUpper(strings.TrimSpace(code)))
}

func newCertificateCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "CERT-" + strings.ToUpper(raw[:12])
}
