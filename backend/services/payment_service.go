package services

import (
	"errors"
	"log"

	"learnspace/backend/models"
	"learnspace/backend/repositories"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

var ErrFreeCourse = errors.New("course is free, enroll directly")

// snapAPI is the slice of snap.Client this service calls. Tests swap in
// a fake so no HTTP leaves the process.
type snapAPI interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

type PaymentService struct {
	Payments    *repositories.PaymentRepository
	Courses     *repositories.CourseRepository
	Enrollments *EnrollmentService
	snap        snapAPI
	logger      *log.Logger
}

func NewPaymentService(
	payments *repositories.PaymentRepository,
	courses *repositories.CourseRepository,
	enrollments *EnrollmentService,
	serverKey string,
	logger *log.Logger,
) *PaymentService {
	client := &snap.Client{}
	client.New(serverKey, midtrans.Sandbox)
	return &PaymentService{
		Payments:    payments,
		Courses:     courses,
		Enrollments: enrollments,
		snap:        client,
		logger:      logger,
	}
}

// Checkout opens a pending transaction for a paid course and returns it
// with the gateway token the client uses to complete payment.
func (s *PaymentService) Checkout(userID, courseID string) (*models.PaymentTransaction, error) {
	course, err := s.Courses.GetByID(courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrNotFound
	}
	if course.Price <= 0 {
		return nil, ErrFreeCourse
	}

	existing, err := s.Enrollments.Enrollments.GetByUserAndCourse(userID, courseID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyEnrolled
	}

	orderID := "order-" + uuid.NewString()
	resp, snapErr := s.snap.CreateTransaction(&snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: course.Price,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:    courseID,
			Price: course.Price,
			Qty:   1,
			Name:  course.Title,
		}},
	})
	if snapErr != nil {
		s.logger.Printf("payments: snap transaction for order %s failed: %v", orderID, snapErr)
		return nil, snapErr
	}

	transaction := &models.PaymentTransaction{
		Base:      models.Base{ID: models.NewID()},
		UserID:    userID,
		CourseID:  courseID,
		OrderID:   orderID,
		Amount:    course.Price,
		Status:    models.PaymentStatusPending,
		SnapToken: resp.Token,
	}
	if err := s.Payments.Create(transaction); err != nil {
		return nil, err
	}
	return transaction, nil
}

// Confirm applies a gateway status notification to the stored
// transaction. Settlement enrolls the buyer; the update is idempotent,
// a repeated notification for an already-paid order changes nothing.
func (s *PaymentService) Confirm(orderID, transactionStatus string) (*models.PaymentTransaction, error) {
	transaction, err := s.Payments.GetByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if transaction == nil {
		return nil, ErrNotFound
	}
	if transaction.Status != models.PaymentStatusPending {
		return transaction, nil
	}

	switch transactionStatus {
	case "settlement", "capture":
		transaction.Status = models.PaymentStatusPaid
	case "deny", "cancel", "expire", "failure":
		transaction.Status = models.PaymentStatusFailed
	default:
		return transaction, nil
	}

	if err := s.Payments.Update(transaction); err != nil {
		return nil, err
	}

	if transaction.Status == models.PaymentStatusPaid {
		if _, err := s.Enrollments.EnrollPaid(transaction.UserID, transaction.CourseID); err != nil && !errors.Is(err, ErrAlreadyEnrolled) {
			s.logger.Printf("payments: enrolling user %s after order %s settled failed: %v", transaction.UserID, orderID, err)
			return nil, err
		}
	}
	return transaction, nil
}

func (s *PaymentService) ListByUser(userID string) ([]models.PaymentTransaction, error) {
	return s.Payments.ListByUser(userID)
}
