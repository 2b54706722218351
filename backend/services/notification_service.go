package services

import (
	"log"

	"learnspace/backend/models"
	"learnspace/backend/repositories"
)

type NotificationService struct {
	Notifications *repositories.NotificationRepository
	Users         *repositories.UserRepository
	Enrollments   *repositories.EnrollmentRepository
	logger        *log.Logger
}

func NewNotificationService(
	notifications *repositories.NotificationRepository,
	users *repositories.UserRepository,
	enrollments *repositories.EnrollmentRepository,
	logger *log.Logger,
) *NotificationService {
	return &NotificationService{
		Notifications: notifications,
		Users:         users,
		Enrollments:   enrollments,
		logger:        logger,
	}
}

type NotificationInput struct {
	Title      string
	Content    string
	Type       string
	TargetType string // user, course, role, broadcast
	TargetID   string // user id, course id or role name
	CreatedBy  string
}

// Create fans a notification out to one row per recipient so read
// state is tracked individually. It returns the created rows; pushing
// them over the hub is the caller's concern and happens only after
// this returns successfully.
func (s *NotificationService) Create(input NotificationInput) ([]models.Notification, error) {
	recipients, err := s.resolveRecipients(input.TargetType, input.TargetID)
	if err != nil {
		return nil, err
	}

	notifications := make([]models.Notification, 0, len(recipients))
	for _, userID := range recipients {
		notifications = append(notifications, models.Notification{
			Base:       models.Base{ID: models.NewID()},
			UserID:     userID,
			Title:      input.Title,
			Content:    input.Content,
			Type:       input.Type,
			TargetType: input.TargetType,
			TargetID:   input.TargetID,
			CreatedBy:  input.CreatedBy,
		})
	}

	if err := s.Notifications.CreateBatch(notifications); err != nil {
		s.logger.Printf("notifications: creating %d rows failed: %v", len(notifications), err)
		return nil, err
	}
	return notifications, nil
}

func (s *NotificationService) resolveRecipients(targetType, targetID string) ([]string, error) {
	switch targetType {
	case models.NotificationTargetUser:
		return []string{targetID}, nil
	case models.NotificationTargetCourse:
		return s.Enrollments.ListUserIDsByCourse(targetID)
	case models.NotificationTargetRole:
		return s.Users.ListIDsByRole(targetID)
	case models.NotificationTargetBroadcast:
		return s.Users.ListAllIDs()
	default:
		return nil, ErrNotFound
	}
}

// UnreadCount is always recomputed from persisted state, never
// incremented in place, so it cannot drift.
func (s *NotificationService) UnreadCount(userID string) (int64, error) {
	return s.Notifications.UnreadCount(userID)
}

func (s *NotificationService) ListByUser(userID string, page, pageSize int) ([]models.Notification, error) {
	return s.Notifications.ListByUser(userID, page, pageSize)
}

func (s *NotificationService) MarkRead(notificationID, userID string) (bool, error) {
	return s.Notifications.MarkRead(notificationID, userID)
}

func (s *NotificationService) MarkAllRead(userID string) error {
	return s.Notifications.MarkAllRead(userID)
}
