package services

import (
	"fmt"
	"testing"

	"learnspace/backend/cache"
	"learnspace/backend/config"
	"learnspace/backend/models"
	"learnspace/backend/repositories"
	"learnspace/backend/utils"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	db            *gorm.DB
	users         *repositories.UserRepository
	courses       *repositories.CourseRepository
	enrollments   *repositories.EnrollmentRepository
	notifications *repositories.NotificationRepository
	certificates  *repositories.CertificateRepository
	payments      *repositories.PaymentRepository
}

func setup(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))

	cfg := &config.Config{CacheDefaultTTLMinutes: 5, CacheLongTTLMinutes: 15}
	store := cache.NewMemoryStore()

	return &fixture{
		db:            db,
		users:         repositories.NewUserRepository(db, store, cfg),
		courses:       repositories.NewCourseRepository(db, store, cfg),
		enrollments:   repositories.NewEnrollmentRepository(db, store, cfg),
		notifications: repositories.NewNotificationRepository(db),
		certificates:  repositories.NewCertificateRepository(db, store, cfg),
		payments:      repositories.NewPaymentRepository(db),
	}
}

func (fx *fixture) account(t *testing.T, username, role string) *models.Account {
	t.Helper()
	account := &models.Account{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, fx.db.Create(account).Error)
	return account
}

func (fx *fixture) course(t *testing.T, title string, price int64) *models.Course {
	t.Helper()
	course := &models.Course{Title: title, AuthorID: "author", AccessLevel: "public", Price: price}
	require.NoError(t, fx.db.Create(course).Error)
	return course
}

func (fx *fixture) lessons(t *testing.T, courseID string, count int) {
	t.Helper()
	chapter := &models.Chapter{CourseID: courseID, Title: "ch", ChapterOrder: 1}
	require.NoError(t, fx.db.Create(chapter).Error)
	for i := 0; i < count; i++ {
		lesson := &models.Lesson{ChapterID: chapter.ID, Title: fmt.Sprintf("l%d", i), LessonOrder: i + 1}
		require.NoError(t, fx.db.Create(lesson).Error)
	}
}

func TestEnsureConversationRequiresExistingPeer(t *testing.T) {
	fx := setup(t)
	cfg := &config.Config{CacheDefaultTTLMinutes: 5, CacheLongTTLMinutes: 15}
	conversations := repositories.NewConversationRepository(fx.db, cache.NewMemoryStore(), cfg)
	service := NewChatService(conversations, fx.users, utils.InitLogger())

	alice := fx.account(t, "alice", "learner")

	_, err := service.EnsureConversation(alice.ID, "no-such-user")
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	require.NoError(t, fx.db.Model(&models.Conversation{}).Count(&count).Error)
	assert.Equal(t, int64(0), count, "a conversation with an unknown account must not be created")

	bob := fx.account(t, "bob", "learner")
	conversation, err := service.EnsureConversation(alice.ID, bob.ID)
	require.NoError(t, err)
	require.NotNil(t, conversation)
}

func TestNotificationFanOutToCourse(t *testing.T) {
	fx := setup(t)
	service := NewNotificationService(fx.notifications, fx.users, fx.enrollments, utils.InitLogger())

	course := fx.course(t, "Go 101", 0)
	for _, name := range []string{"a", "b", "c"} {
		account := fx.account(t, name, "learner")
		enrollment := &models.Enrollment{UserID: account.ID, CourseID: course.ID, Status: models.EnrollmentStatusActive}
		require.NoError(t, fx.db.Create(enrollment).Error)
	}

	created, err := service.Create(NotificationInput{
		Title:      "New chapter",
		TargetType: models.NotificationTargetCourse,
		TargetID:   course.ID,
		CreatedBy:  "author",
	})
	require.NoError(t, err)
	assert.Len(t, created, 3, "one row per enrolled user")

	for _, notification := range created {
		count, err := service.UnreadCount(notification.UserID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	}
}

func TestNotificationFanOutSkipsDroppedEnrollments(t *testing.T) {
	fx := setup(t)
	service := NewNotificationService(fx.notifications, fx.users, fx.enrollments, utils.InitLogger())

	course := fx.course(t, "Go 101", 0)
	active := fx.account(t, "active", "learner")
	dropped := fx.account(t, "dropped", "learner")
	require.NoError(t, fx.db.Create(&models.Enrollment{UserID: active.ID, CourseID: course.ID, Status: models.EnrollmentStatusActive}).Error)
	require.NoError(t, fx.db.Create(&models.Enrollment{UserID: dropped.ID, CourseID: course.ID, Status: models.EnrollmentStatusDropped}).Error)

	created, err := service.Create(NotificationInput{
		Title:      "hello",
		TargetType: models.NotificationTargetCourse,
		TargetID:   course.ID,
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, active.ID, created[0].UserID)
}

func TestNotificationFanOutToRole(t *testing.T) {
	fx := setup(t)
	service := NewNotificationService(fx.notifications, fx.users, fx.enrollments, utils.InitLogger())

	fx.account(t, "teach1", "instructor")
	fx.account(t, "teach2", "instructor")
	fx.account(t, "student", "learner")

	created, err := service.Create(NotificationInput{
		Title:      "Instructor meeting",
		TargetType: models.NotificationTargetRole,
		TargetID:   "instructor",
	})
	require.NoError(t, err)
	assert.Len(t, created, 2)
}

func TestNotificationBroadcastReachesEveryone(t *testing.T) {
	fx := setup(t)
	service := NewNotificationService(fx.notifications, fx.users, fx.enrollments, utils.InitLogger())

	fx.account(t, "one", "learner")
	fx.account(t, "two", "instructor")
	banned := fx.account(t, "banned", "learner")
	banned.IsBanned = true
	require.NoError(t, fx.db.Save(banned).Error)

	created, err := service.Create(NotificationInput{
		Title:      "Maintenance window",
		TargetType: models.NotificationTargetBroadcast,
	})
	require.NoError(t, err)
	assert.Len(t, created, 2, "banned accounts are excluded from broadcasts")
}

func TestNotificationUnknownTarget(t *testing.T) {
	fx := setup(t)
	service := NewNotificationService(fx.notifications, fx.users, fx.enrollments, utils.InitLogger())

	_, err := service.Create(NotificationInput{Title: "x", TargetType: "galaxy"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnrollFreeCourse(t *testing.T) {
	fx := setup(t)
	service := NewEnrollmentService(fx.enrollments, fx.courses, utils.InitLogger())

	course := fx.course(t, "Free Go", 0)

	enrollment, err := service.Enroll("user-1", course.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusActive, enrollment.Status)

	_, err = service.Enroll("user-1", course.ID)
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)
}

func TestEnrollPaidCourseRequiresPayment(t *testing.T) {
	fx := setup(t)
	service := NewEnrollmentService(fx.enrollments, fx.courses, utils.InitLogger())

	course := fx.course(t, "Paid Go", 5000)

	_, err := service.Enroll("user-1", course.ID)
	assert.ErrorIs(t, err, ErrPaymentRequired)
}

func TestProgressCompletionFlipsOnce(t *testing.T) {
	fx := setup(t)
	service := NewEnrollmentService(fx.enrollments, fx.courses, utils.InitLogger())

	course := fx.course(t, "Go 101", 0)
	fx.lessons(t, course.ID, 4)

	_, err := service.Enroll("user-1", course.ID)
	require.NoError(t, err)

	halfway, err := service.UpdateProgress("user-1", course.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusActive, halfway.Status)
	assert.InDelta(t, 50, halfway.ProgressPercent, 0.01)

	done, err := service.UpdateProgress("user-1", course.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	completedAt := *done.CompletedAt

	// A later update does not re-stamp the completion time.
	again, err := service.UpdateProgress("user-1", course.ID, 4)
	require.NoError(t, err)
	require.NotNil(t, again.CompletedAt)
	assert.Equal(t, completedAt.Unix(), again.CompletedAt.Unix())
}

func TestCertificateIssueRequiresCompletion(t *testing.T) {
	fx := setup(t)
	log := utils.InitLogger()
	enrollmentService := NewEnrollmentService(fx.enrollments, fx.courses, log)
	certificateService := NewCertificateService(fx.certificates, fx.enrollments, fx.courses, log)

	course := fx.course(t, "Go 101", 0)
	fx.lessons(t, course.ID, 2)

	_, err := enrollmentService.Enroll("user-1", course.ID)
	require.NoError(t, err)

	_, err = certificateService.Issue("user-1", course.ID)
	assert.ErrorIs(t, err, ErrCourseNotCompleted)

	_, err = enrollmentService.UpdateProgress("user-1", course.ID, 2)
	require.NoError(t, err)

	certificate, err := certificateService.Issue("user-1", course.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go 101", certificate.CourseName)
	assert.Contains(t, certificate.Code, "CERT-")

	// Issuing again returns the same certificate.
	repeat, err := certificateService.Issue("user-1", course.ID)
	require.NoError(t, err)
	assert.Equal(t, certificate.ID, repeat.ID)

	verified, err := certificateService.Verify(certificate.Code)
	require.NoError(t, err)
	require.NotNil(t, verified)
	assert.Equal(t, certificate.ID, verified.ID)
}

func TestCertificateVerifyUnknownCode(t *testing.T) {
	fx := setup(t)
	service := NewCertificateService(fx.certificates, fx.enrollments, fx.courses, utils.InitLogger())

	certificate, err := service.Verify("CERT-DOESNOTEXIST")
	require.NoError(t, err)
	assert.Nil(t, certificate)
}

// fakeSnap stands in for the payment gateway.
type fakeSnap struct {
	fail bool
}

func (f *fakeSnap) CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error) {
	if f.fail {
		return nil, &midtrans.Error{Message: "gateway down"}
	}
	return &snap.Response{Token: "tok-" + req.TransactionDetails.OrderID}, nil
}

func newPaymentFixture(t *testing.T) (*fixture, *PaymentService, *EnrollmentService) {
	t.Helper()
	fx := setup(t)
	log := utils.InitLogger()
	enrollmentService := NewEnrollmentService(fx.enrollments, fx.courses, log)
	paymentService := NewPaymentService(fx.payments, fx.courses, enrollmentService, "test-key", log)
	paymentService.snap = &fakeSnap{}
	return fx, paymentService, enrollmentService
}

func TestCheckoutCreatesPendingTransaction(t *testing.T) {
	fx, payments, _ := newPaymentFixture(t)
	course := fx.course(t, "Paid Go", 9900)

	transaction, err := payments.Checkout("user-1", course.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, transaction.Status)
	assert.Equal(t, int64(9900), transaction.Amount)
	assert.NotEmpty(t, transaction.SnapToken)
}

func TestCheckoutRejectsFreeCourse(t *testing.T) {
	fx, payments, _ := newPaymentFixture(t)
	course := fx.course(t, "Free Go", 0)

	_, err := payments.Checkout("user-1", course.ID)
	assert.ErrorIs(t, err, ErrFreeCourse)
}

func TestSettlementEnrollsBuyer(t *testing.T) {
	fx, payments, _ := newPaymentFixture(t)
	course := fx.course(t, "Paid Go", 9900)

	transaction, err := payments.Checkout("user-1", course.ID)
	require.NoError(t, err)

	confirmed, err := payments.Confirm(transaction.OrderID, "settlement")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, confirmed.Status)

	enrollment, err := fx.enrollments.GetByUserAndCourse("user-1", course.ID)
	require.NoError(t, err)
	require.NotNil(t, enrollment, "settlement must enroll the buyer")

	// A repeated callback changes nothing.
	repeat, err := payments.Confirm(transaction.OrderID, "settlement")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, repeat.Status)
}

func TestFailedPaymentDoesNotEnroll(t *testing.T) {
	fx, payments, _ := newPaymentFixture(t)
	course := fx.course(t, "Paid Go", 9900)

	transaction, err := payments.Checkout("user-1", course.ID)
	require.NoError(t, err)

	confirmed, err := payments.Confirm(transaction.OrderID, "expire")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, confirmed.Status)

	enrollment, err := fx.enrollments.GetByUserAndCourse("user-1", course.ID)
	require.NoError(t, err)
	assert.Nil(t, enrollment)
}

func TestConfirmUnknownOrder(t *testing.T) {
	_, payments, _ := newPaymentFixture(t)

	_, err := payments.Confirm("order-missing", "settlement")
	assert.ErrorIs(t, err, ErrNotFound)
}
