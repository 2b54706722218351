package hub

import (
	"fmt"
	"testing"

	"learnspace/backend/cache"
	"learnspace/backend/config"
	"learnspace/backend/models"
	"learnspace/backend/repositories"
	"learnspace/backend/services"
	"learnspace/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type notificationFixture struct {
	hub           *Hub
	handler       *NotificationHandler
	notifications *repositories.NotificationRepository
}

func setupNotifications(t *testing.T) *notificationFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))

	cfg := &config.Config{CacheDefaultTTLMinutes: 5, CacheLongTTLMinutes: 15}
	log := utils.InitLogger()
	store := cache.NewMemoryStore()
	notifications := repositories.NewNotificationRepository(db)
	users := repositories.NewUserRepository(db, store, cfg)
	enrollments := repositories.NewEnrollmentRepository(db, store, cfg)
	service := services.NewNotificationService(notifications, users, enrollments, log)
	h := New(log)

	return &notificationFixture{
		hub:           h,
		handler:       NewNotificationHandler(h, service, log),
		notifications: notifications,
	}
}

func unreadCounts(conn *fakeConn) []interface{} {
	var counts []interface{}
	for _, ev := range conn.received() {
		if ev.Event == "UpdateUnreadCount" {
			counts = append(counts, ev.Data)
		}
	}
	return counts
}

func TestMarkAsReadPushesRecomputedCount(t *testing.T) {
	fx := setupNotifications(t)

	rows := []models.Notification{
		{UserID: "u1", Title: "one"},
		{UserID: "u1", Title: "two"},
	}
	require.NoError(t, fx.notifications.CreateBatch(rows))

	client, conn := newFakeClient("u1")
	fx.hub.Join(UserGroup("u1"), client)

	fx.handler.Dispatch(client, event(t, "MarkAsRead", map[string]string{"notification_id": rows[0].ID}))

	counts := unreadCounts(conn)
	require.Len(t, counts, 1)
	assert.Equal(t, map[string]int64{"unread_count": 1}, counts[0])
}

func TestMarkAsReadRepeatDoesNotPush(t *testing.T) {
	fx := setupNotifications(t)

	rows := []models.Notification{{UserID: "u1", Title: "one"}}
	require.NoError(t, fx.notifications.CreateBatch(rows))

	client, conn := newFakeClient("u1")

	payload := map[string]string{"notification_id": rows[0].ID}
	fx.handler.Dispatch(client, event(t, "MarkAsRead", payload))
	fx.handler.Dispatch(client, event(t, "MarkAsRead", payload))

	assert.Len(t, unreadCounts(conn), 1, "an already-read notification must not push another count")
}

func TestMarkAllAsReadPushesZero(t *testing.T) {
	fx := setupNotifications(t)

	rows := []models.Notification{
		{UserID: "u1", Title: "one"},
		{UserID: "u1", Title: "two"},
		{UserID: "u1", Title: "three"},
	}
	require.NoError(t, fx.notifications.CreateBatch(rows))

	client, conn := newFakeClient("u1")
	fx.handler.Dispatch(client, event(t, "MarkAllAsRead", nil))

	counts := unreadCounts(conn)
	require.Len(t, counts, 1)
	assert.Equal(t, map[string]int64{"unread_count": 0}, counts[0])
}

func TestCourseAndRoleGroupEvents(t *testing.T) {
	fx := setupNotifications(t)

	client, _ := newFakeClient("u1")

	fx.handler.Dispatch(client, event(t, "JoinCourseGroup", map[string]string{"course_id": "go-101"}))
	assert.Equal(t, 1, fx.hub.GroupSize(CourseGroup("go-101")))

	fx.handler.Dispatch(client, event(t, "LeaveCourseGroup", map[string]string{"course_id": "go-101"}))
	assert.Equal(t, 0, fx.hub.GroupSize(CourseGroup("go-101")))

	fx.handler.Dispatch(client, event(t, "JoinRoleGroup", map[string]string{"role": "instructor"}))
	assert.Equal(t, 1, fx.hub.GroupSize(RoleGroup("instructor")))
}
