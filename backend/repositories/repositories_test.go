package repositories

import (
	"fmt"
	"testing"

	"learnspace/backend/cache"
	"learnspace/backend/config"
	"learnspace/backend/models"
	"learnspace/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		CacheDefaultTTLMinutes: 5,
		CacheLongTTLMinutes:    15,
	}
}

func setupDB(t *testing.T) (*gorm.DB, cache.Store) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))

	return db, cache.NewMemoryStore()
}

func createAccount(t *testing.T, db *gorm.DB, username string) *models.Account {
	t.Helper()
	account := &models.Account{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(account).Error)
	return account
}

func createCourse(t *testing.T, db *gorm.DB, title, authorID string) *models.Course {
	t.Helper()
	course := &models.Course{Title: title, AuthorID: authorID, AccessLevel: "public"}
	require.NoError(t, db.Create(course).Error)
	return course
}

func TestConversationGetOrCreateIsOrderAgnostic(t *testing.T) {
	db, store := setupDB(t)
	repo := NewConversationRepository(db, store, testConfig())

	first, err := repo.GetOrCreate("user-a", "user-b")
	require.NoError(t, err)

	second, err := repo.GetOrCreate("user-b", "user-a")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "swapped participants must resolve to the same conversation")
}

func TestAppendMessageMovesLastMessagePointer(t *testing.T) {
	db, store := setupDB(t)
	repo := NewConversationRepository(db, store, testConfig())

	conversation, err := repo.GetOrCreate("user-a", "user-b")
	require.NoError(t, err)

	var lastID string
	for i := 0; i < 3; i++ {
		message := &models.MessageEntity{
			Base:           models.Base{ID: models.NewID()},
			ConversationID: conversation.ID,
			SenderID:       "user-a",
			ReceiverID:     "user-b",
			Content:        fmt.Sprintf("message %d", i),
			MessageType:    "TEXT",
		}
		require.NoError(t, repo.AppendMessage(message))
		lastID = message.ID
	}

	reloaded, err := repo.GetByID(conversation.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastMessageID)
	assert.Equal(t, lastID, *reloaded.LastMessageID)
	assert.NotNil(t, reloaded.LastMessageAt)
}

func TestMarkReadIsReceiverOnlyAndIdempotent(t *testing.T) {
	db, store := setupDB(t)
	repo := NewConversationRepository(db, store, testConfig())

	conversation, err := repo.GetOrCreate("user-a", "user-b")
	require.NoError(t, err)

	message := &models.MessageEntity{
		Base:           models.Base{ID: models.NewID()},
		ConversationID: conversation.ID,
		SenderID:       "user-a",
		ReceiverID:     "user-b",
		Content:        "hi",
		MessageType:    "TEXT",
	}
	require.NoError(t, repo.AppendMessage(message))

	// The sender cannot mark their own message as read.
	_, changed, err := repo.MarkRead(message.ID, "user-a")
	require.NoError(t, err)
	assert.False(t, changed)

	// First receiver call transitions the message.
	updated, changed, err := repo.MarkRead(message.ID, "user-b")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, updated.IsRead)
	require.NotNil(t, updated.ReadAt)

	// Repeating is a no-op.
	_, changed, err = repo.MarkRead(message.ID, "user-b")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestMarkReadUnknownMessage(t *testing.T) {
	db, store := setupDB(t)
	repo := NewConversationRepository(db, store, testConfig())

	message, changed, err := repo.MarkRead("nope", "user-b")
	require.NoError(t, err)
	assert.Nil(t, message)
	assert.False(t, changed)
}

func TestCourseCacheInvalidatedOnChapterAdd(t *testing.T) {
	db, store := setupDB(t)
	repo := NewCourseRepository(db, store, testConfig())

	course := createCourse(t, db, "Go Basics", "author-1")

	cached, err := repo.GetByID(course.ID)
	require.NoError(t, err)
	assert.Empty(t, cached.Chapters)

	order, err := repo.NextChapterOrder(course.ID)
	require.NoError(t, err)
	chapter := &models.Chapter{CourseID: course.ID, Title: "Intro", ChapterOrder: order}
	require.NoError(t, repo.AddChapter(chapter))

	fresh, err := repo.GetByID(course.ID)
	require.NoError(t, err)
	require.Len(t, fresh.Chapters, 1)
	assert.Equal(t, "Intro", fresh.Chapters[0].Title)
}

func TestCachedCourseReadIsIsolatedFromCallerMutation(t *testing.T) {
	db, store := setupDB(t)
	repo := NewCourseRepository(db, store, testConfig())

	course := createCourse(t, db, "Original Title", "author-1")

	// First read populates the cache; mutating the result stands in
	// for an update whose Save never ran.
	loaded, err := repo.GetByID(course.ID)
	require.NoError(t, err)
	loaded.Title = "Never Persisted"

	reloaded, err := repo.GetByID(course.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original Title", reloaded.Title)

	// Same for results served straight from the cache.
	reloaded.Title = "Still Never Persisted"

	again, err := repo.GetByID(course.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original Title", again.Title)
}

func TestCachedAccountReadIsIsolatedFromCallerMutation(t *testing.T) {
	db, store := setupDB(t)
	repo := NewUserRepository(db, store, testConfig())

	account := createAccount(t, db, "alice")

	loaded, err := repo.GetByID(account.ID)
	require.NoError(t, err)
	loaded.IsBanned = true

	reloaded, err := repo.GetByID(account.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsBanned, "a ban that was never saved must not be served from cache")
}

func TestCourseListCacheStaysStaleUntilTTL(t *testing.T) {
	db, store := setupDB(t)
	repo := NewCourseRepository(db, store, testConfig())

	createCourse(t, db, "First", "author-1")

	courses, total, err := repo.List("", "", 1, 20)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, courses, 1)

	// A new course does not invalidate list keys; the cached page
	// is served until its TTL expires.
	createCourse(t, db, "Second", "author-1")

	courses, total, err = repo.List("", "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, courses, 1)
}

func TestUserAchievementsCacheInvalidatedOnAward(t *testing.T) {
	db, store := setupDB(t)
	repo := NewAchievementRepository(db, store, testConfig())

	achievement := &models.Achievement{Name: "First Steps"}
	require.NoError(t, db.Create(achievement).Error)

	first := &models.UserAchievement{UserID: "user-1", AchievementID: achievement.ID}
	require.NoError(t, repo.AddUserAchievement(first))

	got, err := repo.GetUserAchievements("user-1")
	require.NoError(t, err)
	require.Len(t, got, 1)

	second := &models.Achievement{Name: "Quiz Master"}
	require.NoError(t, db.Create(second).Error)
	award := &models.UserAchievement{UserID: "user-1", AchievementID: second.ID}
	require.NoError(t, repo.AddUserAchievement(award))

	got, err = repo.GetUserAchievements("user-1")
	require.NoError(t, err)
	assert.Len(t, got, 2, "award must invalidate the per-user cache entry")
}

func TestEmptyResultsAreNotCached(t *testing.T) {
	db, store := setupDB(t)
	repo := NewEnrollmentRepository(db, store, testConfig())

	enrollments, err := repo.ListByUser("user-1")
	require.NoError(t, err)
	require.Empty(t, enrollments)

	enrollment := &models.Enrollment{UserID: "user-1", CourseID: "course-1", Status: models.EnrollmentStatusActive}
	require.NoError(t, repo.Create(enrollment))

	enrollments, err = repo.ListByUser("user-1")
	require.NoError(t, err)
	assert.Len(t, enrollments, 1, "an empty result must not shadow later data")
}

func TestEnrollmentUniquePerUserAndCourse(t *testing.T) {
	db, store := setupDB(t)
	repo := NewEnrollmentRepository(db, store, testConfig())

	first := &models.Enrollment{UserID: "user-1", CourseID: "course-1"}
	require.NoError(t, repo.Create(first))

	duplicate := &models.Enrollment{UserID: "user-1", CourseID: "course-1"}
	assert.Error(t, repo.Create(duplicate), "composite unique index must reject the second row")
}

func TestUserRepositoryUpdateInvalidatesCache(t *testing.T) {
	db, store := setupDB(t)
	repo := NewUserRepository(db, store, testConfig())

	account := createAccount(t, db, "alice")

	cached, err := repo.GetByID(account.ID)
	require.NoError(t, err)
	require.Equal(t, "", cached.FullName)

	account.FullName = "Alice A."
	require.NoError(t, repo.Update(account))

	fresh, err := repo.GetByID(account.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", fresh.FullName)
}

func TestNotificationUnreadCountRecomputed(t *testing.T) {
	db, _ := setupDB(t)
	repo := NewNotificationRepository(db)

	notifications := []models.Notification{
		{UserID: "user-1", Title: "one"},
		{UserID: "user-1", Title: "two"},
		{UserID: "user-2", Title: "other"},
	}
	require.NoError(t, repo.CreateBatch(notifications))

	count, err := repo.UnreadCount("user-1")
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	changed, err := repo.MarkRead(notifications[0].ID, "user-1")
	require.NoError(t, err)
	require.True(t, changed)

	// Re-reading the same notification changes nothing.
	changed, err = repo.MarkRead(notifications[0].ID, "user-1")
	require.NoError(t, err)
	assert.False(t, changed)

	count, err = repo.UnreadCount("user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.MarkAllRead("user-1"))
	count, err = repo.UnreadCount("user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestMarkReadRejectsOtherUsersNotification(t *testing.T) {
	db, _ := setupDB(t)
	repo := NewNotificationRepository(db)

	notifications := []models.Notification{{UserID: "user-1", Title: "mine"}}
	require.NoError(t, repo.CreateBatch(notifications))

	changed, err := repo.MarkRead(notifications[0].ID, "user-2")
	require.NoError(t, err)
	assert.False(t, changed)
}
