package cache

import (
	"fmt"
	"strings"
)

// Key builders. Keys are deterministic: same entity and parameters
// always produce the same key. Keys carrying free-text search terms or
// pagination parameters are never invalidated explicitly; they go
// stale until their TTL expires.

func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

func CourseKey(courseID string) string {
	return Key("course", courseID)
}

func CourseListKey(search, topic string, page, pageSize int) string {
	return fmt.Sprintf("courses:%s:%s:%d:%d", search, topic, page, pageSize)
}

func QuizKey(quizID string) string {
	return Key("quiz", quizID)
}

func UserKey(userID string) string {
	return Key("user", userID)
}

func UserEnrollmentsKey(userID string) string {
	return Key("enrollments", userID)
}

func AllAchievementsKey() string {
	return Key("achievements", "all")
}

func AchievementKey(achievementID string) string {
	return Key("achievement", achievementID)
}

func UserAchievementsKey(userID string) string {
	return Key("user_achievements", userID)
}

func UserAchievementsPagedKey(userID, search string, page, pageSize int) string {
	return fmt.Sprintf("user_achievements:%s:%s:%d:%d", userID, search, page, pageSize)
}

func UserCertificatesKey(userID string) string {
	return Key("certificates", userID)
}

func UserConversationsKey(userID string) string {
	return Key("conversations", userID)
}
