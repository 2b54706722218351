package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStoreRoundtrip(t *testing.T) {
	store := NewMemoryStore()

	store.Set("course:abc", "payload", time.Minute)

	value, ok := store.Get("course:abc")
	assert.True(t, ok)
	assert.Equal(t, "payload", value)
}

func TestMemoryStoreMiss(t *testing.T) {
	store := NewMemoryStore()

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	store := NewMemoryStore()

	store.Set("short", 42, 20*time.Millisecond)

	_, ok := store.Get("short")
	assert.True(t, ok)

	time.Sleep(40 * time.Millisecond)

	_, ok = store.Get("short")
	assert.False(t, ok, "entry should expire after its TTL")
}

func TestMemoryStoreDeleteMany(t *testing.T) {
	store := NewMemoryStore()
	store.Set("a", 1, time.Minute)
	store.Set("b", 2, time.Minute)
	store.Set("c", 3, time.Minute)

	store.Delete("a", "b")

	_, ok := store.Get("a")
	assert.False(t, ok)
	_, ok = store.Get("b")
	assert.False(t, ok)
	_, ok = store.Get("c")
	assert.True(t, ok)
}

func TestMemoryStoreDeleteMissingKeyIsNoop(t *testing.T) {
	store := NewMemoryStore()

	// Must not panic or error.
	store.Delete("never-set")
}

func TestKeyBuildersAreDeterministic(t *testing.T) {
	assert.Equal(t, "course:42", CourseKey("42"))
	assert.Equal(t, CourseKey("42"), CourseKey("42"))
	assert.Equal(t, "courses:go:backend:2:10", CourseListKey("go", "backend", 2, 10))
	assert.Equal(t, "user_achievements:u1:streak:1:20", UserAchievementsPagedKey("u1", "streak", 1, 20))
	assert.Equal(t, "conversations:u1", UserConversationsKey("u1"))
}
