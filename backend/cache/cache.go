package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store is the injectable cache abstraction. Entries are ephemeral and
// never authoritative: every consumer must fall back to the database on
// a miss. Under concurrent writes to the same key, last write wins.
type Store interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	Delete(keys ...string)
	Flush()
}

// MemoryStore backs Store with an in-process TTL cache. Correct only
// under a single-process deployment: there is no cross-instance
// invalidation.
type MemoryStore struct {
	c *gocache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{c: gocache.New(gocache.NoExpiration, 10*time.Minute)}
}

func (s *MemoryStore) Get(key string) (interface{}, bool) {
	return s.c.Get(key)
}

func (s *MemoryStore) Set(key string, value interface{}, ttl time.Duration) {
	s.c.Set(key, value, ttl)
}

func (s *MemoryStore) Delete(keys ...string) {
	for _, key := range keys {
		s.c.Delete(key)
	}
}

func (s *MemoryStore) Flush() {
	s.c.Flush()
}
