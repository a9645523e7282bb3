package redisstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"job-board-backend/internal/domain"

	goredis "github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "session:revoked:"

type sessionStore struct {
	client goredis.Cmdable
}

// NewSessionStore keeps signed-out token ids in Redis with a TTL equal to
// the token's remaining lifetime.
func NewSessionStore(client goredis.Cmdable) domain.SessionStore {
	return &sessionStore{client: client}
}

func (s *sessionStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, revokedKeyPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *sessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	return n > 0, nil
}

type memoryEntry struct {
	expiresAt time.Time
}

// MemorySessionStore is the single-instance fallback used when Redis is not
// configured. Revocations are lost on restart.
type MemorySessionStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemorySessionStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[tokenID] = memoryEntry{expiresAt: s.now().Add(ttl)}
	s.sweepLocked()
	return nil
}

func (s *MemorySessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[tokenID]
	if !ok {
		return false, nil
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, tokenID)
		return false, nil
	}
	return true, nil
}

func (s *MemorySessionStore) sweepLocked() {
	now := s.now()
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}
