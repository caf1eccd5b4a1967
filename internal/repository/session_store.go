package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"NeoFin/internal/domain/models"
	domrepo "NeoFin/internal/domain/repository"
	"NeoFin/pkg/cache"
)

// CacheSessionStore keeps conversation logs and session locks in a cache.Service
// (memory, redis or layered).
type CacheSessionStore struct {
	cache cache.Service
}

func NewCacheSessionStore(c cache.Service) *CacheSessionStore {
	return &CacheSessionStore{cache: c}
}

func historyKey(id string) string { return cache.Key("session", id, "log") }
func lockKey(id string) string    { return cache.Key("session", id, "lock") }

func (s *CacheSessionStore) SaveHistory(ctx context.Context, sessionID string, msgs []models.Message, ttl time.Duration) error {
	if err := s.cache.Set(ctx, historyKey(sessionID), msgs, ttl); err != nil {
		return fmt.Errorf("save history %s: %w", sessionID, err)
	}
	return nil
}

// LoadHistory returns an empty log for unknown sessions.
func (s *CacheSessionStore) LoadHistory(ctx context.Context, sessionID string) ([]models.Message, error) {
	var msgs []models.Message
	if err := s.cache.Get(ctx, historyKey(sessionID), &msgs); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("load history %s: %w", sessionID, err)
	}
	return msgs, nil
}

func (s *CacheSessionStore) DeleteHistory(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, historyKey(sessionID))
}

func (s *CacheSessionStore) Lock(ctx context.Context, sessionID string, ttl time.Duration) (bool, error) {
	return s.cache.TryLock(ctx, lockKey(sessionID), ttl)
}

func (s *CacheSessionStore) Unlock(ctx context.Context, sessionID string) error {
	return s.cache.Unlock(ctx, lockKey(sessionID))
}

var _ domrepo.SessionStore = (*CacheSessionStore)(nil)
