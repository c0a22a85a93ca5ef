package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const selectionKeyPrefix = "session:"

// ErrMiss is returned by Get when no selection is cached for the session.
var ErrMiss = errors.New("selection not cached")

// SelectionStore remembers which ad was selected for a session.
type SelectionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSelectionStore(client *redis.Client, ttl time.Duration) *SelectionStore {
	return &SelectionStore{client: client, ttl: ttl}
}

func SelectionKey(sessionID string) string {
	return selectionKeyPrefix + sessionID
}

func (s *SelectionStore) Put(ctx context.Context, sessionID string, adID int64) error {
	return s.client.Set(ctx, SelectionKey(sessionID), adID, s.ttl).Err()
}

func (s *SelectionStore) Get(ctx context.Context, sessionID string) (int64, error) {
	raw, err := s.client.Get(ctx, SelectionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrMiss
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}
