// AngelaMos | 2026
// stale.go

package rating

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const staleKey = "rating:stale"

// StaleTracker remembers restaurants whose rating failed to settle.
// Peek does not remove anything; an ID leaves the set only through Clear.
type StaleTracker interface {
	Mark(ctx context.Context, restaurantID string) error
	Peek(ctx context.Context, n int) ([]string, error)
	Clear(ctx context.Context, restaurantID string) error
}

type redisStale struct {
	client *redis.Client
}

func NewRedisStaleTracker(client *redis.Client) StaleTracker {
	return &redisStale{client: client}
}

func (s *redisStale) Mark(ctx context.Context, restaurantID string) error {
	if err := s.client.SAdd(ctx, staleKey, restaurantID).Err(); err != nil {
		return fmt.Errorf("mark stale: %w", err)
	}
	return nil
}

func (s *redisStale) Peek(ctx context.Context, n int) ([]string, error) {
	ids, err := s.client.SRandMemberN(ctx, staleKey, int64(n)).Result()
	if err != nil && err != redis.Nil { //nolint:errorlint // redis.Nil is a sentinel value
		return nil, fmt.Errorf("peek stale: %w", err)
	}
	return ids, nil
}

func (s *redisStale) Clear(ctx context.Context, restaurantID string) error {
	if err := s.client.SRem(ctx, staleKey, restaurantID).Err(); err != nil {
		return fmt.Errorf("clear stale: %w", err)
	}
	return nil
}
