// AngelaMos | 2026
// blacklist.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/tablebook/internal/core"
)

const blacklistPrefix = "auth:revoked:"

// blacklist holds revoked access token ids until they would have expired
// anyway. A nil client disables it.
type blacklist struct {
	client *redis.Client
}

func (b blacklist) add(ctx context.Context, jti string, ttl time.Duration) error {
	if b.client == nil || jti == "" || ttl <= 0 {
		return nil
	}

	if err := b.client.Set(ctx, blacklistPrefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", errors.Join(core.ErrUnavailable, err))
	}
	return nil
}

func (b blacklist) contains(ctx context.Context, jti string) (bool, error) {
	if b.client == nil || jti == "" {
		return false, nil
	}

	n, err := b.client.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", errors.Join(core.ErrUnavailable, err))
	}
	return n > 0, nil
}
