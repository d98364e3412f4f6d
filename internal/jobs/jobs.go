// AngelaMos | 2026
// jobs.go

package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/carterperez-dev/templates/tablebook/internal/config"
)

// refreshTokenGrace keeps expired refresh tokens around long enough for
// reuse detection to still recognize a replayed token.
const refreshTokenGrace = 7 * 24 * time.Hour

type RatingBackfiller interface {
	Backfill(ctx context.Context) (int, error)
}

type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context, grace time.Duration) (int64, error)
}

// RegisterDefaults schedules the rating backfill and refresh token
// purge.
func RegisterDefaults(
	s *Scheduler,
	cfg *config.Config,
	ratings RatingBackfiller,
	tokens TokenPurger,
	logger *slog.Logger,
) error {
	err := s.Register("rating_backfill", cfg.Rating.BackfillSchedule, RatingBackfill(ratings, logger))
	if err != nil {
		return err
	}

	return s.Register("token_cleanup", cfg.Jobs.TokenCleanupSchedule, TokenCleanup(tokens, logger))
}

func RatingBackfill(ratings RatingBackfiller, logger *slog.Logger) Job {
	return func(ctx context.Context) error {
		n, err := ratings.Backfill(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info("rating backfill repaired restaurants", "count", n)
		}
		return nil
	}
}

func TokenCleanup(tokens TokenPurger, logger *slog.Logger) Job {
	return func(ctx context.Context) error {
		n, err := tokens.PurgeExpiredTokens(ctx, refreshTokenGrace)
		if err != nil {
			return err
		}
		logger.Info("expired refresh tokens purged", "count", n)
		return nil
	}
}
