// AngelaMos | 2026
// aggregator.go

package rating

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/tablebook/internal/config"
	"github.com/carterperez-dev/templates/tablebook/internal/core"
)

const markTimeout = 2 * time.Second

// Aggregator keeps restaurant ratings equal to Compute over the current
// review set.
type Aggregator struct {
	store    Store
	stale    StaleTracker
	cfg      config.RatingConfig
	logger   *slog.Logger
	onChange []func(ctx context.Context, restaurantID string)
}

func NewAggregator(
	store Store,
	stale StaleTracker,
	cfg config.RatingConfig,
	logger *slog.Logger,
) *Aggregator {
	if cfg.RetryAttempts < 1 {
		cfg.RetryAttempts = 1
	}
	if cfg.BackfillBatch < 1 {
		cfg.BackfillBatch = 50
	}
	return &Aggregator{
		store:  store,
		stale:  stale,
		cfg:    cfg,
		logger: logger,
	}
}

// OnChange registers fn to run after every successful recompute.
func (a *Aggregator) OnChange(fn func(ctx context.Context, restaurantID string)) {
	a.onChange = append(a.onChange, fn)
}

func (a *Aggregator) Recompute(
	ctx context.Context,
	restaurantID string,
) (summary Summary, err error) {
	ctx, span := core.StartSpan(ctx, "rating.Recompute",
		attribute.String("restaurant.id", restaurantID),
	)
	defer func() { core.EndSpan(span, err) }()

	summary, err = a.store.Apply(ctx, restaurantID, Compute)
	if err != nil {
		return Summary{}, err
	}

	span.SetAttributes(
		attribute.Float64("rating.value", summary.Rating),
		attribute.Int("rating.total_reviews", summary.TotalReviews),
	)

	for _, fn := range a.onChange {
		fn(ctx, restaurantID)
	}

	return summary, nil
}

// Settle recomputes with retries after a review write. A failure never
// propagates: the restaurant is marked stale for Backfill instead, so
// the review write that triggered it stands.
func (a *Aggregator) Settle(ctx context.Context, restaurantID string) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = a.cfg.RetryInitialInterval
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(
		backoff.WithMaxRetries(b, uint64(a.cfg.RetryAttempts-1)),
		ctx,
	)

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		_, err := a.Recompute(ctx, restaurantID)
		if errors.Is(err, core.ErrNotFound) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
	if err == nil {
		return nil
	}

	if errors.Is(err, core.ErrNotFound) {
		a.logger.Warn("rating settle skipped, restaurant missing",
			"restaurant_id", restaurantID,
		)
		return nil
	}

	a.logger.Error("rating settle failed, marking stale",
		"restaurant_id", restaurantID,
		"attempts", attempt,
		"error", err,
	)

	markCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), markTimeout)
	defer cancel()

	if markErr := a.stale.Mark(markCtx, restaurantID); markErr != nil {
		a.logger.Error("rating stale mark failed",
			"restaurant_id", restaurantID,
			"error", markErr,
		)
	}

	return nil
}

// Backfill repairs up to one batch of stale restaurants. An ID is
// cleared only after its recompute settles, so an interrupted run leaves
// the rest of the batch in the set for the next one.
func (a *Aggregator) Backfill(ctx context.Context) (int, error) {
	ids, err := a.stale.Peek(ctx, a.cfg.BackfillBatch)
	if err != nil {
		return 0, err
	}

	done := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return done, core.StoreError("rating backfill", err)
		}

		_, err := a.Recompute(ctx, id)
		switch {
		case err == nil:
			done++
		case errors.Is(err, core.ErrNotFound):
		default:
			a.logger.Warn("rating backfill failed",
				"restaurant_id", id,
				"error", err,
			)
			continue
		}

		a.clearStale(ctx, id)
	}

	if len(ids) > 0 {
		a.logger.Info("rating backfill complete",
			"stale", len(ids),
			"recomputed", done,
		)
	}

	return done, nil
}

// clearStale outlives ctx so a recompute that already landed is not
// repeated by the next backfill.
func (a *Aggregator) clearStale(ctx context.Context, restaurantID string) {
	clearCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), markTimeout)
	defer cancel()

	if err := a.stale.Clear(clearCtx, restaurantID); err != nil {
		a.logger.Warn("rating stale clear failed",
			"restaurant_id", restaurantID,
			"error", err,
		)
	}
}

// RecomputeAll sweeps every restaurant. Used for repair after schema or
// rounding changes.
func (a *Aggregator) RecomputeAll(ctx context.Context) (int, error) {
	done := 0
	after := ""

	for {
		ids, err := a.store.RestaurantIDs(ctx, after, a.cfg.BackfillBatch)
		if err != nil {
			return done, err
		}
		if len(ids) == 0 {
			return done, nil
		}

		for _, id := range ids {
			if _, err := a.Recompute(ctx, id); err != nil {
				if errors.Is(err, core.ErrNotFound) {
					continue
				}
				return done, err
			}
			done++
		}

		after = ids[len(ids)-1]
	}
}
