// AngelaMos | 2026
// repository.go

package rating

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/templates/tablebook/internal/core"
)

// Store applies a recomputation for one restaurant. Implementations must
// serialize concurrent Apply calls for the same restaurant.
type Store interface {
	Apply(
		ctx context.Context,
		restaurantID string,
		compute func(ratings []int) Summary,
	) (Summary, error)
	RestaurantIDs(ctx context.Context, afterID string, limit int) ([]string, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Store {
	return &repository{db: db}
}

// Apply locks the restaurant row for the duration of the transaction so
// recomputes for the same restaurant queue behind each other across
// processes.
func (r *repository) Apply(
	ctx context.Context,
	restaurantID string,
	compute func(ratings []int) Summary,
) (Summary, error) {
	var summary Summary

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var locked string
		err := tx.GetContext(ctx, &locked,
			`SELECT id FROM restaurants WHERE id = $1 FOR UPDATE`,
			restaurantID,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("lock restaurant: %w", core.ErrNotFound)
		}
		if err != nil {
			return core.StoreError("lock restaurant", err)
		}

		ratings := []int{}
		err = tx.SelectContext(ctx, &ratings,
			`SELECT rating FROM reviews WHERE restaurant_id = $1`,
			restaurantID,
		)
		if err != nil {
			return core.StoreError("load ratings", err)
		}

		summary = compute(ratings)

		_, err = tx.ExecContext(ctx, `
			UPDATE restaurants
			SET rating = $2, total_reviews = $3, updated_at = NOW()
			WHERE id = $1`,
			restaurantID,
			summary.Rating,
			summary.TotalReviews,
		)
		if err != nil {
			return core.StoreError("store rating", err)
		}

		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	return summary, nil
}

// RestaurantIDs pages through every restaurant in id order.
func (r *repository) RestaurantIDs(
	ctx context.Context,
	afterID string,
	limit int,
) ([]string, error) {
	if afterID == "" {
		afterID = uuid.Nil.String()
	}

	query := `
		SELECT id FROM restaurants
		WHERE id > $1
		ORDER BY id
		LIMIT $2`

	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, query, afterID, limit); err != nil {
		return nil, core.StoreError("list restaurant ids", err)
	}

	return ids, nil
}
