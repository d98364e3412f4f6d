// AngelaMos | 2026
// repository.go

package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/templates/tablebook/internal/core"
)

const uniqueReviewConstraint = "ux_reviews_restaurant_user"

type Repository interface {
	Create(ctx context.Context, r *Review) error
	GetByID(ctx context.Context, id string) (*Review, error)
	Update(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id string) error
	ListByRestaurant(
		ctx context.Context,
		restaurantID string,
		limit, offset int,
	) ([]Review, int, error)
	ToggleHelpful(ctx context.Context, reviewID, userID string) (bool, int, error)
	Count(ctx context.Context) (int, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const reviewSelect = `
		SELECT rv.id, rv.restaurant_id, rv.user_id, u.name AS user_name,
		       rv.rating, rv.comment, rv.food_rating, rv.service_rating,
		       rv.ambiance_rating, rv.is_verified,
		       (SELECT COUNT(*) FROM review_helpful_votes hv
		        WHERE hv.review_id = rv.id) AS helpful_count,
		       rv.created_at, rv.updated_at
		FROM reviews rv
		JOIN users u ON u.id = rv.user_id`

// Create marks the review verified when the author has a completed
// reservation at the restaurant.
func (r *repository) Create(ctx context.Context, rv *Review) error {
	query := `
		INSERT INTO reviews (
			id, restaurant_id, user_id, rating, comment, food_rating,
			service_rating, ambiance_rating, is_verified
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			EXISTS (
				SELECT 1 FROM reservations
				WHERE restaurant_id = $2 AND user_id = $3 AND status = 'completed'
			)
		)
		RETURNING is_verified, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		rv.ID,
		rv.RestaurantID,
		rv.UserID,
		rv.Rating,
		rv.Comment,
		rv.FoodRating,
		rv.ServiceRating,
		rv.AmbianceRating,
	).Scan(&rv.IsVerified, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return mapCreateError(err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Review, error) {
	var rv Review
	err := r.db.GetContext(ctx, &rv, reviewSelect+` WHERE rv.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get review: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, core.StoreError("get review", err)
	}

	return &rv, nil
}

func (r *repository) Update(ctx context.Context, rv *Review) error {
	query := `
		UPDATE reviews
		SET rating = $2, comment = $3, food_rating = $4,
		    service_rating = $5, ambiance_rating = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &rv.UpdatedAt, query,
		rv.ID,
		rv.Rating,
		rv.Comment,
		rv.FoodRating,
		rv.ServiceRating,
		rv.AmbianceRating,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update review: %w", core.ErrNotFound)
	}
	if err != nil {
		return core.StoreError("update review", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return core.StoreError("delete review", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return core.StoreError("delete review", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete review: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ListByRestaurant(
	ctx context.Context,
	restaurantID string,
	limit, offset int,
) ([]Review, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM reviews WHERE restaurant_id = $1`, restaurantID)
	if err != nil {
		return nil, 0, core.StoreError("count reviews", err)
	}

	reviews := []Review{}
	err = r.db.SelectContext(ctx, &reviews, reviewSelect+`
		WHERE rv.restaurant_id = $1
		ORDER BY rv.created_at DESC, rv.id
		LIMIT $2 OFFSET $3`,
		restaurantID, limit, offset,
	)
	if err != nil {
		return nil, 0, core.StoreError("list reviews", err)
	}

	return reviews, total, nil
}

// ToggleHelpful adds the caller's vote or removes it if present, and
// reports the resulting state and count.
func (r *repository) ToggleHelpful(
	ctx context.Context,
	reviewID, userID string,
) (bool, int, error) {
	var helpful bool
	var count int

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var exists bool
		err := tx.GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT 1 FROM reviews WHERE id = $1)`, reviewID)
		if err != nil {
			return core.StoreError("toggle helpful", err)
		}
		if !exists {
			return fmt.Errorf("toggle helpful: %w", core.ErrNotFound)
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM review_helpful_votes WHERE review_id = $1 AND user_id = $2`,
			reviewID, userID)
		if err != nil {
			return core.StoreError("toggle helpful", err)
		}

		removed, err := result.RowsAffected()
		if err != nil {
			return core.StoreError("toggle helpful", err)
		}

		if removed == 0 {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO review_helpful_votes (review_id, user_id)
				VALUES ($1, $2)
				ON CONFLICT DO NOTHING`,
				reviewID, userID)
			if err != nil {
				return core.StoreError("toggle helpful", err)
			}
			helpful = true
		}

		err = tx.GetContext(ctx, &count,
			`SELECT COUNT(*) FROM review_helpful_votes WHERE review_id = $1`, reviewID)
		if err != nil {
			return core.StoreError("toggle helpful", err)
		}

		return nil
	})

	return helpful, count, err
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM reviews`); err != nil {
		return 0, core.StoreError("count reviews", err)
	}
	return total, nil
}

// mapCreateError turns the one-review-per-user index violation into a
// conflict.
func mapCreateError(err error) error {
	if core.IsDuplicateKeyError(err) && core.ConstraintName(err) == uniqueReviewConstraint {
		return fmt.Errorf("create review: %w", core.NewDomainError(
			core.ErrConflict,
			"you have already reviewed this restaurant",
		))
	}
	return core.StoreError("create review", err)
}
