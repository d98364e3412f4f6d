// AngelaMos | 2026
// repository.go

package restaurant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/templates/tablebook/internal/core"
)

type Repository interface {
	Create(ctx context.Context, r *Restaurant) error
	GetByID(ctx context.Context, id string) (*Restaurant, error)
	Update(ctx context.Context, r *Restaurant) error
	SetStatus(ctx context.Context, id string, status Status) error
	List(ctx context.Context, params ListParams) ([]Restaurant, int, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const restaurantColumns = `id, name, cuisine, location, description, rating,
		       total_reviews, price_range, image_url, phone, address, hours,
		       features, latitude, longitude, status, created_at, updated_at`

func (r *repository) Create(ctx context.Context, rest *Restaurant) error {
	query := `
		INSERT INTO restaurants (
			id, name, cuisine, location, description, price_range,
			image_url, phone, address, hours, features, latitude,
			longitude, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
		RETURNING rating, total_reviews, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		rest.ID,
		rest.Name,
		rest.Cuisine,
		rest.Location,
		rest.Description,
		rest.PriceRange,
		rest.ImageURL,
		rest.Phone,
		rest.Address,
		rest.Hours,
		rest.Features,
		rest.Latitude,
		rest.Longitude,
		rest.Status,
	).Scan(&rest.Rating, &rest.TotalReviews, &rest.CreatedAt, &rest.UpdatedAt)
	if err != nil {
		return core.StoreError("create restaurant", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE id = $1`

	var rest Restaurant
	err := r.db.GetContext(ctx, &rest, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get restaurant: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, core.StoreError("get restaurant", err)
	}

	return &rest, nil
}

// Update writes descriptive fields only. rating and total_reviews are
// owned by the rating aggregator.
func (r *repository) Update(ctx context.Context, rest *Restaurant) error {
	query := `
		UPDATE restaurants
		SET name = $2, cuisine = $3, location = $4, description = $5,
		    price_range = $6, image_url = $7, phone = $8, address = $9,
		    hours = $10, features = $11, latitude = $12, longitude = $13,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &rest.UpdatedAt, query,
		rest.ID,
		rest.Name,
		rest.Cuisine,
		rest.Location,
		rest.Description,
		rest.PriceRange,
		rest.ImageURL,
		rest.Phone,
		rest.Address,
		rest.Hours,
		rest.Features,
		rest.Latitude,
		rest.Longitude,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update restaurant: %w", core.ErrNotFound)
	}
	if err != nil {
		return core.StoreError("update restaurant", err)
	}

	return nil
}

func (r *repository) SetStatus(ctx context.Context, id string, status Status) error {
	query := `
		UPDATE restaurants
		SET status = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return core.StoreError("set restaurant status", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return core.StoreError("set restaurant status", err)
	}

	if rows == 0 {
		return fmt.Errorf("set restaurant status: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Restaurant, int, error) {
	var f core.Filter
	f.Where("status = ?", params.Status).
		Contains("(name ILIKE ? OR cuisine ILIKE ? OR location ILIKE ? OR description ILIKE ?)", params.Search).
		Contains("cuisine ILIKE ?", params.Cuisine).
		Contains("location ILIKE ?", params.Location).
		WhereIf(params.PriceRange != "", "price_range = ?", params.PriceRange)
	if params.MinRating != nil {
		f.Where("rating >= ?", *params.MinRating)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM restaurants WHERE " + f.SQL()
	if err := r.db.GetContext(ctx, &total, countQuery, f.Args()...); err != nil {
		return nil, 0, core.StoreError("count restaurants", err)
	}

	// sort column and direction come from a whitelist in Normalize
	orderBy := fmt.Sprintf("%s %s, id ASC",
		sortColumns[params.SortBy],
		strings.ToUpper(params.SortOrder),
	)

	page, args := f.Page(params.Limit, params.Offset())
	query := fmt.Sprintf(`
		SELECT %s
		FROM restaurants
		WHERE %s
		ORDER BY %s
		%s`,
		restaurantColumns, f.SQL(), orderBy, page)

	restaurants := []Restaurant{}
	if err := r.db.SelectContext(ctx, &restaurants, query, args...); err != nil {
		return nil, 0, core.StoreError("list restaurants", err)
	}

	return restaurants, total, nil
}

func (r *repository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows := []struct {
		Status Status `db:"status"`
		Count  int    `db:"count"`
	}{}

	err := r.db.SelectContext(ctx, &rows,
		`SELECT status, COUNT(*) AS count FROM restaurants GROUP BY status`)
	if err != nil {
		return nil, core.StoreError("count restaurants", err)
	}

	counts := make(map[Status]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}
