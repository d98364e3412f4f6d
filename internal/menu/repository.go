// AngelaMos | 2026
// repository.go

package menu

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/templates/tablebook/internal/core"
)

type Repository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, restaurantID, id string) (*Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, restaurantID, id string) error
	List(ctx context.Context, restaurantID string, filter Filter) ([]Item, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const itemColumns = `id, restaurant_id, name, description, price, category,
		       image_url, is_vegetarian, is_vegan, is_gluten_free, is_spicy,
		       allergens, is_available, preparation_time, created_at, updated_at`

func (r *repository) Create(ctx context.Context, item *Item) error {
	query := `
		INSERT INTO menu_items (
			id, restaurant_id, name, description, price, category,
			image_url, is_vegetarian, is_vegan, is_gluten_free, is_spicy,
			allergens, is_available, preparation_time
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		item.ID,
		item.RestaurantID,
		item.Name,
		item.Description,
		item.Price,
		item.Category,
		item.ImageURL,
		item.IsVegetarian,
		item.IsVegan,
		item.IsGlutenFree,
		item.IsSpicy,
		item.Allergens,
		item.IsAvailable,
		item.PreparationTime,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return core.StoreError("create menu item", err)
	}

	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	restaurantID, id string,
) (*Item, error) {
	query := `SELECT ` + itemColumns + `
		FROM menu_items
		WHERE id = $1 AND restaurant_id = $2`

	var item Item
	err := r.db.GetContext(ctx, &item, query, id, restaurantID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get menu item: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, core.StoreError("get menu item", err)
	}

	return &item, nil
}

func (r *repository) Update(ctx context.Context, item *Item) error {
	query := `
		UPDATE menu_items
		SET name = $3, description = $4, price = $5, category = $6,
		    image_url = $7, is_vegetarian = $8, is_vegan = $9,
		    is_gluten_free = $10, is_spicy = $11, allergens = $12,
		    is_available = $13, preparation_time = $14, updated_at = NOW()
		WHERE id = $1 AND restaurant_id = $2
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &item.UpdatedAt, query,
		item.ID,
		item.RestaurantID,
		item.Name,
		item.Description,
		item.Price,
		item.Category,
		item.ImageURL,
		item.IsVegetarian,
		item.IsVegan,
		item.IsGlutenFree,
		item.IsSpicy,
		item.Allergens,
		item.IsAvailable,
		item.PreparationTime,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update menu item: %w", core.ErrNotFound)
	}
	if err != nil {
		return core.StoreError("update menu item", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, restaurantID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM menu_items WHERE id = $1 AND restaurant_id = $2`,
		id, restaurantID,
	)
	if err != nil {
		return core.StoreError("delete menu item", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return core.StoreError("delete menu item", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete menu item: %w", core.ErrNotFound)
	}

	return nil
}

// List orders available items first, then by category and name.
func (r *repository) List(
	ctx context.Context,
	restaurantID string,
	filter Filter,
) ([]Item, error) {
	conditions := []string{"restaurant_id = $1"}
	args := []any{restaurantID}

	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}

	if filter.Available != nil {
		args = append(args, *filter.Available)
		conditions = append(conditions, fmt.Sprintf("is_available = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM menu_items
		WHERE %s
		ORDER BY is_available DESC, category, name`,
		itemColumns, strings.Join(conditions, " AND "))

	items := []Item{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, core.StoreError("list menu items", err)
	}

	return items, nil
}
