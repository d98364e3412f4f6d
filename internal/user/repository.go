// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/templates/tablebook/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	IncrementTokenVersion(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status Status) error
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
	Count(ctx context.Context) (int, error)

	AddFavorite(ctx context.Context, userID, restaurantID string) error
	RemoveFavorite(ctx context.Context, userID, restaurantID string) error
	ListFavorites(ctx context.Context, userID string) ([]FavoriteRestaurant, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const userColumns = `id, email, password_hash, name, phone, role, status,
	token_version, created_at, updated_at`

func (r *repository) Create(ctx context.Context, u *User) error {
	err := r.db.GetContext(ctx, u, `
		INSERT INTO users (id, email, password_hash, name, phone, role, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at, token_version`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Phone, u.Role, u.Status,
	)
	if core.IsDuplicateKeyError(err) {
		return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
	}
	if err != nil {
		return core.StoreError("create user", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.findOne(ctx, "get user", "id = $1", id)
}

// GetByEmail matches case-insensitively; the unique index is on
// LOWER(email).
func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, "get user by email", "LOWER(email) = LOWER($1)", email)
}

func (r *repository) findOne(ctx context.Context, op, cond string, arg any) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE `+cond, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, core.StoreError(op, err)
	}
	return &u, nil
}

func (r *repository) Update(ctx context.Context, u *User) error {
	err := r.db.GetContext(ctx, &u.UpdatedAt, `
		UPDATE users
		SET name = $2, phone = $3, role = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		u.ID, u.Name, u.Phone, u.Role,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	if err != nil {
		return core.StoreError("update user", err)
	}
	return nil
}

func (r *repository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.execOne(ctx, "update password", `
		UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		id, passwordHash)
}

func (r *repository) IncrementTokenVersion(ctx context.Context, id string) error {
	return r.execOne(ctx, "increment token version", `
		UPDATE users SET token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1`,
		id)
}

// SetStatus also bumps token_version when leaving active so that issued
// access tokens stop verifying.
func (r *repository) SetStatus(ctx context.Context, id string, status Status) error {
	return r.execOne(ctx, "set user status", `
		UPDATE users
		SET status = $2,
		    token_version = CASE WHEN $2 = 'active' THEN token_version
		                         ELSE token_version + 1 END,
		    updated_at = NOW()
		WHERE id = $1`,
		id, status)
}

func (r *repository) List(ctx context.Context, params ListUsersParams) ([]User, int, error) {
	params.Normalize()

	var f core.Filter
	f.Contains("(email ILIKE ? OR name ILIKE ?)", params.Search).
		WhereIf(params.Role != "", "role = ?", params.Role).
		WhereIf(params.Status != "", "status = ?", params.Status)

	var total int
	err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users WHERE `+f.SQL(), f.Args()...)
	if err != nil {
		return nil, 0, core.StoreError("count users", err)
	}

	page, args := f.Page(params.Limit, params.Offset())
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + f.SQL() +
		` ORDER BY created_at DESC ` + page

	users := []User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, core.StoreError("list users", err)
	}
	return users, total, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, core.StoreError("count users", err)
	}
	return total, nil
}

// AddFavorite is idempotent. Only active restaurants can be favorited.
func (r *repository) AddFavorite(ctx context.Context, userID, restaurantID string) error {
	var present bool
	err := r.db.GetContext(ctx, &present, `
		WITH added AS (
			INSERT INTO user_favorites (user_id, restaurant_id)
			SELECT $1, id FROM restaurants WHERE id = $2 AND status = 'active'
			ON CONFLICT DO NOTHING
			RETURNING 1
		)
		SELECT EXISTS(SELECT 1 FROM added)
		    OR EXISTS(SELECT 1 FROM user_favorites
		              WHERE user_id = $1 AND restaurant_id = $2)`,
		userID, restaurantID)
	if err != nil {
		return core.StoreError("add favorite", err)
	}
	if !present {
		return fmt.Errorf("add favorite: %w", core.ErrNotFound)
	}
	return nil
}

func (r *repository) RemoveFavorite(ctx context.Context, userID, restaurantID string) error {
	return r.execOne(ctx, "remove favorite",
		`DELETE FROM user_favorites WHERE user_id = $1 AND restaurant_id = $2`,
		userID, restaurantID)
}

func (r *repository) ListFavorites(ctx context.Context, userID string) ([]FavoriteRestaurant, error) {
	favorites := []FavoriteRestaurant{}
	err := r.db.SelectContext(ctx, &favorites, `
		SELECT r.id, r.name, r.cuisine, r.location, r.image_url,
		       r.price_range, r.rating, f.created_at AS added_at
		FROM user_favorites f
		JOIN restaurants r ON r.id = f.restaurant_id
		WHERE f.user_id = $1 AND r.status = 'active'
		ORDER BY f.created_at DESC`,
		userID)
	if err != nil {
		return nil, core.StoreError("list favorites", err)
	}
	return favorites, nil
}

func (r *repository) execOne(ctx context.Context, op, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return core.StoreError(op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return core.StoreError(op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return nil
}
