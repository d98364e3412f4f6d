// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type Status string

const (
	StatusActive      Status = "active"
	StatusSuspended   Status = "suspended"
	StatusDeactivated Status = "deactivated"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusDeactivated:
		return true
	}
	return false
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Name         string    `db:"name"`
	Phone        string    `db:"phone"`
	Role         string    `db:"role"`
	Status       Status    `db:"status"`
	TokenVersion int       `db:"token_version"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// FavoriteRestaurant is the restaurant summary shown in a favorites list.
type FavoriteRestaurant struct {
	ID         string    `db:"id"          json:"id"`
	Name       string    `db:"name"        json:"name"`
	Cuisine    string    `db:"cuisine"     json:"cuisine"`
	Location   string    `db:"location"    json:"location"`
	ImageURL   string    `db:"image_url"   json:"image_url,omitempty"`
	PriceRange string    `db:"price_range" json:"price_range"`
	Rating     float64   `db:"rating"      json:"rating"`
	AddedAt    time.Time `db:"added_at"    json:"added_at"`
}
