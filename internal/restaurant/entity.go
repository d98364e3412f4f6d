// AngelaMos | 2026
// entity.go

package restaurant

import (
	"time"

	"github.com/lib/pq"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusArchived  Status = "archived"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusArchived:
		return true
	}
	return false
}

const DefaultPriceRange = "$$"

var Features = []string{
	"delivery",
	"takeout",
	"dine-in",
	"outdoor-seating",
	"private-dining",
	"wifi",
	"parking",
}

// Restaurant rating and total_reviews are derived by the rating
// aggregator and never written from client input.
type Restaurant struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Cuisine      string         `db:"cuisine"`
	Location     string         `db:"location"`
	Description  string         `db:"description"`
	Rating       float64        `db:"rating"`
	TotalReviews int            `db:"total_reviews"`
	PriceRange   string         `db:"price_range"`
	ImageURL     string         `db:"image_url"`
	Phone        string         `db:"phone"`
	Address      string         `db:"address"`
	Hours        string         `db:"hours"`
	Features     pq.StringArray `db:"features"`
	Latitude     *float64       `db:"latitude"`
	Longitude    *float64       `db:"longitude"`
	Status       Status         `db:"status"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r *Restaurant) IsActive() bool {
	return r.Status == StatusActive
}
