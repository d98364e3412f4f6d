// AngelaMos | 2026
// entity.go

package reservation

import (
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// HoldsSlot reports whether a reservation in this status occupies its
// (restaurant, date, time) slot.
func (s Status) HoldsSlot() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Reservation carries a snapshot of the restaurant it belongs to. The
// restaurant_* columns are joined on read and never written.
type Reservation struct {
	ID               string    `db:"id"`
	RestaurantID     string    `db:"restaurant_id"`
	UserID           string    `db:"user_id"`
	Date             time.Time `db:"reservation_date"`
	Time             string    `db:"reservation_time"`
	Guests           int       `db:"guests"`
	Status           Status    `db:"status"`
	SpecialRequests  string    `db:"special_requests"`
	Notes            string    `db:"notes"`
	TableNumber      string    `db:"table_number"`
	ContactName      string    `db:"contact_name"`
	ContactPhone     string    `db:"contact_phone"`
	ContactEmail     string    `db:"contact_email"`
	ConfirmationCode string    `db:"confirmation_code"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`

	RestaurantName     string `db:"restaurant_name"`
	RestaurantCuisine  string `db:"restaurant_cuisine"`
	RestaurantLocation string `db:"restaurant_location"`
	RestaurantImageURL string `db:"restaurant_image_url"`
	RestaurantPhone    string `db:"restaurant_phone"`
	RestaurantAddress  string `db:"restaurant_address"`
	RestaurantHours    string `db:"restaurant_hours"`
}

func (r *Reservation) IsOwnedBy(userID string) bool {
	return r.UserID != "" && r.UserID == userID
}

// Filter narrows a reservation listing. Zero values match everything.
type Filter struct {
	UserID       string
	RestaurantID string
	Date         *time.Time
	Status       Status
	Limit        int
	Offset       int
}
