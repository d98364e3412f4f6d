// AngelaMos | 2026
// entity.go

package review

import (
	"time"
)

type Review struct {
	ID             string    `db:"id"`
	RestaurantID   string    `db:"restaurant_id"`
	UserID         string    `db:"user_id"`
	UserName       string    `db:"user_name"`
	Rating         int       `db:"rating"`
	Comment        string    `db:"comment"`
	FoodRating     *int      `db:"food_rating"`
	ServiceRating  *int      `db:"service_rating"`
	AmbianceRating *int      `db:"ambiance_rating"`
	IsVerified     bool      `db:"is_verified"`
	HelpfulCount   int       `db:"helpful_count"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
