// AngelaMos | 2026
// entity.go

package menu

import (
	"time"

	"github.com/lib/pq"
)

const (
	CategoryAppetizer  = "appetizer"
	CategoryMainCourse = "main-course"
	CategoryDessert    = "dessert"
	CategoryBeverage   = "beverage"
	CategorySideDish   = "side-dish"
)

const defaultPreparationTime = 15

type Item struct {
	ID              string         `db:"id"`
	RestaurantID    string         `db:"restaurant_id"`
	Name            string         `db:"name"`
	Description     string         `db:"description"`
	Price           float64        `db:"price"`
	Category        string         `db:"category"`
	ImageURL        string         `db:"image_url"`
	IsVegetarian    bool           `db:"is_vegetarian"`
	IsVegan         bool           `db:"is_vegan"`
	IsGlutenFree    bool           `db:"is_gluten_free"`
	IsSpicy         bool           `db:"is_spicy"`
	Allergens       pq.StringArray `db:"allergens"`
	IsAvailable     bool           `db:"is_available"`
	PreparationTime int            `db:"preparation_time"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

// Filter narrows a menu listing. Nil Available means both.
type Filter struct {
	Category  string
	Available *bool
}
