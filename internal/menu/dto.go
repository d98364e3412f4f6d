// AngelaMos | 2026
// dto.go

package menu

import (
	"time"
)

type CreateItemRequest struct {
	Name            string   `json:"name"                       validate:"required,min=1,max=100"`
	Description     string   `json:"description,omitempty"      validate:"max=300"`
	Price           *float64 `json:"price"                      validate:"required,gte=0"`
	Category        string   `json:"category"                   validate:"required,oneof=appetizer main-course dessert beverage side-dish"`
	ImageURL        string   `json:"image_url,omitempty"        validate:"omitempty,url,max=200"`
	IsVegetarian    bool     `json:"is_vegetarian"`
	IsVegan         bool     `json:"is_vegan"`
	IsGlutenFree    bool     `json:"is_gluten_free"`
	IsSpicy         bool     `json:"is_spicy"`
	Allergens       []string `json:"allergens,omitempty"        validate:"dive,oneof=dairy eggs fish shellfish tree-nuts peanuts wheat soy"`
	IsAvailable     *bool    `json:"is_available,omitempty"`
	PreparationTime *int     `json:"preparation_time,omitempty" validate:"omitempty,gte=0"`
}

type UpdateItemRequest struct {
	Name            *string   `json:"name,omitempty"             validate:"omitempty,min=1,max=100"`
	Description     *string   `json:"description,omitempty"      validate:"omitempty,max=300"`
	Price           *float64  `json:"price,omitempty"            validate:"omitempty,gte=0"`
	Category        *string   `json:"category,omitempty"         validate:"omitempty,oneof=appetizer main-course dessert beverage side-dish"`
	ImageURL        *string   `json:"image_url,omitempty"        validate:"omitempty,url,max=200"`
	IsVegetarian    *bool     `json:"is_vegetarian,omitempty"`
	IsVegan         *bool     `json:"is_vegan,omitempty"`
	IsGlutenFree    *bool     `json:"is_gluten_free,omitempty"`
	IsSpicy         *bool     `json:"is_spicy,omitempty"`
	Allergens       *[]string `json:"allergens,omitempty"        validate:"omitempty,dive,oneof=dairy eggs fish shellfish tree-nuts peanuts wheat soy"`
	IsAvailable     *bool     `json:"is_available,omitempty"`
	PreparationTime *int      `json:"preparation_time,omitempty" validate:"omitempty,gte=0"`
}

type ItemResponse struct {
	ID              string    `json:"id"`
	RestaurantID    string    `json:"restaurant_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Price           float64   `json:"price"`
	Category        string    `json:"category"`
	ImageURL        string    `json:"image_url,omitempty"`
	IsVegetarian    bool      `json:"is_vegetarian"`
	IsVegan         bool      `json:"is_vegan"`
	IsGlutenFree    bool      `json:"is_gluten_free"`
	IsSpicy         bool      `json:"is_spicy"`
	Allergens       []string  `json:"allergens"`
	IsAvailable     bool      `json:"is_available"`
	PreparationTime int       `json:"preparation_time"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func ToItemResponse(it *Item) ItemResponse {
	allergens := []string(it.Allergens)
	if allergens == nil {
		allergens = []string{}
	}
	return ItemResponse{
		ID:              it.ID,
		RestaurantID:    it.RestaurantID,
		Name:            it.Name,
		Description:     it.Description,
		Price:           it.Price,
		Category:        it.Category,
		ImageURL:        it.ImageURL,
		IsVegetarian:    it.IsVegetarian,
		IsVegan:         it.IsVegan,
		IsGlutenFree:    it.IsGlutenFree,
		IsSpicy:         it.IsSpicy,
		Allergens:       allergens,
		IsAvailable:     it.IsAvailable,
		PreparationTime: it.PreparationTime,
		CreatedAt:       it.CreatedAt,
		UpdatedAt:       it.UpdatedAt,
	}
}

func ToItemResponseList(items []Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for i := range items {
		out = append(out, ToItemResponse(&items[i]))
	}
	return out
}
