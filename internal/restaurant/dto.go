// AngelaMos | 2026
// dto.go

package restaurant

import (
	"time"

	"github.com/carterperez-dev/templates/tablebook/internal/menu"
	"github.com/carterperez-dev/templates/tablebook/internal/review"
)

type CreateRestaurantRequest struct {
	Name        string   `json:"name"                  validate:"required,min=1,max=100"`
	Cuisine     string   `json:"cuisine"               validate:"required,min=1,max=50"`
	Location    string   `json:"location"              validate:"required,min=1,max=100"`
	Description string   `json:"description,omitempty" validate:"max=500"`
	PriceRange  string   `json:"price_range,omitempty" validate:"omitempty,pricetier"`
	ImageURL    string   `json:"image_url,omitempty"   validate:"omitempty,url,max=200"`
	Phone       string   `json:"phone,omitempty"       validate:"max=20"`
	Address     string   `json:"address,omitempty"     validate:"max=200"`
	Hours       string   `json:"hours,omitempty"       validate:"max=100"`
	Features    []string `json:"features,omitempty"    validate:"dive,oneof=delivery takeout dine-in outdoor-seating private-dining wifi parking"`
	Latitude    *float64 `json:"latitude,omitempty"    validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude,omitempty"   validate:"omitempty,longitude"`
}

type UpdateRestaurantRequest struct {
	Name        *string   `json:"name,omitempty"        validate:"omitempty,min=1,max=100"`
	Cuisine     *string   `json:"cuisine,omitempty"     validate:"omitempty,min=1,max=50"`
	Location    *string   `json:"location,omitempty"    validate:"omitempty,min=1,max=100"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=500"`
	PriceRange  *string   `json:"price_range,omitempty" validate:"omitempty,pricetier"`
	ImageURL    *string   `json:"image_url,omitempty"   validate:"omitempty,url,max=200"`
	Phone       *string   `json:"phone,omitempty"       validate:"omitempty,max=20"`
	Address     *string   `json:"address,omitempty"     validate:"omitempty,max=200"`
	Hours       *string   `json:"hours,omitempty"       validate:"omitempty,max=100"`
	Features    *[]string `json:"features,omitempty"    validate:"omitempty,dive,oneof=delivery takeout dine-in outdoor-seating private-dining wifi parking"`
	Latitude    *float64  `json:"latitude,omitempty"    validate:"omitempty,latitude"`
	Longitude   *float64  `json:"longitude,omitempty"   validate:"omitempty,longitude"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active suspended archived"`
}

type ListParams struct {
	Search     string
	Cuisine    string
	Location   string
	PriceRange string
	MinRating  *float64
	Status     Status
	Page       int
	Limit      int
	SortBy     string
	SortOrder  string
}

var sortColumns = map[string]string{
	"rating":        "rating",
	"name":          "name",
	"created_at":    "created_at",
	"total_reviews": "total_reviews",
}

func (p *ListParams) Normalize(maxLimit int) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if _, ok := sortColumns[p.SortBy]; !ok {
		p.SortBy = "rating"
	}
	if p.SortOrder != "asc" {
		p.SortOrder = "desc"
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

type RestaurantResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Cuisine      string    `json:"cuisine"`
	Location     string    `json:"location"`
	Description  string    `json:"description,omitempty"`
	Rating       float64   `json:"rating"`
	TotalReviews int       `json:"total_reviews"`
	PriceRange   string    `json:"price_range"`
	ImageURL     string    `json:"image_url,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	Hours        string    `json:"hours,omitempty"`
	Features     []string  `json:"features"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type DetailResponse struct {
	RestaurantResponse
	Menu          []menu.ItemResponse     `json:"menu"`
	RecentReviews []review.ReviewResponse `json:"recent_reviews"`
}

func ToResponse(r *Restaurant) RestaurantResponse {
	features := []string(r.Features)
	if features == nil {
		features = []string{}
	}
	return RestaurantResponse{
		ID:           r.ID,
		Name:         r.Name,
		Cuisine:      r.Cuisine,
		Location:     r.Location,
		Description:  r.Description,
		Rating:       r.Rating,
		TotalReviews: r.TotalReviews,
		PriceRange:   r.PriceRange,
		ImageURL:     r.ImageURL,
		Phone:        r.Phone,
		Address:      r.Address,
		Hours:        r.Hours,
		Features:     features,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		Status:       string(r.Status),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func ToResponseList(rs []Restaurant) []RestaurantResponse {
	out := make([]RestaurantResponse, 0, len(rs))
	for i := range rs {
		out = append(out, ToResponse(&rs[i]))
	}
	return out
}
