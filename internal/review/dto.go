// AngelaMos | 2026
// dto.go

package review

import (
	"time"
)

type CreateReviewRequest struct {
	Rating         int    `json:"rating"                    validate:"required,gte=1,lte=5"`
	Comment        string `json:"comment,omitempty"         validate:"max=500"`
	FoodRating     *int   `json:"food_rating,omitempty"     validate:"omitempty,gte=1,lte=5"`
	ServiceRating  *int   `json:"service_rating,omitempty"  validate:"omitempty,gte=1,lte=5"`
	AmbianceRating *int   `json:"ambiance_rating,omitempty" validate:"omitempty,gte=1,lte=5"`
}

type UpdateReviewRequest struct {
	Rating         *int    `json:"rating,omitempty"          validate:"omitempty,gte=1,lte=5"`
	Comment        *string `json:"comment,omitempty"         validate:"omitempty,max=500"`
	FoodRating     *int    `json:"food_rating,omitempty"     validate:"omitempty,gte=1,lte=5"`
	ServiceRating  *int    `json:"service_rating,omitempty"  validate:"omitempty,gte=1,lte=5"`
	AmbianceRating *int    `json:"ambiance_rating,omitempty" validate:"omitempty,gte=1,lte=5"`
}

type ReviewResponse struct {
	ID             string    `json:"id"`
	RestaurantID   string    `json:"restaurant_id"`
	UserID         string    `json:"user_id"`
	UserName       string    `json:"user_name"`
	Rating         int       `json:"rating"`
	Comment        string    `json:"comment,omitempty"`
	FoodRating     *int      `json:"food_rating,omitempty"`
	ServiceRating  *int      `json:"service_rating,omitempty"`
	AmbianceRating *int      `json:"ambiance_rating,omitempty"`
	IsVerified     bool      `json:"is_verified"`
	HelpfulCount   int       `json:"helpful_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type HelpfulResponse struct {
	Helpful      bool `json:"helpful"`
	HelpfulCount int  `json:"helpful_count"`
}

func ToReviewResponse(r *Review) ReviewResponse {
	return ReviewResponse{
		ID:             r.ID,
		RestaurantID:   r.RestaurantID,
		UserID:         r.UserID,
		UserName:       r.UserName,
		Rating:         r.Rating,
		Comment:        r.Comment,
		FoodRating:     r.FoodRating,
		ServiceRating:  r.ServiceRating,
		AmbianceRating: r.AmbianceRating,
		IsVerified:     r.IsVerified,
		HelpfulCount:   r.HelpfulCount,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func ToReviewResponseList(reviews []Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, ToReviewResponse(&reviews[i]))
	}
	return out
}
