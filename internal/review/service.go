// AngelaMos | 2026
// service.go

package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/tablebook/internal/core"
)

type Restaurants interface {
	EnsureActive(ctx context.Context, id string) error
	InvalidateDetail(ctx context.Context, id string)
}

// RatingSettler brings a restaurant's derived rating back in line with
// its reviews. Settle never fails the caller's write.
type RatingSettler interface {
	Settle(ctx context.Context, restaurantID string) error
}

type Service struct {
	repo        Repository
	restaurants Restaurants
	rating      RatingSettler
}

func NewService(
	repo Repository,
	restaurants Restaurants,
	rating RatingSettler,
) *Service {
	return &Service{repo: repo, restaurants: restaurants, rating: rating}
}

func (s *Service) List(
	ctx context.Context,
	restaurantID string,
	page, limit int,
) ([]Review, int, error) {
	if err := s.restaurants.EnsureActive(ctx, restaurantID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListByRestaurant(ctx, restaurantID, limit, (page-1)*limit)
}

func (s *Service) Create(
	ctx context.Context,
	restaurantID, userID string,
	req CreateReviewRequest,
) (*Review, error) {
	if err := s.restaurants.EnsureActive(ctx, restaurantID); err != nil {
		return nil, err
	}

	rv := &Review{
		ID:             uuid.New().String(),
		RestaurantID:   restaurantID,
		UserID:         userID,
		Rating:         req.Rating,
		Comment:        strings.TrimSpace(req.Comment),
		FoodRating:     req.FoodRating,
		ServiceRating:  req.ServiceRating,
		AmbianceRating: req.AmbianceRating,
	}

	if err := s.repo.Create(ctx, rv); err != nil {
		return nil, err
	}

	s.settle(ctx, restaurantID)

	if full, err := s.repo.GetByID(ctx, rv.ID); err == nil {
		return full, nil
	}
	return rv, nil
}

func (s *Service) Update(
	ctx context.Context,
	id, callerID string,
	req UpdateReviewRequest,
) (*Review, error) {
	rv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if rv.UserID != callerID {
		return nil, fmt.Errorf("update review: %w", core.ErrForbidden)
	}

	if req.Rating != nil {
		rv.Rating = *req.Rating
	}
	if req.Comment != nil {
		rv.Comment = strings.TrimSpace(*req.Comment)
	}
	if req.FoodRating != nil {
		rv.FoodRating = req.FoodRating
	}
	if req.ServiceRating != nil {
		rv.ServiceRating = req.ServiceRating
	}
	if req.AmbianceRating != nil {
		rv.AmbianceRating = req.AmbianceRating
	}

	if err := s.repo.Update(ctx, rv); err != nil {
		return nil, err
	}

	s.settle(ctx, rv.RestaurantID)
	return rv, nil
}

// Delete is allowed for the author and for admins.
func (s *Service) Delete(
	ctx context.Context,
	id, callerID string,
	isAdmin bool,
) error {
	rv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if rv.UserID != callerID && !isAdmin {
		return fmt.Errorf("delete review: %w", core.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.settle(ctx, rv.RestaurantID)
	return nil
}

func (s *Service) ToggleHelpful(
	ctx context.Context,
	reviewID, userID string,
) (HelpfulResponse, error) {
	helpful, count, err := s.repo.ToggleHelpful(ctx, reviewID, userID)
	if err != nil {
		return HelpfulResponse{}, err
	}
	return HelpfulResponse{Helpful: helpful, HelpfulCount: count}, nil
}

func (s *Service) settle(ctx context.Context, restaurantID string) {
	//nolint:errcheck // Settle logs and records its own failures
	_ = s.rating.Settle(ctx, restaurantID)
	s.restaurants.InvalidateDetail(ctx, restaurantID)
}
