// AngelaMos | 2026
// service.go

package menu

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Restaurants is the slice of the restaurant service the menu needs.
type Restaurants interface {
	EnsureActive(ctx context.Context, id string) error
	EnsureExists(ctx context.Context, id string) error
	InvalidateDetail(ctx context.Context, id string)
}

type Service struct {
	repo        Repository
	restaurants Restaurants
}

func NewService(repo Repository, restaurants Restaurants) *Service {
	return &Service{repo: repo, restaurants: restaurants}
}

// List is public and only serves active restaurants.
func (s *Service) List(
	ctx context.Context,
	restaurantID string,
	filter Filter,
) ([]Item, error) {
	if err := s.restaurants.EnsureActive(ctx, restaurantID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, restaurantID, filter)
}

func (s *Service) Create(
	ctx context.Context,
	restaurantID string,
	req CreateItemRequest,
) (*Item, error) {
	if err := s.restaurants.EnsureExists(ctx, restaurantID); err != nil {
		return nil, err
	}

	item := &Item{
		ID:              uuid.New().String(),
		RestaurantID:    restaurantID,
		Name:            strings.TrimSpace(req.Name),
		Description:     strings.TrimSpace(req.Description),
		Price:           *req.Price,
		Category:        req.Category,
		ImageURL:        req.ImageURL,
		IsVegetarian:    req.IsVegetarian,
		IsVegan:         req.IsVegan,
		IsGlutenFree:    req.IsGlutenFree,
		IsSpicy:         req.IsSpicy,
		Allergens:       dedupe(req.Allergens),
		IsAvailable:     true,
		PreparationTime: defaultPreparationTime,
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}
	if req.PreparationTime != nil {
		item.PreparationTime = *req.PreparationTime
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.restaurants.InvalidateDetail(ctx, restaurantID)
	return item, nil
}

func (s *Service) Update(
	ctx context.Context,
	restaurantID, id string,
	req UpdateItemRequest,
) (*Item, error) {
	item, err := s.repo.GetByID(ctx, restaurantID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		item.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.ImageURL != nil {
		item.ImageURL = *req.ImageURL
	}
	if req.IsVegetarian != nil {
		item.IsVegetarian = *req.IsVegetarian
	}
	if req.IsVegan != nil {
		item.IsVegan = *req.IsVegan
	}
	if req.IsGlutenFree != nil {
		item.IsGlutenFree = *req.IsGlutenFree
	}
	if req.IsSpicy != nil {
		item.IsSpicy = *req.IsSpicy
	}
	if req.Allergens != nil {
		item.Allergens = dedupe(*req.Allergens)
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}
	if req.PreparationTime != nil {
		item.PreparationTime = *req.PreparationTime
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.restaurants.InvalidateDetail(ctx, restaurantID)
	return item, nil
}

func (s *Service) Delete(ctx context.Context, restaurantID, id string) error {
	if err := s.repo.Delete(ctx, restaurantID, id); err != nil {
		return err
	}

	s.restaurants.InvalidateDetail(ctx, restaurantID)
	return nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
