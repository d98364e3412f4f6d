// AngelaMos | 2026
// service.go

package restaurant

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/tablebook/internal/core"
	"github.com/carterperez-dev/templates/tablebook/internal/menu"
	"github.com/carterperez-dev/templates/tablebook/internal/review"
)

const recentReviewCount = 5

type MenuReader interface {
	List(ctx context.Context, restaurantID string, filter menu.Filter) ([]menu.Item, error)
}

type ReviewReader interface {
	ListByRestaurant(
		ctx context.Context,
		restaurantID string,
		limit, offset int,
	) ([]review.Review, int, error)
}

type Service struct {
	repo        Repository
	menus       MenuReader
	reviews     ReviewReader
	cache       *core.Cache
	cacheTTL    time.Duration
	maxPageSize int
	logger      *slog.Logger
}

func NewService(
	repo Repository,
	menus MenuReader,
	reviews ReviewReader,
	cache *core.Cache,
	cacheTTL time.Duration,
	maxPageSize int,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:        repo,
		menus:       menus,
		reviews:     reviews,
		cache:       cache,
		cacheTTL:    cacheTTL,
		maxPageSize: maxPageSize,
		logger:      logger,
	}
}

func detailKey(id string) string {
	return "restaurant:" + id
}

// List serves the public catalogue, which only ever shows active
// restaurants.
func (s *Service) List(
	ctx context.Context,
	params ListParams,
) ([]Restaurant, int, error) {
	params.Status = StatusActive
	params.Normalize(s.maxPageSize)
	return s.repo.List(ctx, params)
}

// ListAll lets admins browse by any lifecycle status.
func (s *Service) ListAll(
	ctx context.Context,
	params ListParams,
) ([]Restaurant, int, error) {
	if params.Status != "" && !params.Status.Valid() {
		return nil, 0, core.ValidationError(core.FieldError{
			Field:   "status",
			Message: "must be one of [active suspended archived]",
		})
	}
	params.Normalize(s.maxPageSize)
	return s.repo.List(ctx, params)
}

func (s *Service) Get(ctx context.Context, id string) (*Restaurant, error) {
	return s.repo.GetByID(ctx, id)
}

// GetActive hides suspended and archived restaurants behind NotFound.
func (s *Service) GetActive(ctx context.Context, id string) (*Restaurant, error) {
	rest, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rest.IsActive() {
		return nil, fmt.Errorf("get active restaurant: %w", core.ErrNotFound)
	}
	return rest, nil
}

func (s *Service) GetDetail(ctx context.Context, id string) (*DetailResponse, error) {
	var cached DetailResponse
	found, err := s.cache.Get(ctx, detailKey(id), &cached)
	if err != nil {
		s.logger.Warn("restaurant cache read failed", "restaurant_id", id, "error", err)
	}
	if found {
		return &cached, nil
	}

	gen, genErr := s.cache.Generation(ctx, detailKey(id))
	if genErr != nil {
		s.logger.Warn("restaurant cache read failed", "restaurant_id", id, "error", genErr)
	}

	rest, err := s.GetActive(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := s.menus.List(ctx, id, menu.Filter{})
	if err != nil {
		return nil, err
	}

	recent, _, err := s.reviews.ListByRestaurant(ctx, id, recentReviewCount, 0)
	if err != nil {
		return nil, err
	}

	detail := &DetailResponse{
		RestaurantResponse: ToResponse(rest),
		Menu:               menu.ToItemResponseList(items),
		RecentReviews:      review.ToReviewResponseList(recent),
	}

	if genErr == nil {
		_, err := s.cache.SetIfGeneration(ctx, detailKey(id), detail, s.cacheTTL, gen)
		if err != nil {
			s.logger.Warn("restaurant cache write failed", "restaurant_id", id, "error", err)
		}
	}

	return detail, nil
}

func (s *Service) Create(
	ctx context.Context,
	req CreateRestaurantRequest,
) (*Restaurant, error) {
	priceRange := req.PriceRange
	if priceRange == "" {
		priceRange = DefaultPriceRange
	}

	rest := &Restaurant{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(req.Name),
		Cuisine:     strings.TrimSpace(req.Cuisine),
		Location:    strings.TrimSpace(req.Location),
		Description: strings.TrimSpace(req.Description),
		PriceRange:  priceRange,
		ImageURL:    req.ImageURL,
		Phone:       strings.TrimSpace(req.Phone),
		Address:     strings.TrimSpace(req.Address),
		Hours:       strings.TrimSpace(req.Hours),
		Features:    uniqueFeatures(req.Features),
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Status:      StatusActive,
	}

	if err := s.repo.Create(ctx, rest); err != nil {
		return nil, err
	}

	return rest, nil
}

func (s *Service) Update(
	ctx context.Context,
	id string,
	req UpdateRestaurantRequest,
) (*Restaurant, error) {
	rest, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		rest.Name = strings.TrimSpace(*req.Name)
	}
	if req.Cuisine != nil {
		rest.Cuisine = strings.TrimSpace(*req.Cuisine)
	}
	if req.Location != nil {
		rest.Location = strings.TrimSpace(*req.Location)
	}
	if req.Description != nil {
		rest.Description = strings.TrimSpace(*req.Description)
	}
	if req.PriceRange != nil {
		rest.PriceRange = *req.PriceRange
	}
	if req.ImageURL != nil {
		rest.ImageURL = *req.ImageURL
	}
	if req.Phone != nil {
		rest.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		rest.Address = strings.TrimSpace(*req.Address)
	}
	if req.Hours != nil {
		rest.Hours = strings.TrimSpace(*req.Hours)
	}
	if req.Features != nil {
		rest.Features = uniqueFeatures(*req.Features)
	}
	if req.Latitude != nil {
		rest.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		rest.Longitude = req.Longitude
	}

	if err := s.repo.Update(ctx, rest); err != nil {
		return nil, err
	}

	s.InvalidateDetail(ctx, id)
	return rest, nil
}

func (s *Service) SetStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return core.ValidationError(core.FieldError{
			Field:   "status",
			Message: "must be one of [active suspended archived]",
		})
	}

	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		return err
	}

	s.InvalidateDetail(ctx, id)
	return nil
}

// Archive is the soft delete. Reviews and reservations keep pointing at
// the row.
func (s *Service) Archive(ctx context.Context, id string) error {
	return s.SetStatus(ctx, id, StatusArchived)
}

func (s *Service) EnsureActive(ctx context.Context, id string) error {
	_, err := s.GetActive(ctx, id)
	return err
}

func (s *Service) EnsureExists(ctx context.Context, id string) error {
	_, err := s.repo.GetByID(ctx, id)
	return err
}

// InvalidateDetail drops the cached detail view and stops detail loads
// already in flight from caching what they read. Failures only cost a
// stale read until the TTL expires.
func (s *Service) InvalidateDetail(ctx context.Context, id string) {
	if err := s.cache.Invalidate(ctx, detailKey(id)); err != nil {
		s.logger.Warn("restaurant cache invalidate failed",
			"restaurant_id", id,
			"error", err,
		)
	}
}

func (s *Service) CountByStatus(ctx context.Context) (map[Status]int, error) {
	return s.repo.CountByStatus(ctx)
}

func uniqueFeatures(in []string) []string {
	out := make([]string, 0, len(in))
	for _, f := range in {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}
