// AngelaMos | 2026
// service.go

package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/tablebook/internal/config"
	"github.com/carterperez-dev/templates/tablebook/internal/core"
)

var errCodeExhausted = errors.New("could not allocate a unique confirmation code")

type Restaurants interface {
	EnsureActive(ctx context.Context, id string) error
}

type Service struct {
	repo        Repository
	restaurants Restaurants
	cfg         config.ReservationConfig
	logger      *slog.Logger
	now         func() time.Time
}

func NewService(
	repo Repository,
	restaurants Restaurants,
	cfg config.ReservationConfig,
	logger *slog.Logger,
) *Service {
	if cfg.MaxGuests < 1 {
		cfg.MaxGuests = 20
	}
	if cfg.CodeAttempts < 1 {
		cfg.CodeAttempts = 5
	}
	return &Service{
		repo:        repo,
		restaurants: restaurants,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *Service) MaxPageSize() int {
	return s.cfg.MaxPageSize
}

func (s *Service) Create(
	ctx context.Context,
	userID string,
	req CreateReservationRequest,
) (res *Reservation, err error) {
	ctx, span := core.StartSpan(ctx, "reservation.Create",
		attribute.String("restaurant.id", req.RestaurantID),
	)
	defer func() { core.EndSpan(span, err) }()

	date, err := ParseDate(req.Date, s.now())
	if err != nil {
		return nil, err
	}

	slot, err := NormalizeTime(req.Time)
	if err != nil {
		return nil, err
	}

	if err := s.checkGuests(req.Guests); err != nil {
		return nil, err
	}

	if err := s.restaurants.EnsureActive(ctx, req.RestaurantID); err != nil {
		return nil, err
	}

	rs := &Reservation{
		ID:              uuid.New().String(),
		RestaurantID:    req.RestaurantID,
		UserID:          userID,
		Date:            date,
		Time:            slot,
		Guests:          req.Guests,
		Status:          StatusPending,
		SpecialRequests: strings.TrimSpace(req.SpecialRequests),
		Notes:           strings.TrimSpace(req.Notes),
		ContactName:     strings.TrimSpace(req.ContactName),
		ContactPhone:    strings.TrimSpace(req.ContactPhone),
		ContactEmail:    strings.ToLower(strings.TrimSpace(req.ContactEmail)),
	}

	if err := s.insertWithCode(ctx, rs); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("reservation.id", rs.ID))

	s.logger.Info("reservation created",
		"reservation_id", rs.ID,
		"restaurant_id", rs.RestaurantID,
		"date", rs.Date.Format(dateLayout),
		"time", rs.Time,
	)

	return s.reload(ctx, rs), nil
}

// insertWithCode retries with a fresh confirmation code whenever the
// generated one collides.
func (s *Service) insertWithCode(ctx context.Context, rs *Reservation) error {
	for attempt := 1; attempt <= s.cfg.CodeAttempts; attempt++ {
		code, err := NewConfirmationCode()
		if err != nil {
			return fmt.Errorf("generate confirmation code: %w", err)
		}
		rs.ConfirmationCode = code

		err = s.repo.Create(ctx, rs)
		if !errors.Is(err, errCodeTaken) {
			return err
		}

		core.AddSpanEvent(ctx, "confirmation_code.collision",
			attribute.Int("attempt", attempt))
		s.logger.Warn("confirmation code collision",
			"attempt", attempt,
			"restaurant_id", rs.RestaurantID,
		)
	}

	return errCodeExhausted
}

// Get is owner-only.
func (s *Service) Get(ctx context.Context, id, callerID string) (*Reservation, error) {
	rs, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !rs.IsOwnedBy(callerID) {
		return nil, fmt.Errorf("get reservation: %w", core.ErrForbidden)
	}

	return rs, nil
}

func (s *Service) List(
	ctx context.Context,
	userID string,
	params ListParams,
) ([]Reservation, int, error) {
	if params.Status != "" && !params.Status.Valid() {
		return nil, 0, invalidStatusFilter()
	}

	params.Normalize(s.cfg.MaxPageSize)

	return s.repo.List(ctx, Filter{
		UserID: userID,
		Status: params.Status,
		Limit:  params.Limit,
		Offset: params.Offset(),
	})
}

func (s *Service) Update(
	ctx context.Context,
	id, callerID string,
	req UpdateReservationRequest,
) (res *Reservation, err error) {
	ctx, span := core.StartSpan(ctx, "reservation.Update",
		attribute.String("reservation.id", id),
	)
	defer func() { core.EndSpan(span, err) }()

	now := s.now()

	err = s.repo.Mutate(ctx, id, func(rs *Reservation) error {
		if !rs.IsOwnedBy(callerID) {
			return fmt.Errorf("update reservation: %w", core.ErrForbidden)
		}

		if err := CheckEditable(rs.Status); err != nil {
			return err
		}

		return s.apply(rs, req, now)
	})
	if err != nil {
		return nil, err
	}

	return s.reloadByID(ctx, id)
}

func (s *Service) apply(rs *Reservation, req UpdateReservationRequest, now time.Time) error {
	if req.Date != nil {
		date, err := ParseDate(*req.Date, now)
		if err != nil {
			return err
		}
		rs.Date = date
	}

	if req.Time != nil {
		slot, err := NormalizeTime(*req.Time)
		if err != nil {
			return err
		}
		rs.Time = slot
	}

	if req.Guests != nil {
		if err := s.checkGuests(*req.Guests); err != nil {
			return err
		}
		rs.Guests = *req.Guests
	}

	if req.ContactName != nil {
		rs.ContactName = strings.TrimSpace(*req.ContactName)
	}
	if req.ContactPhone != nil {
		rs.ContactPhone = strings.TrimSpace(*req.ContactPhone)
	}
	if req.ContactEmail != nil {
		rs.ContactEmail = strings.ToLower(strings.TrimSpace(*req.ContactEmail))
	}
	if req.SpecialRequests != nil {
		rs.SpecialRequests = strings.TrimSpace(*req.SpecialRequests)
	}
	if req.Notes != nil {
		rs.Notes = strings.TrimSpace(*req.Notes)
	}

	return nil
}

func (s *Service) Cancel(
	ctx context.Context,
	id, callerID string,
) (res *Reservation, err error) {
	ctx, span := core.StartSpan(ctx, "reservation.Cancel",
		attribute.String("reservation.id", id),
	)
	defer func() { core.EndSpan(span, err) }()

	err = s.repo.Mutate(ctx, id, func(rs *Reservation) error {
		if !rs.IsOwnedBy(callerID) {
			return fmt.Errorf("cancel reservation: %w", core.ErrForbidden)
		}

		if err := CanTransition(rs.Status, StatusCancelled, ActorOwner); err != nil {
			return err
		}

		rs.Status = StatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reservation cancelled", "reservation_id", id)

	return s.reloadByID(ctx, id)
}

// Lookup is the public confirmation-code view.
func (s *Service) Lookup(ctx context.Context, code string) (*Reservation, error) {
	return s.repo.GetByCode(ctx, NormalizeCode(code))
}

// Transition applies an administrative status change. Moving a
// cancelled reservation back is impossible by the transition table, so
// reopening an occupied slot cannot happen here.
func (s *Service) Transition(
	ctx context.Context,
	id string,
	req UpdateStatusRequest,
) (res *Reservation, err error) {
	ctx, span := core.StartSpan(ctx, "reservation.Transition",
		attribute.String("reservation.id", id),
		attribute.String("reservation.status", req.Status),
	)
	defer func() { core.EndSpan(span, err) }()

	target := Status(req.Status)

	err = s.repo.Mutate(ctx, id, func(rs *Reservation) error {
		if err := CanTransition(rs.Status, target, ActorAdmin); err != nil {
			return err
		}

		rs.Status = target
		if req.TableNumber != nil {
			rs.TableNumber = strings.TrimSpace(*req.TableNumber)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reservation status changed",
		"reservation_id", id,
		"status", target,
	)

	return s.reloadByID(ctx, id)
}

func (s *Service) AdminList(
	ctx context.Context,
	params AdminListParams,
) ([]Reservation, int, error) {
	if params.Status != "" && !params.Status.Valid() {
		return nil, 0, invalidStatusFilter()
	}

	filter := Filter{
		RestaurantID: params.RestaurantID,
		Status:       params.Status,
	}

	if params.Date != "" {
		date, err := time.Parse(dateLayout, params.Date)
		if err != nil {
			return nil, 0, core.ValidationError(core.FieldError{
				Field:   "date",
				Message: "must be a valid date",
			})
		}
		filter.Date = &date
	}

	params.Normalize(s.cfg.MaxPageSize)
	filter.Limit = params.Limit
	filter.Offset = params.Offset()

	return s.repo.List(ctx, filter)
}

func (s *Service) CountByStatus(ctx context.Context) (map[Status]int, error) {
	return s.repo.CountByStatus(ctx)
}

func (s *Service) checkGuests(n int) error {
	if n < 1 || n > s.cfg.MaxGuests {
		return core.ValidationError(core.FieldError{
			Field:   "guests",
			Message: fmt.Sprintf("must be between 1 and %d", s.cfg.MaxGuests),
		})
	}
	return nil
}

// reload fetches the joined restaurant snapshot. The write already
// committed, so a failed read falls back to what we have.
func (s *Service) reload(ctx context.Context, rs *Reservation) *Reservation {
	full, err := s.repo.GetByID(ctx, rs.ID)
	if err != nil {
		s.logger.Warn("reservation reload failed", "reservation_id", rs.ID, "error", err)
		return rs
	}
	return full
}

func (s *Service) reloadByID(ctx context.Context, id string) (*Reservation, error) {
	return s.repo.GetByID(ctx, id)
}

func invalidStatusFilter() error {
	return core.ValidationError(core.FieldError{
		Field:   "status",
		Message: "must be one of [pending confirmed cancelled completed]",
	})
}
