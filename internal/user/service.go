// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/tablebook/internal/auth"
	"github.com/carterperez-dev/templates/tablebook/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// The methods below up to Create back auth.UserProvider and deal in
// auth.UserInfo so the auth package never sees the User entity.

func (s *Service) GetByID(ctx context.Context, id string) (*auth.UserInfo, error) {
	return info(s.repo.GetByID(ctx, id))
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*auth.UserInfo, error) {
	return info(s.repo.GetByEmail(ctx, normalizeEmail(email)))
}

func (s *Service) Create(
	ctx context.Context,
	email, passwordHash, name, phone string,
) (*auth.UserInfo, error) {
	u := &User{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(email),
		PasswordHash: passwordHash,
		Name:         strings.TrimSpace(name),
		Phone:        strings.TrimSpace(phone),
		Role:         RoleUser,
		Status:       StatusActive,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return info(u, nil)
}

func (s *Service) IncrementTokenVersion(ctx context.Context, userID string) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies the profile fields present in req.
func (s *Service) Update(ctx context.Context, id string, req UpdateUserRequest) (*User, error) {
	return s.modify(ctx, id, func(u *User) error {
		if req.Name != nil {
			u.Name = strings.TrimSpace(*req.Name)
		}
		if req.Phone != nil {
			u.Phone = strings.TrimSpace(*req.Phone)
		}
		return nil
	})
}

func (s *Service) SetRole(ctx context.Context, id, role string) (*User, error) {
	if role != RoleUser && role != RoleAdmin {
		return nil, core.NewDomainError(core.ErrInvalidInput, fmt.Sprintf("invalid role %q", role))
	}

	return s.modify(ctx, id, func(u *User) error {
		u.Role = role
		return nil
	})
}

// SetStatus moves an account through its lifecycle on behalf of actorID.
// Leaving active bumps the token version in the repository, which signs
// the account out everywhere.
func (s *Service) SetStatus(ctx context.Context, actorID, id string, status Status) (*User, error) {
	if !status.Valid() {
		return nil, core.NewDomainError(core.ErrInvalidInput, fmt.Sprintf("invalid status %q", status))
	}

	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if status != StatusActive && target.IsAdmin() && actorID != id {
		return nil, fmt.Errorf("set status: admin accounts are protected: %w", core.ErrForbidden)
	}
	if target.Status == status {
		return target, nil
	}

	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Deactivate soft-deletes targetID. Users may close their own account;
// admins may close anyone's except another admin's.
func (s *Service) Deactivate(ctx context.Context, actorID, targetID string) error {
	if actorID != targetID {
		actor, err := s.repo.GetByID(ctx, actorID)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() {
			return fmt.Errorf("deactivate: %w", core.ErrForbidden)
		}

		target, err := s.repo.GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		if target.IsAdmin() {
			return fmt.Errorf("deactivate: admin accounts are protected: %w", core.ErrForbidden)
		}
	}

	return s.repo.SetStatus(ctx, targetID, StatusDeactivated)
}

func (s *Service) List(ctx context.Context, params ListUsersParams) ([]User, int, error) {
	if params.Status != "" && !Status(params.Status).Valid() {
		return nil, 0, core.NewDomainError(
			core.ErrInvalidInput,
			fmt.Sprintf("invalid status filter %q", params.Status),
		)
	}
	return s.repo.List(ctx, params)
}

func (s *Service) CountUsers(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) ListFavorites(ctx context.Context, userID string) ([]FavoriteRestaurant, error) {
	return s.repo.ListFavorites(ctx, userID)
}

// AddFavorite is idempotent. Unknown or inactive restaurants are
// reported as not found.
func (s *Service) AddFavorite(ctx context.Context, userID, restaurantID string) error {
	if uuid.Validate(restaurantID) != nil {
		return fmt.Errorf("add favorite: %w", core.ErrNotFound)
	}
	return s.repo.AddFavorite(ctx, userID, restaurantID)
}

func (s *Service) RemoveFavorite(ctx context.Context, userID, restaurantID string) error {
	if uuid.Validate(restaurantID) != nil {
		return fmt.Errorf("remove favorite: %w", core.ErrNotFound)
	}
	return s.repo.RemoveFavorite(ctx, userID, restaurantID)
}

func (s *Service) modify(ctx context.Context, id string, fn func(*User) error) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(u); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func info(u *User, err error) (*auth.UserInfo, error) {
	if err != nil {
		return nil, err
	}
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Phone:        u.Phone,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Status:       string(u.Status),
		TokenVersion: u.TokenVersion,
		CreatedAt:    u.CreatedAt,
	}, nil
}

var _ auth.UserProvider = (*Service)(nil)
