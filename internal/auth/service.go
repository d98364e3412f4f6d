// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/tablebook/internal/core"
	"github.com/carterperez-dev/templates/tablebook/internal/middleware"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenReuse         = errors.New("token reuse detected")
	ErrEmailExists        = errors.New("email already exists")
	ErrAccountInactive    = errors.New("account is not active")
)

// UserProvider is implemented by the user service.
type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Create(
		ctx context.Context,
		email, passwordHash, name, phone string,
	) (*UserInfo, error)
	IncrementTokenVersion(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type Service struct {
	repo      Repository
	jwt       *JWTManager
	users     UserProvider
	blacklist blacklist
	now       func() time.Time
}

func NewService(
	repo Repository,
	jwt *JWTManager,
	users UserProvider,
	redisClient *redis.Client,
) *Service {
	return &Service{
		repo:      repo,
		jwt:       jwt,
		users:     users,
		blacklist: blacklist{client: redisClient},
		now:       time.Now,
	}
}

// session is the client context recorded against a refresh token.
type session struct {
	userAgent string
	ipAddress string
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	var storedHash *string

	user, err := s.users.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		storedHash = &user.PasswordHash
	case !errors.Is(err, core.ErrNotFound):
		return nil, fmt.Errorf("get user: %w", err)
	}

	// Unknown accounts still pay for a password check.
	valid, rehashed, err := core.VerifyPasswordTimingSafe(req.Password, storedHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive() {
		return nil, ErrAccountInactive
	}

	if rehashed != "" {
		_ = s.users.UpdatePassword(ctx, user.ID, rehashed) //nolint:errcheck // opportunistic upgrade
	}

	return s.issue(ctx, user, session{userAgent, ipAddress}, "")
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, req.Email, hash, req.Name, req.Phone)
	if errors.Is(err, core.ErrDuplicateKey) {
		return nil, ErrEmailExists
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.issue(ctx, user, session{userAgent, ipAddress}, "")
}

// Refresh rotates a refresh token. The presented token is claimed before
// its replacement is issued, so of two concurrent refreshes with the same
// token only one wins and the other is treated as reuse.
func (s *Service) Refresh(
	ctx context.Context,
	refreshToken, userAgent, ipAddress string,
) (*AuthResponse, error) {
	stored, err := s.repo.FindByHash(ctx, core.HashToken(refreshToken))
	if errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
	}
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	if stored.IsUsed {
		return nil, s.reuseDetected(ctx, stored.FamilyID)
	}

	if !stored.IsValid(s.now()) {
		if stored.IsRevoked() {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
		}
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenExpired)
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	if !user.IsActive() {
		_ = s.repo.RevokeByFamilyID(ctx, stored.FamilyID) //nolint:errcheck // account already locked out
		return nil, ErrAccountInactive
	}

	nextID := uuid.NewString()
	err = s.repo.MarkAsUsed(ctx, stored.ID, nextID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, s.reuseDetected(ctx, stored.FamilyID)
	}
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	return s.issueWithID(ctx, nextID, user, session{userAgent, ipAddress}, stored.FamilyID)
}

func (s *Service) reuseDetected(ctx context.Context, familyID string) error {
	_ = s.repo.RevokeByFamilyID(ctx, familyID) //nolint:errcheck // revocation is best effort here
	return ErrTokenReuse
}

// Logout revokes the refresh token and blacklists the presented access
// token for the rest of its lifetime.
func (s *Service) Logout(
	ctx context.Context,
	refreshToken string,
	claims *middleware.AccessTokenClaims,
) error {
	if err := s.RevokeAccessToken(ctx, claims.JTI, claims.ExpiresAt); err != nil {
		return err
	}

	if refreshToken == "" {
		return nil
	}

	stored, err := s.repo.FindByHash(ctx, core.HashToken(refreshToken))
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	if stored.UserID != claims.UserID {
		return fmt.Errorf("logout: %w", core.ErrForbidden)
	}

	err = s.repo.RevokeByID(ctx, stored.ID)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("logout: %w", err)
	}

	return nil
}

// LogoutAll revokes every refresh token and, by bumping the token
// version, every access token already issued to the user.
func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	if err := s.repo.RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}

	if err := s.users.IncrementTokenVersion(ctx, userID); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}

	return nil
}

func (s *Service) RevokeAccessToken(
	ctx context.Context,
	jti string,
	expiresAt time.Time,
) error {
	return s.blacklist.add(ctx, jti, expiresAt.Sub(s.now()))
}

// VerifyAccessToken authenticates a bearer token. Beyond the signature
// it rejects blacklisted tokens, stale token versions and accounts that
// are no longer active. The returned role is the account's current one.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.ParseAccessToken(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blacklist.contains(ctx, claims.JTI)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", errors.Join(core.ErrUnavailable, err))
	}

	if !user.IsActive() || claims.TokenVersion < user.TokenVersion {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	claims.Role = user.Role
	return claims, nil
}

func (s *Service) GetActiveSessions(
	ctx context.Context,
	userID string,
) ([]SessionInfo, error) {
	tokens, err := s.repo.GetActiveSessionsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	sessions := make([]SessionInfo, len(tokens))
	for i := range tokens {
		sessions[i] = tokens[i].Session()
	}
	return sessions, nil
}

func (s *Service) RevokeSession(
	ctx context.Context,
	userID, sessionID string,
) error {
	token, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	if token.UserID != userID {
		return fmt.Errorf("revoke session: %w", core.ErrForbidden)
	}

	return s.repo.RevokeByID(ctx, sessionID)
}

// ChangePassword signs the user out everywhere once the new hash is
// stored.
func (s *Service) ChangePassword(
	ctx context.Context,
	userID, currentPassword, newPassword string,
) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	valid, err := core.VerifyPassword(currentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if !valid {
		return ErrInvalidCredentials
	}

	hash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	return s.LogoutAll(ctx, userID)
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID string,
) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := user.Public()
	return &resp, nil
}

// PurgeExpiredTokens deletes refresh tokens that expired more than
// grace ago.
func (s *Service) PurgeExpiredTokens(
	ctx context.Context,
	grace time.Duration,
) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now().Add(-grace))
}

func (s *Service) issue(
	ctx context.Context,
	user *UserInfo,
	sess session,
	familyID string,
) (*AuthResponse, error) {
	return s.issueWithID(ctx, uuid.NewString(), user, sess, familyID)
}

func (s *Service) issueWithID(
	ctx context.Context,
	tokenID string,
	user *UserInfo,
	sess session,
	familyID string,
) (*AuthResponse, error) {
	access, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID:       user.ID,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	refresh, err := s.jwt.CreateRefreshToken(user.ID, familyID)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	err = s.repo.Create(ctx, &RefreshToken{
		ID:        tokenID,
		UserID:    user.ID,
		TokenHash: refresh.Hash,
		FamilyID:  refresh.FamilyID,
		ExpiresAt: refresh.ExpiresAt,
		UserAgent: sess.userAgent,
		IPAddress: sess.ipAddress,
	})
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	return &AuthResponse{
		User:   user.Public(),
		Tokens: bearer(access, refresh.Token, s.now(), s.jwt.AccessTTL()),
	}, nil
}

var _ middleware.TokenVerifier = (*Service)(nil)
