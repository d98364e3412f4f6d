// AngelaMos | 2026
// handler.go

package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/tablebook/internal/core"
	"github.com/carterperez-dev/templates/tablebook/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

// RegisterRoutes mounts /auth. credentialLimiter guards the endpoints
// that accept passwords or refresh tokens.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, credentialLimiter func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(credentialLimiter)
			r.Post("/login", h.Login)
			r.Post("/register", h.Register)
			r.Post("/refresh", h.Refresh)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Get("/me", h.GetMe)
			r.Post("/logout", h.Logout)
			r.Post("/logout-all", h.LogoutAll)
			r.Get("/sessions", h.GetSessions)
			r.Delete("/sessions/{sessionID}", h.RevokeSession)
			r.Post("/change-password", h.ChangePassword)
		})
	})
}

type exchangeFunc[T any] func(ctx context.Context, req T, userAgent, ip string) (*AuthResponse, error)

// exchange decodes req, runs fn with the caller's client details and
// writes the issued tokens with status.
func exchange[T any](h *Handler, status int, fn exchangeFunc[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req T
		if err := core.DecodeJSON(w, r, h.validator, &req); err != nil {
			core.JSONError(w, err)
			return
		}

		resp, err := fn(r.Context(), req, r.UserAgent(), middleware.ClientIP(r))
		if err != nil {
			core.HandleError(w, toAppError(err), "user")
			return
		}

		core.JSON(w, status, core.Response{Success: true, Data: resp})
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	exchange(h, http.StatusOK, h.service.Login)(w, r)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	exchange(h, http.StatusCreated, h.service.Register)(w, r)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	exchange(h, http.StatusOK, func(ctx context.Context, req RefreshRequest, ua, ip string) (*AuthResponse, error) {
		return h.service.Refresh(ctx, req.RefreshToken, ua, ip)
	})(w, r)
}

// Logout accepts an optional refresh token body. The access token used
// for the call is always revoked.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if r.ContentLength != 0 {
		if err := core.DecodeJSON(w, r, h.validator, &req); err != nil {
			core.JSONError(w, err)
			return
		}
	}

	if err := h.service.Logout(r.Context(), req.RefreshToken, claims); err != nil {
		if errors.Is(err, core.ErrForbidden) {
			core.Forbidden(w, "cannot revoke another user's token")
			return
		}
		core.HandleError(w, err, "token")
		return
	}

	core.NoContent(w)
}

func (h *Handler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	if err := h.service.LogoutAll(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		core.HandleError(w, err, "user")
		return
	}

	core.NoContent(w)
}

func (h *Handler) GetSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.service.GetActiveSessions(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.HandleError(w, err, "session")
		return
	}

	core.OK(w, SessionsResponse{Sessions: sessions})
}

func (h *Handler) RevokeSession(w http.ResponseWriter, r *http.Request) {
	err := h.service.RevokeSession(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "sessionID"),
	)
	if err != nil {
		if errors.Is(err, core.ErrForbidden) {
			core.Forbidden(w, "cannot revoke another user's session")
			return
		}
		core.HandleError(w, err, "session")
		return
	}

	core.NoContent(w)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := core.DecodeJSON(w, r, h.validator, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	err := h.service.ChangePassword(
		r.Context(),
		middleware.GetUserID(r.Context()),
		req.CurrentPassword,
		req.NewPassword,
	)
	if errors.Is(err, ErrInvalidCredentials) {
		core.JSONError(w, core.UnauthorizedError("current password is incorrect"))
		return
	}
	if err != nil {
		core.HandleError(w, err, "user")
		return
	}

	core.NoContent(w)
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetCurrentUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.HandleError(w, err, "user")
		return
	}

	core.OK(w, user)
}

func toAppError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return core.UnauthorizedError("invalid email or password")
	case errors.Is(err, ErrAccountInactive):
		return core.NewAppError(core.ErrForbidden, "account is not active",
			http.StatusForbidden, "ACCOUNT_INACTIVE")
	case errors.Is(err, ErrEmailExists):
		return core.DuplicateError("email")
	case errors.Is(err, ErrTokenReuse):
		return core.NewAppError(core.ErrTokenRevoked,
			"security alert: token reuse detected, all sessions revoked",
			http.StatusUnauthorized, "TOKEN_REUSE_DETECTED")
	case errors.Is(err, core.ErrTokenExpired):
		return core.TokenExpiredError()
	case errors.Is(err, core.ErrTokenRevoked):
		return core.TokenRevokedError()
	case errors.Is(err, core.ErrTokenInvalid):
		return core.TokenInvalidError()
	case errors.Is(err, core.ErrUnavailable):
		return core.UnavailableError()
	default:
		return err
	}
}
