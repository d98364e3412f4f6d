// AngelaMos | 2026
// handler.go

package user

import (
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

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/users/me", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.GetMe)
		r.Put("/", h.UpdateMe)
		r.Delete("/", h.DeleteMe)

		r.Get("/favorites", h.ListFavorites)
		r.Post("/favorites/{restaurantID}", h.AddFavorite)
		r.Delete("/favorites/{restaurantID}", h.RemoveFavorite)
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListUsers)
		r.Route("/{userID}", func(r chi.Router) {
			r.Get("/", h.GetUser)
			r.Put("/", h.UpdateUser)
			r.Delete("/", h.DeleteUser)
			r.Put("/role", h.UpdateUserRole)
			r.Put("/status", h.UpdateUserStatus)
		})
	})
}

func me(r *http.Request) string {
	return middleware.GetUserID(r.Context())
}

func target(r *http.Request) string {
	return chi.URLParam(r, "userID")
}

func reply(w http.ResponseWriter, u *User, err error) {
	if err != nil {
		core.HandleError(w, err, "user")
		return
	}
	core.OK(w, ToUserResponse(u))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := core.DecodeJSON(w, r, h.validator, dst); err != nil {
		core.JSONError(w, err)
		return false
	}
	return true
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Get(r.Context(), me(r))
	reply(w, u, err)
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.service.Update(r.Context(), me(r), req)
	reply(w, u, err)
}

func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Deactivate(r.Context(), me(r), me(r)); err != nil {
		core.HandleError(w, err, "user")
		return
	}
	core.NoContent(w)
}

func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	favorites, err := h.service.ListFavorites(r.Context(), me(r))
	if err != nil {
		core.HandleError(w, err, "favorite")
		return
	}
	core.OK(w, favorites)
}

func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	err := h.service.AddFavorite(r.Context(), me(r), chi.URLParam(r, "restaurantID"))
	if err != nil {
		core.HandleError(w, err, "restaurant")
		return
	}
	core.NoContent(w)
}

func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	err := h.service.RemoveFavorite(r.Context(), me(r), chi.URLParam(r, "restaurantID"))
	if err != nil {
		core.HandleError(w, err, "favorite")
		return
	}
	core.NoContent(w)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListUsersParams{
		Page:   core.QueryInt(r, "page", 1),
		Limit:  core.QueryInt(r, "limit", defaultPageSize),
		Search: q.Get("search"),
		Role:   q.Get("role"),
		Status: q.Get("status"),
	}
	params.Normalize()

	users, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.HandleError(w, err, "user")
		return
	}

	core.Paginated(w, ToUserResponseList(users), len(users), params.Page, params.Limit, total)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Get(r.Context(), target(r))
	reply(w, u, err)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.service.Update(r.Context(), target(r), req)
	reply(w, u, err)
}

func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRoleRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.service.SetRole(r.Context(), target(r), req.Role)
	reply(w, u, err)
}

func (h *Handler) UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.service.SetStatus(r.Context(), me(r), target(r), Status(req.Status))
	reply(w, u, err)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Deactivate(r.Context(), me(r), target(r)); err != nil {
		core.HandleError(w, err, "user")
		return
	}
	core.NoContent(w)
}
