// AngelaMos | 2026
// handler.go

package restaurant

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/tablebook/internal/core"
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
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Get("/restaurants", h.List)
	r.Get("/restaurants/{restaurantID}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Post("/restaurants", h.Create)
		r.Put("/restaurants/{restaurantID}", h.Update)
		r.Delete("/restaurants/{restaurantID}", h.Archive)
		r.Put("/restaurants/{restaurantID}/status", h.SetStatus)
	})
}

// RegisterAdminRoutes mounts the unfiltered catalogue under /admin.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/restaurants", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListAll)
		r.Get("/{restaurantID}", h.AdminGet)
	})
}

func listParams(r *http.Request) ListParams {
	q := r.URL.Query()
	return ListParams{
		Search:     q.Get("search"),
		Cuisine:    q.Get("cuisine"),
		Location:   q.Get("location"),
		PriceRange: q.Get("price_range"),
		MinRating:  core.QueryFloat(r, "min_rating"),
		Status:     Status(q.Get("status")),
		Page:       core.QueryInt(r, "page", 1),
		Limit:      core.QueryInt(r, "limit", 10),
		SortBy:     q.Get("sort_by"),
		SortOrder:  q.Get("sort_order"),
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.service.List)
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.service.ListAll)
}

func (h *Handler) writeList(
	w http.ResponseWriter,
	r *http.Request,
	list func(ctx context.Context, p ListParams) ([]Restaurant, int, error),
) {
	params := listParams(r)
	params.Normalize(h.service.maxPageSize)

	rests, total, err := list(r.Context(), params)
	if err != nil {
		core.HandleError(w, err, "restaurant")
		return
	}

	core.Paginated(w, ToResponseList(rests), len(rests), params.Page, params.Limit, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(r, "restaurantID")
	if !ok {
		core.NotFound(w, "restaurant")
		return
	}

	detail, err := h.service.GetDetail(r.Context(), id)
	if err != nil {
		core.HandleError(w, err, "restaurant")
		return
	}

	core.OK(w, detail)
}

func (h *Handler) AdminGet(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(r, "restaurantID")
	if !ok {
		core.NotFound(w, "restaurant")
		return
	}

	rest, err := h.service.Get(r.Context(), id)
	if err != nil {
		core.HandleError(w, err, "restaurant")
		return
	}

	core.OK(w, ToResponse(rest))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRestaurantRequest
	if err := core.DecodeJSON(w, r, h.validator, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	rest, err := h.service.Create(r.Context(), req)
	if err != nil {
		core.HandleError(w, err, "restaurant")
		return
	}

	core.Created(w, ToResponse(rest))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(r, "restaurantID")
	if !ok {
		core.NotFound(w, "restaurant")
		return
	}

	var req UpdateRestaurantRequest
	if err := core.DecodeJSON(w, r, h.validator, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	rest, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		core.HandleError(w, err, "restaurant")
		return
	}

	core.OK(w, ToResponse(rest))
}

func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(r, "restaurantID")
	if !ok {
		core.NotFound(w, "restaurant")
		return
	}

	if err := h.service.Archive(r.Context(), id); err != nil {
		core.HandleError(w, err, "restaurant")
		return
	}

	core.NoContent(w)
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(r, "restaurantID")
	if !ok {
		core.NotFound(w, "restaurant")
		return
	}

	var req UpdateStatusRequest
	if err := core.DecodeJSON(w, r, h.validator, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	if err := h.service.SetStatus(r.Context(), id, Status(req.Status)); err != nil {
		core.HandleError(w, err, "restaurant")
		return
	}

	core.NoContent(w)
}
