// AngelaMos | 2026
// handler.go

package menu

import (
	"net/http"
	"strconv"

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
	r.Get("/restaurants/{restaurantID}/menu", h.List)

	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Post("/restaurants/{restaurantID}/menu", h.Create)
		r.Put("/restaurants/{restaurantID}/menu/{itemID}", h.Update)
		r.Delete("/restaurants/{restaurantID}/menu/{itemID}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := core.PathID(r, "restaurantID")
	if !ok {
		core.NotFound(w, "restaurant")
		return
	}

	filter := Filter{Category: r.URL.Query().Get("category")}
	if v := r.URL.Query().Get("available"); v != "" {
		available, err := strconv.ParseBool(v)
		if err != nil {
			core.JSONError(w, core.ValidationError(core.FieldError{
				Field:   "available",
				Message: "must be true or false",
			}))
			return
		}
		filter.Available = &available
	}

	items, err := h.service.List(r.Context(), restaurantID, filter)
	if err != nil {
		core.HandleError(w, err, "restaurant")
		return
	}

	core.OK(w, ToItemResponseList(items))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := core.PathID(r, "restaurantID")
	if !ok {
		core.NotFound(w, "restaurant")
		return
	}

	var req CreateItemRequest
	if err := core.DecodeJSON(w, r, h.validator, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	item, err := h.service.Create(r.Context(), restaurantID, req)
	if err != nil {
		core.HandleError(w, err, "restaurant")
		return
	}

	core.Created(w, ToItemResponse(item))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok1 := core.PathID(r, "restaurantID")
	itemID, ok2 := core.PathID(r, "itemID")
	if !ok1 || !ok2 {
		core.NotFound(w, "menu item")
		return
	}

	var req UpdateItemRequest
	if err := core.DecodeJSON(w, r, h.validator, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	item, err := h.service.Update(r.Context(), restaurantID, itemID, req)
	if err != nil {
		core.HandleError(w, err, "menu item")
		return
	}

	core.OK(w, ToItemResponse(item))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok1 := core.PathID(r, "restaurantID")
	itemID, ok2 := core.PathID(r, "itemID")
	if !ok1 || !ok2 {
		core.NotFound(w, "menu item")
		return
	}

	if err := h.service.Delete(r.Context(), restaurantID, itemID); err != nil {
		core.HandleError(w, err, "menu item")
		return
	}

	core.NoContent(w)
}
