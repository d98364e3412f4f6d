// AngelaMos | 2026
// handler.go

package review

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/tablebook/internal/core"
	"github.com/carterperez-dev/templates/tablebook/internal/middleware"
)

type Handler struct {
	service     *Service
	validator   *validator.Validate
	maxPageSize int
}

func NewHandler(service *Service, maxPageSize int) *Handler {
	return &Handler{
		service:     service,
		validator:   core.NewValidator(),
		maxPageSize: maxPageSize,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Get("/restaurants/{restaurantID}/reviews", h.List)

	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/restaurants/{restaurantID}/reviews", h.Create)
		r.Put("/reviews/{reviewID}", h.Update)
		r.Delete("/reviews/{reviewID}", h.Delete)
		r.Post("/reviews/{reviewID}/helpful", h.ToggleHelpful)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := core.PathID(r, "restaurantID")
	if !ok {
		core.NotFound(w, "restaurant")
		return
	}

	page := max(core.QueryInt(r, "page", 1), 1)
	limit := min(max(core.QueryInt(r, "limit", 10), 1), h.maxPageSize)

	reviews, total, err := h.service.List(r.Context(), restaurantID, page, limit)
	if err != nil {
		core.HandleError(w, err, "restaurant")
		return
	}

	core.Paginated(w, ToReviewResponseList(reviews), len(reviews), page, limit, total)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := core.PathID(r, "restaurantID")
	if !ok {
		core.NotFound(w, "restaurant")
		return
	}

	var req CreateReviewRequest
	if err := core.DecodeJSON(w, r, h.validator, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	rv, err := h.service.Create(
		r.Context(),
		restaurantID,
		middleware.GetUserID(r.Context()),
		req,
	)
	if err != nil {
		core.HandleError(w, err, "restaurant")
		return
	}

	core.Created(w, ToReviewResponse(rv))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(r, "reviewID")
	if !ok {
		core.NotFound(w, "review")
		return
	}

	var req UpdateReviewRequest
	if err := core.DecodeJSON(w, r, h.validator, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	rv, err := h.service.Update(r.Context(), id, middleware.GetUserID(r.Context()), req)
	if err != nil {
		core.HandleError(w, err, "review")
		return
	}

	core.OK(w, ToReviewResponse(rv))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(r, "reviewID")
	if !ok {
		core.NotFound(w, "review")
		return
	}

	err := h.service.Delete(
		r.Context(),
		id,
		middleware.GetUserID(r.Context()),
		middleware.IsAdmin(r.Context()),
	)
	if err != nil {
		core.HandleError(w, err, "review")
		return
	}

	core.NoContent(w)
}

func (h *Handler) ToggleHelpful(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(r, "reviewID")
	if !ok {
		core.NotFound(w, "review")
		return
	}

	resp, err := h.service.ToggleHelpful(r.Context(), id, middleware.GetUserID(r.Context()))
	if err != nil {
		core.HandleError(w, err, "review")
		return
	}

	core.OK(w, resp)
}
