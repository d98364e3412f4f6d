// AngelaMos | 2026
// handler.go

package rating

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/tablebook/internal/core"
)

// sweepTimeout replaces the per-request store deadline for the full
// sweep, which touches every restaurant.
const sweepTimeout = 2 * time.Minute

type Handler struct {
	aggregator *Aggregator
}

func NewHandler(aggregator *Aggregator) *Handler {
	return &Handler{aggregator: aggregator}
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/ratings", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Post("/recompute", h.Recompute)
	})
}

type recomputeResponse struct {
	RestaurantID string   `json:"restaurant_id,omitempty"`
	Summary      *Summary `json:"summary,omitempty"`
	Recomputed   int      `json:"recomputed"`
	Backfilled   int      `json:"backfilled"`
}

// Recompute repairs one restaurant when restaurant_id is given, otherwise
// drains the stale set and sweeps every restaurant.
func (h *Handler) Recompute(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("restaurant_id"); id != "" {
		if _, err := uuid.Parse(id); err != nil {
			core.JSONError(w, core.ValidationError(core.FieldError{
				Field:   "restaurant_id",
				Message: "must be a valid identifier",
			}))
			return
		}

		summary, err := h.aggregator.Recompute(r.Context(), id)
		if err != nil {
			core.HandleError(w, err, "restaurant")
			return
		}

		core.OK(w, recomputeResponse{
			RestaurantID: id,
			Summary:      &summary,
			Recomputed:   1,
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), sweepTimeout)
	defer cancel()

	backfilled, err := h.aggregator.Backfill(ctx)
	if err != nil {
		core.HandleError(w, err, "rating")
		return
	}

	n, err := h.aggregator.RecomputeAll(ctx)
	if err != nil {
		core.HandleError(w, err, "rating")
		return
	}

	core.OK(w, recomputeResponse{Recomputed: n, Backfilled: backfilled})
}
