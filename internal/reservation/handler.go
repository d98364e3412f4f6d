// AngelaMos | 2026
// handler.go

package reservation

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/carterperez-dev/templates/tablebook/internal/core"
	"github.com/carterperez-dev/templates/tablebook/internal/middleware"
)

const qrSize = 256

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

// RegisterRoutes mounts the owner and public routes. createLimiter
// throttles booking attempts per user.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, createLimiter func(http.Handler) http.Handler,
) {
	r.Route("/reservations", func(r chi.Router) {
		r.Get("/confirm/{code}", h.Lookup)
		r.Get("/confirm/{code}/qr", h.QRCode)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)

			r.Get("/", h.List)
			r.With(createLimiter).Post("/", h.Create)
			r.Get("/{reservationID}", h.Get)
			r.Put("/{reservationID}", h.Update)
			r.Put("/{reservationID}/cancel", h.Cancel)
		})
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/reservations", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.AdminList)
		r.Put("/{reservationID}/status", h.Transition)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ListParams{
		Status: Status(r.URL.Query().Get("status")),
		Page:   core.QueryInt(r, "page", 1),
		Limit:  core.QueryInt(r, "limit", 10),
	}
	params.Normalize(h.service.MaxPageSize())

	list, total, err := h.service.List(r.Context(), middleware.GetUserID(r.Context()), params)
	if err != nil {
		core.HandleError(w, err, "reservation")
		return
	}

	core.Paginated(w, ToReservationResponseList(list), len(list), params.Page, params.Limit, total)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationRequest
	if err := core.DecodeJSON(w, r, h.validator, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	rs, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		core.HandleError(w, err, "restaurant")
		return
	}

	core.CreatedWithMessage(w, "reservation created", ToReservationResponse(rs))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(r, "reservationID")
	if !ok {
		core.NotFound(w, "reservation")
		return
	}

	rs, err := h.service.Get(r.Context(), id, middleware.GetUserID(r.Context()))
	if err != nil {
		core.HandleError(w, err, "reservation")
		return
	}

	core.OK(w, ToReservationResponse(rs))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(r, "reservationID")
	if !ok {
		core.NotFound(w, "reservation")
		return
	}

	var req UpdateReservationRequest
	if err := core.DecodeJSON(w, r, h.validator, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	rs, err := h.service.Update(r.Context(), id, middleware.GetUserID(r.Context()), req)
	if err != nil {
		core.HandleError(w, err, "reservation")
		return
	}

	core.OKWithMessage(w, "reservation updated", ToReservationResponse(rs))
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(r, "reservationID")
	if !ok {
		core.NotFound(w, "reservation")
		return
	}

	rs, err := h.service.Cancel(r.Context(), id, middleware.GetUserID(r.Context()))
	if err != nil {
		core.HandleError(w, err, "reservation")
		return
	}

	core.OKWithMessage(w, "reservation cancelled", ToReservationResponse(rs))
}

func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	rs, err := h.service.Lookup(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		core.HandleError(w, err, "reservation")
		return
	}

	core.OK(w, ToReservationResponse(rs))
}

// QRCode renders the confirmation code as a PNG for check-in.
func (h *Handler) QRCode(w http.ResponseWriter, r *http.Request) {
	rs, err := h.service.Lookup(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		core.HandleError(w, err, "reservation")
		return
	}

	png, err := qrcode.Encode(rs.ConfirmationCode, qrcode.Medium, qrSize)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png) //nolint:errcheck // client disconnects are not actionable
}

func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := AdminListParams{
		ListParams: ListParams{
			Status: Status(q.Get("status")),
			Page:   core.QueryInt(r, "page", 1),
			Limit:  core.QueryInt(r, "limit", 10),
		},
		RestaurantID: q.Get("restaurant_id"),
		Date:         q.Get("date"),
	}
	params.Normalize(h.service.MaxPageSize())

	if params.RestaurantID != "" {
		if _, err := uuid.Parse(params.RestaurantID); err != nil {
			core.JSONError(w, core.ValidationError(core.FieldError{
				Field:   "restaurant_id",
				Message: "must be a valid identifier",
			}))
			return
		}
	}

	list, total, err := h.service.AdminList(r.Context(), params)
	if err != nil {
		core.HandleError(w, err, "reservation")
		return
	}

	core.Paginated(w, ToReservationResponseList(list), len(list), params.Page, params.Limit, total)
}

func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(r, "reservationID")
	if !ok {
		core.NotFound(w, "reservation")
		return
	}

	var req UpdateStatusRequest
	if err := core.DecodeJSON(w, r, h.validator, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	rs, err := h.service.Transition(r.Context(), id, req)
	if err != nil {
		core.HandleError(w, err, "reservation")
		return
	}

	core.OK(w, ToReservationResponse(rs))
}
