// AngelaMos | 2026
// dto.go

package reservation

import (
	"time"
)

type CreateReservationRequest struct {
	RestaurantID    string `json:"restaurant_id"              validate:"required,uuid"`
	Date            string `json:"date"                       validate:"required"`
	Time            string `json:"time"                       validate:"required,hhmm"`
	Guests          int    `json:"guests"                     validate:"required,gte=1,lte=20"`
	ContactName     string `json:"contact_name"               validate:"required,min=1,max=100"`
	ContactPhone    string `json:"contact_phone"              validate:"required,min=1,max=20"`
	ContactEmail    string `json:"contact_email"              validate:"required,email,max=255"`
	SpecialRequests string `json:"special_requests,omitempty" validate:"max=500"`
	Notes           string `json:"notes,omitempty"            validate:"max=300"`
}

type UpdateReservationRequest struct {
	Date            *string `json:"date,omitempty"             validate:"omitempty,min=1"`
	Time            *string `json:"time,omitempty"             validate:"omitempty,hhmm"`
	Guests          *int    `json:"guests,omitempty"           validate:"omitempty,gte=1,lte=20"`
	ContactName     *string `json:"contact_name,omitempty"     validate:"omitempty,min=1,max=100"`
	ContactPhone    *string `json:"contact_phone,omitempty"    validate:"omitempty,min=1,max=20"`
	ContactEmail    *string `json:"contact_email,omitempty"    validate:"omitempty,email,max=255"`
	SpecialRequests *string `json:"special_requests,omitempty" validate:"omitempty,max=500"`
	Notes           *string `json:"notes,omitempty"            validate:"omitempty,max=300"`
}

type UpdateStatusRequest struct {
	Status      string  `json:"status"                 validate:"required,oneof=pending confirmed cancelled completed"`
	TableNumber *string `json:"table_number,omitempty" validate:"omitempty,max=20"`
}

type ListParams struct {
	Status Status
	Page   int
	Limit  int
}

func (p *ListParams) Normalize(maxLimit int) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

type AdminListParams struct {
	ListParams
	RestaurantID string
	Date         string
}

type RestaurantSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Cuisine  string `json:"cuisine"`
	Location string `json:"location"`
	ImageURL string `json:"image_url,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	Hours    string `json:"hours,omitempty"`
}

type ReservationResponse struct {
	ID               string            `json:"id"`
	Restaurant       RestaurantSummary `json:"restaurant"`
	UserID           string            `json:"user_id"`
	Date             string            `json:"date"`
	Time             string            `json:"time"`
	FormattedDate    string            `json:"formatted_date"`
	FormattedTime    string            `json:"formatted_time"`
	Guests           int               `json:"guests"`
	Status           string            `json:"status"`
	SpecialRequests  string            `json:"special_requests,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	TableNumber      string            `json:"table_number,omitempty"`
	ContactName      string            `json:"contact_name"`
	ContactPhone     string            `json:"contact_phone"`
	ContactEmail     string            `json:"contact_email"`
	ConfirmationCode string            `json:"confirmation_code"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func ToReservationResponse(r *Reservation) ReservationResponse {
	return ReservationResponse{
		ID: r.ID,
		Restaurant: RestaurantSummary{
			ID:       r.RestaurantID,
			Name:     r.RestaurantName,
			Cuisine:  r.RestaurantCuisine,
			Location: r.RestaurantLocation,
			ImageURL: r.RestaurantImageURL,
			Phone:    r.RestaurantPhone,
			Address:  r.RestaurantAddress,
			Hours:    r.RestaurantHours,
		},
		UserID:           r.UserID,
		Date:             r.Date.UTC().Format(dateLayout),
		Time:             r.Time,
		FormattedDate:    r.Date.UTC().Format(displayDateLayout),
		FormattedTime:    formatClock(r.Time),
		Guests:           r.Guests,
		Status:           string(r.Status),
		SpecialRequests:  r.SpecialRequests,
		Notes:            r.Notes,
		TableNumber:      r.TableNumber,
		ContactName:      r.ContactName,
		ContactPhone:     r.ContactPhone,
		ContactEmail:     r.ContactEmail,
		ConfirmationCode: r.ConfirmationCode,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

const (
	displayDateLayout = "Monday, January 2, 2006"
	displayTimeLayout = "3:04 PM"
)

// formatClock renders HH:MM on a 12-hour clock, e.g. 19:30 as 7:30 PM.
func formatClock(hhmm string) string {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return hhmm
	}
	return t.Format(displayTimeLayout)
}

func ToReservationResponseList(rs []Reservation) []ReservationResponse {
	out := make([]ReservationResponse, 0, len(rs))
	for i := range rs {
		out = append(out, ToReservationResponse(&rs[i]))
	}
	return out
}
