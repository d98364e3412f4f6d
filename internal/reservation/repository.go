// AngelaMos | 2026
// repository.go

package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/templates/tablebook/internal/core"
)

const (
	slotConstraint = "ux_reservations_active_slot"
	codeConstraint = "ux_reservations_confirmation_code"
)

// errCodeTaken means the generated confirmation code collided and the
// insert should be retried with a fresh one.
var errCodeTaken = errors.New("confirmation code taken")

func slotConflict() error {
	return core.NewDomainError(core.ErrConflict, "this time slot is already booked")
}

type Repository interface {
	Create(ctx context.Context, r *Reservation) error
	GetByID(ctx context.Context, id string) (*Reservation, error)
	GetByCode(ctx context.Context, code string) (*Reservation, error)
	List(ctx context.Context, filter Filter) ([]Reservation, int, error)
	Mutate(ctx context.Context, id string, fn func(r *Reservation) error) error
	CountByStatus(ctx context.Context) (map[Status]int, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const reservationColumns = `id, restaurant_id, user_id, reservation_date,
		       reservation_time, guests, status, special_requests, notes,
		       table_number, contact_name, contact_phone, contact_email,
		       confirmation_code, created_at, updated_at`

const reservationSelect = `
		SELECT rs.id, rs.restaurant_id, rs.user_id, rs.reservation_date,
		       rs.reservation_time, rs.guests, rs.status, rs.special_requests,
		       rs.notes, rs.table_number, rs.contact_name, rs.contact_phone,
		       rs.contact_email, rs.confirmation_code, rs.created_at,
		       rs.updated_at,
		       r.name AS restaurant_name, r.cuisine AS restaurant_cuisine,
		       r.location AS restaurant_location,
		       r.image_url AS restaurant_image_url,
		       r.phone AS restaurant_phone, r.address AS restaurant_address,
		       r.hours AS restaurant_hours
		FROM reservations rs
		JOIN restaurants r ON r.id = rs.restaurant_id`

// Create relies on ux_reservations_active_slot to serialize concurrent
// bookings of the same slot.
func (r *repository) Create(ctx context.Context, rs *Reservation) error {
	query := `
		INSERT INTO reservations (
			id, restaurant_id, user_id, reservation_date, reservation_time,
			guests, status, special_requests, notes, contact_name,
			contact_phone, contact_email, confirmation_code
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		rs.ID,
		rs.RestaurantID,
		rs.UserID,
		rs.Date,
		rs.Time,
		rs.Guests,
		rs.Status,
		rs.SpecialRequests,
		rs.Notes,
		rs.ContactName,
		rs.ContactPhone,
		rs.ContactEmail,
		rs.ConfirmationCode,
	).Scan(&rs.CreatedAt, &rs.UpdatedAt)
	if err != nil {
		return mapWriteError("create reservation", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Reservation, error) {
	var rs Reservation
	err := r.db.GetContext(ctx, &rs, reservationSelect+` WHERE rs.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get reservation: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, core.StoreError("get reservation", err)
	}

	return &rs, nil
}

func (r *repository) GetByCode(ctx context.Context, code string) (*Reservation, error) {
	var rs Reservation
	err := r.db.GetContext(ctx, &rs,
		reservationSelect+` WHERE rs.confirmation_code = $1`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get reservation by code: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, core.StoreError("get reservation by code", err)
	}

	return &rs, nil
}

func (r *repository) List(
	ctx context.Context,
	filter Filter,
) ([]Reservation, int, error) {
	var f core.Filter
	f.WhereIf(filter.UserID != "", "rs.user_id = ?", filter.UserID).
		WhereIf(filter.RestaurantID != "", "rs.restaurant_id = ?", filter.RestaurantID).
		WhereIf(filter.Status != "", "rs.status = ?", filter.Status)
	if filter.Date != nil {
		f.Where("rs.reservation_date = ?", *filter.Date)
	}

	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM reservations rs WHERE `+f.SQL(), f.Args()...)
	if err != nil {
		return nil, 0, core.StoreError("count reservations", err)
	}

	page, args := f.Page(filter.Limit, filter.Offset)
	query := reservationSelect + ` WHERE ` + f.SQL() + `
		ORDER BY rs.reservation_date DESC, rs.reservation_time DESC, rs.id ` + page

	reservations := []Reservation{}
	if err := r.db.SelectContext(ctx, &reservations, query, args...); err != nil {
		return nil, 0, core.StoreError("list reservations", err)
	}

	return reservations, total, nil
}

// Mutate locks the reservation row, lets fn change it, and writes the
// result back in the same transaction. An error from fn rolls back.
func (r *repository) Mutate(
	ctx context.Context,
	id string,
	fn func(rs *Reservation) error,
) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var rs Reservation
		err := tx.GetContext(ctx, &rs, `
			SELECT `+reservationColumns+`
			FROM reservations
			WHERE id = $1
			FOR UPDATE`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("lock reservation: %w", core.ErrNotFound)
		}
		if err != nil {
			return core.StoreError("lock reservation", err)
		}

		if err := fn(&rs); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE reservations
			SET reservation_date = $2, reservation_time = $3, guests = $4,
			    status = $5, special_requests = $6, notes = $7,
			    table_number = $8, contact_name = $9, contact_phone = $10,
			    contact_email = $11, updated_at = NOW()
			WHERE id = $1`,
			rs.ID,
			rs.Date,
			rs.Time,
			rs.Guests,
			rs.Status,
			rs.SpecialRequests,
			rs.Notes,
			rs.TableNumber,
			rs.ContactName,
			rs.ContactPhone,
			rs.ContactEmail,
		)
		if err != nil {
			return mapWriteError("update reservation", err)
		}

		return nil
	})
}

func (r *repository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	var rows []struct {
		Status Status `db:"status"`
		Count  int    `db:"count"`
	}

	err := r.db.SelectContext(ctx, &rows,
		`SELECT status, COUNT(*) AS count FROM reservations GROUP BY status`)
	if err != nil {
		return nil, core.StoreError("count reservations by status", err)
	}

	counts := make(map[Status]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func mapWriteError(op string, err error) error {
	if core.IsDuplicateKeyError(err) {
		switch core.ConstraintName(err) {
		case slotConstraint:
			return fmt.Errorf("%s: %w", op, slotConflict())
		case codeConstraint:
			return fmt.Errorf("%s: %w", op, errCodeTaken)
		}
	}
	return core.StoreError(op, err)
}
