package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/reservation"
)

// BookingRepo persists bookings and implements the engine's
// BookingStore contract.  The two operations that touch the
// free-table counter (create, cancel) each run in their own database
// transaction so the counter and the booking row always move
// together; the counter updates are single guarded statements, which
// keeps the store safe even when several service instances share the
// database.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, user_id, restaurant_id, guest_name, phone, party_size,
	time_reserved, period, booking_date, status, created_at, updated_at`

// scanBooking reads one bookings row into a model.Booking.
func scanBooking(row interface{ Scan(...any) error }, b *model.Booking) error {
	return row.Scan(&b.ID, &b.UserID, &b.RestaurantID, &b.GuestName, &b.Phone,
		&b.PartySize, &b.Time, &b.Period, &b.Date, &b.Status, &b.CreatedAt, &b.UpdatedAt)
}

// CreateConsumingTable inserts the booking and takes one free table
// in a single transaction.  The decrement is guarded with
// free_tables > 0; when the guard fails the transaction is rolled
// back, nothing is inserted and ok is false.  On success the
// booking's ID and timestamps are populated from the committed row.
func (r *BookingRepo) CreateConsumingTable(ctx context.Context, b *model.Booking) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Guarded decrement: affects zero rows when no table is free,
	// which is the compare-and-swap outcome for this store.
	const qDec = `UPDATE table_inventory
	              SET free_tables = free_tables - 1
	              WHERE restaurant_id = ? AND free_tables > 0`
	res, err := tx.ExecContext(ctx, qDec, b.RestaurantID)
	if err != nil {
		return false, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return false, err
	} else if n == 0 {
		return false, nil
	}

	const qIns = `INSERT INTO bookings
	              (user_id, restaurant_id, guest_name, phone, party_size, time_reserved, period, booking_date, status)
	              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	ins, err := tx.ExecContext(ctx, qIns, b.UserID, b.RestaurantID, b.GuestName, b.Phone,
		b.PartySize, b.Time, b.Period, b.Date, b.Status)
	if err != nil {
		return false, err
	}
	id, err := ins.LastInsertId()
	if err != nil {
		return false, err
	}
	b.ID = uint64(id)

	// Query back the full row to populate timestamps and defaults.
	const qSel = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	if err := scanBooking(tx.QueryRowContext(ctx, qSel, b.ID), b); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return true, nil
}

// ListActiveByUser returns the user's active bookings ordered oldest
// first.  When no bookings exist an empty slice is returned.
func (r *BookingRepo) ListActiveByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + `
	           FROM bookings
	           WHERE user_id = ? AND status = 'ACTIVE'
	           ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Booking, 0)
	for rows.Next() {
		var b model.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// OldestActiveByUserAndRestaurant resolves the user's oldest active
// booking at a restaurant.  "Oldest first" makes the legacy
// cancel-by-restaurant route deterministic when a user holds several
// bookings at the same branch.
func (r *BookingRepo) OldestActiveByUserAndRestaurant(ctx context.Context, userID, restaurantID uint64) (model.Booking, error) {
	const q = `SELECT ` + bookingColumns + `
	           FROM bookings
	           WHERE user_id = ? AND restaurant_id = ? AND status = 'ACTIVE'
	           ORDER BY created_at, id
	           LIMIT 1`
	var b model.Booking
	if err := scanBooking(r.db.QueryRowContext(ctx, q, userID, restaurantID), &b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Booking{}, reservation.ErrBookingNotFound
		}
		return model.Booking{}, err
	}
	return b, nil
}

// UpdateTime sets a new reservation time on the user's active
// booking.  The WHERE clause enforces ownership and liveness in one
// statement; zero affected rows means the booking is missing,
// cancelled or owned by someone else, reported via found=false.
func (r *BookingRepo) UpdateTime(ctx context.Context, userID, bookingID uint64, newTime string) (model.Booking, bool, error) {
	const q = `UPDATE bookings
	           SET time_reserved = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND user_id = ? AND status = 'ACTIVE'`
	res, err := r.db.ExecContext(ctx, q, newTime, bookingID, userID)
	if err != nil {
		return model.Booking{}, false, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return model.Booking{}, false, err
	} else if n == 0 {
		// RowsAffected is also zero when the stored time already
		// equals newTime, so re-check existence before reporting
		// not-found.
		var b model.Booking
		const qSel = `SELECT ` + bookingColumns + ` FROM bookings
		              WHERE id = ? AND user_id = ? AND status = 'ACTIVE'`
		if err := scanBooking(r.db.QueryRowContext(ctx, qSel, bookingID, userID), &b); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return model.Booking{}, false, nil
			}
			return model.Booking{}, false, err
		}
		return b, true, nil
	}

	var b model.Booking
	const qSel = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	if err := scanBooking(r.db.QueryRowContext(ctx, qSel, bookingID), &b); err != nil {
		return model.Booking{}, false, err
	}
	return b, true, nil
}

// CancelReleasingTable flips the booking to CANCELLED and gives the
// table back in one transaction.  The booking row is locked with
// FOR UPDATE so a concurrent cancel of the same booking cannot both
// observe it active; the increment is clamped to total_tables so a
// repeated release can never push the counter past capacity.
func (r *BookingRepo) CancelReleasingTable(ctx context.Context, userID, bookingID uint64) (reservation.CancelOutcome, uint64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return reservation.CancelNotFound, 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var restaurantID uint64
	var status string
	const qSel = `SELECT restaurant_id, status FROM bookings
	              WHERE id = ? AND user_id = ?
	              FOR UPDATE`
	if err := tx.QueryRowContext(ctx, qSel, bookingID, userID).Scan(&restaurantID, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return reservation.CancelNotFound, 0, nil
		}
		return reservation.CancelNotFound, 0, err
	}
	if status == model.BookingStatusCancelled {
		// Idempotent: the table was already released.
		if err := tx.Commit(); err != nil {
			return reservation.CancelNotFound, 0, err
		}
		committed = true
		return reservation.CancelAlreadyCancelled, restaurantID, nil
	}

	const qCancel = `UPDATE bookings
	                 SET status = 'CANCELLED', updated_at = CURRENT_TIMESTAMP
	                 WHERE id = ?`
	if _, err := tx.ExecContext(ctx, qCancel, bookingID); err != nil {
		return reservation.CancelNotFound, 0, err
	}

	const qInc = `UPDATE table_inventory
	              SET free_tables = LEAST(free_tables + 1, total_tables)
	              WHERE restaurant_id = ?`
	if _, err := tx.ExecContext(ctx, qInc, restaurantID); err != nil {
		return reservation.CancelNotFound, 0, err
	}

	if err := tx.Commit(); err != nil {
		return reservation.CancelNotFound, 0, err
	}
	committed = true
	return reservation.CancelReleased, restaurantID, nil
}
