package reservation

import (
	"context"
	"errors"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// Store-level sentinel errors.  Implementations return these so the
// engine can map them onto its own taxonomy without inspecting
// driver-specific failures.
var (
	// ErrInventoryNotFound signals that no inventory row exists for
	// the requested restaurant.
	ErrInventoryNotFound = errors.New("table inventory not found")
)

// CatalogStore is the engine's read view of restaurant inventory.
// The conditional mutation of the counter lives on BookingStore so a
// single implementation can commit counter and booking changes in
// one database transaction.
type CatalogStore interface {
	// GetInventory returns the current table inventory for a
	// restaurant, or ErrInventoryNotFound when the restaurant does
	// not exist.
	GetInventory(ctx context.Context, restaurantID uint64) (model.TableInventory, error)
}

// CancelOutcome describes what an atomic cancel actually did, so the
// engine can keep cancellation idempotent without a second read.
type CancelOutcome int

const (
	// CancelNotFound – no booking with that ID belongs to the user.
	CancelNotFound CancelOutcome = iota
	// CancelAlreadyCancelled – the booking exists but was cancelled
	// earlier; the counter must not move again.
	CancelAlreadyCancelled
	// CancelReleased – the booking was active and has been closed,
	// and the restaurant's free-table counter was incremented once.
	CancelReleased
)

// BookingStore persists bookings and performs the two mutations that
// must be atomic with a counter change.  Every method is one unit of
// work: implementations commit all listed effects together or roll
// everything back and return an error.
type BookingStore interface {
	// CreateConsumingTable inserts the booking and decrements the
	// restaurant's free-table counter in one transaction.  The
	// decrement is conditional on free_tables > 0; when the guard
	// fails (a concurrent writer took the last table) no row is
	// inserted and ok is false.  On success the booking's ID and
	// timestamps are populated.
	CreateConsumingTable(ctx context.Context, b *model.Booking) (ok bool, err error)

	// ListActiveByUser returns the user's active bookings ordered
	// oldest first.  A user with no bookings yields an empty slice,
	// not an error.
	ListActiveByUser(ctx context.Context, userID uint64) ([]model.Booking, error)

	// OldestActiveByUserAndRestaurant resolves the user's oldest
	// active booking at the given restaurant, returning
	// ErrBookingNotFound from the engine package when none exists.
	OldestActiveByUserAndRestaurant(ctx context.Context, userID, restaurantID uint64) (model.Booking, error)

	// UpdateTime sets a new reservation time on the user's active
	// booking and returns the updated record.  found is false when
	// the booking does not exist, is cancelled, or belongs to a
	// different user.
	UpdateTime(ctx context.Context, userID, bookingID uint64, newTime string) (b model.Booking, found bool, err error)

	// CancelReleasingTable flips the booking to CANCELLED and
	// increments the restaurant's free-table counter, clamped to
	// total_tables, in one transaction.  The outcome distinguishes
	// missing, already-cancelled and freshly released bookings;
	// restaurantID identifies the branch the table went back to and
	// is zero when the booking was not found.
	CancelReleasingTable(ctx context.Context, userID, bookingID uint64) (outcome CancelOutcome, restaurantID uint64, err error)
}
