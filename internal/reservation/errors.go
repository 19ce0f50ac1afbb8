// Package reservation implements the booking engine: the rules that
// decide when a booking may consume a table, how cancellation gives
// the table back, and how concurrent requests against one
// restaurant's limited pool are serialized so the free-table counter
// never drifts from the set of active bookings.
package reservation

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the engine.  Handlers translate these
// into HTTP status codes with errors.Is; none of them indicates an
// infrastructure fault.
var (
	// ErrCapacityExceeded is returned when the requested party size
	// is outside the allowed 1–8 range.  Detected before any store
	// access, so it never causes mutation.
	ErrCapacityExceeded = errors.New("party size exceeds table capacity")

	// ErrRestaurantNotFound is returned when the target restaurant
	// (or its inventory row) does not exist.
	ErrRestaurantNotFound = errors.New("restaurant not found")

	// ErrBookingNotFound is returned when the caller has no booking
	// matching the given identifier, or the booking belongs to a
	// different user.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrNoTablesAvailable is returned when the restaurant's
	// free-table counter is zero at decision time.
	ErrNoTablesAvailable = errors.New("no free tables available")
)

// PersistenceError wraps an unexpected store failure.  The operation
// that produced it has been fully rolled back: booking rows and the
// free-table counter are never left in disagreement.
type PersistenceError struct {
	Op  string // engine operation that failed, e.g. "create booking"
	Err error  // underlying store error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("reservation: %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *PersistenceError) Unwrap() error { return e.Err }

func persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
