package reservation

import (
	"context"
	"errors"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// MaxPartySize is the largest party a single table can seat.
const MaxPartySize = 8

// Engine coordinates bookings against restaurant table inventory.
// It owns the decision rules (capacity, availability, ownership) and
// delegates the atomic commit of counter-plus-booking changes to the
// stores.  Create requests for the same restaurant are serialized
// through a per-restaurant mutex so two callers can never both
// observe the last free table; requests against different
// restaurants proceed in parallel.
//
// After every successful operation the invariant
//
//	free_tables == total_tables - count(active bookings)
//
// holds for each restaurant.  The stores additionally guard the
// counter with conditional updates, so the invariant survives even
// when several engine instances share one database.
type Engine struct {
	catalog  CatalogStore
	bookings BookingStore
	locks    *keyedMutex
}

// NewEngine constructs an Engine.  Both stores must be non-nil.
func NewEngine(catalog CatalogStore, bookings BookingStore) *Engine {
	if catalog == nil || bookings == nil {
		panic("nil store passed to NewEngine")
	}
	return &Engine{catalog: catalog, bookings: bookings, locks: newKeyedMutex()}
}

// CreateRequest carries the payload for a new booking.  UserID comes
// from the verified access token, never from the request body.
type CreateRequest struct {
	UserID       uint64
	RestaurantID uint64
	GuestName    string
	Phone        string
	PartySize    uint8
	Time         string // "hh:mm"
	Period       string // e.g. "2h"
	Date         string // "yyyy-mm-dd"
}

// CreateBooking validates the request, consumes one free table and
// inserts the booking.  The decrement and the insert commit together
// or not at all.  Outcomes:
//
//	ErrCapacityExceeded   – party size outside 1–8, nothing touched
//	ErrRestaurantNotFound – no such restaurant
//	ErrNoTablesAvailable  – free_tables was 0 at decision time
//	*PersistenceError     – store failed; transaction rolled back
func (e *Engine) CreateBooking(ctx context.Context, req CreateRequest) (model.Booking, error) {
	if req.PartySize < 1 || req.PartySize > MaxPartySize {
		return model.Booking{}, ErrCapacityExceeded
	}

	// Serialize the read-decide-write section per restaurant.  The
	// lock covers only inventory inspection and the atomic create;
	// unrelated restaurants use different mutexes.
	mu := e.locks.get(req.RestaurantID)
	mu.Lock()
	defer mu.Unlock()

	inv, err := e.catalog.GetInventory(ctx, req.RestaurantID)
	if err != nil {
		if errors.Is(err, ErrInventoryNotFound) {
			return model.Booking{}, ErrRestaurantNotFound
		}
		return model.Booking{}, persistence("load inventory", err)
	}
	if inv.FreeTables == 0 {
		return model.Booking{}, ErrNoTablesAvailable
	}

	b := model.Booking{
		UserID:       req.UserID,
		RestaurantID: req.RestaurantID,
		GuestName:    req.GuestName,
		Phone:        req.Phone,
		PartySize:    req.PartySize,
		Time:         req.Time,
		Period:       req.Period,
		Date:         req.Date,
		Status:       model.BookingStatusActive,
	}
	ok, err := e.bookings.CreateConsumingTable(ctx, &b)
	if err != nil {
		return model.Booking{}, persistence("create booking", err)
	}
	if !ok {
		// Another writer (a second process sharing the database)
		// took the last table between the read and the guarded
		// decrement.
		return model.Booking{}, ErrNoTablesAvailable
	}
	return b, nil
}

// BookingsForUser returns the caller's active bookings, oldest
// first.  A user with no bookings gets an empty slice.
func (e *Engine) BookingsForUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	list, err := e.bookings.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, persistence("list bookings", err)
	}
	if list == nil {
		list = []model.Booking{}
	}
	return list, nil
}

// ModifyBookingTime changes the reservation time of one of the
// caller's active bookings.  Time-only changes do not touch the
// free-table counter, so no inventory lock is taken.  Returns
// ErrBookingNotFound when the booking does not exist, is cancelled,
// or belongs to another user.
func (e *Engine) ModifyBookingTime(ctx context.Context, userID, bookingID uint64, newTime string) (model.Booking, error) {
	b, found, err := e.bookings.UpdateTime(ctx, userID, bookingID, newTime)
	if err != nil {
		return model.Booking{}, persistence("update booking time", err)
	}
	if !found {
		return model.Booking{}, ErrBookingNotFound
	}
	return b, nil
}

// CancelBooking closes one of the caller's bookings and gives the
// table back to the restaurant.  The status flip and the counter
// increment commit together; the increment is clamped to
// total_tables.  Cancelling an already-cancelled booking is a no-op
// success so retries never inflate the counter.  Returns the
// restaurant the booking belonged to, or ErrBookingNotFound when no
// booking with that ID belongs to the caller.
func (e *Engine) CancelBooking(ctx context.Context, userID, bookingID uint64) (uint64, error) {
	outcome, restaurantID, err := e.bookings.CancelReleasingTable(ctx, userID, bookingID)
	if err != nil {
		return 0, persistence("cancel booking", err)
	}
	switch outcome {
	case CancelNotFound:
		return 0, ErrBookingNotFound
	case CancelAlreadyCancelled, CancelReleased:
		return restaurantID, nil
	default:
		return 0, persistence("cancel booking", errors.New("unknown cancel outcome"))
	}
}

// CancelBookingForRestaurant cancels the caller's oldest active
// booking at the given restaurant and returns its ID.  It exists for
// clients that track bookings per restaurant rather than per booking
// ID; "oldest first" makes the choice deterministic when a user
// holds several bookings at one branch.
func (e *Engine) CancelBookingForRestaurant(ctx context.Context, userID, restaurantID uint64) (uint64, error) {
	b, err := e.bookings.OldestActiveByUserAndRestaurant(ctx, userID, restaurantID)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return 0, ErrBookingNotFound
		}
		return 0, persistence("resolve booking", err)
	}
	if _, err := e.CancelBooking(ctx, userID, b.ID); err != nil {
		return 0, err
	}
	return b.ID, nil
}
