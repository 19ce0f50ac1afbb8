package model

import "time"

// Booking status values.  A booking is created ACTIVE and moves to
// CANCELLED exactly once; there is no transition out of CANCELLED.
const (
	BookingStatusActive    = "ACTIVE"
	BookingStatusCancelled = "CANCELLED"
)

// Booking records one table held by a user at a restaurant.  Each
// active booking accounts for exactly one unit of the restaurant's
// free-table counter.  GuestName and Phone are snapshots taken at
// booking time so the record stays meaningful if the user profile
// changes later.
//
// Fields:
//  ID           – primary key identifier.
//  UserID       – user who owns the booking.
//  RestaurantID – restaurant whose inventory the booking consumes.
//  GuestName    – name the table is held under.
//  Phone        – contact phone for the booking.
//  PartySize    – number of guests, 1 to 8 inclusive.
//  Time         – reservation time as a short "hh:mm" string.
//  Period       – how long the table is held (free-form, e.g. "2h").
//  Date         – reservation date, ISO "yyyy-mm-dd".
//  Status       – ACTIVE or CANCELLED.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last modification timestamp.
type Booking struct {
	ID           uint64    // bookings.id
	UserID       uint64    // bookings.user_id
	RestaurantID uint64    // bookings.restaurant_id
	GuestName    string    // bookings.guest_name
	Phone        string    // bookings.phone
	PartySize    uint8     // bookings.party_size
	Time         string    // bookings.time_reserved
	Period       string    // bookings.period
	Date         string    // bookings.booking_date
	Status       string    // bookings.status
	CreatedAt    time.Time // bookings.created_at
	UpdatedAt    time.Time // bookings.updated_at
}

// Active reports whether the booking still holds a table.
func (b Booking) Active() bool { return b.Status == BookingStatusActive }
