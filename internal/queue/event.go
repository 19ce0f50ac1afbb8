// Package queue carries booking events between the API and the
// broker: the payload types published after a commit and the
// background consumer that appends them to logs/booking.log.
package queue

// BookingConfirmedEvent is published after a booking commits.  It
// carries enough context for downstream consumers (notification,
// analytics, audit log) without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID      uint64 `json:"booking_id"`
	UserID         uint64 `json:"user_id"`
	RestaurantID   uint64 `json:"restaurant_id"`
	RestaurantName string `json:"restaurant_name"`
	GuestName      string `json:"guest_name"`
	PartySize      uint8  `json:"party_size"`
	Time           string `json:"time"`
	Period         string `json:"period"`
	Date           string `json:"date"`
	FreeTablesLeft uint32 `json:"free_tables_left"`
	ConfirmedAt    string `json:"confirmed_at"`
}

// BookingCancelledEvent is published after a cancellation commits
// and the table has been returned to the restaurant's pool.
type BookingCancelledEvent struct {
	BookingID    uint64 `json:"booking_id"`
	UserID       uint64 `json:"user_id"`
	RestaurantID uint64 `json:"restaurant_id"`
	CancelledAt  string `json:"cancelled_at"`
}
