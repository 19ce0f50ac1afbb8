package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/queue"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
	"github.com/iliyamo/restaurant-table-reservation/internal/reservation"
)

// RestaurantDirectory resolves catalog details used to enrich
// outbound events.  *repository.RestaurantRepo is the production
// implementation.
type RestaurantDirectory interface {
	GetInfo(ctx context.Context, id uint64) (*repository.RestaurantInfo, error)
}

// EventPublisher forwards booking lifecycle events to the broker.
type EventPublisher interface {
	BookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
	BookingCancelled(ctx context.Context, ev queue.BookingCancelledEvent) error
}

// BookingHandler drives the reservation engine on behalf of
// authenticated users.  JWT validation has already happened in
// middleware, so every method starts from a verified user ID; a
// request that cannot produce one is rejected before any engine
// call.  Each method bounds its store work with a timeout so a
// stalled database surfaces as an error instead of a hung request.
type BookingHandler struct {
	Engine      *reservation.Engine
	Restaurants RestaurantDirectory
	Events      EventPublisher
}

// NewBookingHandler constructs a BookingHandler.  Dependencies must
// be non-nil.
func NewBookingHandler(engine *reservation.Engine, restaurants RestaurantDirectory, events EventPublisher) *BookingHandler {
	if engine == nil || restaurants == nil || events == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: engine, Restaurants: restaurants, Events: events}
}

const storeTimeout = 5 * time.Second

// ----- DTOs -----

type createBookingReq struct {
	RestaurantID uint64 `json:"restaurant_id"`
	GuestName    string `json:"guest_name"`
	Phone        string `json:"phone"`
	PartySize    uint8  `json:"party_size"`
	Time         string `json:"time"`   // "hh:mm"
	Period       string `json:"period"` // e.g. "2h"
	Date         string `json:"date"`   // "yyyy-mm-dd"
}

type modifyTimeReq struct {
	Time string `json:"time"` // "hh:mm"
}

type bookingResp struct {
	ID           uint64 `json:"id"`
	RestaurantID uint64 `json:"restaurant_id"`
	GuestName    string `json:"guest_name"`
	Phone        string `json:"phone"`
	PartySize    uint8  `json:"party_size"`
	Time         string `json:"time"`
	Period       string `json:"period"`
	Date         string `json:"date"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

func toBookingResp(b model.Booking) bookingResp {
	return bookingResp{
		ID:           b.ID,
		RestaurantID: b.RestaurantID,
		GuestName:    b.GuestName,
		Phone:        b.Phone,
		PartySize:    b.PartySize,
		Time:         b.Time,
		Period:       b.Period,
		Date:         b.Date,
		Status:       b.Status,
		CreatedAt:    b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// validClock reports whether s is an "hh:mm" clock time.
func validClock(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}

// validDate reports whether s is an ISO "yyyy-mm-dd" date.
func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// engineError translates engine failures into HTTP responses.
// Validation and not-found outcomes are ordinary typed results; only
// persistence failures map to 500.
func engineError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, reservation.ErrCapacityExceeded):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "party size must be between 1 and 8"})
	case errors.Is(err, reservation.ErrRestaurantNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
	case errors.Is(err, reservation.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, reservation.ErrNoTablesAvailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "no free tables available"})
	default:
		c.Logger().Errorf("reservation engine: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "persistence error"})
	}
}

// Create handles POST /v1/bookings.  On success the restaurant's
// free-table counter has already been decremented in the same
// transaction that inserted the booking.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.RestaurantID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "restaurant_id required"})
	}
	req.GuestName = strings.TrimSpace(req.GuestName)
	if req.GuestName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "guest_name required"})
	}
	if !validClock(req.Time) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "time must be hh:mm"})
	}
	if !validDate(req.Date) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be yyyy-mm-dd"})
	}
	if strings.TrimSpace(req.Period) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "period required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	b, err := h.Engine.CreateBooking(ctx, reservation.CreateRequest{
		UserID:       userID,
		RestaurantID: req.RestaurantID,
		GuestName:    req.GuestName,
		Phone:        strings.TrimSpace(req.Phone),
		PartySize:    req.PartySize,
		Time:         req.Time,
		Period:       req.Period,
		Date:         req.Date,
	})
	if err != nil {
		return engineError(c, err)
	}

	h.publishConfirmed(ctx, b)
	return c.JSON(http.StatusCreated, toBookingResp(b))
}

// publishConfirmed emits the booking.confirmed event.  The booking
// is committed by now, so publish failures are logged by the
// publisher and otherwise ignored.
func (h *BookingHandler) publishConfirmed(ctx context.Context, b model.Booking) {
	ev := queue.BookingConfirmedEvent{
		BookingID:    b.ID,
		UserID:       b.UserID,
		RestaurantID: b.RestaurantID,
		GuestName:    b.GuestName,
		PartySize:    b.PartySize,
		Time:         b.Time,
		Period:       b.Period,
		Date:         b.Date,
		ConfirmedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if info, err := h.Restaurants.GetInfo(ctx, b.RestaurantID); err == nil {
		ev.RestaurantName = info.Name
		ev.FreeTablesLeft = info.FreeTables
	}
	_ = h.Events.BookingConfirmed(ctx, ev)
}

// List handles GET /v1/bookings and returns the caller's active
// bookings, oldest first.  A user with no bookings gets an empty
// array, not an error.
func (h *BookingHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	list, err := h.Engine.BookingsForUser(ctx, userID)
	if err != nil {
		return engineError(c, err)
	}
	out := make([]bookingResp, 0, len(list))
	for _, b := range list {
		out = append(out, toBookingResp(b))
	}
	return c.JSON(http.StatusOK, out)
}

// ModifyTime handles PATCH /v1/bookings/:id/time.  Changing the time
// never touches the free-table counter.
func (h *BookingHandler) ModifyTime(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req modifyTimeReq
	if err := c.Bind(&req); err != nil || !validClock(req.Time) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "time must be hh:mm"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	b, err := h.Engine.ModifyBookingTime(ctx, userID, bookingID, req.Time)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}

// Cancel handles DELETE /v1/bookings/:id.  Cancellation is
// idempotent: repeating the call for an already-cancelled booking
// succeeds without moving the counter again.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	restaurantID, err := h.Engine.CancelBooking(ctx, userID, bookingID)
	if err != nil {
		return engineError(c, err)
	}

	_ = h.Events.BookingCancelled(ctx, queue.BookingCancelledEvent{
		BookingID:    bookingID,
		UserID:       userID,
		RestaurantID: restaurantID,
		CancelledAt:  time.Now().UTC().Format(time.RFC3339),
	})
	return c.NoContent(http.StatusNoContent)
}

// CancelByRestaurant handles DELETE /v1/restaurants/:id/booking, the
// compatibility route for clients that track bookings per
// restaurant.  The user's oldest active booking at the branch is
// cancelled.
func (h *BookingHandler) CancelByRestaurant(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	restaurantID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	bookingID, err := h.Engine.CancelBookingForRestaurant(ctx, userID, restaurantID)
	if err != nil {
		return engineError(c, err)
	}

	_ = h.Events.BookingCancelled(ctx, queue.BookingCancelledEvent{
		BookingID:    bookingID,
		UserID:       userID,
		RestaurantID: restaurantID,
		CancelledAt:  time.Now().UTC().Format(time.RFC3339),
	})
	return c.NoContent(http.StatusNoContent)
}
