package reservation

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// fakeStore is an in-memory implementation of CatalogStore and
// BookingStore.  It mirrors the database contract: the guarded
// decrement, the clamped increment and the idempotent cancel all
// behave as the MySQL store does, just under a single mutex.
type fakeStore struct {
	mu          sync.Mutex
	inventories map[uint64]*model.TableInventory
	bookings    map[uint64]*model.Booking
	nextID      uint64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		inventories: make(map[uint64]*model.TableInventory),
		bookings:    make(map[uint64]*model.Booking),
	}
}

func (s *fakeStore) addRestaurant(id uint64, tables uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inventories[id] = &model.TableInventory{
		RestaurantID: id,
		TotalTables:  tables,
		FreeTables:   tables,
	}
}

func (s *fakeStore) freeTables(id uint64) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inventories[id].FreeTables
}

func (s *fakeStore) GetInventory(_ context.Context, restaurantID uint64) (model.TableInventory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.inventories[restaurantID]
	if !ok {
		return model.TableInventory{}, ErrInventoryNotFound
	}
	return *inv, nil
}

func (s *fakeStore) CreateConsumingTable(_ context.Context, b *model.Booking) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.inventories[b.RestaurantID]
	if !ok {
		return false, errors.New("inventory row missing")
	}
	if inv.FreeTables == 0 {
		return false, nil
	}
	inv.FreeTables--
	s.nextID++
	b.ID = s.nextID
	cp := *b
	s.bookings[b.ID] = &cp
	return true, nil
}

func (s *fakeStore) ListActiveByUser(_ context.Context, userID uint64) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Booking
	for _, b := range s.bookings {
		if b.UserID == userID && b.Status == model.BookingStatusActive {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) OldestActiveByUserAndRestaurant(_ context.Context, userID, restaurantID uint64) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var oldest *model.Booking
	for _, b := range s.bookings {
		if b.UserID != userID || b.RestaurantID != restaurantID || b.Status != model.BookingStatusActive {
			continue
		}
		if oldest == nil || b.ID < oldest.ID {
			oldest = b
		}
	}
	if oldest == nil {
		return model.Booking{}, ErrBookingNotFound
	}
	return *oldest, nil
}

func (s *fakeStore) UpdateTime(_ context.Context, userID, bookingID uint64, newTime string) (model.Booking, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok || b.UserID != userID || b.Status != model.BookingStatusActive {
		return model.Booking{}, false, nil
	}
	b.Time = newTime
	return *b, true, nil
}

func (s *fakeStore) CancelReleasingTable(_ context.Context, userID, bookingID uint64) (CancelOutcome, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok || b.UserID != userID {
		return CancelNotFound, 0, nil
	}
	if b.Status == model.BookingStatusCancelled {
		return CancelAlreadyCancelled, b.RestaurantID, nil
	}
	b.Status = model.BookingStatusCancelled
	inv := s.inventories[b.RestaurantID]
	if inv.FreeTables < inv.TotalTables {
		inv.FreeTables++
	}
	return CancelReleased, b.RestaurantID, nil
}

// failingCatalog returns a fixed error from every read.
type failingCatalog struct{ err error }

func (f failingCatalog) GetInventory(context.Context, uint64) (model.TableInventory, error) {
	return model.TableInventory{}, f.err
}

func newTestEngine(store *fakeStore) *Engine { return NewEngine(store, store) }

func mustCreate(t *testing.T, e *Engine, userID, restaurantID uint64) model.Booking {
	t.Helper()
	b, err := e.CreateBooking(context.Background(), CreateRequest{
		UserID:       userID,
		RestaurantID: restaurantID,
		GuestName:    "Ana Lopez",
		Phone:        "+5215512345678",
		PartySize:    4,
		Time:         "19:30",
		Period:       "2h",
		Date:         "2026-09-01",
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}

func TestCreateBooking_ConsumesOneTable(t *testing.T) {
	store := newFakeStore()
	store.addRestaurant(1, 10)
	e := newTestEngine(store)

	b := mustCreate(t, e, 7, 1)

	if b.ID == 0 {
		t.Error("expected booking ID to be assigned")
	}
	if b.Status != model.BookingStatusActive {
		t.Errorf("expected status ACTIVE, got %q", b.Status)
	}
	if got := store.freeTables(1); got != 9 {
		t.Errorf("expected 9 free tables, got %d", got)
	}
}

func TestCreateBooking_PartySizeBounds(t *testing.T) {
	store := newFakeStore()
	store.addRestaurant(1, 10)
	e := newTestEngine(store)

	// Largest party a table seats is accepted.
	_, err := e.CreateBooking(context.Background(), CreateRequest{
		UserID: 1, RestaurantID: 1, GuestName: "g", PartySize: 8,
		Time: "20:00", Period: "2h", Date: "2026-09-01",
	})
	if err != nil {
		t.Fatalf("party of 8 should succeed: %v", err)
	}

	for _, size := range []uint8{0, 9} {
		_, err := e.CreateBooking(context.Background(), CreateRequest{
			UserID: 1, RestaurantID: 1, GuestName: "g", PartySize: size,
			Time: "20:00", Period: "2h", Date: "2026-09-01",
		})
		if !errors.Is(err, ErrCapacityExceeded) {
			t.Errorf("party of %d: expected ErrCapacityExceeded, got %v", size, err)
		}
	}

	// Rejected requests must not consume tables.
	if got := store.freeTables(1); got != 9 {
		t.Errorf("expected 9 free tables after rejections, got %d", got)
	}
}

func TestCreateBooking_UnknownRestaurant(t *testing.T) {
	e := newTestEngine(newFakeStore())

	_, err := e.CreateBooking(context.Background(), CreateRequest{
		UserID: 1, RestaurantID: 42, GuestName: "g", PartySize: 2,
		Time: "20:00", Period: "2h", Date: "2026-09-01",
	})
	if !errors.Is(err, ErrRestaurantNotFound) {
		t.Errorf("expected ErrRestaurantNotFound, got %v", err)
	}
}

func TestCreateBooking_NoTablesAvailable(t *testing.T) {
	store := newFakeStore()
	store.addRestaurant(1, 1)
	e := newTestEngine(store)

	mustCreate(t, e, 1, 1)

	_, err := e.CreateBooking(context.Background(), CreateRequest{
		UserID: 2, RestaurantID: 1, GuestName: "g", PartySize: 2,
		Time: "20:00", Period: "2h", Date: "2026-09-01",
	})
	if !errors.Is(err, ErrNoTablesAvailable) {
		t.Errorf("expected ErrNoTablesAvailable, got %v", err)
	}
}

func TestCreateBooking_PersistenceError(t *testing.T) {
	store := newFakeStore()
	e := NewEngine(failingCatalog{err: errors.New("connection refused")}, store)

	_, err := e.CreateBooking(context.Background(), CreateRequest{
		UserID: 1, RestaurantID: 1, GuestName: "g", PartySize: 2,
		Time: "20:00", Period: "2h", Date: "2026-09-01",
	})
	var pe *PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *PersistenceError, got %v", err)
	}
}

// TestCreateBooking_ConcurrentExhaustion floods one restaurant with
// more requests than tables.  Exactly total_tables requests may
// succeed and the counter can never go below zero.
func TestCreateBooking_ConcurrentExhaustion(t *testing.T) {
	const tables = 5
	const requests = 40

	store := newFakeStore()
	store.addRestaurant(1, tables)
	e := newTestEngine(store)

	var wg sync.WaitGroup
	errs := make(chan error, requests)
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(userID uint64) {
			defer wg.Done()
			_, err := e.CreateBooking(context.Background(), CreateRequest{
				UserID: userID, RestaurantID: 1, GuestName: "g", PartySize: 2,
				Time: "20:00", Period: "2h", Date: "2026-09-01",
			})
			errs <- err
		}(uint64(i + 1))
	}
	wg.Wait()
	close(errs)

	succeeded, exhausted := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrNoTablesAvailable):
			exhausted++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != tables {
		t.Errorf("expected exactly %d successes, got %d", tables, succeeded)
	}
	if exhausted != requests-tables {
		t.Errorf("expected %d exhausted requests, got %d", requests-tables, exhausted)
	}
	if got := store.freeTables(1); got != 0 {
		t.Errorf("expected 0 free tables, got %d", got)
	}
}

func TestBookingsForUser_EmptyIsNotAnError(t *testing.T) {
	e := newTestEngine(newFakeStore())

	list, err := e.BookingsForUser(context.Background(), 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("expected empty slice, got %#v", list)
	}
}

func TestModifyBookingTime(t *testing.T) {
	store := newFakeStore()
	store.addRestaurant(1, 10)
	e := newTestEngine(store)

	b := mustCreate(t, e, 3, 1)

	got, err := e.ModifyBookingTime(context.Background(), 3, b.ID, "21:00")
	if err != nil {
		t.Fatalf("modify: %v", err)
	}
	if got.Time != "21:00" {
		t.Errorf("expected time 21:00, got %q", got.Time)
	}
	// Time changes never touch the counter.
	if free := store.freeTables(1); free != 9 {
		t.Errorf("expected 9 free tables, got %d", free)
	}
}

func TestModifyBookingTime_NotFound(t *testing.T) {
	store := newFakeStore()
	store.addRestaurant(1, 10)
	e := newTestEngine(store)

	b := mustCreate(t, e, 3, 1)

	// Unknown ID and someone else's booking look the same.
	if _, err := e.ModifyBookingTime(context.Background(), 3, 999, "21:00"); !errors.Is(err, ErrBookingNotFound) {
		t.Errorf("unknown id: expected ErrBookingNotFound, got %v", err)
	}
	if _, err := e.ModifyBookingTime(context.Background(), 4, b.ID, "21:00"); !errors.Is(err, ErrBookingNotFound) {
		t.Errorf("foreign booking: expected ErrBookingNotFound, got %v", err)
	}
}

func TestCancelBooking_ReleasesTable(t *testing.T) {
	store := newFakeStore()
	store.addRestaurant(1, 10)
	e := newTestEngine(store)

	b := mustCreate(t, e, 5, 1)

	restaurantID, err := e.CancelBooking(context.Background(), 5, b.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if restaurantID != 1 {
		t.Errorf("expected restaurant 1, got %d", restaurantID)
	}
	if free := store.freeTables(1); free != 10 {
		t.Errorf("expected 10 free tables, got %d", free)
	}

	list, err := e.BookingsForUser(context.Background(), 5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected no active bookings, got %d", len(list))
	}
}

func TestCancelBooking_Idempotent(t *testing.T) {
	store := newFakeStore()
	store.addRestaurant(1, 10)
	e := newTestEngine(store)

	b := mustCreate(t, e, 5, 1)

	if _, err := e.CancelBooking(context.Background(), 5, b.ID); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	// Second cancel succeeds without releasing another table.
	if _, err := e.CancelBooking(context.Background(), 5, b.ID); err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if free := store.freeTables(1); free != 10 {
		t.Errorf("expected counter clamped at 10, got %d", free)
	}
}

func TestCancelBooking_NotFound(t *testing.T) {
	store := newFakeStore()
	store.addRestaurant(1, 10)
	e := newTestEngine(store)

	b := mustCreate(t, e, 5, 1)

	if _, err := e.CancelBooking(context.Background(), 5, 999); !errors.Is(err, ErrBookingNotFound) {
		t.Errorf("unknown id: expected ErrBookingNotFound, got %v", err)
	}
	if _, err := e.CancelBooking(context.Background(), 6, b.ID); !errors.Is(err, ErrBookingNotFound) {
		t.Errorf("foreign booking: expected ErrBookingNotFound, got %v", err)
	}
}

func TestCancelBookingForRestaurant_CancelsOldest(t *testing.T) {
	store := newFakeStore()
	store.addRestaurant(1, 10)
	e := newTestEngine(store)

	first := mustCreate(t, e, 5, 1)
	second := mustCreate(t, e, 5, 1)

	bookingID, err := e.CancelBookingForRestaurant(context.Background(), 5, 1)
	if err != nil {
		t.Fatalf("cancel by restaurant: %v", err)
	}
	if bookingID != first.ID {
		t.Errorf("expected oldest booking %d cancelled, got %d", first.ID, bookingID)
	}

	list, err := e.BookingsForUser(context.Background(), 5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != second.ID {
		t.Errorf("expected only booking %d to remain, got %#v", second.ID, list)
	}
}

func TestCancelBookingForRestaurant_NoActiveBooking(t *testing.T) {
	store := newFakeStore()
	store.addRestaurant(1, 10)
	e := newTestEngine(store)

	if _, err := e.CancelBookingForRestaurant(context.Background(), 5, 1); !errors.Is(err, ErrBookingNotFound) {
		t.Errorf("expected ErrBookingNotFound, got %v", err)
	}
}

// TestBookingLifecycle walks the counter through a full create,
// modify, cancel cycle and checks it after every step.
func TestBookingLifecycle(t *testing.T) {
	store := newFakeStore()
	store.addRestaurant(1, 10)
	e := newTestEngine(store)

	b := mustCreate(t, e, 8, 1)
	if free := store.freeTables(1); free != 9 {
		t.Fatalf("after create: expected 9 free, got %d", free)
	}

	if _, err := e.ModifyBookingTime(context.Background(), 8, b.ID, "22:00"); err != nil {
		t.Fatalf("modify: %v", err)
	}
	if free := store.freeTables(1); free != 9 {
		t.Fatalf("after modify: expected 9 free, got %d", free)
	}

	if _, err := e.CancelBooking(context.Background(), 8, b.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if free := store.freeTables(1); free != 10 {
		t.Fatalf("after cancel: expected 10 free, got %d", free)
	}
}
