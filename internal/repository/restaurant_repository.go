// Package repository contains data access logic separated from HTTP
// handlers and from the reservation engine.  Each repository wraps a
// sql.DB handle and exposes the queries one aggregate needs; the
// booking repository additionally implements the engine's store
// contracts so counter and booking changes commit in one database
// transaction.
package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"       // errors is used to define and compare sentinel values

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/reservation"
)

// ErrRestaurantNotFound is returned when a restaurant cannot be found.
var ErrRestaurantNotFound = errors.New("restaurant not found")

// RestaurantInfo joins a restaurant with its table inventory for the
// public catalog.  This is the explicit serialization of the two
// rows; every exposed field is enumerated here rather than derived
// reflectively.
type RestaurantInfo struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	TotalTables uint32 `json:"total_tables"`
	FreeTables  uint32 `json:"free_tables"`
}

// RestaurantRepo encapsulates all database queries related to
// restaurants and their inventory rows.  It also satisfies the
// engine's CatalogStore contract via GetInventory.
type RestaurantRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewRestaurantRepo constructs a RestaurantRepo with the provided DB
// handle.  This allows dependency injection of the database in tests
// and at startup.
func NewRestaurantRepo(db *sql.DB) *RestaurantRepo {
	return &RestaurantRepo{db: db}
}

// Create inserts a restaurant together with its inventory row in one
// transaction.  free_tables starts equal to total_tables: a new
// branch has no bookings.  On success the restaurant's ID is
// populated with the auto-generated value.
func (r *RestaurantRepo) Create(ctx context.Context, rest *model.Restaurant, totalTables uint32) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const qInsert = "INSERT INTO restaurants (owner_id, name, address) VALUES (?, ?, ?)"
	res, err := tx.ExecContext(ctx, qInsert, rest.OwnerID, rest.Name, rest.Address)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rest.ID = uint64(id)

	const qInv = "INSERT INTO table_inventory (restaurant_id, total_tables, free_tables) VALUES (?, ?, ?)"
	if _, err := tx.ExecContext(ctx, qInv, rest.ID, totalTables, totalTables); err != nil {
		return err
	}

	// Follow-up SELECT to populate the default created_at timestamp.
	const qSelect = "SELECT created_at FROM restaurants WHERE id = ?"
	if err := tx.QueryRowContext(ctx, qSelect, rest.ID).Scan(&rest.CreatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ListAll returns every restaurant joined with its inventory,
// ordered by id.  It backs the public catalog listing, so only
// fields safe for unauthenticated callers are selected.
func (r *RestaurantRepo) ListAll(ctx context.Context) ([]RestaurantInfo, error) {
	const q = `SELECT r.id, r.name, r.address, ti.total_tables, ti.free_tables
	           FROM restaurants r
	           JOIN table_inventory ti ON ti.restaurant_id = r.id
	           ORDER BY r.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RestaurantInfo, 0)
	for rows.Next() {
		var info RestaurantInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.Address, &info.TotalTables, &info.FreeTables); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetInfo returns one restaurant joined with its inventory, or
// ErrRestaurantNotFound when the id does not exist.
func (r *RestaurantRepo) GetInfo(ctx context.Context, id uint64) (*RestaurantInfo, error) {
	const q = `SELECT r.id, r.name, r.address, ti.total_tables, ti.free_tables
	           FROM restaurants r
	           JOIN table_inventory ti ON ti.restaurant_id = r.id
	           WHERE r.id = ?`
	var info RestaurantInfo
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&info.ID, &info.Name, &info.Address, &info.TotalTables, &info.FreeTables); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}
	return &info, nil
}

// GetInventory returns the current table inventory for a restaurant.
// It implements reservation.CatalogStore and therefore translates a
// missing row into reservation.ErrInventoryNotFound rather than
// sql.ErrNoRows.
func (r *RestaurantRepo) GetInventory(ctx context.Context, restaurantID uint64) (model.TableInventory, error) {
	const q = `SELECT restaurant_id, total_tables, free_tables, updated_at
	           FROM table_inventory WHERE restaurant_id = ?`
	var inv model.TableInventory
	err := r.db.QueryRowContext(ctx, q, restaurantID).Scan(
		&inv.RestaurantID, &inv.TotalTables, &inv.FreeTables, &inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.TableInventory{}, reservation.ErrInventoryNotFound
		}
		return model.TableInventory{}, err
	}
	return inv, nil
}
