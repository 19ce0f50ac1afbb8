package model

import "time"

// Restaurant represents a single branch that accepts table bookings.
// Records are created once (seeding or owner onboarding) and are
// immutable afterwards; only the associated TableInventory changes
// over time.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name of the branch.
//  Address   – street address shown in the catalog.
//  OwnerID   – user who registered the branch (zero for seeded rows).
//  CreatedAt – creation timestamp.
type Restaurant struct {
	ID        uint64    // restaurants.id
	Name      string    // restaurants.name
	Address   string    // restaurants.address
	OwnerID   uint64    // restaurants.owner_id
	CreatedAt time.Time // restaurants.created_at
}

// TableInventory tracks table capacity for exactly one restaurant.
// TotalTables is fixed when the restaurant is created; FreeTables is
// the mutable counter consumed by bookings.  The reservation engine
// is the only writer of FreeTables and maintains
// 0 <= FreeTables <= TotalTables at every commit point.
//
// Fields:
//  RestaurantID – the restaurant this inventory belongs to (1–1).
//  TotalTables  – fixed number of tables in the branch.
//  FreeTables   – tables not held by an active booking.
//  UpdatedAt    – last counter modification.
type TableInventory struct {
	RestaurantID uint64    // table_inventory.restaurant_id
	TotalTables  uint32    // table_inventory.total_tables
	FreeTables   uint32    // table_inventory.free_tables
	UpdatedAt    time.Time // table_inventory.updated_at
}
