package main // Seed binary: creates the schema and demo data

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/restaurant-table-reservation/internal/config"
	"github.com/iliyamo/restaurant-table-reservation/internal/database"
	"github.com/iliyamo/restaurant-table-reservation/internal/utils"
)

// schema holds the CREATE TABLE statements for every table the
// service touches.  booking_date and time_reserved are stored as
// plain strings because the service treats them as opaque labels,
// not as instants to compute with.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		username      VARCHAR(64)  NOT NULL,
		phone         VARCHAR(32)  NOT NULL DEFAULT '',
		password_hash VARCHAR(100) NOT NULL,
		role          VARCHAR(16)  NOT NULL DEFAULT 'CUSTOMER',
		is_active     TINYINT(1)   NOT NULL DEFAULT 1,
		created_at    TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_username (username)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64)  NOT NULL,
		expires_at TIMESTAMP NOT NULL,
		revoked_at TIMESTAMP NULL DEFAULT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_refresh_tokens_hash (token_hash),
		KEY idx_refresh_tokens_user (user_id),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users (id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS restaurants (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name       VARCHAR(128) NOT NULL,
		address    VARCHAR(255) NOT NULL,
		owner_id   BIGINT UNSIGNED NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_restaurants_owner (owner_id),
		CONSTRAINT fk_restaurants_owner FOREIGN KEY (owner_id) REFERENCES users (id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS table_inventory (
		restaurant_id BIGINT UNSIGNED NOT NULL,
		total_tables  INT UNSIGNED NOT NULL,
		free_tables   INT UNSIGNED NOT NULL,
		updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (restaurant_id),
		CONSTRAINT fk_inventory_restaurant FOREIGN KEY (restaurant_id) REFERENCES restaurants (id),
		CONSTRAINT chk_inventory_bounds CHECK (free_tables <= total_tables)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id       BIGINT UNSIGNED NOT NULL,
		restaurant_id BIGINT UNSIGNED NOT NULL,
		guest_name    VARCHAR(128) NOT NULL,
		phone         VARCHAR(32)  NOT NULL DEFAULT '',
		party_size    TINYINT UNSIGNED NOT NULL,
		time_reserved VARCHAR(5)   NOT NULL,
		period        VARCHAR(16)  NOT NULL,
		booking_date  CHAR(10)     NOT NULL,
		status        VARCHAR(16)  NOT NULL DEFAULT 'ACTIVE',
		created_at    TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_bookings_user_status (user_id, status),
		KEY idx_bookings_restaurant (restaurant_id),
		CONSTRAINT fk_bookings_user FOREIGN KEY (user_id) REFERENCES users (id),
		CONSTRAINT fk_bookings_restaurant FOREIGN KEY (restaurant_id) REFERENCES restaurants (id)
	) ENGINE=InnoDB`,
}

// branches are the demo restaurants: one chain, five locations with
// different table counts.
var branches = []struct {
	name    string
	address string
	tables  uint32
}{
	{"Restaurante mexicano Centro", "Av. Juarez 12, Centro", 10},
	{"Restaurante mexicano Norte", "Calle 5 de Mayo 48, Norte", 15},
	{"Restaurante mexicano Sur", "Blvd. Insurgentes 103, Sur", 20},
	{"Restaurante mexicano Playa", "Malecon 7, Playa", 17},
	{"Restaurante mexicano Aeropuerto", "Terminal 2 Local 9", 8},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Fatalf("create schema: %v", err)
		}
	}
	log.Println("schema ready")

	ownerID, err := ensureOwner(ctx, db, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("seed owner: %v", err)
	}

	for _, br := range branches {
		created, err := ensureBranch(ctx, db, ownerID, br.name, br.address, br.tables)
		if err != nil {
			log.Fatalf("seed %s: %v", br.name, err)
		}
		if created {
			log.Printf("created %s (%d tables)", br.name, br.tables)
		}
	}
	log.Println("seed complete")
}

// ensureOwner creates the demo OWNER account when it does not exist
// yet and returns its ID.  Re-running the seed leaves an existing
// account untouched.
func ensureOwner(ctx context.Context, db *sql.DB, bcryptCost int) (uint64, error) {
	var id uint64
	err := db.QueryRowContext(ctx, `SELECT id FROM users WHERE username = ?`, "owner").Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	hash, err := utils.HashPassword("owner12345", bcryptCost)
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO users (username, phone, password_hash, role) VALUES (?, ?, ?, 'OWNER')`,
		"owner", "+520000000000", hash)
	if err != nil {
		return 0, err
	}
	n, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(n), nil
}

// ensureBranch inserts one restaurant with a full inventory unless a
// branch with the same name already exists.  Restaurant and
// inventory commit together.
func ensureBranch(ctx context.Context, db *sql.DB, ownerID uint64, name, address string, tables uint32) (bool, error) {
	var id uint64
	err := db.QueryRowContext(ctx, `SELECT id FROM restaurants WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return false, nil
	}
	if err != sql.ErrNoRows {
		return false, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO restaurants (name, address, owner_id) VALUES (?, ?, ?)`,
		name, address, ownerID)
	if err != nil {
		return false, err
	}
	rid, err := res.LastInsertId()
	if err != nil {
		return false, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO table_inventory (restaurant_id, total_tables, free_tables) VALUES (?, ?, ?)`,
		rid, tables, tables); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return true, nil
}
