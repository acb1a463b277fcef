// internal/adapters/out/db/schema.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	dbcommon "modaorganica/internal/adapters/out/db/common"
)

var schemaPostgres = []string{
	`CREATE TABLE IF NOT EXISTS products (
  id          TEXT PRIMARY KEY,
  sku         TEXT NOT NULL DEFAULT '',
  name        TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price       NUMERIC(12,2) NOT NULL,
  stock       INTEGER NOT NULL DEFAULT 0,
  image_url   TEXT NOT NULL DEFAULT '',
  created_at  TIMESTAMPTZ NOT NULL,
  updated_at  TIMESTAMPTZ NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS orders (
  id                 TEXT PRIMARY KEY,
  status             TEXT NOT NULL,
  user_id            TEXT NOT NULL DEFAULT '',
  customer_email     TEXT NOT NULL,
  customer_name      TEXT NOT NULL,
  customer_phone     TEXT NOT NULL DEFAULT '',
  shipping           JSONB NOT NULL,
  shipping_method    TEXT NOT NULL,
  requires_courier   BOOLEAN NOT NULL DEFAULT FALSE,
  items              JSONB NOT NULL,
  subtotal           NUMERIC(12,2) NOT NULL,
  shipping_cost      NUMERIC(12,2) NOT NULL,
  total              NUMERIC(12,2) NOT NULL,
  payment_session_id TEXT NOT NULL DEFAULT '',
  tracking_number    TEXT NOT NULL DEFAULT '',
  guide_url          TEXT NOT NULL DEFAULT '',
  created_at         TIMESTAMPTZ NOT NULL,
  updated_at         TIMESTAMPTZ NOT NULL,
  paid_at            TIMESTAMPTZ,
  municipality       TEXT NOT NULL DEFAULT '',
  has_location       BOOLEAN NOT NULL DEFAULT FALSE
)`,
	`ALTER TABLE orders ADD COLUMN IF NOT EXISTS municipality TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE orders ADD COLUMN IF NOT EXISTS has_location BOOLEAN NOT NULL DEFAULT FALSE`,
	`CREATE INDEX IF NOT EXISTS orders_status_created_idx ON orders (status, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS orders_payment_session_id_idx ON orders (payment_session_id)`,
	`CREATE TABLE IF NOT EXISTS cart_states (
  cart_key   TEXT PRIMARY KEY,
  state      TEXT NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
)`,
}

var schemaSQLite = []string{
	`CREATE TABLE IF NOT EXISTS products (
  id          TEXT PRIMARY KEY,
  sku         TEXT NOT NULL DEFAULT '',
  name        TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price       TEXT NOT NULL,
  stock       INTEGER NOT NULL DEFAULT 0,
  image_url   TEXT NOT NULL DEFAULT '',
  created_at  TEXT NOT NULL,
  updated_at  TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS orders (
  id                 TEXT PRIMARY KEY,
  status             TEXT NOT NULL,
  user_id            TEXT NOT NULL DEFAULT '',
  customer_email     TEXT NOT NULL,
  customer_name      TEXT NOT NULL,
  customer_phone     TEXT NOT NULL DEFAULT '',
  shipping           TEXT NOT NULL,
  shipping_method    TEXT NOT NULL,
  requires_courier   INTEGER NOT NULL DEFAULT 0,
  items              TEXT NOT NULL,
  subtotal           TEXT NOT NULL,
  shipping_cost      TEXT NOT NULL,
  total              TEXT NOT NULL,
  payment_session_id TEXT NOT NULL DEFAULT '',
  tracking_number    TEXT NOT NULL DEFAULT '',
  guide_url          TEXT NOT NULL DEFAULT '',
  created_at         TEXT NOT NULL,
  updated_at         TEXT NOT NULL,
  paid_at            TEXT,
  municipality       TEXT NOT NULL DEFAULT '',
  has_location       INTEGER NOT NULL DEFAULT 0
)`,
	`CREATE INDEX IF NOT EXISTS orders_status_created_idx ON orders (status, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS orders_payment_session_id_idx ON orders (payment_session_id)`,
	`CREATE TABLE IF NOT EXISTS cart_states (
  cart_key   TEXT PRIMARY KEY,
  state      TEXT NOT NULL,
  updated_at TEXT NOT NULL
)`,
}

// sqlite has no ADD COLUMN IF NOT EXISTS; "duplicate column" means already applied.
var sqliteAddColumns = []string{
	`ALTER TABLE orders ADD COLUMN municipality TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE orders ADD COLUMN has_location INTEGER NOT NULL DEFAULT 0`,
}

// Migrate creates the mall tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB, d dbcommon.Dialect) error {
	stmts := schemaSQLite
	if d == dbcommon.DialectPostgres {
		stmts = schemaPostgres
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("db: migrate: %w", err)
		}
	}
	if d == dbcommon.DialectPostgres {
		return nil
	}
	for _, s := range sqliteAddColumns {
		if _, err := db.ExecContext(ctx, s); err != nil && !strings.Contains(err.Error(), "duplicate column") {
			return fmt.Errorf("db: migrate: %w", err)
		}
	}
	return nil
}
