package ingest

import (
	"context"
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Table DDL in foreign key order. The schema is created idempotently so
// the generate stage can be re-run against an existing database.
var tableDDL = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		customer_id   INTEGER PRIMARY KEY,
		first_name    TEXT NOT NULL,
		last_name     TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		signup_date   TIMESTAMPTZ NOT NULL,
		customer_tier TEXT NOT NULL,
		country       TEXT NOT NULL,
		city          TEXT NOT NULL,
		loyalty_score DOUBLE PRECISION NOT NULL,
		is_active     BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		product_id     INTEGER PRIMARY KEY,
		product_name   TEXT NOT NULL,
		category       TEXT NOT NULL,
		subcategory    TEXT NOT NULL,
		price          NUMERIC(12,2) NOT NULL,
		cost_price     NUMERIC(12,2) NOT NULL,
		stock_quantity INTEGER NOT NULL,
		supplier       TEXT NOT NULL,
		creation_date  TIMESTAMPTZ NOT NULL,
		is_active      BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		order_id         INTEGER PRIMARY KEY,
		customer_id      INTEGER NOT NULL REFERENCES customers (customer_id),
		order_date       TIMESTAMPTZ NOT NULL,
		status           TEXT NOT NULL,
		shipping_country TEXT NOT NULL,
		shipping_city    TEXT NOT NULL,
		total_amount     NUMERIC(12,2) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		order_item_id INTEGER PRIMARY KEY,
		order_id      INTEGER NOT NULL REFERENCES orders (order_id),
		product_id    INTEGER NOT NULL REFERENCES products (product_id),
		quantity      INTEGER NOT NULL,
		unit_price    NUMERIC(12,2) NOT NULL,
		subtotal      NUMERIC(12,2) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		payment_id     INTEGER PRIMARY KEY,
		order_id       INTEGER NOT NULL REFERENCES orders (order_id),
		payment_method TEXT NOT NULL,
		amount         NUMERIC(12,2) NOT NULL,
		payment_status TEXT NOT NULL,
		payment_date   TIMESTAMPTZ NOT NULL,
		transaction_id TEXT NOT NULL UNIQUE,
		risk_score     DOUBLE PRECISION NOT NULL
	)`,
}

var indexDDL = []string{
	`CREATE INDEX IF NOT EXISTS idx_customers_email ON customers (email)`,
	`CREATE INDEX IF NOT EXISTS idx_customers_country ON customers (country)`,
	`CREATE INDEX IF NOT EXISTS idx_customers_tier ON customers (customer_tier)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_customer_date ON orders (customer_id, order_date)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_date ON orders (order_date)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items (order_id)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items (product_id)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_order ON payments (order_id)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_status ON payments (payment_status)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_date ON payments (payment_date)`,
}

// CreateSchema creates the five analytics tables and their indexes.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	for _, ddl := range tableDDL {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	log.Info("Database schema ready")
	return nil
}

// Reset empties all five tables so a fresh snapshot can be loaded.
func Reset(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx,
		`TRUNCATE payments, order_items, orders, products, customers`)
	if err != nil {
		return fmt.Errorf("failed to reset analytics tables: %w", err)
	}
	log.Info("Analytics tables truncated")
	return nil
}
