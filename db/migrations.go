package db

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Migrate runs all table creation statements. Safe to call multiple times
// due to IF NOT EXISTS clauses.
func Migrate(db *sql.DB) error {
	slog.Info("running database migrations")

	for _, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w\nstatement: %s", err, stmt)
		}
	}

	slog.Info("database migrations complete")
	return nil
}

var migrations = []string{
	// Members: one row per household (mahal_id is "ward/house")
	`CREATE TABLE IF NOT EXISTS members (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		mahal_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		house_name TEXT,
		place TEXT,
		phone TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	// Named sequence counters, created lazily by upsert
	`CREATE TABLE IF NOT EXISTS counters (
		name TEXT PRIMARY KEY,
		value INTEGER NOT NULL DEFAULT 0 CHECK(value >= 0),
		prefix TEXT NOT NULL DEFAULT '',
		reset_frequency TEXT NOT NULL DEFAULT 'never' CHECK(reset_frequency IN ('never', 'daily', 'monthly', 'yearly')),
		last_reset DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	// Bills: one row per recorded payment, never hard-deleted
	`CREATE TABLE IF NOT EXISTS bills (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		receipt_no INTEGER NOT NULL UNIQUE,
		mahal_id TEXT NOT NULL,
		member_name TEXT NOT NULL,
		address TEXT,
		amount INTEGER NOT NULL CHECK(amount > 0),
		amount_words TEXT NOT NULL,
		category TEXT NOT NULL,
		payment_method TEXT NOT NULL DEFAULT 'Cash' CHECK(payment_method IN ('Cash', 'UPI', 'Card', 'Bank Transfer', 'Cheque')),
		notes TEXT,
		financial_year TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active' CHECK(status IN ('active', 'voided')),
		created_by TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		voided_by TEXT,
		voided_at DATETIME,
		void_reason TEXT
	)`,

	// Indexes for common queries
	`CREATE INDEX IF NOT EXISTS idx_bills_mahal ON bills(mahal_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bills_category ON bills(category)`,
	`CREATE INDEX IF NOT EXISTS idx_bills_status ON bills(status)`,
	`CREATE INDEX IF NOT EXISTS idx_bills_created ON bills(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_bills_fy ON bills(financial_year)`,
	`CREATE INDEX IF NOT EXISTS idx_members_mahal ON members(mahal_id)`,
}
