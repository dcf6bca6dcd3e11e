package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema
// creation. Each migration must be idempotent. Append new migrations at the
// end; never edit or reorder existing ones.
var migrations = []string{
	// Migration 1: lookup indexes for the notification feed.
	`CREATE INDEX IF NOT EXISTS idx_notifications_kind ON book_notifications(kind)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_read ON book_notifications(is_read)`,

	// Migration 2: per-user transaction listing.
	`CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id)`,
}

// Migrate creates the schema and runs all migrations. Safe to call on every
// startup.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
