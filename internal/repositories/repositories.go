package repositories

import (
	"database/sql"
	"fmt"
)

// NextSequence atomically increments and returns the cache ordering counter.
// Rows keep their sequence for stable display order across syncs.
func NextSequence(db *sql.DB) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE videos_sequence SET value = value + 1 WHERE id = 1"); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var value int64
	if err := tx.QueryRow("SELECT value FROM videos_sequence WHERE id = 1").Scan(&value); err != nil {
		return 0, fmt.Errorf("failed to read sequence: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return value, nil
}
