package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Run creates the catalog and inventory tables.
//
// batch.barcode deliberately carries no foreign key: batches keep their
// snapshot after the product row is gone.
func Run(db *sqlx.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS product (
            barcode TEXT PRIMARY KEY,
            name TEXT,
            description TEXT
        );`,
		`CREATE TABLE IF NOT EXISTS batch (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            barcode TEXT,
            name TEXT,
            description TEXT,
            exp_date TEXT
        );`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
