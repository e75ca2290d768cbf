// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"testing"

	"github.com/jmoiron/sqlx"

	"medcabinet/m/internal/database"
	"medcabinet/m/internal/migrations"
)

// OpenDB returns an in-memory database with the schema applied. It is closed
// when the test ends.
func OpenDB(t testing.TB) *sqlx.DB {
	t.Helper()

	db, err := database.Connect(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return db
}
