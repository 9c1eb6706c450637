package sqlstore

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// newTestDB opens an in-memory SQLite database with migrations applied.
// The pool is pinned to one connection, so every query in the test sees
// the same database. bcrypt runs at MinCost to keep the suite fast.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(Config{
		Driver:     DriverSQLite,
		DSN:        ":memory:",
		BcryptCost: bcrypt.MinCost,
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(Config{Driver: "postgres", DSN: "whatever"})
	if err == nil {
		t.Fatal("expected an error for an unknown driver")
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)

	// A second run against the same schema must be a no-op.
	if err := db.migrate(); err != nil {
		t.Fatalf("re-running migrations: %v", err)
	}
}

// createTestUser inserts a user and returns its id.
func createTestUser(t *testing.T, db *DB, name, email, password string) int64 {
	t.Helper()

	id, err := db.Users().Insert(context.Background(), name, email, password)
	if err != nil {
		t.Fatalf("inserting test user: %v", err)
	}
	return id
}

// createTestSnippet inserts a snippet and returns its id.
func createTestSnippet(t *testing.T, db *DB, title string, expiresDays int) int64 {
	t.Helper()

	id, err := db.Snippets().Insert(context.Background(), title, "test content", expiresDays)
	if err != nil {
		t.Fatalf("inserting test snippet: %v", err)
	}
	return id
}
