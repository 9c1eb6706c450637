// Package sqlstore implements the repository and session-store interfaces
// over database/sql.
//
// TWO BACKENDS, ONE POOL:
// The default backend is SQLite via modernc.org/sqlite — a pure Go
// translation of SQLite, so no C compiler and no separate database server,
// which is ideal for single-server deployments and for tests (":memory:").
// For deployments that already run MySQL, Config.Driver selects
// github.com/go-sql-driver/mysql instead; both speak `?` placeholders, so
// only the schema DDL and the upsert/uniqueness idioms differ.
//
// Everything shares one *sql.DB. That pool is the application's only shared
// mutable resource: it is internally synchronized, bounded, and safe for
// concurrent checkout by many request goroutines. Snippets, users, and
// sessions each get their own file in this package but the same pool.
//
// All user-controlled values are bound through placeholders — interpolating
// them into query text is an injection defect, not a style choice.
package sqlstore

import (
	"database/sql"
	"fmt"
	"time"

	// Side-effect imports: each driver's init() registers it with
	// database/sql under its name ("sqlite", "mysql").
	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/sakif/snippetbox/internal/auth"
)

// Driver names accepted by Config.Driver.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Config selects and tunes the backend.
//
// For MySQL the DSN must include parseTime=true so DATETIME columns scan
// into time.Time (e.g. "web:pass@tcp(localhost:3306)/snippetbox?parseTime=true").
// For SQLite the DSN is a file path, or ":memory:" for an ephemeral
// database.
type Config struct {
	Driver string
	DSN    string

	// BcryptCost is the password hashing work factor; zero means the
	// auth package default.
	BcryptCost int
}

// DB wraps the shared connection pool. It implements session.Store
// directly; the snippet and user repositories are thin views over it,
// reached through Snippets and Users. Read-only after New returns; safe
// for concurrent use.
type DB struct {
	conn      *sql.DB
	driver    string
	passwords *auth.PasswordService
}

// Snippets returns the snippet repository view over this pool.
func (db *DB) Snippets() *SnippetStore {
	return &SnippetStore{db: db}
}

// Users returns the user repository view over this pool.
func (db *DB) Users() *UserStore {
	return &UserStore{db: db}
}

// New opens the pool, verifies connectivity, applies per-driver tuning and
// runs the migrations. Callers must Close the returned DB during shutdown,
// after in-flight requests have drained.
func New(cfg Config) (*DB, error) {
	switch cfg.Driver {
	case DriverSQLite, DriverMySQL:
	default:
		return nil, fmt.Errorf("sqlstore: unknown driver %q", cfg.Driver)
	}

	conn, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: opening database: %w", err)
	}

	// sql.Open only prepares the pool; Ping forces a real connection so a
	// bad DSN fails at startup instead of on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlstore: pinging database: %w", err)
	}

	// Bound the pool. SQLite gets exactly one connection: the database is
	// single-writer anyway, and a ":memory:" DSN is per-connection — a
	// second pooled connection would see a different, empty database.
	if cfg.Driver == DriverSQLite {
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(25)
		conn.SetMaxIdleConns(25)
		conn.SetConnMaxLifetime(time.Hour)
	}

	if cfg.Driver == DriverSQLite {
		// WAL lets reads proceed while a write is in flight — without it
		// SQLite locks the whole file per write, which serialises requests.
		if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlstore: setting WAL mode: %w", err)
		}
		if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlstore: enabling foreign keys: %w", err)
		}
	}

	db := &DB{
		conn:      conn,
		driver:    cfg.Driver,
		passwords: auth.NewPasswordService(cfg.BcryptCost),
	}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlstore: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Defer it right after New; during
// graceful shutdown it must run last, after the sweeper has stopped.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the three tables. CREATE TABLE IF NOT EXISTS keeps this
// idempotent, so it is safe on every startup.
func (db *DB) migrate() error {
	var stmts []string
	if db.driver == DriverMySQL {
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS snippets (
				id      INTEGER NOT NULL PRIMARY KEY AUTO_INCREMENT,
				title   VARCHAR(100) NOT NULL,
				content TEXT NOT NULL,
				created DATETIME(6) NOT NULL,
				expires DATETIME(6) NOT NULL
			)`,
			`CREATE INDEX idx_snippets_expires ON snippets(expires)`,
			`CREATE TABLE IF NOT EXISTS users (
				id              INTEGER NOT NULL PRIMARY KEY AUTO_INCREMENT,
				name            VARCHAR(255) NOT NULL,
				email           VARCHAR(255) NOT NULL,
				hashed_password CHAR(60) NOT NULL,
				created         DATETIME(6) NOT NULL,
				CONSTRAINT users_uc_email UNIQUE (email)
			)`,
			`CREATE TABLE IF NOT EXISTS sessions (
				token  CHAR(43) NOT NULL PRIMARY KEY,
				data   BLOB NOT NULL,
				expiry DATETIME(6) NOT NULL
			)`,
			`CREATE INDEX idx_sessions_expiry ON sessions(expiry)`,
		}
	} else {
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS snippets (
				id      INTEGER PRIMARY KEY AUTOINCREMENT,
				title   TEXT NOT NULL,
				content TEXT NOT NULL,
				created DATETIME NOT NULL,
				expires DATETIME NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_snippets_expires ON snippets(expires)`,
			`CREATE TABLE IF NOT EXISTS users (
				id              INTEGER PRIMARY KEY AUTOINCREMENT,
				name            TEXT NOT NULL,
				email           TEXT NOT NULL UNIQUE,
				hashed_password BLOB NOT NULL,
				created         DATETIME NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS sessions (
				token  TEXT PRIMARY KEY,
				data   BLOB NOT NULL,
				expiry DATETIME NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_sessions_expiry ON sessions(expiry)`,
		}
	}

	for _, stmt := range stmts {
		if _, err := db.conn.Exec(stmt); err != nil {
			// MySQL has no CREATE INDEX IF NOT EXISTS; a duplicate-name
			// error on a re-run is harmless.
			if db.driver == DriverMySQL && isMySQLErr(err, 1061) {
				continue
			}
			return fmt.Errorf("applying %.40q: %w", stmt, err)
		}
	}
	return nil
}
