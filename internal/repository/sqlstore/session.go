package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sakif/snippetbox/internal/session"
)

// compile-time check that *DB implements session.Store
var _ session.Store = (*DB)(nil)

// Session rows live in the same pool as snippets and users but belong to
// the session manager alone: nothing else in the application reads them.
// The data column is the record's key/value bag as JSON — the store doesn't
// interpret it.

// Load returns the live record for token. An unknown token and an expired
// row both come back as session.ErrNoSession; the expiry filter is in the
// WHERE clause so the sweeper and Load can never disagree about liveness.
func (db *DB) Load(ctx context.Context, token string) (*session.Record, error) {
	var (
		data   []byte
		expiry time.Time
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT data, expiry FROM sessions WHERE token = ? AND expiry > ?`,
		token, time.Now().UTC(),
	).Scan(&data, &expiry)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, session.ErrNoSession
		}
		return nil, fmt.Errorf("sqlstore: loading session: %w", err)
	}

	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		// A row we can't decode is as good as no row. Treat it as absent
		// rather than failing the request; the sweep will reap it.
		return nil, session.ErrNoSession
	}

	return &session.Record{
		Token:  token,
		Data:   values,
		Expiry: expiry,
	}, nil
}

// Save upserts the record under its token. Upsert (rather than insert/
// update split) makes Save safe whether or not a commit for this token has
// happened before — which is exactly the state after a rotation.
func (db *DB) Save(ctx context.Context, rec *session.Record) error {
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return fmt.Errorf("sqlstore: encoding session data: %w", err)
	}

	var query string
	if db.driver == DriverMySQL {
		query = `INSERT INTO sessions (token, data, expiry) VALUES (?, ?, ?)
		         ON DUPLICATE KEY UPDATE data = VALUES(data), expiry = VALUES(expiry)`
	} else {
		query = `INSERT INTO sessions (token, data, expiry) VALUES (?, ?, ?)
		         ON CONFLICT(token) DO UPDATE SET data = excluded.data, expiry = excluded.expiry`
	}

	if _, err := db.conn.ExecContext(ctx, query, rec.Token, data, rec.Expiry.UTC()); err != nil {
		return fmt.Errorf("sqlstore: saving session: %w", err)
	}
	return nil
}

// Delete removes the row for token. Deleting an absent token succeeds —
// rotation calls this without caring whether the old session ever hit disk.
func (db *DB) Delete(ctx context.Context, token string) error {
	if _, err := db.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE token = ?`, token,
	); err != nil {
		return fmt.Errorf("sqlstore: deleting session: %w", err)
	}
	return nil
}

// SweepExpired deletes every session past its expiry and reports the count.
func (db *DB) SweepExpired(ctx context.Context) (int64, error) {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE expiry <= ?`, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("sqlstore: sweeping sessions: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlstore: counting swept sessions: %w", err)
	}
	return n, nil
}
