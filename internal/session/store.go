package session

import (
	"context"
	"errors"
)

// ErrNoSession is returned by Store.Load when no live row matches the token.
// Callers treat it as "start an anonymous session", never as a failure.
var ErrNoSession = errors.New("session: no matching session")

// Store is the persistence contract for session rows. The production
// implementation lives in repository/sqlstore and shares the application's
// connection pool; tests use a hand-written in-memory store.
type Store interface {
	// Load returns the record for token, or ErrNoSession if the token is
	// unknown or the row has expired.
	Load(ctx context.Context, token string) (*Record, error)

	// Save upserts the record under its current token.
	Save(ctx context.Context, rec *Record) error

	// Delete removes the row for token. Deleting an absent token is not an
	// error.
	Delete(ctx context.Context, token string) error

	// SweepExpired deletes every row past its expiry and reports how many
	// went.
	SweepExpired(ctx context.Context) (int64, error)
}
