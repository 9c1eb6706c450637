// Package repository declares the storage interfaces the rest of the
// application programs against. The concrete implementation lives in the
// sqlstore subpackage; handlers and middleware only ever see these
// interfaces, which is what makes them mockable in tests.
package repository

import (
	"context"

	"github.com/sakif/snippetbox/internal/model"
)

// LatestLimit bounds the home-page listing.
const LatestLimit = 10

// SnippetRepository persists and retrieves snippets with expiry filtering.
// Expired rows are never returned: Get reports them as not-found and Latest
// skips them.
type SnippetRepository interface {
	// Insert stores a new snippet. The created timestamp is set at the
	// storage boundary, expires at created + expiresDays days. Returns the
	// generated id.
	Insert(ctx context.Context, title, content string, expiresDays int) (int64, error)

	// Get returns the snippet with the given id, or apperror.ErrNotFound
	// if it does not exist or has expired.
	Get(ctx context.Context, id int64) (*model.Snippet, error)

	// Latest returns up to LatestLimit non-expired snippets, newest first
	// (id descending). An empty slice is a valid result, not an error.
	Latest(ctx context.Context) ([]model.Snippet, error)
}

// UserRepository persists users and verifies credentials. Plaintext
// passwords cross this boundary but are never stored or logged: they are
// bcrypt-hashed on the way in and compared against the stored hash on the
// way back.
type UserRepository interface {
	// Insert creates a new user and returns the generated id. A uniqueness
	// violation on email is reported as apperror.ErrDuplicateEmail.
	Insert(ctx context.Context, name, email, password string) (int64, error)

	// Authenticate verifies email+password and returns the user id.
	// Unknown email and wrong password both yield
	// apperror.ErrInvalidCredentials with an identical message.
	Authenticate(ctx context.Context, email, password string) (int64, error)

	// Exists reports whether a user with the given id exists. A missing
	// row is (false, nil); only genuine storage failures return an error.
	Exists(ctx context.Context, id int64) (bool, error)

	// Get returns the user's profile row (hash included in the struct but
	// never serialised outward).
	Get(ctx context.Context, id int64) (*model.User, error)
}
