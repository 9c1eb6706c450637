// Package session implements server-side sessions backed by the storage
// layer: opaque cryptographically-random tokens in a cookie, session data in
// a database row, and rotation of the token on every authentication-state
// transition.
//
// WHY SERVER-SIDE SESSIONS (NOT SIGNED TOKENS)?
// The session row is the source of truth, so the server can invalidate a
// session at any moment: rotation on login/logout kills the old identifier
// immediately (session fixation prevention), and the background sweeper
// deletes idle sessions. A self-contained signed token can do neither
// without growing a server-side denylist — at which point you have a session
// store anyway.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"
)

// Well-known data keys. A record without KeyAuthenticatedUserID is an
// anonymous session.
const (
	KeyAuthenticatedUserID = "authenticatedUserID"
	KeyFlash               = "flash"
)

// Record is one session row: an opaque token, a string-keyed bag of
// serialized values, and an expiry refreshed on activity.
//
// Records are request-scoped and never shared between goroutines, so the
// dirty flag needs no locking. The dirty flag is what makes writes lazy —
// untouched anonymous sessions never produce a row or a cookie.
type Record struct {
	Token  string
	Data   map[string]string
	Expiry time.Time

	dirty bool
	fresh bool // created this request, no row behind it yet
}

// newRecord creates an unsaved anonymous record with a fresh token.
func newRecord() (*Record, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	return &Record{
		Token: token,
		Data:  make(map[string]string),
		fresh: true,
	}, nil
}

// newToken returns 32 bytes from crypto/rand, base64url-encoded.
// Session identifiers must be unguessable; using a time-ordered id scheme
// here would make tokens predictable.
func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session: generating token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Put stores a string value and marks the record dirty.
func (r *Record) Put(key, value string) {
	r.Data[key] = value
	r.dirty = true
}

// GetString returns the value for key, or "" and false if absent.
func (r *Record) GetString(key string) (string, bool) {
	v, ok := r.Data[key]
	return v, ok
}

// Remove deletes a key. Removing an absent key is a no-op and does not
// dirty the record.
func (r *Record) Remove(key string) {
	if _, ok := r.Data[key]; !ok {
		return
	}
	delete(r.Data, key)
	r.dirty = true
}

// PutInt stores an integer value (serialized as decimal text).
func (r *Record) PutInt(key string, value int64) {
	r.Put(key, strconv.FormatInt(value, 10))
}

// GetInt returns the integer value for key. A missing or unparsable value
// returns (0, false).
func (r *Record) GetInt(key string) (int64, bool) {
	v, ok := r.Data[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// PutFlash stores a one-shot message.
func (r *Record) PutFlash(message string) {
	r.Put(KeyFlash, message)
}

// PopFlash returns the flash message and clears it, so the message is shown
// exactly once.
func (r *Record) PopFlash() string {
	v, ok := r.Data[KeyFlash]
	if !ok {
		return ""
	}
	delete(r.Data, KeyFlash)
	r.dirty = true
	return v
}

// IsAuthenticated reports whether the record carries an authenticated user.
func (r *Record) IsAuthenticated() bool {
	_, ok := r.Data[KeyAuthenticatedUserID]
	return ok
}

// IsExpired reports whether the record's expiry has passed.
func (r *Record) IsExpired() bool {
	return !r.Expiry.IsZero() && time.Now().After(r.Expiry)
}
