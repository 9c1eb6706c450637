package session

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// CookieName is the session cookie's name.
const CookieName = "session"

// Manager ties the Store to the HTTP surface: it resolves the inbound
// cookie to a Record, rotates tokens on privilege changes, and commits
// dirty records back to the store together with a refreshed cookie.
//
// COOKIE ATTRIBUTES:
// HttpOnly (JavaScript cannot read the token), SameSite=Lax (not sent on
// cross-site POSTs), Path=/ and Secure from configuration — true outside
// local development. Expiry is inactivity-based: every commit pushes the
// deadline another lifetime into the future.
type Manager struct {
	store    Store
	lifetime time.Duration
	secure   bool
}

// NewManager creates a Manager. lifetime is the inactivity window applied
// to every committed record.
func NewManager(store Store, lifetime time.Duration, secure bool) *Manager {
	return &Manager{
		store:    store,
		lifetime: lifetime,
		secure:   secure,
	}
}

// Load resolves the request's session. A missing cookie, an unknown token,
// or an expired row all yield a fresh anonymous record — those are normal
// states, not errors. Only a genuine store failure is returned.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Record, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return newRecord()
	}

	rec, err := m.store.Load(ctx, cookie.Value)
	if err != nil {
		if err == ErrNoSession {
			return newRecord()
		}
		return nil, fmt.Errorf("session: loading %q: %w", CookieName, err)
	}
	return rec, nil
}

// Rotate replaces the record's token, keeping its data. The old row is
// deleted first so the previous identifier is dead the moment this returns.
// Call on every authentication-state transition — login success and logout —
// to prevent session fixation: an attacker who planted a token before the
// transition holds an identifier that no longer exists.
func (m *Manager) Rotate(ctx context.Context, rec *Record) error {
	if !rec.fresh {
		if err := m.store.Delete(ctx, rec.Token); err != nil {
			return fmt.Errorf("session: deleting rotated token: %w", err)
		}
	}

	token, err := newToken()
	if err != nil {
		return err
	}
	rec.Token = token
	rec.fresh = true
	rec.dirty = true
	return nil
}

// Commit persists the record and sets the cookie. Rules:
//   - fresh and untouched: do nothing — anonymous requests that never
//     write to the session leave no row and no cookie behind.
//   - otherwise: refresh the expiry (inactivity window), upsert the row,
//     reissue the cookie.
//
// Commit must run before the first response byte; once the header is
// written, Set-Cookie is silently dropped. The session interceptor
// guarantees this by committing from a wrapped ResponseWriter.
func (m *Manager) Commit(ctx context.Context, w http.ResponseWriter, rec *Record) error {
	if rec.fresh && !rec.dirty {
		return nil
	}

	rec.Expiry = time.Now().Add(m.lifetime)
	if err := m.store.Save(ctx, rec); err != nil {
		return fmt.Errorf("session: saving record: %w", err)
	}
	rec.fresh = false
	rec.dirty = false

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    rec.Token,
		Path:     "/",
		Expires:  rec.Expiry,
		MaxAge:   int(m.lifetime.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
