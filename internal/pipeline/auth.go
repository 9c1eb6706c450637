package pipeline

import (
	"log/slog"
	"net/http"

	"github.com/sakif/snippetbox/internal/repository"
	"github.com/sakif/snippetbox/internal/session"
)

// AuthResolve turns the session's authenticatedUserID claim into a verified
// identity on the request context. Per-request state machine:
//
//	Unresolved → Anonymous              (no claim in the session)
//	Unresolved → Anonymous              (claim present, user since deleted)
//	Unresolved → AuthenticatedUserID(n) (claim present, user exists)
//
// A storage failure during the existence check fails the request closed
// with a 500 — never open: an unverifiable claim is not an anonymous user,
// it's an unanswerable question.
type AuthResolve struct {
	Users  repository.UserRepository
	Logger *slog.Logger
}

func (AuthResolve) Name() string { return "auth-resolve" }

func (a AuthResolve) Before(w http.ResponseWriter, r *http.Request) (http.ResponseWriter, *http.Request, bool) {
	rec, ok := session.FromContext(r.Context())
	if !ok {
		// No session stage ahead of us; nothing to resolve.
		return nil, nil, true
	}

	id, ok := rec.GetInt(session.KeyAuthenticatedUserID)
	if !ok {
		return nil, nil, true
	}

	exists, err := a.Users.Exists(r.Context(), id)
	if err != nil {
		a.Logger.Error("auth resolution failed",
			slog.Int64("userID", id),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, nil, false
	}
	if !exists {
		// The account was removed after this session was issued. Drop the
		// stale claim so we stop re-checking it on every request.
		rec.Remove(session.KeyAuthenticatedUserID)
		return nil, nil, true
	}

	return nil, r.WithContext(session.WithUserID(r.Context(), id)), true
}

func (AuthResolve) After(http.ResponseWriter, *http.Request) {}

// RequireAuth gates protected routes on the identity AuthResolve attached.
// Anonymous requests are redirected to the login page before any handler —
// and therefore any repository call — runs. Authenticated responses get
// Cache-Control: no-store so a shared browser's back button can't replay
// them.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := session.UserIDFromContext(r.Context()); !ok {
			http.Redirect(w, r, "/user/login", http.StatusSeeOther)
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
