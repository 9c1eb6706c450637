package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sakif/snippetbox/internal/model"
	"github.com/sakif/snippetbox/internal/repository"
	"github.com/sakif/snippetbox/internal/session"
)

// stubUsers is a hand-rolled UserRepository: only Exists matters to the
// resolver, the rest exist to satisfy the interface.
type stubUsers struct {
	existingID  int64
	existsErr   error
	existsCalls int
}

var _ repository.UserRepository = (*stubUsers)(nil)

func (s *stubUsers) Insert(ctx context.Context, name, email, password string) (int64, error) {
	return 0, errors.New("not implemented")
}

func (s *stubUsers) Authenticate(ctx context.Context, email, password string) (int64, error) {
	return 0, errors.New("not implemented")
}

func (s *stubUsers) Exists(ctx context.Context, id int64) (bool, error) {
	s.existsCalls++
	if s.existsErr != nil {
		return false, s.existsErr
	}
	return id == s.existingID, nil
}

func (s *stubUsers) Get(ctx context.Context, id int64) (*model.User, error) {
	return nil, errors.New("not implemented")
}

// requestWithSession returns a request carrying rec on its context, and the
// record itself for later inspection.
func requestWithSession(rec *session.Record) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	return r.WithContext(session.NewContext(r.Context(), rec))
}

func anonymousRecord() *session.Record {
	return &session.Record{Data: make(map[string]string)}
}

func TestAuthResolve_NoClaimStaysAnonymous(t *testing.T) {
	users := &stubUsers{}
	a := AuthResolve{Users: users, Logger: testLogger()}

	r := requestWithSession(anonymousRecord())
	_, r2, ok := a.Before(httptest.NewRecorder(), r)
	if !ok {
		t.Fatal("resolver stopped the chain")
	}
	if users.existsCalls != 0 {
		t.Error("resolver hit the repository for an anonymous session")
	}

	if _, ok := session.UserIDFromContext(orRequest(r2, r).Context()); ok {
		t.Error("anonymous request got a user id")
	}
}

func TestAuthResolve_ValidClaimAttachesUserID(t *testing.T) {
	users := &stubUsers{existingID: 42}
	a := AuthResolve{Users: users, Logger: testLogger()}

	rec := anonymousRecord()
	rec.PutInt(session.KeyAuthenticatedUserID, 42)

	_, r2, ok := a.Before(httptest.NewRecorder(), requestWithSession(rec))
	if !ok {
		t.Fatal("resolver stopped the chain")
	}
	if r2 == nil {
		t.Fatal("resolver did not replace the request")
	}

	id, ok := session.UserIDFromContext(r2.Context())
	if !ok || id != 42 {
		t.Errorf("user id = (%d, %v), want (42, true)", id, ok)
	}
}

func TestAuthResolve_DeletedUserDegradesToAnonymous(t *testing.T) {
	users := &stubUsers{existingID: 1}
	a := AuthResolve{Users: users, Logger: testLogger()}

	rec := anonymousRecord()
	rec.PutInt(session.KeyAuthenticatedUserID, 99) // no such user

	r := requestWithSession(rec)
	_, r2, ok := a.Before(httptest.NewRecorder(), r)
	if !ok {
		t.Fatal("a deleted user is anonymous, not an error")
	}

	if _, ok := session.UserIDFromContext(orRequest(r2, r).Context()); ok {
		t.Error("request carries a user id for a deleted user")
	}
	if _, ok := rec.GetInt(session.KeyAuthenticatedUserID); ok {
		t.Error("stale claim left in the session")
	}
}

func TestAuthResolve_StoreFailureFailsClosed(t *testing.T) {
	users := &stubUsers{existsErr: errors.New("connection refused")}
	a := AuthResolve{Users: users, Logger: testLogger()}

	rec := anonymousRecord()
	rec.PutInt(session.KeyAuthenticatedUserID, 42)

	w := httptest.NewRecorder()
	_, _, ok := a.Before(w, requestWithSession(rec))
	if ok {
		t.Fatal("an unverifiable claim must stop the chain")
	}
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestRequireAuth_AnonymousRedirects(t *testing.T) {
	handlerRan := false
	h := RequireAuth(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		handlerRan = true
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/snippet/create", nil))

	if handlerRan {
		t.Error("protected handler ran for an anonymous request")
	}
	if w.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", w.Code)
	}
	if got := w.Header().Get("Location"); got != "/user/login" {
		t.Errorf("Location = %q, want /user/login", got)
	}
}

func TestRequireAuth_AuthenticatedPassesWithNoStore(t *testing.T) {
	handlerRan := false
	h := RequireAuth(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		handlerRan = true
	}))

	r := httptest.NewRequest(http.MethodGet, "/snippet/create", nil)
	r = r.WithContext(session.WithUserID(r.Context(), 42))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if !handlerRan {
		t.Error("protected handler did not run for an authenticated request")
	}
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}
}

// orRequest returns r2 unless the interceptor kept the original request.
func orRequest(r2, original *http.Request) *http.Request {
	if r2 != nil {
		return r2
	}
	return original
}
