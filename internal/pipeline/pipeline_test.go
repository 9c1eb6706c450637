package pipeline

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// spy records the order its hooks run in, and can stop the chain.
type spy struct {
	name string
	stop bool
	log  *[]string
}

func (s *spy) Name() string { return s.name }

func (s *spy) Before(w http.ResponseWriter, r *http.Request) (http.ResponseWriter, *http.Request, bool) {
	*s.log = append(*s.log, s.name+".before")
	if s.stop {
		w.WriteHeader(http.StatusForbidden)
		return nil, nil, false
	}
	return nil, nil, true
}

func (s *spy) After(http.ResponseWriter, *http.Request) {
	*s.log = append(*s.log, s.name+".after")
}

func TestPipeline_OrderAndUnwind(t *testing.T) {
	var log []string
	p := New(testLogger(),
		&spy{name: "a", log: &log},
		&spy{name: "b", log: &log},
		&spy{name: "c", log: &log},
	)

	h := p.Then(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log = append(log, "handler")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	want := []string{"a.before", "b.before", "c.before", "handler", "c.after", "b.after", "a.after"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("log = %v, want %v", log, want)
		}
	}
}

func TestPipeline_StopSkipsHandlerUnwindsEnteredStages(t *testing.T) {
	var log []string
	p := New(testLogger(),
		&spy{name: "a", log: &log},
		&spy{name: "b", stop: true, log: &log},
		&spy{name: "c", log: &log},
	)

	handlerRan := false
	w := httptest.NewRecorder()
	h := p.Then(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		handlerRan = true
	}))
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if handlerRan {
		t.Error("handler ran after an interceptor stopped the chain")
	}
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want the interceptor's response", w.Code)
	}

	want := []string{"a.before", "b.before", "b.after", "a.after"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("log = %v, want %v", log, want)
		}
	}
}

func TestPipeline_PanicBecomes500(t *testing.T) {
	p := New(testLogger())
	h := p.Then(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if got := w.Header().Get("Connection"); got != "close" {
		t.Errorf("Connection = %q, want close", got)
	}
}

func TestPipeline_ErrAbortHandlerRepanics(t *testing.T) {
	p := New(testLogger())
	h := p.Then(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if recover() != http.ErrAbortHandler {
			t.Error("http.ErrAbortHandler should propagate, not convert to a 500")
		}
	}()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestClientIP_ForwardedFor(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5000"
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	_, r2, ok := ClientIP{}.Before(httptest.NewRecorder(), r)
	if !ok {
		t.Fatal("ClientIP stopped the chain")
	}
	if got := ClientIPFromContext(r2.Context()); got != "203.0.113.7" {
		t.Errorf("client ip = %q, want the first forwarded hop", got)
	}
}

func TestClientIP_RemoteAddrFallback(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.4:61234"

	_, r2, _ := ClientIP{}.Before(httptest.NewRecorder(), r)
	if got := ClientIPFromContext(r2.Context()); got != "192.0.2.4" {
		t.Errorf("client ip = %q, want 192.0.2.4", got)
	}
}

func TestSecureHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	SecureHeaders{}.Before(w, httptest.NewRequest(http.MethodGet, "/", nil))

	want := map[string]string{
		"Content-Security-Policy": "default-src 'self'; style-src 'self' fonts.googleapis.com; font-src fonts.gstatic.com",
		"Referrer-Policy":         "origin-when-cross-origin",
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "deny",
		"X-XSS-Protection":        "0",
	}
	for header, value := range want {
		if got := w.Header().Get(header); got != value {
			t.Errorf("%s = %q, want %q", header, got, value)
		}
	}
}

func TestTimeout_AttachesDeadlineAndAfterCancels(t *testing.T) {
	ic := Timeout{Duration: 5 * time.Second}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, r2, ok := ic.Before(httptest.NewRecorder(), r)
	if !ok {
		t.Fatal("Timeout stopped the chain")
	}

	deadline, ok := r2.Context().Deadline()
	if !ok {
		t.Fatal("no deadline on the request context")
	}
	if until := time.Until(deadline); until > 5*time.Second || until < 4*time.Second {
		t.Errorf("deadline %v away, want about 5s", until)
	}

	ic.After(httptest.NewRecorder(), r2)
	select {
	case <-r2.Context().Done():
	default:
		t.Error("After did not cancel the request context")
	}
}
