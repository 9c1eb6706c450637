package pipeline

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/snippetbox/internal/session"
)

// SessionLoad resolves the inbound cookie to a session record and makes it
// available to everything downstream via the request context.
//
// COMMIT-BEFORE-WRITE:
// The Set-Cookie header has to be on the wire before the first body byte,
// but whether the session needs saving isn't known until the handler has
// run. The interceptor squares that by swapping in a ResponseWriter that
// commits the session on the first WriteHeader/Write. Handlers just mutate
// the record; persistence and the cookie happen at exactly the last valid
// moment.
type SessionLoad struct {
	Manager *session.Manager
	Logger  *slog.Logger
}

func (SessionLoad) Name() string { return "session" }

func (s SessionLoad) Before(w http.ResponseWriter, r *http.Request) (http.ResponseWriter, *http.Request, bool) {
	rec, err := s.Manager.Load(r.Context(), r)
	if err != nil {
		// Fail closed: a broken session store must not let requests
		// through with guessed-at state.
		s.Logger.Error("session load failed", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, nil, false
	}

	r = r.WithContext(session.NewContext(r.Context(), rec))

	sw := &sessionWriter{
		ResponseWriter: w,
		// The commit must survive a client disconnect or request
		// deadline: once the handler has decided to write, the session
		// state it produced should be persisted.
		ctx:     context.WithoutCancel(r.Context()),
		manager: s.Manager,
		rec:     rec,
		logger:  s.Logger,
	}
	return sw, r, true
}

// After commits sessions for the rare handler that returns without writing
// anything (net/http then sends an empty 200 after the pipeline unwinds).
func (s SessionLoad) After(w http.ResponseWriter, r *http.Request) {
	if sw, ok := w.(*sessionWriter); ok {
		sw.commit()
	}
}

// sessionWriter commits the session ahead of the first response byte.
type sessionWriter struct {
	http.ResponseWriter
	ctx       context.Context
	manager   *session.Manager
	rec       *session.Record
	logger    *slog.Logger
	committed bool
}

func (sw *sessionWriter) WriteHeader(code int) {
	sw.commit()
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *sessionWriter) Write(b []byte) (int, error) {
	// An implicit 200: Write without WriteHeader still needs the cookie
	// out first.
	sw.commit()
	return sw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (sw *sessionWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

func (sw *sessionWriter) commit() {
	if sw.committed {
		return
	}
	sw.committed = true
	if err := sw.manager.Commit(sw.ctx, sw.ResponseWriter, sw.rec); err != nil {
		// The response is about to go out either way; all we can do is
		// record that this request's session state was lost.
		sw.logger.Error("session commit failed", slog.String("error", err.Error()))
	}
}
