// Package pipeline composes the per-request interceptors around the route
// handlers.
//
// Instead of nesting middleware closures — where the effective order is the
// reverse of the registration order and easy to get wrong — the pipeline is
// an explicit, ordered slice of interceptors run by one runner. Each
// interceptor has a Before hook (may replace the writer or request, may
// stop the chain) and an After hook (run in reverse order once the handler
// returns). Ordering-sensitive effects — the client IP must be tagged
// before logging, the session must load before auth resolves, headers must
// be set before the first body byte — are all visible in one slice literal
// in the server wiring.
package pipeline

import (
	"log/slog"
	"net/http"
)

// Interceptor is one stage of the request pipeline.
type Interceptor interface {
	// Name identifies the stage in logs.
	Name() string

	// Before runs ahead of the handler. It may return a replacement
	// ResponseWriter and/or *http.Request (nil means keep the current
	// one). Returning false stops the chain: the interceptor has already
	// written the response.
	Before(w http.ResponseWriter, r *http.Request) (http.ResponseWriter, *http.Request, bool)

	// After runs once the handler returns, in reverse interceptor order.
	// The response is usually already written by now; After is for
	// cleanup (cancelling contexts, final session commits).
	After(w http.ResponseWriter, r *http.Request)
}

// Pipeline runs an ordered interceptor list around a handler.
type Pipeline struct {
	interceptors []Interceptor
	logger       *slog.Logger
}

// New builds a Pipeline. The slice order is the execution order of the
// Before hooks.
func New(logger *slog.Logger, interceptors ...Interceptor) *Pipeline {
	return &Pipeline{
		interceptors: interceptors,
		logger:       logger,
	}
}

// Then wraps next in the pipeline. The returned handler is also the
// process's panic isolation boundary: a panic anywhere downstream is logged
// and converted into a generic 500 — one broken request must never take the
// server down.
func (p *Pipeline) Then(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					// net/http's own mechanism for abandoning a response.
					panic(rec)
				}
				p.logger.Error("panic recovered",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec),
				)
				// Headers may already be gone; both calls below are
				// best-effort at that point.
				w.Header().Set("Connection", "close")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()

		// ran counts the stages whose Before hook completed, so a stopped
		// chain still unwinds exactly the stages it entered.
		ran := 0
		proceed := true
		for _, ic := range p.interceptors {
			w2, r2, ok := ic.Before(w, r)
			if w2 != nil {
				w = w2
			}
			if r2 != nil {
				r = r2
			}
			ran++
			if !ok {
				proceed = false
				break
			}
		}

		if proceed {
			next.ServeHTTP(w, r)
		}

		for i := ran - 1; i >= 0; i-- {
			p.interceptors[i].After(w, r)
		}
	})
}
