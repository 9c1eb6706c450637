// Package middleware contains the request-logging stage of the pipeline.
//
// Logging is an interceptor rather than a classic wrapped closure so its
// position in the chain is explicit: it sits right after the client-IP tag
// (so every line carries the caller's address) and ahead of everything
// whose outcome it reports.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/snippetbox/internal/pipeline"
)

type contextKey int

const (
	recorderKey contextKey = iota
	requestIDKey
	startKey
)

// RequestIDFromContext returns the id assigned to this request, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// responseRecorder captures the status code and byte count, which
// http.ResponseWriter otherwise never exposes again after the fact.
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

func (rw *responseRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// RequestLog logs one structured line per completed request: id, method,
// path, client IP, status, duration, bytes. Each request gets an xid
// request id, echoed in the X-Request-ID response header for correlation.
type RequestLog struct {
	Logger *slog.Logger
}

func (RequestLog) Name() string { return "request-log" }

func (l RequestLog) Before(w http.ResponseWriter, r *http.Request) (http.ResponseWriter, *http.Request, bool) {
	id := xid.New().String()
	w.Header().Set("X-Request-ID", id)

	rec := &responseRecorder{
		ResponseWriter: w,
		statusCode:     http.StatusOK, // default when WriteHeader is never called
	}

	ctx := context.WithValue(r.Context(), requestIDKey, id)
	ctx = context.WithValue(ctx, recorderKey, rec)
	ctx = context.WithValue(ctx, startKey, time.Now())
	return rec, r.WithContext(ctx), true
}

func (l RequestLog) After(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rec, ok := ctx.Value(recorderKey).(*responseRecorder)
	if !ok {
		return
	}
	start, _ := ctx.Value(startKey).(time.Time)

	l.Logger.Info("request completed",
		slog.String("id", RequestIDFromContext(ctx)),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("ip", pipeline.ClientIPFromContext(ctx)),
		slog.Int("status", rec.statusCode),
		slog.Duration("duration", time.Since(start)),
		slog.Int64("bytes", rec.written),
	)
}
