package session

import "context"

// contextKey is an unexported type for this package's context keys, so no
// other package can read or shadow the values stored under them.
type contextKey int

const (
	recordKey contextKey = iota
	userIDKey
)

// NewContext returns ctx with the session record attached. Installed by the
// session interceptor; handlers retrieve it with FromContext.
func NewContext(ctx context.Context, rec *Record) context.Context {
	return context.WithValue(ctx, recordKey, rec)
}

// FromContext returns the request's session record. The second return is
// false only for requests that never passed through the session
// interceptor (which would be a wiring bug, not a runtime condition).
func FromContext(ctx context.Context) (*Record, bool) {
	rec, ok := ctx.Value(recordKey).(*Record)
	return rec, ok
}

// WithUserID returns ctx annotated with the resolved authenticated user id.
// Set by the auth interceptor only after the user's existence has been
// confirmed against storage.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromContext returns the authenticated user's id, or (0, false) for
// anonymous requests.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}
