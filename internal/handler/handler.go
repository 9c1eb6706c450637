// Package handler contains the HTTP route handlers. Handlers parse the
// request, call the repositories, and hand plain data to the renderer —
// error taxonomy in, status codes and re-rendered forms out. Nothing here
// builds SQL or touches cookies directly.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/snippetbox/internal/render"
	"github.com/sakif/snippetbox/internal/repository"
	"github.com/sakif/snippetbox/internal/session"
)

// Handler bundles the dependencies every route shares. All fields are
// interfaces or read-only values, injected once in the server wiring.
type Handler struct {
	snippets repository.SnippetRepository
	users    repository.UserRepository
	sessions *session.Manager
	renderer *render.Renderer
	logger   *slog.Logger
}

// New creates a Handler with all required dependencies.
func New(
	snippets repository.SnippetRepository,
	users repository.UserRepository,
	sessions *session.Manager,
	renderer *render.Renderer,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		snippets: snippets,
		users:    users,
		sessions: sessions,
		renderer: renderer,
		logger:   logger,
	}
}

// newData assembles the render data common to every page: the year for the
// footer, the one-shot flash (popping it marks the session dirty, so the
// cleared state is committed with this response), and whether the request
// resolved to an authenticated user.
func (h *Handler) newData(r *http.Request) render.Data {
	data := render.Data{CurrentYear: time.Now().Year()}

	if rec, ok := session.FromContext(r.Context()); ok {
		data.Flash = rec.PopFlash()
	}
	if _, ok := session.UserIDFromContext(r.Context()); ok {
		data.IsAuthenticated = true
	}
	return data
}

// render executes a page and writes it with the given status. A render
// failure downgrades to a generic 500 — the buffer-first renderer
// guarantees nothing partial has been written yet.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data render.Data) {
	body, err := h.renderer.Render(page, data)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}

// serverError logs the full error server-side and sends the client a
// generic message. The detail gap is deliberate: raw error text can carry
// SQL fragments, file paths, and driver internals.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("internal error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// clientError sends a bare status-text response for request-shaped
// problems (malformed bodies, unparsable ids).
func (h *Handler) clientError(w http.ResponseWriter, status int) {
	http.Error(w, http.StatusText(status), status)
}
