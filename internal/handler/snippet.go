package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sakif/snippetbox/internal/apperror"
	"github.com/sakif/snippetbox/internal/form"
	"github.com/sakif/snippetbox/internal/session"
)

// Home lists the latest non-expired snippets.
//
// HTTP: GET /
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	snippets, err := h.snippets.Latest(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	data := h.newData(r)
	data.Snippets = snippets
	h.render(w, r, http.StatusOK, "home.html", data)
}

// SnippetView shows a single snippet.
//
// HTTP: GET /snippet/view/{id}
//
// An unparsable id, a missing row, and an expired row all get the same 404:
// as far as the outside world is concerned, none of them exist.
func (h *Handler) SnippetView(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		http.NotFound(w, r)
		return
	}

	snippet, err := h.snippets.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.serverError(w, r, err)
		return
	}

	data := h.newData(r)
	data.Snippet = snippet
	h.render(w, r, http.StatusOK, "view.html", data)
}

// SnippetCreateForm shows an empty create form. Protected route: the
// RequireAuth wrapper has already redirected anonymous visitors.
//
// HTTP: GET /snippet/create
func (h *Handler) SnippetCreateForm(w http.ResponseWriter, r *http.Request) {
	data := h.newData(r)
	// Pre-select the one-year expiry.
	data.Form = &form.SnippetForm{Expires: 365}
	h.render(w, r, http.StatusOK, "create.html", data)
}

// SnippetCreatePost validates and stores a new snippet.
//
// HTTP: POST /snippet/create
//
// Outcomes: malformed body → 400 with no echo; field failures → the form
// again, pre-filled, with messages; success → 303 to the new snippet.
func (h *Handler) SnippetCreatePost(w http.ResponseWriter, r *http.Request) {
	f, err := form.DecodeSnippetForm(r)
	if err != nil {
		h.clientError(w, http.StatusBadRequest)
		return
	}

	if !f.Validate() {
		data := h.newData(r)
		data.Form = f
		h.render(w, r, http.StatusOK, "create.html", data)
		return
	}

	id, err := h.snippets.Insert(r.Context(), f.Title, f.Content, f.Expires)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	if rec, ok := session.FromContext(r.Context()); ok {
		rec.PutFlash("Snippet successfully created!")
	}

	http.Redirect(w, r, fmt.Sprintf("/snippet/view/%d", id), http.StatusSeeOther)
}
