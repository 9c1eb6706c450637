package handler

import (
	"errors"
	"net/http"

	"github.com/sakif/snippetbox/internal/apperror"
	"github.com/sakif/snippetbox/internal/form"
	"github.com/sakif/snippetbox/internal/session"
)

// UserSignupForm shows an empty signup form.
//
// HTTP: GET /user/signup
func (h *Handler) UserSignupForm(w http.ResponseWriter, r *http.Request) {
	data := h.newData(r)
	data.Form = &form.SignupForm{}
	h.render(w, r, http.StatusOK, "signup.html", data)
}

// UserSignupPost registers a new account.
//
// HTTP: POST /user/signup
//
// A duplicate email is recovered locally, exactly like a validation
// failure: the form comes back with a field message, name and email still
// filled in, password field cleared. It is never a 500.
func (h *Handler) UserSignupPost(w http.ResponseWriter, r *http.Request) {
	f, err := form.DecodeSignupForm(r)
	if err != nil {
		h.clientError(w, http.StatusBadRequest)
		return
	}

	if !f.Validate() {
		data := h.newData(r)
		data.Form = f
		h.render(w, r, http.StatusOK, "signup.html", data)
		return
	}

	_, err = h.users.Insert(r.Context(), f.Name, f.Email, f.Password)
	if err != nil {
		if errors.Is(err, apperror.ErrDuplicateEmail) {
			f.AddFieldError("email", "Email address is already in use")
			f.Redact()
			data := h.newData(r)
			data.Form = f
			h.render(w, r, http.StatusOK, "signup.html", data)
			return
		}
		h.serverError(w, r, err)
		return
	}

	if rec, ok := session.FromContext(r.Context()); ok {
		rec.PutFlash("Your signup was successful. Please log in.")
	}

	http.Redirect(w, r, "/user/login", http.StatusSeeOther)
}

// UserLoginForm shows an empty login form (plus any flash, e.g. the
// post-signup message — rendering it pops it from the session).
//
// HTTP: GET /user/login
func (h *Handler) UserLoginForm(w http.ResponseWriter, r *http.Request) {
	data := h.newData(r)
	data.Form = &form.LoginForm{}
	h.render(w, r, http.StatusOK, "login.html", data)
}

// UserLoginPost verifies credentials and, on success, upgrades the session.
//
// HTTP: POST /user/login
//
// The failure message is a single generic line whatever went wrong with
// the credentials — unknown email and wrong password are kept
// indistinguishable. The token rotation happens before the
// authenticated id goes into the session, so a pre-planted session
// identifier never survives a privilege change (session fixation).
func (h *Handler) UserLoginPost(w http.ResponseWriter, r *http.Request) {
	f, err := form.DecodeLoginForm(r)
	if err != nil {
		h.clientError(w, http.StatusBadRequest)
		return
	}

	if !f.Validate() {
		data := h.newData(r)
		data.Form = f
		h.render(w, r, http.StatusOK, "login.html", data)
		return
	}

	id, err := h.users.Authenticate(r.Context(), f.Email, f.Password)
	if err != nil {
		if errors.Is(err, apperror.ErrInvalidCredentials) {
			f.AddNonFieldError("Email or password is incorrect")
			f.Redact()
			data := h.newData(r)
			data.Form = f
			h.render(w, r, http.StatusOK, "login.html", data)
			return
		}
		h.serverError(w, r, err)
		return
	}

	rec, ok := session.FromContext(r.Context())
	if !ok {
		h.serverError(w, r, errors.New("handler: no session on login request"))
		return
	}
	if err := h.sessions.Rotate(r.Context(), rec); err != nil {
		h.serverError(w, r, err)
		return
	}
	rec.PutInt(session.KeyAuthenticatedUserID, id)

	http.Redirect(w, r, "/snippet/create", http.StatusSeeOther)
}

// UserLogoutPost drops the authenticated state. Protected route.
//
// HTTP: POST /user/logout
//
// Logout is also a privilege change, so the token rotates here too; the
// old identifier is deleted from the store before the response goes out.
func (h *Handler) UserLogoutPost(w http.ResponseWriter, r *http.Request) {
	rec, ok := session.FromContext(r.Context())
	if !ok {
		h.serverError(w, r, errors.New("handler: no session on logout request"))
		return
	}

	if err := h.sessions.Rotate(r.Context(), rec); err != nil {
		h.serverError(w, r, err)
		return
	}
	rec.Remove(session.KeyAuthenticatedUserID)
	rec.PutFlash("You've been logged out successfully!")

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
