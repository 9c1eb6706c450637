package form

import (
	"net/http"
	"strconv"

	"github.com/sakif/snippetbox/internal/apperror"
)

// SnippetForm is the create-snippet payload. On validation failure the
// struct doubles as the echo: title and content re-fill the form exactly as
// typed.
type SnippetForm struct {
	Title   string
	Content string
	Expires int
	Validator
}

// DecodeSnippetForm parses the request body into a SnippetForm. An
// unparsable body or a non-integer expires value is a malformed request —
// there is no form state worth echoing back for those.
func DecodeSnippetForm(r *http.Request) (*SnippetForm, error) {
	if err := r.ParseForm(); err != nil {
		return nil, apperror.Malformed("unable to parse form body")
	}

	expires, err := strconv.Atoi(r.PostForm.Get("expires"))
	if err != nil {
		return nil, apperror.Malformed("expires must be an integer")
	}

	return &SnippetForm{
		Title:   r.PostForm.Get("title"),
		Content: r.PostForm.Get("content"),
		Expires: expires,
	}, nil
}

// Validate applies the field rules and reports whether they all passed.
func (f *SnippetForm) Validate() bool {
	f.Check(NotBlank(f.Title), "title", "This field cannot be blank")
	f.Check(MaxRunes(f.Title, MaxTitleLength), "title",
		"This field cannot be more than 100 characters long")
	f.Check(NotBlank(f.Content), "content", "This field cannot be blank")
	f.Check(PermittedValue(f.Expires, 1, 7, 365), "expires",
		"This field must equal 1, 7 or 365")
	return f.Valid()
}

// SignupForm is the registration payload.
type SignupForm struct {
	Name     string
	Email    string
	Password string
	Validator
}

// DecodeSignupForm parses the request body into a SignupForm.
func DecodeSignupForm(r *http.Request) (*SignupForm, error) {
	if err := r.ParseForm(); err != nil {
		return nil, apperror.Malformed("unable to parse form body")
	}
	return &SignupForm{
		Name:     r.PostForm.Get("name"),
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
	}, nil
}

// Validate applies the field rules. On failure the password is cleared:
// name and email are echoed back into the re-rendered form, secrets never
// are.
func (f *SignupForm) Validate() bool {
	f.Check(NotBlank(f.Name), "name", "This field cannot be blank")
	f.Check(NotBlank(f.Email), "email", "This field cannot be blank")
	f.Check(Matches(f.Email, EmailRX), "email",
		"This field must contain a valid email address")
	f.Check(MinRunes(f.Password, MinPasswordLength), "password",
		"This field must be at least 8 characters long")

	if !f.Valid() {
		f.Password = ""
	}
	return f.Valid()
}

// Redact clears the password for re-rendering after a post-validation
// failure (e.g. duplicate email).
func (f *SignupForm) Redact() {
	f.Password = ""
}

// LoginForm is the login payload.
type LoginForm struct {
	Email    string
	Password string
	Validator
}

// DecodeLoginForm parses the request body into a LoginForm.
func DecodeLoginForm(r *http.Request) (*LoginForm, error) {
	if err := r.ParseForm(); err != nil {
		return nil, apperror.Malformed("unable to parse form body")
	}
	return &LoginForm{
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
	}, nil
}

// Validate applies the field rules. Login failures — structural or
// credential — all funnel into a single non-field message at the handler,
// so this only guards against obviously unusable input.
func (f *LoginForm) Validate() bool {
	f.Check(NotBlank(f.Email), "email", "This field cannot be blank")
	f.Check(Matches(f.Email, EmailRX), "email",
		"This field must contain a valid email address")
	f.Check(MinRunes(f.Password, MinPasswordLength), "password",
		"This field must be at least 8 characters long")

	if !f.Valid() {
		f.Password = ""
	}
	return f.Valid()
}

// Redact clears the password for re-rendering.
func (f *LoginForm) Redact() {
	f.Password = ""
}
