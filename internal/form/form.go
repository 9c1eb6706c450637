// Package form implements the validate-or-echo contract for write payloads.
//
// Every POST body is decoded into a typed form struct which embeds
// Validator. Validation either passes (FieldErrors stays empty) or the same
// struct becomes the "invalid" outcome: it still holds everything the user
// typed — minus secrets — plus a field→message map, so the handler can
// re-render the page pre-filled instead of throwing the input away.
//
// A body that cannot be decoded at all (unparsable form encoding, a
// non-integer where an integer is required) is a different condition:
// apperror.ErrMalformed, with nothing to echo.
package form

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// EmailRX is the HTML5 email pattern (WHATWG). Deliberately permissive —
// the only authority on whether an address works is the mailbox itself.
var EmailRX = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// Field limits.
const (
	MaxTitleLength    = 100
	MinPasswordLength = 8
)

// Validator accumulates validation errors. Form structs embed it; a form
// is valid exactly when no error was recorded.
type Validator struct {
	FieldErrors    map[string]string
	NonFieldErrors []string
}

// Valid reports whether no errors were recorded.
func (v *Validator) Valid() bool {
	return len(v.FieldErrors) == 0 && len(v.NonFieldErrors) == 0
}

// AddFieldError records a message for a field. A second failure on the
// same field concatenates rather than overwrites, so no rule's message is
// lost.
func (v *Validator) AddFieldError(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	if existing, ok := v.FieldErrors[field]; ok {
		v.FieldErrors[field] = existing + " " + message
		return
	}
	v.FieldErrors[field] = message
}

// AddNonFieldError records a message tied to no particular field — the
// login page's single "Email or password is incorrect" line lives here.
func (v *Validator) AddNonFieldError(message string) {
	v.NonFieldErrors = append(v.NonFieldErrors, message)
}

// Check records the message only when ok is false. Rules read as a flat
// list at the call site:
//
//	f.Check(NotBlank(f.Title), "title", "This field cannot be blank")
func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.AddFieldError(field, message)
	}
}

// NotBlank reports whether value contains any non-whitespace character.
func NotBlank(value string) bool {
	return strings.TrimSpace(value) != ""
}

// MaxRunes reports whether value is at most n characters. Runes, not
// bytes — "café" is four characters even though it's five bytes.
func MaxRunes(value string, n int) bool {
	return utf8.RuneCountInString(value) <= n
}

// MinRunes reports whether value is at least n characters.
func MinRunes(value string, n int) bool {
	return utf8.RuneCountInString(value) >= n
}

// PermittedValue reports whether value appears in permitted.
func PermittedValue[T comparable](value T, permitted ...T) bool {
	for _, p := range permitted {
		if value == p {
			return true
		}
	}
	return false
}

// Matches reports whether value matches the pattern.
func Matches(value string, rx *regexp.Regexp) bool {
	return rx.MatchString(value)
}
