// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// WHY HashedPassword []byte WITH json:"-"?
// The stored value is an opaque bcrypt hash, never the plaintext. The json:"-"
// tag means encoding/json skips the field entirely, so the hash can never leak
// through an encoded response — even if a handler serialises the whole struct.
//
// Email carries a UNIQUE constraint at the storage layer; a violation surfaces
// as apperror.ErrDuplicateEmail, not as a generic database error.
type User struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	HashedPassword []byte    `json:"-"`
	Created        time.Time `json:"created"`
}
