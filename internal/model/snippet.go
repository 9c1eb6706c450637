// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Snippet represents a saved text snippet.
//
// Snippets are immutable once inserted: there is no update path. Expiry is
// soft — expired rows stay in the database but are filtered out of every
// read, so to callers an expired snippet is indistinguishable from one that
// never existed.
type Snippet struct {
	ID      int64     `json:"id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Created time.Time `json:"created"`
	Expires time.Time `json:"expires"` // always strictly after Created
}
