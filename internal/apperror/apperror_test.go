package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelMatching(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"not found", NotFound("snippet", 42), ErrNotFound},
		{"invalid credentials", InvalidCredentials(), ErrInvalidCredentials},
		{"duplicate email", DuplicateEmail(), ErrDuplicateEmail},
		{"validation", ValidationFailed("title", "This field cannot be blank"), ErrValidation},
		{"malformed", Malformed("unable to parse form body"), ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false, want true", tt.err, tt.sentinel)
			}
		})
	}
}

func TestSentinelMatchingThroughWrapping(t *testing.T) {
	// Repositories wrap with %w; the sentinel must survive the chain.
	err := fmt.Errorf("sqlstore: getting snippet 7: %w", NotFound("snippet", 7))

	if !errors.Is(err, ErrNotFound) {
		t.Error("errors.Is did not find ErrNotFound through a wrapped chain")
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("errors.As did not extract *AppError through a wrapped chain")
	}
	if appErr.Message != "snippet not found with id 7" {
		t.Errorf("Message = %q, want %q", appErr.Message, "snippet not found with id 7")
	}
}

func TestInvalidCredentialsMessageIsConstant(t *testing.T) {
	// Both login failure paths produce this error; the message must carry
	// no signal about which path it was.
	a := InvalidCredentials()
	b := InvalidCredentials()
	if a.Message != b.Message {
		t.Errorf("messages differ: %q vs %q", a.Message, b.Message)
	}
}

func TestFieldAttribution(t *testing.T) {
	err := ValidationFailed("expires", "This field must equal 1, 7 or 365")
	if err.Field != "expires" {
		t.Errorf("Field = %q, want %q", err.Field, "expires")
	}

	if DuplicateEmail().Field != "email" {
		t.Error("DuplicateEmail should attribute to the email field")
	}
}
