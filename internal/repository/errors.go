// Package repository defines the entity store contract shared by the HTTP
// layer and its two implementations: the in-memory MemStore used by default
// and the MySQL-backed SQLStore. The sentinel errors below let handlers
// distinguish failure scenarios without knowing which store is wired in.
package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by every entity-specific not-found error.
// Handlers should translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

var (
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrListingNotFound = fmt.Errorf("listing %w", ErrNotFound)
	ErrBookingNotFound = fmt.Errorf("booking %w", ErrNotFound)
	ErrReviewNotFound  = fmt.Errorf("review %w", ErrNotFound)
	ErrMessageNotFound = fmt.Errorf("message %w", ErrNotFound)
)

// ErrUsernameTaken and ErrEmailTaken are returned by RegisterUser when the
// normalized username or email already belongs to another account.
var (
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmailTaken    = errors.New("email already exists")
)
