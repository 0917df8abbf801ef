package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an entity cannot be found by its key.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when creating an entity whose ID is taken.
	ErrAlreadyExists = errors.New("already exists")
	// ErrTxnConflict is returned when a write transaction kept conflicting
	// after the retry budget was exhausted. Callers should treat it as
	// transient and retryable.
	ErrTxnConflict = errors.New("transaction conflict")

	// ErrUserNotFound is returned when a user cannot be found by ID or email.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailExists is returned when attempting to register an email that's already in use.
	ErrEmailExists = errors.New("email already in use")
	// ErrBookNotFound is returned when a book cannot be found by ID.
	ErrBookNotFound = errors.New("book not found")
	// ErrReviewNotFound is returned when a review cannot be found by ID.
	ErrReviewNotFound = errors.New("review not found")
	// ErrReviewExists is returned when a user already reviewed the book.
	ErrReviewExists = errors.New("review already exists for this book and user")
	// ErrSessionNotFound is returned when a session cannot be found by ID.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned when attempting to use an expired session.
	ErrSessionExpired = errors.New("session expired")
)

// IndexConflictError reports which unique index rejected a write. Typed
// wrappers use it to map generic entity conflicts onto domain sentinels.
type IndexConflictError struct {
	Index string
	Key   string
}

func (e *IndexConflictError) Error() string {
	return fmt.Sprintf("index %s conflict on key %s", e.Index, e.Key)
}

func (e *IndexConflictError) Unwrap() error { return ErrAlreadyExists }
