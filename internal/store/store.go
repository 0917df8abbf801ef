// Package store persists BookDen's data in a Badger key-value database.
package store

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/bookdenapp/bookden-server/internal/domain"
)

// maxTxnRetries bounds how often a write transaction is retried after a
// Badger conflict before the error is surfaced to the caller.
const maxTxnRetries = 3

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Generic entities
	Users   *Entity[domain.User]
	Books   *Entity[domain.Book]
	Reviews *Entity[domain.Review]
}

// New creates a new Store instance at the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	store := &Store{
		db:     db,
		logger: logger,
	}

	// Initialize generic entities
	store.initUsers()
	store.initBooks()
	store.initReviews()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// initUsers initializes the Users entity on the store.
// Uses case-insensitive email indexing via normalizeEmail transformation.
func (s *Store) initUsers() {
	s.Users = NewEntity[domain.User](s, "user:").
		WithUniqueIndexTransform("email",
			func(u *domain.User) string {
				return normalizeEmail(u.Email)
			},
			normalizeEmail, // Transform lookups to be case-insensitive
		)
}

// initBooks initializes the Books entity on the store.
// Indexed by owner so a user's library can be listed without a full scan.
func (s *Store) initBooks() {
	s.Books = NewEntity[domain.Book](s, "book:").
		WithIndex("owner", func(b *domain.Book) string {
			return b.AddedBy
		})
}

// initReviews initializes the Reviews entity on the store.
// The unique book_user index enforces one review per user per book inside
// the creating transaction, closing the check-then-act race between
// concurrent submissions.
func (s *Store) initReviews() {
	s.Reviews = NewEntity[domain.Review](s, "review:").
		WithUniqueIndex("book_user", func(r *domain.Review) string {
			return r.BookID + ":" + r.UserID
		}).
		WithIndex("book", func(r *domain.Review) string {
			return r.BookID
		}).
		WithIndex("user", func(r *domain.Review) string {
			return r.UserID
		})
}

// Helper methods for database operations.

// get retrieves a value by key.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// runUpdate executes a write transaction, retrying a bounded number of times
// on Badger conflicts. An exhausted retry budget surfaces ErrTxnConflict so
// callers can translate it into a retryable response.
func (s *Store) runUpdate(fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt <= maxTxnRetries; attempt++ {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", ErrTxnConflict, err)
}

// normalizeEmail normalizes an email address for consistent lookups.
// Lowercases and trims whitespace.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
