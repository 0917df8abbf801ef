package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"iter"

	"github.com/dgraph-io/badger/v4"

	"github.com/bookdenapp/bookden-server/internal/domain"
)

// CreateBook adds a new book to the catalog.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	if err := s.Books.Create(ctx, book.ID, book); err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	book, err := s.Books.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// UpdateBook updates an existing book.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	book.Touch()

	if err := s.Books.Update(ctx, book.ID, book); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrBookNotFound
		}
		return fmt.Errorf("update book: %w", err)
	}
	return nil
}

// ListBooks returns an iterator over the whole catalog.
func (s *Store) ListBooks(ctx context.Context) iter.Seq2[*domain.Book, error] {
	return s.Books.List(ctx)
}

// ListBooksByOwner returns an iterator over the books a user added.
func (s *Store) ListBooksByOwner(ctx context.Context, userID string) iter.Seq2[*domain.Book, error] {
	return s.Books.ListByIndex(ctx, "owner", userID)
}

// DeleteBookWithReviews removes the book and every review attached to it in
// a single transaction, so a crash can never leave orphaned reviews behind.
// Returns ErrBookNotFound if the book does not exist.
func (s *Store) DeleteBookWithReviews(ctx context.Context, bookID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	bookKey := []byte("book:" + bookID)

	return s.runUpdate(func(txn *badger.Txn) error {
		// Load the book so its owner index entry can be removed.
		item, err := txn.Get(bookKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrBookNotFound
		}
		if err != nil {
			return fmt.Errorf("get book: %w", err)
		}

		var book domain.Book
		err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &book)
		})
		if err != nil {
			return fmt.Errorf("unmarshal book: %w", err)
		}

		// Collect the IDs of every review on this book via the book index.
		reviewIdxPrefix := []byte("review:idx:book:" + bookID + ":")
		var reviewIDs []string

		opts := badger.DefaultIteratorOptions
		opts.Prefix = reviewIdxPrefix

		it := txn.NewIterator(opts)
		for it.Seek(reviewIdxPrefix); it.ValidForPrefix(reviewIdxPrefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				reviewIDs = append(reviewIDs, string(val))
				return nil
			})
			if err != nil {
				it.Close()
				return fmt.Errorf("read review index: %w", err)
			}
		}
		it.Close()

		// Delete each review and its index entries.
		for _, reviewID := range reviewIDs {
			reviewKey := []byte("review:" + reviewID)

			item, err := txn.Get(reviewKey)
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue // Index entry without a record, just drop it below
			}
			if err != nil {
				return fmt.Errorf("get review %s: %w", reviewID, err)
			}

			var review domain.Review
			err = item.Value(func(val []byte) error {
				return json.Unmarshal(val, &review)
			})
			if err != nil {
				return fmt.Errorf("unmarshal review %s: %w", reviewID, err)
			}

			keys := [][]byte{
				reviewKey,
				[]byte("review:idx:book:" + review.BookID + ":" + reviewID),
				[]byte("review:idx:user:" + review.UserID + ":" + reviewID),
				[]byte("review:idx:book_user:" + review.BookID + ":" + review.UserID),
			}
			for _, key := range keys {
				if err := txn.Delete(key); err != nil {
					return fmt.Errorf("delete review key: %w", err)
				}
			}
		}

		// Finally delete the book and its owner index entry.
		ownerIdxKey := []byte("book:idx:owner:" + book.AddedBy + ":" + bookID)
		if err := txn.Delete(ownerIdxKey); err != nil {
			return fmt.Errorf("delete owner index: %w", err)
		}
		if err := txn.Delete(bookKey); err != nil {
			return fmt.Errorf("delete book: %w", err)
		}

		return nil
	})
}
