package store

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/bookdenapp/bookden-server/internal/domain"
)

// CreateReview stores a new review.
// Returns ErrReviewExists if the user already reviewed the book. The
// uniqueness check runs inside the write transaction, so two concurrent
// submissions cannot both succeed.
func (s *Store) CreateReview(ctx context.Context, review *domain.Review) error {
	err := s.Reviews.Create(ctx, review.ID, review)
	if err == nil {
		return nil
	}

	var conflict *IndexConflictError
	if errors.As(err, &conflict) && conflict.Index == "book_user" {
		return ErrReviewExists
	}
	return fmt.Errorf("create review: %w", err)
}

// GetReview retrieves a review by ID.
func (s *Store) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	review, err := s.Reviews.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return review, nil
}

// UpdateReview updates an existing review's rating and text.
func (s *Store) UpdateReview(ctx context.Context, review *domain.Review) error {
	review.Touch()

	if err := s.Reviews.Update(ctx, review.ID, review); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("update review: %w", err)
	}
	return nil
}

// DeleteReview removes a review. Idempotent.
func (s *Store) DeleteReview(ctx context.Context, id string) error {
	if err := s.Reviews.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return nil
}

// ListBookReviews returns an iterator over all reviews for a book.
func (s *Store) ListBookReviews(ctx context.Context, bookID string) iter.Seq2[*domain.Review, error] {
	return s.Reviews.ListByIndex(ctx, "book", bookID)
}

// ListUserReviews returns an iterator over all reviews a user has written.
func (s *Store) ListUserReviews(ctx context.Context, userID string) iter.Seq2[*domain.Review, error] {
	return s.Reviews.ListByIndex(ctx, "user", userID)
}

// GetUserReviewForBook returns the review a user left on a book, or
// ErrReviewNotFound if they haven't reviewed it.
func (s *Store) GetUserReviewForBook(ctx context.Context, bookID, userID string) (*domain.Review, error) {
	review, err := s.Reviews.GetByIndex(ctx, "book_user", bookID+":"+userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("lookup review by book and user: %w", err)
	}
	return review, nil
}
