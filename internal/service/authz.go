package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookdenapp/bookden-server/internal/domain"
	domainerrors "github.com/bookdenapp/bookden-server/internal/errors"
	"github.com/bookdenapp/bookden-server/internal/store"
)

// Guard centralizes the ownership checks for mutations.
//
// Existence is always checked before ownership: a request against a missing
// resource gets 404 no matter who asks, and only a resource that exists can
// produce 403. That keeps the two failure modes from leaking into each other.
type Guard struct {
	store *store.Store
}

// NewGuard creates a new authorization guard.
func NewGuard(store *store.Store) *Guard {
	return &Guard{store: store}
}

// RequireBookOwner loads a book and verifies the actor added it.
// Returns NotFound for missing books and Forbidden for non-owners.
func (g *Guard) RequireBookOwner(ctx context.Context, bookID, actorID string) (*domain.Book, error) {
	book, err := g.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	if !book.IsOwnedBy(actorID) {
		return nil, domainerrors.Forbidden("only the user who added this book can modify it")
	}

	return book, nil
}

// RequireReviewAuthor loads a review and verifies the actor wrote it.
// Returns NotFound for missing reviews and Forbidden for non-authors.
func (g *Guard) RequireReviewAuthor(ctx context.Context, reviewID, actorID string) (*domain.Review, error) {
	review, err := g.store.GetReview(ctx, reviewID)
	if err != nil {
		if errors.Is(err, store.ErrReviewNotFound) {
			return nil, domainerrors.NotFound("review not found")
		}
		return nil, fmt.Errorf("get review: %w", err)
	}

	if !review.IsAuthoredBy(actorID) {
		return nil, domainerrors.Forbidden("only the author of this review can modify it")
	}

	return review, nil
}
