package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/bookdenapp/bookden-server/internal/domain"
	"github.com/bookdenapp/bookden-server/internal/dto"
	domainerrors "github.com/bookdenapp/bookden-server/internal/errors"
	"github.com/bookdenapp/bookden-server/internal/store"
)

// ProfileService assembles a user's public profile page: the books they
// added and the reviews they wrote.
type ProfileService struct {
	store   *store.Store
	ratings *RatingService
}

// NewProfileService creates a new profile service.
func NewProfileService(store *store.Store, ratings *RatingService) *ProfileService {
	return &ProfileService{store: store, ratings: ratings}
}

// GetProfile returns the profile for a user: their account view, the books
// they added (with rating summaries), and their reviews newest-first with
// the reviewed book's title and author attached.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*dto.Profile, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	// Every listed book is owned by the profile user, so the owner name
	// never needs a second lookup.
	ownerName := user.Name()

	var books []*domain.Book
	for book, err := range s.store.ListBooksByOwner(ctx, userID) {
		if err != nil {
			return nil, fmt.Errorf("list owned books: %w", err)
		}
		books = append(books, book)
	}
	sort.SliceStable(books, func(i, j int) bool {
		a, b := books[i], books[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	bookIDs := make([]string, 0, len(books))
	for _, b := range books {
		bookIDs = append(bookIDs, b.ID)
	}
	summaries, err := s.ratings.Summaries(ctx, bookIDs)
	if err != nil {
		return nil, err
	}

	bookViews := make([]*dto.Book, 0, len(books))
	for _, b := range books {
		summary := summaries[b.ID]
		bookViews = append(bookViews, dto.NewBook(b, ownerName, summary.Average, summary.Count))
	}

	var reviews []*domain.Review
	for review, err := range s.store.ListUserReviews(ctx, userID) {
		if err != nil {
			return nil, fmt.Errorf("list authored reviews: %w", err)
		}
		reviews = append(reviews, review)
	}
	sortReviewsNewestFirst(reviews)

	reviewViews := make([]*dto.ProfileReview, 0, len(reviews))
	for _, r := range reviews {
		view := &dto.ProfileReview{Review: *dto.NewReview(r, ownerName)}

		// A review can outlive its book only transiently (deletes are
		// cascading); tolerate the gap instead of failing the page.
		if book, err := s.store.GetBook(ctx, r.BookID); err == nil {
			view.BookTitle = book.Title
			view.BookAuthor = book.Author
		}
		reviewViews = append(reviewViews, view)
	}

	return &dto.Profile{
		User:    dto.NewUser(user),
		Books:   bookViews,
		Reviews: reviewViews,
	}, nil
}
