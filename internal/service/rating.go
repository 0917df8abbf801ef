package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookdenapp/bookden-server/internal/domain"
	"github.com/bookdenapp/bookden-server/internal/dto"
	domainerrors "github.com/bookdenapp/bookden-server/internal/errors"
	"github.com/bookdenapp/bookden-server/internal/store"
)

// RatingSummary is the aggregated rating state of one book.
type RatingSummary struct {
	Average float64
	Count   int
}

// RatingService aggregates review ratings on demand. Averages are never
// stored; they are recomputed from the reviews that exist at read time, so
// a deleted or edited review is reflected immediately.
type RatingService struct {
	store *store.Store
}

// NewRatingService creates a new rating aggregation service.
func NewRatingService(store *store.Store) *RatingService {
	return &RatingService{store: store}
}

// averageOf returns the exact arithmetic mean. Clients round for display;
// keeping the full precision here keeps rating sorting faithful to the
// underlying means.
func averageOf(sum, count int) float64 {
	if count == 0 {
		return 0
	}
	return float64(sum) / float64(count)
}

// Summary computes the average rating and review count for a book.
// A book with no reviews has an average of 0.
func (s *RatingService) Summary(ctx context.Context, bookID string) (RatingSummary, error) {
	sum, count := 0, 0
	for review, err := range s.store.ListBookReviews(ctx, bookID) {
		if err != nil {
			return RatingSummary{}, fmt.Errorf("list reviews: %w", err)
		}
		sum += review.Rating
		count++
	}

	return RatingSummary{
		Average: averageOf(sum, count),
		Count:   count,
	}, nil
}

// Summaries computes rating summaries for a set of books in one pass over
// the review collection. Books without reviews get a zero summary.
func (s *RatingService) Summaries(ctx context.Context, bookIDs []string) (map[string]RatingSummary, error) {
	wanted := make(map[string]bool, len(bookIDs))
	for _, id := range bookIDs {
		wanted[id] = true
	}

	sums := make(map[string]int, len(bookIDs))
	counts := make(map[string]int, len(bookIDs))

	for review, err := range s.store.Reviews.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list reviews: %w", err)
		}
		if !wanted[review.BookID] {
			continue
		}
		sums[review.BookID] += review.Rating
		counts[review.BookID]++
	}

	summaries := make(map[string]RatingSummary, len(bookIDs))
	for id := range wanted {
		summaries[id] = RatingSummary{
			Average: averageOf(sums[id], counts[id]),
			Count:   counts[id],
		}
	}
	return summaries, nil
}

// Distribution returns the per-star breakdown for a book.
// All five star buckets are present even when empty.
// Returns NotFound if the book does not exist.
func (s *RatingService) Distribution(ctx context.Context, bookID string) (*dto.RatingDistribution, error) {
	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	counts := make(map[int]int, domain.RatingMax)
	for star := domain.RatingMin; star <= domain.RatingMax; star++ {
		counts[star] = 0
	}

	sum, count := 0, 0
	for review, err := range s.store.ListBookReviews(ctx, bookID) {
		if err != nil {
			return nil, fmt.Errorf("list reviews: %w", err)
		}
		counts[review.Rating]++
		sum += review.Rating
		count++
	}

	return &dto.RatingDistribution{
		BookID:        bookID,
		AverageRating: averageOf(sum, count),
		ReviewCount:   count,
		Counts:        counts,
	}, nil
}
