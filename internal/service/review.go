package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/bookdenapp/bookden-server/internal/domain"
	"github.com/bookdenapp/bookden-server/internal/dto"
	domainerrors "github.com/bookdenapp/bookden-server/internal/errors"
	"github.com/bookdenapp/bookden-server/internal/id"
	"github.com/bookdenapp/bookden-server/internal/store"
)

// ReviewService owns the review lifecycle: posting, editing, deleting and
// listing reviews.
type ReviewService struct {
	store    *store.Store
	guard    *Guard
	enricher *dto.Enricher
	logger   *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	store *store.Store,
	guard *Guard,
	enricher *dto.Enricher,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		store:    store,
		guard:    guard,
		enricher: enricher,
		logger:   logger,
	}
}

// CreateReviewRequest contains a new rating with optional text.
type CreateReviewRequest struct {
	Rating     int    `json:"rating" validate:"required,gte=1,lte=5"`
	ReviewText string `json:"review_text" validate:"omitempty,max=5000"`
}

// UpdateReviewRequest contains edits to an existing review. Nil fields are
// left unchanged.
type UpdateReviewRequest struct {
	Rating     *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
	ReviewText *string `json:"review_text" validate:"omitempty,max=5000"`
}

// CreateReview posts a review on a book. Each user gets one review per
// book; a second submission is rejected with a duplicate error even under
// concurrent requests.
func (s *ReviewService) CreateReview(ctx context.Context, bookID, actorID string, req CreateReviewRequest) (*dto.Review, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	// The book must exist before anything else is checked.
	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	reviewID, err := id.Generate("review")
	if err != nil {
		return nil, fmt.Errorf("generate review ID: %w", err)
	}

	review := &domain.Review{
		BookID:     bookID,
		UserID:     actorID,
		Rating:     req.Rating,
		ReviewText: req.ReviewText,
	}
	review.ID = reviewID
	review.InitTimestamps()

	if err := s.store.CreateReview(ctx, review); err != nil {
		if errors.Is(err, store.ErrReviewExists) {
			return nil, domainerrors.DuplicateReview("you have already reviewed this book")
		}
		return nil, mapTransient(err)
	}

	if s.logger != nil {
		s.logger.Info("Review posted", "review_id", reviewID, "book_id", bookID, "user_id", actorID)
	}

	return dto.NewReview(review, s.enricher.UserName(ctx, actorID)), nil
}

// UpdateReview edits a review. Only its author may do so.
func (s *ReviewService) UpdateReview(ctx context.Context, reviewID, actorID string, req UpdateReviewRequest) (*dto.Review, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	review, err := s.guard.RequireReviewAuthor(ctx, reviewID, actorID)
	if err != nil {
		return nil, err
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.ReviewText != nil {
		review.ReviewText = *req.ReviewText
	}

	if err := s.store.UpdateReview(ctx, review); err != nil {
		return nil, mapTransient(err)
	}

	return dto.NewReview(review, s.enricher.UserName(ctx, review.UserID)), nil
}

// DeleteReview removes a review. Only its author may do so.
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID, actorID string) error {
	if _, err := s.guard.RequireReviewAuthor(ctx, reviewID, actorID); err != nil {
		return err
	}

	if err := s.store.DeleteReview(ctx, reviewID); err != nil {
		return mapTransient(err)
	}

	if s.logger != nil {
		s.logger.Info("Review deleted", "review_id", reviewID, "user_id", actorID)
	}
	return nil
}

// ListBookReviews returns a book's reviews, newest first, with author names
// resolved. Returns NotFound if the book does not exist.
func (s *ReviewService) ListBookReviews(ctx context.Context, bookID string) ([]*dto.Review, error) {
	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	var reviews []*domain.Review
	for review, err := range s.store.ListBookReviews(ctx, bookID) {
		if err != nil {
			return nil, fmt.Errorf("list reviews: %w", err)
		}
		reviews = append(reviews, review)
	}

	sortReviewsNewestFirst(reviews)

	userIDs := make([]string, 0, len(reviews))
	for _, r := range reviews {
		userIDs = append(userIDs, r.UserID)
	}
	names := s.enricher.UserNames(ctx, userIDs)

	views := make([]*dto.Review, 0, len(reviews))
	for _, r := range reviews {
		views = append(views, dto.NewReview(r, names[r.UserID]))
	}
	return views, nil
}

// sortReviewsNewestFirst orders reviews by creation time descending, with
// ID as a deterministic tiebreak.
func sortReviewsNewestFirst(reviews []*domain.Review) {
	sort.SliceStable(reviews, func(i, j int) bool {
		a, b := reviews[i], reviews[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
