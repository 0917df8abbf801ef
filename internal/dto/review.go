package dto

import (
	"time"

	"github.com/bookdenapp/bookden-server/internal/domain"
)

// Review is the client-facing representation of a review.
type Review struct {
	ID         string    `json:"id"`
	BookID     string    `json:"book_id"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name,omitempty"` // Denormalized from the authoring user
	Rating     int       `json:"rating"`
	ReviewText string    `json:"review_text,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewReview builds a review view with the author's display name resolved.
func NewReview(review *domain.Review, userName string) *Review {
	return &Review{
		ID:         review.ID,
		BookID:     review.BookID,
		UserID:     review.UserID,
		UserName:   userName,
		Rating:     review.Rating,
		ReviewText: review.ReviewText,
		CreatedAt:  review.CreatedAt,
		UpdatedAt:  review.UpdatedAt,
	}
}

// ProfileReview is a review as shown on its author's profile page, with the
// reviewed book's title and author attached for immediate rendering.
type ProfileReview struct {
	Review
	BookTitle  string `json:"book_title"`
	BookAuthor string `json:"book_author"`
}

// RatingDistribution is the per-star review breakdown for a book.
// Counts always carries all five star buckets, even when they are zero.
type RatingDistribution struct {
	BookID        string      `json:"book_id"`
	AverageRating float64     `json:"average_rating"`
	ReviewCount   int         `json:"review_count"`
	Counts        map[int]int `json:"distribution"`
}
