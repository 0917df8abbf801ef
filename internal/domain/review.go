package domain

const (
	// RatingMin is the lowest allowed star rating.
	RatingMin = 1
	// RatingMax is the highest allowed star rating.
	RatingMax = 5
)

// Review is a star rating with text, attached to a book by its author.
// At most one review exists per (book, author) pair.
type Review struct {
	Record
	BookID     string `json:"book_id"`
	UserID     string `json:"user_id"`
	Rating     int    `json:"rating"`
	ReviewText string `json:"review_text"`
}

// IsAuthoredBy reports whether the given user wrote this review.
func (r *Review) IsAuthoredBy(userID string) bool {
	return r.UserID == userID
}

// ValidRating reports whether a rating falls in the allowed 1..5 range.
func ValidRating(rating int) bool {
	return rating >= RatingMin && rating <= RatingMax
}
