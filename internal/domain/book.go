package domain

// Book represents a catalog entry added by a user.
//
// AddedBy is a weak reference: it stores the owner's user ID, never an
// embedded user. Resolving a display name requires a separate lookup.
type Book struct {
	Record
	Title         string `json:"title"`
	Author        string `json:"author"`
	Description   string `json:"description,omitempty"`
	Genre         string `json:"genre,omitempty"`
	PublishedYear int    `json:"published_year"`
	AddedBy       string `json:"added_by"`
}

// IsOwnedBy reports whether the given user created this book.
// The owner is the sole authority for mutation.
func (b *Book) IsOwnedBy(userID string) bool {
	return b.AddedBy == userID
}
