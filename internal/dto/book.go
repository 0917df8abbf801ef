// Package dto provides Data Transfer Objects for API responses.
//
// DTOs contain denormalized fields for immediate client rendering while
// preserving normalized IDs for relationships. A book view carries its
// owner's display name and aggregated rating so clients never have to make
// follow-up requests to render a catalog page.
package dto

import (
	"time"

	"github.com/bookdenapp/bookden-server/internal/domain"
)

// Book is the client-facing representation of a catalog entry.
//
// AverageRating and ReviewCount are computed from the book's reviews at
// read time; they are never stored on the book record itself, so a view is
// always consistent with the reviews that exist when it is built.
type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Description   string    `json:"description,omitempty"`
	Genre         string    `json:"genre,omitempty"`
	PublishedYear int       `json:"year,omitempty"`
	AddedBy       string    `json:"added_by"`
	AddedByName   string    `json:"added_by_name,omitempty"` // Denormalized from the owning user
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	AverageRating float64   `json:"average_rating"`
	ReviewCount   int       `json:"review_count"`
}

// NewBook builds a book view from the domain record plus the denormalized
// fields the catalog page needs.
func NewBook(book *domain.Book, ownerName string, averageRating float64, reviewCount int) *Book {
	return &Book{
		ID:            book.ID,
		Title:         book.Title,
		Author:        book.Author,
		Description:   book.Description,
		Genre:         book.Genre,
		PublishedYear: book.PublishedYear,
		AddedBy:       book.AddedBy,
		AddedByName:   ownerName,
		CreatedAt:     book.CreatedAt,
		UpdatedAt:     book.UpdatedAt,
		AverageRating: averageRating,
		ReviewCount:   reviewCount,
	}
}

// BookPage is one page of catalog results.
type BookPage struct {
	Books      []*Book `json:"books"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	PerPage    int     `json:"per_page"`
	TotalPages int     `json:"total_pages"`
}
