package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/bookdenapp/bookden-server/internal/config"
	"github.com/bookdenapp/bookden-server/internal/domain"
	"github.com/bookdenapp/bookden-server/internal/dto"
	domainerrors "github.com/bookdenapp/bookden-server/internal/errors"
	"github.com/bookdenapp/bookden-server/internal/id"
	"github.com/bookdenapp/bookden-server/internal/store"
)

// Sort orders accepted by ListBooks.
const (
	SortLatest     = "latest"
	SortYearDesc   = "year_desc"
	SortYearAsc    = "year_asc"
	SortRatingDesc = "rating_desc"
)

// BookService owns the catalog: creating, editing and deleting books, and
// answering the browse query (search, filter, sort, paginate).
type BookService struct {
	store    *store.Store
	ratings  *RatingService
	guard    *Guard
	enricher *dto.Enricher
	catalog  config.CatalogConfig
	logger   *slog.Logger
}

// NewBookService creates a new catalog service.
func NewBookService(
	store *store.Store,
	ratings *RatingService,
	guard *Guard,
	enricher *dto.Enricher,
	catalog config.CatalogConfig,
	logger *slog.Logger,
) *BookService {
	return &BookService{
		store:    store,
		ratings:  ratings,
		guard:    guard,
		enricher: enricher,
		catalog:  catalog,
		logger:   logger,
	}
}

// CreateBookRequest contains a new catalog entry.
type CreateBookRequest struct {
	Title         string `json:"title" validate:"required,max=300"`
	Author        string `json:"author" validate:"required,max=200"`
	Description   string `json:"description" validate:"omitempty,max=5000"`
	Genre         string `json:"genre" validate:"omitempty,max=100"`
	PublishedYear int    `json:"year" validate:"omitempty,gte=0,lte=9999"`
}

// UpdateBookRequest contains edits to an existing entry. Nil fields are
// left unchanged.
type UpdateBookRequest struct {
	Title         *string `json:"title" validate:"omitempty,max=300"`
	Author        *string `json:"author" validate:"omitempty,max=200"`
	Description   *string `json:"description" validate:"omitempty,max=5000"`
	Genre         *string `json:"genre" validate:"omitempty,max=100"`
	PublishedYear *int    `json:"year" validate:"omitempty,gte=0,lte=9999"`
}

// ListBooksParams are the browse query parameters.
// Zero values mean "no filter" / defaults.
type ListBooksParams struct {
	Search  string
	Genre   string
	Sort    string
	Page    int
	PerPage int
}

// CreateBook adds a book to the shared catalog, owned by the actor.
func (s *BookService) CreateBook(ctx context.Context, actorID string, req CreateBookRequest) (*dto.Book, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	book := &domain.Book{
		Title:         strings.TrimSpace(req.Title),
		Author:        strings.TrimSpace(req.Author),
		Description:   req.Description,
		Genre:         strings.TrimSpace(req.Genre),
		PublishedYear: req.PublishedYear,
		AddedBy:       actorID,
	}
	book.ID = bookID
	book.InitTimestamps()

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, mapTransient(err)
	}

	if s.logger != nil {
		s.logger.Info("Book added", "book_id", bookID, "title", book.Title, "user_id", actorID)
	}

	ownerName := s.enricher.UserName(ctx, actorID)
	return dto.NewBook(book, ownerName, 0, 0), nil
}

// GetBook returns a single enriched book view.
func (s *BookService) GetBook(ctx context.Context, bookID string) (*dto.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	summary, err := s.ratings.Summary(ctx, bookID)
	if err != nil {
		return nil, err
	}

	ownerName := s.enricher.UserName(ctx, book.AddedBy)
	return dto.NewBook(book, ownerName, summary.Average, summary.Count), nil
}

// UpdateBook edits a book. Only the user who added it may do so.
func (s *BookService) UpdateBook(ctx context.Context, bookID, actorID string, req UpdateBookRequest) (*dto.Book, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	book, err := s.guard.RequireBookOwner(ctx, bookID, actorID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, domainerrors.Validation("title cannot be empty")
		}
		book.Title = strings.TrimSpace(*req.Title)
	}
	if req.Author != nil {
		if strings.TrimSpace(*req.Author) == "" {
			return nil, domainerrors.Validation("author cannot be empty")
		}
		book.Author = strings.TrimSpace(*req.Author)
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if req.Genre != nil {
		book.Genre = strings.TrimSpace(*req.Genre)
	}
	if req.PublishedYear != nil {
		book.PublishedYear = *req.PublishedYear
	}

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, mapTransient(err)
	}

	summary, err := s.ratings.Summary(ctx, bookID)
	if err != nil {
		return nil, err
	}

	ownerName := s.enricher.UserName(ctx, book.AddedBy)
	return dto.NewBook(book, ownerName, summary.Average, summary.Count), nil
}

// DeleteBook removes a book and all of its reviews. Only the user who added
// the book may delete it.
func (s *BookService) DeleteBook(ctx context.Context, bookID, actorID string) error {
	if _, err := s.guard.RequireBookOwner(ctx, bookID, actorID); err != nil {
		return err
	}

	if err := s.store.DeleteBookWithReviews(ctx, bookID); err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return domainerrors.NotFound("book not found")
		}
		return mapTransient(err)
	}

	if s.logger != nil {
		s.logger.Info("Book deleted", "book_id", bookID, "user_id", actorID)
	}
	return nil
}

// ListBooks answers the catalog browse query. The pipeline is
// filter, count, sort, paginate, enrich: the total always reflects the
// filtered set, and rating sorting is applied globally before the page is
// cut so identical queries return stable pages.
func (s *BookService) ListBooks(ctx context.Context, params ListBooksParams) (*dto.BookPage, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}

	perPage := params.PerPage
	if perPage <= 0 {
		perPage = s.catalog.DefaultPageSize
	}
	if perPage > s.catalog.MaxPageSize {
		perPage = s.catalog.MaxPageSize
	}

	sortOrder := params.Sort
	if sortOrder == "" {
		sortOrder = SortLatest
	}
	switch sortOrder {
	case SortLatest, SortYearDesc, SortYearAsc, SortRatingDesc:
	default:
		return nil, domainerrors.Validationf("unknown sort order %q", sortOrder)
	}

	// Filter
	books, err := s.filterBooks(ctx, params.Search, params.Genre)
	if err != nil {
		return nil, err
	}
	total := len(books)

	// Rating sort needs summaries for the whole filtered set; the other
	// orders only need them for the page that survives pagination.
	var summaries map[string]RatingSummary
	if sortOrder == SortRatingDesc {
		summaries, err = s.summariesFor(ctx, books)
		if err != nil {
			return nil, err
		}
	}

	sortBooks(books, sortOrder, summaries)

	// Paginate
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}

	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	pageBooks := books[start:end]

	if summaries == nil {
		summaries, err = s.summariesFor(ctx, pageBooks)
		if err != nil {
			return nil, err
		}
	}

	// Enrich
	ownerIDs := make([]string, 0, len(pageBooks))
	for _, b := range pageBooks {
		ownerIDs = append(ownerIDs, b.AddedBy)
	}
	ownerNames := s.enricher.UserNames(ctx, ownerIDs)

	views := make([]*dto.Book, 0, len(pageBooks))
	for _, b := range pageBooks {
		summary := summaries[b.ID]
		views = append(views, dto.NewBook(b, ownerNames[b.AddedBy], summary.Average, summary.Count))
	}

	return &dto.BookPage{
		Books:      views,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}, nil
}

// Genres returns the distinct non-empty genres in the catalog, sorted.
func (s *BookService) Genres(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	for book, err := range s.store.ListBooks(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list books: %w", err)
		}
		if book.Genre != "" {
			seen[book.Genre] = true
		}
	}

	genres := make([]string, 0, len(seen))
	for g := range seen {
		genres = append(genres, g)
	}
	sort.Strings(genres)
	return genres, nil
}

// filterBooks scans the catalog applying the search and genre filters.
// Search matches a case-insensitive substring of title or author. Genre is
// an exact match against the stored value; "" or "all" means no filter.
func (s *BookService) filterBooks(ctx context.Context, search, genre string) ([]*domain.Book, error) {
	search = strings.ToLower(strings.TrimSpace(search))
	genre = strings.TrimSpace(genre)
	filterGenre := genre != "" && genre != "all"

	var books []*domain.Book
	for book, err := range s.store.ListBooks(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list books: %w", err)
		}

		if search != "" &&
			!strings.Contains(strings.ToLower(book.Title), search) &&
			!strings.Contains(strings.ToLower(book.Author), search) {
			continue
		}
		if filterGenre && book.Genre != genre {
			continue
		}

		books = append(books, book)
	}
	return books, nil
}

// summariesFor fetches rating summaries for a slice of books.
func (s *BookService) summariesFor(ctx context.Context, books []*domain.Book) (map[string]RatingSummary, error) {
	ids := make([]string, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}
	return s.ratings.Summaries(ctx, ids)
}

// sortBooks orders the filtered set in place. Ties break toward newer
// books, then by ID so the order is deterministic.
func sortBooks(books []*domain.Book, order string, summaries map[string]RatingSummary) {
	newest := func(a, b *domain.Book) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	}

	sort.SliceStable(books, func(i, j int) bool {
		a, b := books[i], books[j]
		switch order {
		case SortYearDesc:
			if a.PublishedYear != b.PublishedYear {
				return a.PublishedYear > b.PublishedYear
			}
		case SortYearAsc:
			if a.PublishedYear != b.PublishedYear {
				return a.PublishedYear < b.PublishedYear
			}
		case SortRatingDesc:
			ra, rb := summaries[a.ID].Average, summaries[b.ID].Average
			if ra != rb {
				return ra > rb
			}
		}
		return newest(a, b)
	})
}
