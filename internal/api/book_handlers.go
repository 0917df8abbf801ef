package api

import (
	"encoding/json/v2"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bookdenapp/bookden-server/internal/http/response"
	"github.com/bookdenapp/bookden-server/internal/service"
)

// handleListBooks returns a paginated page of the catalog. Search, genre
// filter, sort order, and pagination all come from the query string.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, err := s.bookService.ListBooks(ctx, parseListBooksParams(r))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, page, s.logger)
}

// handleListGenres returns the distinct genres present in the catalog.
func (s *Server) handleListGenres(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	genres, err := s.bookService.Genres(ctx)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{"genres": genres}, s.logger)
}

// handleGetBook returns a single book with its rating aggregate.
func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if id == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	book, err := s.bookService.GetBook(ctx, id)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}

// handleCreateBook adds a book to the shared catalog, owned by the caller.
func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	var req service.CreateBookRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	book, err := s.bookService.CreateBook(ctx, userID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, book, s.logger)
}

// handleUpdateBook edits a book. Only the user who added it may edit.
func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	if id == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	var req service.UpdateBookRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	book, err := s.bookService.UpdateBook(ctx, id, userID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}

// handleDeleteBook removes a book and all of its reviews. Owner only.
func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	if id == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	if err := s.bookService.DeleteBook(ctx, id, userID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// parseListBooksParams reads browse parameters from the query string.
// Invalid numbers fall back to defaults; the service clamps ranges.
func parseListBooksParams(r *http.Request) service.ListBooksParams {
	q := r.URL.Query()

	params := service.ListBooksParams{
		Search: q.Get("search"),
		Genre:  q.Get("genre"),
		Sort:   q.Get("sort_by"),
	}

	if pageStr := q.Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil {
			params.Page = page
		}
	}

	if perPageStr := q.Get("per_page"); perPageStr != "" {
		if perPage, err := strconv.Atoi(perPageStr); err == nil {
			params.PerPage = perPage
		}
	}

	return params
}
