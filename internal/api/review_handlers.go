package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookdenapp/bookden-server/internal/http/response"
	"github.com/bookdenapp/bookden-server/internal/service"
)

// handleCreateReview posts a review on a book. One review per user per book.
func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	bookID := chi.URLParam(r, "id")

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	if bookID == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	var req service.CreateReviewRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	review, err := s.reviewService.CreateReview(ctx, bookID, userID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, review, s.logger)
}

// handleListBookReviews returns a book's reviews, newest first.
func (s *Server) handleListBookReviews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookID := chi.URLParam(r, "id")

	if bookID == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	reviews, err := s.reviewService.ListBookReviews(ctx, bookID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, reviews, s.logger)
}

// handleRatingDistribution returns per-star counts for a book.
func (s *Server) handleRatingDistribution(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookID := chi.URLParam(r, "id")

	if bookID == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	dist, err := s.ratingService.Distribution(ctx, bookID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, dist, s.logger)
}

// handleUpdateReview edits a review. Only its author may edit.
func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	if id == "" {
		response.BadRequest(w, "Review ID is required", s.logger)
		return
	}

	var req service.UpdateReviewRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	review, err := s.reviewService.UpdateReview(ctx, id, userID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, review, s.logger)
}

// handleDeleteReview removes a review. Only its author may delete.
func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	if id == "" {
		response.BadRequest(w, "Review ID is required", s.logger)
		return
	}

	if err := s.reviewService.DeleteReview(ctx, id, userID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
