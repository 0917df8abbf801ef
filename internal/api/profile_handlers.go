package api

import (
	"net/http"

	"github.com/bookdenapp/bookden-server/internal/http/response"
)

// handleGetProfile returns the authenticated user's profile: their account
// info, the books they added, and the reviews they wrote.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	profile, err := s.profileService.GetProfile(ctx, userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, profile, s.logger)
}
