package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookdenapp/bookden-server/internal/dto"
)

func TestGetProfile(t *testing.T) {
	server := setupTestServer(t)
	owner := registerTestUser(t, server, "owner@example.com", "Owner")
	reviewer := registerTestUser(t, server, "reviewer@example.com", "Reviewer")

	book := createTestBook(t, server, owner.AccessToken, map[string]any{
		"title": "Piranesi", "author": "Susanna Clarke",
	})
	otherBook := createTestBook(t, server, reviewer.AccessToken, map[string]any{
		"title": "The Raven Tower", "author": "Ann Leckie",
	})
	createTestReview(t, server, owner.AccessToken, otherBook.ID, 5, "The House is kind.")

	w := doRequest(t, server, http.MethodGet, "/api/v1/profile", owner.AccessToken, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var envelope testEnvelope[dto.Profile]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))

	require.NotNil(t, envelope.Data.User)
	assert.Equal(t, owner.User.ID, envelope.Data.User.ID)

	// Only the caller's own books and reviews appear.
	require.Len(t, envelope.Data.Books, 1)
	assert.Equal(t, book.ID, envelope.Data.Books[0].ID)

	require.Len(t, envelope.Data.Reviews, 1)
	assert.Equal(t, otherBook.ID, envelope.Data.Reviews[0].BookID)
	assert.Equal(t, "The Raven Tower", envelope.Data.Reviews[0].BookTitle)
	assert.Equal(t, "Ann Leckie", envelope.Data.Reviews[0].BookAuthor)
}

func TestGetProfile_EmptyCollections(t *testing.T) {
	server := setupTestServer(t)
	session := registerTestUser(t, server, "fresh@example.com", "Fresh")

	w := doRequest(t, server, http.MethodGet, "/api/v1/profile", session.AccessToken, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var envelope testEnvelope[dto.Profile]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))

	assert.Empty(t, envelope.Data.Books)
	assert.Empty(t, envelope.Data.Reviews)
}
