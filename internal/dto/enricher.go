package dto

import (
	"context"

	"github.com/bookdenapp/bookden-server/internal/domain"
)

// Store defines the interface for fetching related entities during enrichment.
// This allows Enricher to remain testable and independent of concrete store implementation.
type Store interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// Enricher resolves display names for denormalized view fields.
//
// Design philosophy:
//   - Graceful degradation: a missing user yields an empty name, not an error
//   - Batch friendly: UserNames deduplicates lookups across a result page
type Enricher struct {
	store Store
}

// NewEnricher creates a new enricher.
func NewEnricher(store Store) *Enricher {
	return &Enricher{store: store}
}

// UserName returns the display name for a user ID, or "" if the user
// cannot be loaded.
func (e *Enricher) UserName(ctx context.Context, userID string) string {
	user, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return ""
	}
	return user.Name()
}

// UserNames resolves display names for a set of user IDs, fetching each
// distinct ID once. Unknown IDs map to "".
func (e *Enricher) UserNames(ctx context.Context, userIDs []string) map[string]string {
	names := make(map[string]string, len(userIDs))
	for _, id := range userIDs {
		if _, done := names[id]; done {
			continue
		}
		names[id] = e.UserName(ctx, id)
	}
	return names
}
