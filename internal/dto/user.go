package dto

import (
	"time"

	"github.com/bookdenapp/bookden-server/internal/domain"
)

// User is the client-facing representation of an account.
// The password hash never leaves the server.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name,omitempty"`
	LastName    string    `json:"last_name,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewUser builds a user view from the domain record.
func NewUser(user *domain.User) *User {
	return &User{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		DisplayName: user.DisplayName,
		Name:        user.Name(),
		CreatedAt:   user.CreatedAt,
	}
}

// Profile is a user's public profile page: who they are, the books they
// added, and the reviews they have written (newest first).
type Profile struct {
	User    *User            `json:"user"`
	Books   []*Book          `json:"books"`
	Reviews []*ProfileReview `json:"reviews"`
}
