package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/models"
)

// SyncUserRequest carries profile fields for the first sync. Email is only
// used when the session token has no email claim; a blank username falls
// back to the token claims.
type SyncUserRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Username string `json:"username" validate:"max=100"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  *string   `json:"username,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Username: u.Username, CreatedAt: u.CreatedAt}
}
