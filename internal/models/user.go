package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the local record of an identity issued by the external auth provider.
type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	// ExternalID is nil only for rows provisioned before their owner first
	// signed in. Once set it never changes.
	ExternalID *string   `gorm:"size:255;uniqueIndex" json:"external_id"`
	Email      string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Username   *string   `gorm:"size:100" json:"username,omitempty"`
	Role       string    `gorm:"size:20;default:'user'" json:"role"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
