package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/models"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/validation"
)

// IdentityService maps identities from the auth provider onto local users.
type IdentityService struct {
	db *gorm.DB
}

func NewIdentityService(db *gorm.DB) *IdentityService {
	return &IdentityService{db: db}
}

// SyncProfile describes the caller of a sync. VerifiedEmail comes from the
// signed session token and is the only address allowed to adopt an existing
// row. Email is taken from the request and only fills a brand-new row.
type SyncProfile struct {
	VerifiedEmail string
	Email         string
	Username      string
}

// GetOrCreate returns the user linked to externalID. When none is linked yet it
// adopts an unlinked row carrying the verified email, otherwise it inserts a
// new user. A row already linked to another identity is never taken over.
func (s *IdentityService) GetOrCreate(ctx context.Context, externalID string, profile SyncProfile) (*models.User, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, validation.Field("external_id", "is required")
	}

	db := s.db.WithContext(ctx)

	user, err := s.byExternalID(db, externalID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	verified := normalizeEmail(profile.VerifiedEmail)
	email := verified
	if email == "" {
		email = normalizeEmail(profile.Email)
	}
	if email == "" {
		return nil, validation.Field("email", "is required")
	}

	if verified != "" {
		linked, err := s.adopt(db, externalID, verified)
		if err != nil || linked != nil {
			return linked, err
		}
	}

	created := models.User{
		ExternalID: &externalID,
		Email:      email,
	}
	if username := strings.TrimSpace(profile.Username); username != "" {
		created.Username = &username
	}

	if err := db.Create(&created).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Either a concurrent sync for the same identity won the insert,
			// or the email belongs to somebody else.
			if winner, err := s.byExternalID(db, externalID); err == nil {
				return winner, nil
			}
			return nil, ErrIdentityConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user created", "user_id", created.ID.String(), "action", "identity_create")
	return &created, nil
}

// adopt links externalID to the unlinked row holding email. It returns nil
// without error when no row has that email.
func (s *IdentityService) adopt(db *gorm.DB, externalID, email string) (*models.User, error) {
	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}
	if user.ExternalID != nil {
		return nil, ErrIdentityConflict
	}

	res := db.Model(&models.User{}).
		Where("id = ? AND external_id IS NULL", user.ID).
		Update("external_id", externalID)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to link identity: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if winner, err := s.byExternalID(db, externalID); err == nil {
			return winner, nil
		}
		return nil, ErrIdentityConflict
	}

	user.ExternalID = &externalID
	slog.Info("identity linked to existing user", "user_id", user.ID.String(), "action", "identity_link")
	return &user, nil
}

// Lookup returns the user linked to externalID or ErrUserNotFound.
func (s *IdentityService) Lookup(ctx context.Context, externalID string) (*models.User, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, ErrUserNotFound
	}
	return s.byExternalID(s.db.WithContext(ctx), externalID)
}

func (s *IdentityService) byExternalID(db *gorm.DB, externalID string) (*models.User, error) {
	var user models.User
	if err := db.Where("external_id = ?", externalID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
