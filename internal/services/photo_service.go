package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/dto"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/gallery"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/models"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/owner"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/validation"
)

// PhotoService stores photo metadata. Every method resolves the caller's
// external identity to a local user and only ever touches that user's rows.
type PhotoService struct {
	db         *gorm.DB
	identities *IdentityService
	tags       *TagService
	validator  *validation.Validator
}

func NewPhotoService(db *gorm.DB, identities *IdentityService, tags *TagService, v *validation.Validator) *PhotoService {
	return &PhotoService{db: db, identities: identities, tags: tags, validator: v}
}

// newestTagsFirst orders preloaded tags by creation time.
func newestTagsFirst(db *gorm.DB) *gorm.DB {
	return db.Order("tags.created_at DESC").Order("tags.name ASC")
}

// List returns the caller's photos, newest first. A caller that was never
// synced simply has no photos.
func (s *PhotoService) List(ctx context.Context, externalID string) ([]models.Photo, error) {
	user, err := s.identities.Lookup(ctx, externalID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return []models.Photo{}, nil
		}
		return nil, err
	}

	guard := owner.NewGuard(s.db.WithContext(ctx), user.ID)

	photos := []models.Photo{}
	err = guard.DB().
		Preload("Tags", newestTagsFirst).
		Order("photos.created_at DESC").
		Order("photos.id DESC").
		Find(&photos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch photos: %w", err)
	}
	return photos, nil
}

func (s *PhotoService) Get(ctx context.Context, id uuid.UUID, externalID string) (*models.Photo, error) {
	user, err := s.owner(ctx, externalID)
	if err != nil {
		return nil, err
	}
	return s.find(owner.NewGuard(s.db.WithContext(ctx), user.ID), id)
}

// Create inserts a photo for a synced user. Tags are resolved in the same
// transaction, so a failed insert leaves no new tags behind.
func (s *PhotoService) Create(ctx context.Context, data dto.CreatePhotoData, externalID string) (*models.Photo, error) {
	user, err := s.identities.Lookup(ctx, externalID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotSynced
		}
		return nil, err
	}
	return s.create(ctx, user, data, nil)
}

func (s *PhotoService) create(ctx context.Context, user *models.User, data dto.CreatePhotoData, imageKey *string) (*models.Photo, error) {
	if err := s.validator.Validate(data); err != nil {
		return nil, err
	}

	photo := models.Photo{
		UserID:      user.ID,
		Title:       s.validator.Text(data.Title),
		Description: s.optionalText(data.Description),
		ImageURL:    data.ImageURL,
		ImageKey:    imageKey,
		Location:    s.optionalText(data.Location),
	}
	if photo.Title == "" {
		return nil, validation.Field("title", "is required")
	}

	dateTaken, err := parseDateTaken(data.DateTaken)
	if err != nil {
		return nil, err
	}
	photo.DateTaken = dateTaken

	var created bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, tagsCreated, err := s.tags.resolve(tx, data.Tags)
		if err != nil {
			return err
		}
		created = tagsCreated
		photo.Tags = tags

		return tx.Omit("Tags.*").Create(&photo).Error
	})
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create photo: %w", err)
	}
	s.tags.remember(photo.Tags, created)

	return s.find(owner.NewGuard(s.db.WithContext(ctx), user.ID), photo.ID)
}

// Update changes only the fields present in data. A present tag list
// replaces the photo's tags entirely.
func (s *PhotoService) Update(ctx context.Context, id uuid.UUID, data dto.UpdatePhotoData, externalID string) (*models.Photo, error) {
	if err := s.validator.Validate(data); err != nil {
		return nil, err
	}

	updates, err := s.updatesFrom(data)
	if err != nil {
		return nil, err
	}

	user, err := s.owner(ctx, externalID)
	if err != nil {
		return nil, err
	}

	var (
		tags    []models.Tag
		created bool
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		guard := owner.NewGuard(tx, user.ID)

		var photo models.Photo
		if err := guard.DB().Where("photos.id = ?", id).First(&photo).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPhotoNotFound
			}
			return err
		}

		if data.Tags != nil {
			resolved, tagsCreated, err := s.tags.resolve(tx, *data.Tags)
			if err != nil {
				return err
			}
			tags, created = resolved, tagsCreated

			association := tx.Model(&photo).Association("Tags")
			if err := association.Clear(); err != nil {
				return err
			}
			if len(tags) > 0 {
				if err := association.Append(tags); err != nil {
					return err
				}
			}
			updates["updated_at"] = time.Now()
		}

		if len(updates) == 0 {
			return nil
		}
		return guard.DB().Model(&photo).Updates(updates).Error
	})
	if err != nil {
		if errors.Is(err, ErrPhotoNotFound) || errors.Is(err, ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update photo: %w", err)
	}
	if data.Tags != nil {
		s.tags.remember(tags, created)
	}

	return s.find(owner.NewGuard(s.db.WithContext(ctx), user.ID), id)
}

// Delete removes the photo and its tag links and returns what was removed.
func (s *PhotoService) Delete(ctx context.Context, id uuid.UUID, externalID string) (*models.Photo, error) {
	user, err := s.owner(ctx, externalID)
	if err != nil {
		return nil, err
	}

	var photo models.Photo
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		guard := owner.NewGuard(tx, user.ID)

		if err := guard.DB().Where("photos.id = ?", id).First(&photo).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPhotoNotFound
			}
			return err
		}
		if err := tx.Model(&photo).Association("Tags").Clear(); err != nil {
			return err
		}
		return guard.DB().Delete(&photo).Error
	})
	if err != nil {
		if errors.Is(err, ErrPhotoNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to delete photo: %w", err)
	}
	return &photo, nil
}

// owner resolves the caller for single-photo operations. An unknown caller
// cannot own the photo, so it reads as not found.
func (s *PhotoService) owner(ctx context.Context, externalID string) (*models.User, error) {
	user, err := s.identities.Lookup(ctx, externalID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *PhotoService) find(guard owner.Guard, id uuid.UUID) (*models.Photo, error) {
	var photo models.Photo
	err := guard.DB().Preload("Tags", newestTagsFirst).Where("photos.id = ?", id).First(&photo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, fmt.Errorf("failed to fetch photo: %w", err)
	}
	return &photo, nil
}

func (s *PhotoService) updatesFrom(data dto.UpdatePhotoData) (map[string]interface{}, error) {
	updates := map[string]interface{}{}

	if data.Title != nil {
		title := s.validator.Text(*data.Title)
		if title == "" {
			return nil, validation.Field("title", "must not be empty")
		}
		updates["title"] = title
	}
	if data.ImageURL != nil {
		if *data.ImageURL == "" {
			return nil, validation.Field("image_url", "must not be empty")
		}
		updates["image_url"] = *data.ImageURL
	}
	if data.Description != nil {
		updates["description"] = s.optionalText(*data.Description)
	}
	if data.Location != nil {
		updates["location"] = s.optionalText(*data.Location)
	}
	if data.DateTaken != nil {
		dateTaken, err := parseDateTaken(*data.DateTaken)
		if err != nil {
			return nil, err
		}
		updates["date_taken"] = dateTaken
	}
	return updates, nil
}

// optionalText sanitises s and maps blank input to nil.
func (s *PhotoService) optionalText(raw string) *string {
	text := s.validator.Text(raw)
	if text == "" {
		return nil
	}
	return &text
}

func parseDateTaken(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := gallery.ParseDate(raw)
	if err != nil {
		return nil, validation.Field("date_taken", "must be a date in YYYY-MM-DD format")
	}
	return &t, nil
}
