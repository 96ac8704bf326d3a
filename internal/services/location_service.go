package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/models"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/validation"
)

const maxLocationNameLength = 255

// LocationService maintains the catalog of location names offered to users.
// Photos store the name itself, so catalog changes rewrite matching photos.
type LocationService struct {
	db        *gorm.DB
	validator *validation.Validator
}

func NewLocationService(db *gorm.DB, v *validation.Validator) *LocationService {
	return &LocationService{db: db, validator: v}
}

func (s *LocationService) GetAllLocations(ctx context.Context) ([]models.Location, error) {
	locations := []models.Location{}
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch locations: %w", err)
	}
	return locations, nil
}

func (s *LocationService) CreateLocation(ctx context.Context, name string) (*models.Location, error) {
	name, err := s.cleanName(name)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Location{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check location: %w", err)
	}
	if count > 0 {
		return nil, ErrLocationExists
	}

	location := models.Location{Name: name}
	if err := db.Create(&location).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrLocationExists
		}
		return nil, fmt.Errorf("failed to create location: %w", err)
	}
	return &location, nil
}

// UpdateLocation renames a catalog entry and every photo that used the old name.
func (s *LocationService) UpdateLocation(ctx context.Context, id uuid.UUID, name string) (*models.Location, error) {
	name, err := s.cleanName(name)
	if err != nil {
		return nil, err
	}

	var location models.Location
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&location, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLocationNotFound
			}
			return err
		}
		if location.Name == name {
			return nil
		}

		var count int64
		if err := tx.Model(&models.Location{}).Where("name = ? AND id <> ?", name, id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrLocationExists
		}

		if err := tx.Model(&models.Photo{}).Where("location = ?", location.Name).Update("location", name).Error; err != nil {
			return err
		}
		if err := tx.Model(&location).Update("name", name).Error; err != nil {
			return err
		}
		location.Name = name
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrLocationNotFound) || errors.Is(err, ErrLocationExists) {
			return nil, err
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrLocationExists
		}
		return nil, fmt.Errorf("failed to update location: %w", err)
	}
	return &location, nil
}

// DeleteLocation clears the location on photos that carry this name, then
// removes the catalog entry.
func (s *LocationService) DeleteLocation(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var location models.Location
		if err := tx.First(&location, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLocationNotFound
			}
			return err
		}

		if err := tx.Model(&models.Photo{}).Where("location = ?", location.Name).Update("location", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&location).Error
	})
	if err != nil {
		if errors.Is(err, ErrLocationNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete location: %w", err)
	}
	return nil
}

func (s *LocationService) cleanName(name string) (string, error) {
	name = s.validator.Text(name)
	if name == "" {
		return "", validation.Field("name", "is required")
	}
	if len(name) > maxLocationNameLength {
		return "", validation.Field("name", fmt.Sprintf("must not exceed %d characters", maxLocationNameLength))
	}
	return name, nil
}
