package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/dto"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/models"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/storage"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/validation"
)

const defaultPhotoTitle = "Untitled"

// UploadItem is one file of a batch together with its metadata.
type UploadItem struct {
	Filename    string
	ContentType string
	Body        io.Reader
	Metadata    dto.UploadMetadata
}

// UploadOutcome reports what happened to a single item. Photo is set on
// success, Err otherwise.
type UploadOutcome struct {
	Filename string
	Photo    *models.Photo
	Err      error
}

type BatchUploadResult struct {
	Succeeded int
	Failed    int
	Items     []UploadOutcome
}

// UploadService stores image bytes and creates the matching photo records.
type UploadService struct {
	identities *IdentityService
	photos     *PhotoService
	store      storage.ObjectStore
	metrics    *metrics.Collector
}

func NewUploadService(identities *IdentityService, photos *PhotoService, store storage.ObjectStore, collector *metrics.Collector) *UploadService {
	return &UploadService{identities: identities, photos: photos, store: store, metrics: collector}
}

// UploadBatch processes items one after another. A failing item is recorded
// and the batch moves on. When the record cannot be created after the object
// was stored, the object is removed again.
func (s *UploadService) UploadBatch(ctx context.Context, externalID string, items []UploadItem) (*BatchUploadResult, error) {
	user, err := s.identities.Lookup(ctx, externalID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotSynced
		}
		return nil, err
	}

	result := &BatchUploadResult{Items: make([]UploadOutcome, 0, len(items))}
	for _, item := range items {
		outcome := UploadOutcome{Filename: item.Filename}
		if err := ctx.Err(); err != nil {
			outcome.Err = err
		} else {
			outcome.Photo, outcome.Err = s.upload(ctx, user, item)
		}

		if outcome.Err != nil {
			result.Failed++
			slog.Warn("upload item failed",
				"user_id", user.ID.String(),
				"filename", item.Filename,
				"error", outcome.Err.Error(),
				"action", "photo_upload",
			)
		} else {
			result.Succeeded++
		}
		result.Items = append(result.Items, outcome)
	}

	s.metrics.RecordUpload(result.Succeeded, result.Failed)
	return result, nil
}

func (s *UploadService) upload(ctx context.Context, user *models.User, item UploadItem) (*models.Photo, error) {
	if !strings.HasPrefix(item.ContentType, "image/") {
		return nil, validation.Field("images", "must be an image")
	}

	key, err := storage.ObjectKey(user.ID, item.Filename)
	if err != nil {
		return nil, err
	}

	url, err := s.store.Put(ctx, key, item.Body, item.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	meta := item.Metadata
	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = titleFromFilename(item.Filename)
	}

	photo, err := s.photos.create(ctx, user, dto.CreatePhotoData{
		Title:       title,
		Description: meta.Description,
		ImageURL:    url,
		Location:    meta.Location,
		DateTaken:   meta.DateTaken,
		Tags:        meta.Tags,
	}, &key)
	if err != nil {
		s.discard(ctx, key)
		return nil, err
	}
	return photo, nil
}

// RemoveImage deletes the stored object behind a photo, if it has one.
// Failures are logged and counted, never returned.
func (s *UploadService) RemoveImage(ctx context.Context, photo *models.Photo) {
	if photo == nil || photo.ImageKey == nil || *photo.ImageKey == "" {
		return
	}
	s.discard(ctx, *photo.ImageKey)
}

func (s *UploadService) discard(ctx context.Context, key string) {
	// The request may already be cancelled; cleanup should still run.
	if err := s.store.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.metrics.RecordCleanupFailure()
		slog.Error("failed to remove stored image",
			"key", key,
			"error", err.Error(),
			"action", "storage_cleanup",
		)
	}
}

// titleFromFilename strips directories and the extension from a file name.
func titleFromFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	title := strings.TrimSpace(strings.TrimSuffix(base, path.Ext(base)))
	if title == "" || title == "." || title == "/" {
		return defaultPhotoTitle
	}
	return title
}
