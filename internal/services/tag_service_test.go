package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/models"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/services"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/testutil"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/validation"
)

func newTagService(t *testing.T, db *gorm.DB) *services.TagService {
	t.Helper()
	svc := services.NewTagService(db, validation.New(), 100)
	t.Cleanup(svc.Close)
	return svc
}

func tagNames(tags []models.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	return names
}

func TestTagService_GetAllTagsOrderedByName(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newTagService(t, db)
	ctx := context.Background()

	for _, name := range []string{"mountain", "beach", "city"} {
		_, err := svc.CreateTag(ctx, name)
		require.NoError(t, err)
	}

	tags, err := svc.GetAllTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"beach", "city", "mountain"}, tagNames(tags))
}

func TestTagService_ListReadOverlappingCreateIsNotCached(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newTagService(t, db)
	ctx := context.Background()

	_, err := svc.CreateTag(ctx, "beach")
	require.NoError(t, err)

	// Create "city" after the list query has run but before its result is cached.
	armed := true
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:create_during_list", func(tx *gorm.DB) {
		if !armed || tx.Statement.Table != "tags" {
			return
		}
		if _, ok := tx.Statement.Dest.(*[]models.Tag); !ok {
			return
		}
		armed = false
		_, err := svc.CreateTag(ctx, "city")
		require.NoError(t, err)
	}))

	tags, err := svc.GetAllTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"beach"}, tagNames(tags))
	assert.False(t, armed)

	tags, err = svc.GetAllTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"beach", "city"}, tagNames(tags))
}

func TestTagService_GetAllTagsEmpty(t *testing.T) {
	svc := newTagService(t, testutil.NewDB(t))

	tags, err := svc.GetAllTags(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tags)
	assert.Empty(t, tags)
}

func TestTagService_CreateTagDuplicate(t *testing.T) {
	svc := newTagService(t, testutil.NewDB(t))
	ctx := context.Background()

	tag, err := svc.CreateTag(ctx, "  beach ")
	require.NoError(t, err)
	assert.Equal(t, "beach", tag.Name)
	assert.NotEqual(t, uuid.Nil, tag.ID)

	_, err = svc.CreateTag(ctx, "beach")
	assert.ErrorIs(t, err, services.ErrTagExists)
}

func TestTagService_CreateTagRejectsBlankAndLong(t *testing.T) {
	svc := newTagService(t, testutil.NewDB(t))
	ctx := context.Background()

	_, err := svc.CreateTag(ctx, "   ")
	assert.ErrorIs(t, err, services.ErrValidation)

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	_, err = svc.CreateTag(ctx, string(long))
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestTagService_ListRefreshesAfterCreate(t *testing.T) {
	svc := newTagService(t, testutil.NewDB(t))
	ctx := context.Background()

	tags, err := svc.GetAllTags(ctx)
	require.NoError(t, err)
	assert.Empty(t, tags)

	_, err = svc.CreateTag(ctx, "food")
	require.NoError(t, err)

	tags, err = svc.GetAllTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"food"}, tagNames(tags))

	_, err = svc.GetOrCreateTagsByName(ctx, []string{"art"})
	require.NoError(t, err)

	tags, err = svc.GetAllTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"art", "food"}, tagNames(tags))
}

func TestTagService_GetOrCreateTagsByName(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newTagService(t, db)
	ctx := context.Background()

	existing, err := svc.CreateTag(ctx, "beach")
	require.NoError(t, err)

	tags, err := svc.GetOrCreateTagsByName(ctx, []string{"sunset", "beach", " sunset ", "", "beach"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sunset", "beach"}, tagNames(tags))
	assert.Equal(t, existing.ID, tags[1].ID)

	again, err := svc.GetOrCreateTagsByName(ctx, []string{"beach", "sunset"})
	require.NoError(t, err)
	assert.Equal(t, tags[1].ID, again[0].ID)
	assert.Equal(t, tags[0].ID, again[1].ID)

	var count int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestTagService_GetOrCreateTagsByNameEmpty(t *testing.T) {
	svc := newTagService(t, testutil.NewDB(t))

	tags, err := svc.GetOrCreateTagsByName(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestTagService_UpdateTag(t *testing.T) {
	svc := newTagService(t, testutil.NewDB(t))
	ctx := context.Background()

	beach, err := svc.CreateTag(ctx, "beach")
	require.NoError(t, err)
	_, err = svc.CreateTag(ctx, "city")
	require.NoError(t, err)

	updated, err := svc.UpdateTag(ctx, beach.ID, "coast")
	require.NoError(t, err)
	assert.Equal(t, "coast", updated.Name)
	assert.Equal(t, beach.ID, updated.ID)

	_, err = svc.UpdateTag(ctx, beach.ID, "city")
	assert.ErrorIs(t, err, services.ErrTagExists)

	_, err = svc.UpdateTag(ctx, uuid.New(), "anything")
	assert.ErrorIs(t, err, services.ErrTagNotFound)

	// The old name is no longer served from cache.
	tags, err := svc.GetOrCreateTagsByName(ctx, []string{"beach"})
	require.NoError(t, err)
	assert.NotEqual(t, beach.ID, tags[0].ID)
}

func TestTagService_DeleteTagRemovesAssociations(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newTagService(t, db)
	ctx := context.Background()

	tags, err := svc.GetOrCreateTagsByName(ctx, []string{"beach", "city"})
	require.NoError(t, err)

	photo := models.Photo{UserID: uuid.New(), Title: "p", ImageURL: "p.jpg", Tags: tags}
	require.NoError(t, db.Omit("Tags.*").Create(&photo).Error)

	require.NoError(t, svc.DeleteTag(ctx, tags[0].ID))

	var stored models.Photo
	require.NoError(t, db.Preload("Tags").First(&stored, "id = ?", photo.ID).Error)
	assert.Equal(t, []string{"city"}, tagNames(stored.Tags))

	all, err := svc.GetAllTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"city"}, tagNames(all))

	assert.ErrorIs(t, svc.DeleteTag(ctx, tags[0].ID), services.ErrTagNotFound)
}
