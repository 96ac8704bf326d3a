package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/models"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/services"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/testutil"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/validation"
)

func strPtr(s string) *string { return &s }

func TestLocationService_CreateAndList(t *testing.T) {
	svc := services.NewLocationService(testutil.NewDB(t), validation.New())
	ctx := context.Background()

	for _, name := range []string{"Tokyo", "Lisbon", "<b>Cairo</b>"} {
		_, err := svc.CreateLocation(ctx, name)
		require.NoError(t, err)
	}

	locations, err := svc.GetAllLocations(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(locations))
	for _, l := range locations {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{"Cairo", "Lisbon", "Tokyo"}, names)

	_, err = svc.CreateLocation(ctx, "Tokyo")
	assert.ErrorIs(t, err, services.ErrLocationExists)

	_, err = svc.CreateLocation(ctx, "")
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestLocationService_UpdateRewritesPhotos(t *testing.T) {
	db := testutil.NewDB(t)
	svc := services.NewLocationService(db, validation.New())
	ctx := context.Background()

	paris, err := svc.CreateLocation(ctx, "Paris")
	require.NoError(t, err)
	_, err = svc.CreateLocation(ctx, "Rome")
	require.NoError(t, err)

	photo := models.Photo{UserID: uuid.New(), Title: "eiffel", ImageURL: "e.jpg", Location: strPtr("Paris")}
	require.NoError(t, db.Create(&photo).Error)

	updated, err := svc.UpdateLocation(ctx, paris.ID, "Paris, France")
	require.NoError(t, err)
	assert.Equal(t, "Paris, France", updated.Name)

	var stored models.Photo
	require.NoError(t, db.First(&stored, "id = ?", photo.ID).Error)
	require.NotNil(t, stored.Location)
	assert.Equal(t, "Paris, France", *stored.Location)

	_, err = svc.UpdateLocation(ctx, paris.ID, "Rome")
	assert.ErrorIs(t, err, services.ErrLocationExists)

	_, err = svc.UpdateLocation(ctx, uuid.New(), "Oslo")
	assert.ErrorIs(t, err, services.ErrLocationNotFound)
}

func TestLocationService_DeleteClearsMatchingPhotos(t *testing.T) {
	db := testutil.NewDB(t)
	svc := services.NewLocationService(db, validation.New())
	ctx := context.Background()

	tokyo, err := svc.CreateLocation(ctx, "Tokyo")
	require.NoError(t, err)

	inTokyo := models.Photo{UserID: uuid.New(), Title: "shibuya", ImageURL: "s.jpg", Location: strPtr("Tokyo")}
	elsewhere := models.Photo{UserID: uuid.New(), Title: "kyoto", ImageURL: "k.jpg", Location: strPtr("Kyoto")}
	require.NoError(t, db.Create(&inTokyo).Error)
	require.NoError(t, db.Create(&elsewhere).Error)

	require.NoError(t, svc.DeleteLocation(ctx, tokyo.ID))

	var cleared, untouched models.Photo
	require.NoError(t, db.First(&cleared, "id = ?", inTokyo.ID).Error)
	require.NoError(t, db.First(&untouched, "id = ?", elsewhere.ID).Error)
	assert.Nil(t, cleared.Location)
	require.NotNil(t, untouched.Location)
	assert.Equal(t, "Kyoto", *untouched.Location)

	locations, err := svc.GetAllLocations(ctx)
	require.NoError(t, err)
	assert.Empty(t, locations)

	assert.ErrorIs(t, svc.DeleteLocation(ctx, tokyo.ID), services.ErrLocationNotFound)
}
