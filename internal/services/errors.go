package services

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/validation"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserNotSynced    = errors.New("user not synced: call /api/users/sync after signing in")
	ErrIdentityConflict = errors.New("email is already linked to another account")
	ErrPhotoNotFound    = errors.New("photo not found")
	ErrTagNotFound      = errors.New("tag not found")
	ErrTagExists        = errors.New("tag already exists")
	ErrLocationNotFound = errors.New("location not found")
	ErrLocationExists   = errors.New("location already exists")

	// ErrValidation matches any rejected input, see validation.Error.
	ErrValidation = validation.ErrInvalid
)
