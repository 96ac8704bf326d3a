// Package storage keeps uploaded image bytes outside the database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	ErrInvalidKey = errors.New("invalid object key")
	ErrExists     = errors.New("object already exists")
)

// ObjectStore stores image bytes under a key and hands back a public URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// ObjectKey builds "<userID>/<nanoid>.<ext>" for an uploaded file name.
func ObjectKey(userID uuid.UUID, filename string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate object id: %w", err)
	}

	key := userID.String() + "/" + id
	if ext := strings.ToLower(path.Ext(filename)); ext != "" && len(ext) <= 6 {
		key += ext
	}
	return key, nil
}

func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return ErrInvalidKey
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}
