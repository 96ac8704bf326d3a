package storage_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/storage"
)

func TestObjectKey(t *testing.T) {
	userID := uuid.New()

	key, err := storage.ObjectKey(userID, "Beach Day.JPG")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, userID.String()+"/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	other, err := storage.ObjectKey(userID, "Beach Day.JPG")
	require.NoError(t, err)
	assert.NotEqual(t, key, other)

	key, err = storage.ObjectKey(userID, "noext")
	require.NoError(t, err)
	assert.NotContains(t, strings.TrimPrefix(key, userID.String()+"/"), ".")
}

func TestLocalStore_PutAndDelete(t *testing.T) {
	root := t.TempDir()
	s, err := storage.NewLocalStore(root, "http://localhost:8080/media/")
	require.NoError(t, err)

	ctx := context.Background()
	url, err := s.Put(ctx, "u1/photo.jpg", strings.NewReader("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/media/u1/photo.jpg", url)

	data, err := os.ReadFile(filepath.Join(root, "u1", "photo.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	_, err = s.Put(ctx, "u1/photo.jpg", strings.NewReader("again"), "image/jpeg")
	assert.ErrorIs(t, err, storage.ErrExists)

	require.NoError(t, s.Delete(ctx, "u1/photo.jpg"))
	_, err = os.Stat(filepath.Join(root, "u1", "photo.jpg"))
	assert.True(t, os.IsNotExist(err))

	// Deleting twice is fine.
	assert.NoError(t, s.Delete(ctx, "u1/photo.jpg"))
}

func TestLocalStore_RejectsEscapingKeys(t *testing.T) {
	s, err := storage.NewLocalStore(t.TempDir(), "http://x")
	require.NoError(t, err)

	for _, key := range []string{"", "/etc/passwd", "../up.jpg", "a/../../b.jpg", "a//b.jpg", `a\b.jpg`} {
		_, err := s.Put(context.Background(), key, strings.NewReader("x"), "")
		assert.ErrorIs(t, err, storage.ErrInvalidKey, key)
	}
	assert.ErrorIs(t, s.Delete(context.Background(), "../x"), storage.ErrInvalidKey)
}

func TestSupabaseStore_Put(t *testing.T) {
	var (
		gotPath   string
		gotAuth   string
		gotUpsert string
		gotType   string
		gotBody   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotAuth = r.Header.Get("Authorization")
		gotUpsert = r.Header.Get("x-upsert")
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Key":"travel-photos/u1/a b.png"}`))
	}))
	defer srv.Close()

	s := storage.NewSupabaseStore(srv.URL+"/", "travel-photos", "service-key", 5*time.Second)
	url, err := s.Put(context.Background(), "u1/a b.png", strings.NewReader("png"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "/storage/v1/object/travel-photos/u1/a%20b.png", gotPath)
	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, "false", gotUpsert)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, "png", gotBody)
	assert.Equal(t, srv.URL+"/storage/v1/object/public/travel-photos/u1/a%20b.png", url)
}

func TestSupabaseStore_PutConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"statusCode":"409","error":"Duplicate","message":"The resource already exists"}`))
	}))
	defer srv.Close()

	s := storage.NewSupabaseStore(srv.URL, "b", "k", 5*time.Second)
	_, err := s.Put(context.Background(), "u1/x.jpg", strings.NewReader("x"), "image/jpeg")
	assert.ErrorIs(t, err, storage.ErrExists)
}

func TestSupabaseStore_Delete(t *testing.T) {
	var body map[string][]string
	var method, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	s := storage.NewSupabaseStore(srv.URL, "travel-photos", "k", 5*time.Second)
	require.NoError(t, s.Delete(context.Background(), "u1/x.jpg"))

	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/storage/v1/object/travel-photos", path)
	assert.Equal(t, []string{"u1/x.jpg"}, body["prefixes"])
}

func TestSupabaseStore_DeleteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"statusCode":"403","error":"Unauthorized","message":"invalid signature"}`))
	}))
	defer srv.Close()

	s := storage.NewSupabaseStore(srv.URL, "b", "k", 5*time.Second)
	err := s.Delete(context.Background(), "u1/x.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid signature")
}
