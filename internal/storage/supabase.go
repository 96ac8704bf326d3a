package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// SupabaseStore talks to a Supabase Storage compatible REST API.
type SupabaseStore struct {
	httpClient *resty.Client
	baseURL    string
	bucket     string
}

func NewSupabaseStore(baseURL, bucket, serviceKey string, timeout time.Duration) *SupabaseStore {
	baseURL = strings.TrimRight(baseURL, "/")
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetAuthToken(serviceKey).
		SetHeader("apikey", serviceKey)

	return &SupabaseStore{
		httpClient: client,
		baseURL:    baseURL,
		bucket:     bucket,
	}
}

type storageError struct {
	StatusCode string `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

func (s *SupabaseStore) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	// Buffer the body so a retried request resends the same bytes.
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read object body: %w", err)
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	var apiErr storageError
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("Cache-Control", "max-age=3600").
		SetHeader("x-upsert", "false").
		SetBody(bytes.NewReader(data)).
		SetError(&apiErr).
		Post("/storage/v1/object/" + s.bucket + "/" + escapeKey(key))
	if err != nil {
		return "", fmt.Errorf("upload object: %w", err)
	}

	switch {
	case resp.StatusCode() == http.StatusConflict || apiErr.StatusCode == "409":
		return "", ErrExists
	case resp.IsError():
		return "", fmt.Errorf("upload object: status %d: %s", resp.StatusCode(), apiErr.message())
	}

	return s.PublicURL(key), nil
}

// Delete removes the object. Supabase answers 200 even when nothing matched.
func (s *SupabaseStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	var apiErr storageError
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetBody(map[string][]string{"prefixes": {key}}).
		SetError(&apiErr).
		Delete("/storage/v1/object/" + s.bucket)
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil
	}
	if resp.IsError() {
		return fmt.Errorf("delete object: status %d: %s", resp.StatusCode(), apiErr.message())
	}
	return nil
}

func (s *SupabaseStore) PublicURL(key string) string {
	return s.baseURL + "/storage/v1/object/public/" + s.bucket + "/" + escapeKey(key)
}

func (e storageError) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

func escapeKey(key string) string {
	segs := strings.Split(key, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}
