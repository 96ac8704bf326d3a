package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/models"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/testutil"
)

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("sink down")
}

func TestMultiHandler_FansOutByLevel(t *testing.T) {
	var info, errOnly bytes.Buffer
	logger := slog.New(NewMultiHandler(
		slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&errOnly, &slog.HandlerOptions{Level: slog.LevelError}),
	))

	logger.Info("hello")
	logger.Error("boom")

	assert.Contains(t, info.String(), "hello")
	assert.Contains(t, info.String(), "boom")
	assert.NotContains(t, errOnly.String(), "hello")
	assert.Contains(t, errOnly.String(), "boom")
}

func TestMultiHandler_KeepsGoingAfterFailure(t *testing.T) {
	var buf bytes.Buffer
	h := NewMultiHandler(
		failingHandler{slog.NewJSONHandler(&bytes.Buffer{}, nil)},
		slog.NewJSONHandler(&buf, nil),
	)

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "still logged", 0))
	assert.Error(t, err)
	assert.Contains(t, buf.String(), "still logged")
}

func TestMultiHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewMultiHandler(slog.NewJSONHandler(&buf, nil))).With("request_id", "r-1")

	logger.Info("scoped")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "r-1", line["request_id"])
}

func TestPGHandler_PersistsErrors(t *testing.T) {
	db := testutil.NewDB(t)
	h := newPGHandler(db, time.Hour)
	logger := slog.New(h).With("request_id", "req-42")

	logger.Info("ignored")
	logger.Error("photo create failed",
		"user_id", "u-1",
		"action", "photo_create",
		"error", "disk full",
		"latency_ms", 12.6,
		"filename", "a.jpg",
	)
	h.Stop()

	var logs []models.SystemLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)

	entry := logs[0]
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "photo create failed", entry.Message)
	assert.Equal(t, "req-42", entry.RequestID)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "u-1", *entry.UserID)
	assert.Equal(t, "photo_create", entry.Action)
	assert.Equal(t, "disk full", entry.Error)
	assert.Equal(t, 13, entry.LatencyMs)

	var extra map[string]any
	require.NoError(t, json.Unmarshal(entry.Extra, &extra))
	assert.Equal(t, "a.jpg", extra["filename"])
}

func TestPGHandler_StopIsIdempotent(t *testing.T) {
	h := newPGHandler(testutil.NewDB(t), time.Hour)
	h.Stop()
	assert.NotPanics(t, h.Stop)
}

func TestPurgeBefore(t *testing.T) {
	db := testutil.NewDB(t)
	now := time.Now()

	require.NoError(t, db.Create(&models.SystemLog{Timestamp: now.AddDate(0, 0, -40), Level: "ERROR", Message: "old"}).Error)
	require.NoError(t, db.Create(&models.SystemLog{Timestamp: now, Level: "ERROR", Message: "fresh"}).Error)

	deleted, err := PurgeBefore(db, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining []models.SystemLog
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "fresh", remaining[0].Message)
}
