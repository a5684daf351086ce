package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPGHandler_PersistsErrors(t *testing.T) {
	db := dbtest.New(t)
	h := NewPGHandler(db)
	logger := slog.New(h).With("action", "sweep")

	reportID := uuid.NewString()
	logger.Info("not persisted")
	logger.Error("sweep step failed",
		"report_id", reportID,
		"user_id", "u-1",
		"error", errors.New("storage unavailable"),
		"latency_ms", float64(12.4),
		"step", "remove content",
	)
	h.Stop()

	var logs []models.SystemLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	entry := logs[0]
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "sweep", entry.Action)
	require.NotNil(t, entry.ReportID)
	assert.Equal(t, reportID, *entry.ReportID)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "u-1", *entry.UserID)
	assert.Equal(t, "storage unavailable", entry.Error)
	assert.Equal(t, 12, entry.LatencyMs)
	assert.JSONEq(t, `{"step":"remove content"}`, string(entry.Extra))
}

func TestPGHandler_Enabled(t *testing.T) {
	h := &PGHandler{}
	assert.False(t, h.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestPurgeBefore(t *testing.T) {
	db := dbtest.New(t)
	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, db.Create(&models.SystemLog{Timestamp: now.AddDate(0, 0, -40), Level: "ERROR"}).Error)
	require.NoError(t, db.Create(&models.SystemLog{Timestamp: now.AddDate(0, 0, -1), Level: "ERROR"}).Error)

	deleted, err := PurgeBefore(db, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining int64
	require.NoError(t, db.Model(&models.SystemLog{}).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)
}

type failingHandler struct{}

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func (f failingHandler) WithAttrs([]slog.Attr) slog.Handler { return f }

func (f failingHandler) WithGroup(string) slog.Handler { return f }

func TestMultiHandler_KeepsFanningOutOnError(t *testing.T) {
	var buf bytes.Buffer
	h := NewMultiHandler(failingHandler{}, slog.NewJSONHandler(&buf, nil))

	logger := slog.New(h).With("action", "sweep")
	logger.Info("sweep finished")

	assert.Contains(t, buf.String(), `"action":"sweep"`)
	assert.Contains(t, buf.String(), `"msg":"sweep finished"`)

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "direct", 0))
	assert.EqualError(t, err, "sink down")
}
