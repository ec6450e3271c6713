package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/crushcourt/internal/config"
	"github.com/ashureev/crushcourt/internal/store"
)

func TestNewLoggerFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "v", line["k"])

	buf.Reset()
	text := newLogger(config.LogConfig{Level: "bogus", Format: "TEXT"}, &buf)
	text.Debug("dropped")
	text.Info("kept")
	assert.Contains(t, buf.String(), "msg=kept")
	assert.NotContains(t, buf.String(), "dropped")
}

func TestRouterServesHealthMetricsAndGuardsAPI(t *testing.T) {
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "court.db"))
	cfg, err := config.Load()
	require.NoError(t, err)

	repo, err := store.NewSQLite(context.Background(), cfg.DBPath, store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	var logs bytes.Buffer
	router := newRouter(cfg, newLogger(cfg.Log, &logs), repo)

	for path, want := range map[string]int{
		"/health":      http.StatusOK,
		"/metrics":     http.StatusOK,
		"/api/records/pending": http.StatusUnauthorized,
		"/login":       http.StatusOK,
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, rec.Code, path)
	}
}
