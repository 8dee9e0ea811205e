package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmartin/gexsight/pkg/config"
	"github.com/hmartin/gexsight/pkg/database"
	"github.com/hmartin/gexsight/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "console"})
}

type stubHealthChecker struct {
	err error
}

func (s *stubHealthChecker) HealthCheck(context.Context) (*database.HealthStatus, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &database.HealthStatus{Healthy: true, Timestamp: time.Now()}, nil
}

type stubSnapshotInfo struct {
	ts  *time.Time
	err error
}

func (s *stubSnapshotInfo) LatestSnapshotTime(context.Context) (*time.Time, error) {
	return s.ts, s.err
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthCheckOK(t *testing.T) {
	ts := time.Now().Add(-5 * time.Minute)
	h := NewHealthHandler(&stubHealthChecker{}, &stubSnapshotInfo{ts: &ts}, testLogger())

	w := httptest.NewRecorder()
	h.Check(w, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.NotNil(t, body["last_snapshot"])
	age, ok := body["snapshot_age_seconds"].(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, age, 290.0)
}

func TestHealthCheckEmptySnapshotTable(t *testing.T) {
	h := NewHealthHandler(&stubHealthChecker{}, &stubSnapshotInfo{}, testLogger())

	w := httptest.NewRecorder()
	h.Check(w, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	_, present := body["last_snapshot"]
	assert.True(t, present)
	assert.Nil(t, body["last_snapshot"])
}

func TestHealthCheckDegraded(t *testing.T) {
	h := NewHealthHandler(&stubHealthChecker{err: errors.New("pool exhausted")}, nil, testLogger())

	w := httptest.NewRecorder()
	h.Check(w, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "degraded", body["status"])
}
