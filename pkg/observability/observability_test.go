package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSONWithContextIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "info", Format: LogFormatJSON, Output: &buf, ServiceName: "carecal"})

	ctx := WithRequestID(WithCorrelationID(context.Background(), "corr-1"), "req-1")
	logger.InfoContext(ctx, "calendar listed", "items", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "calendar listed", entry["msg"])
	assert.Equal(t, "carecal", entry["service"])
	assert.Equal(t, "corr-1", entry[CorrelationIDKey])
	assert.Equal(t, "req-1", entry[RequestIDKey])
	assert.EqualValues(t, 3, entry["items"])
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "warn", Format: LogFormatText, Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewRequestContext(t *testing.T) {
	ctx := NewRequestContext(context.Background(), "parent")
	assert.Equal(t, "parent", CorrelationIDFromContext(ctx))
	assert.NotEmpty(t, RequestIDFromContext(ctx))

	ctx = NewRequestContext(context.Background(), "")
	assert.NotEmpty(t, CorrelationIDFromContext(ctx))
	assert.Empty(t, CorrelationIDFromContext(context.Background()))
}

func TestInMemoryMetrics(t *testing.T) {
	m := NewInMemoryMetrics()
	m.Counter(MetricCacheHit, 1, T("kind", "series"))
	m.Counter(MetricCacheHit, 2, T("kind", "series"))
	m.Timing(MetricCalendarDuration, 5*time.Millisecond)

	assert.Equal(t, int64(3), m.GetCounter(MetricCacheHit, T("kind", "series")))
	assert.Zero(t, m.GetCounter(MetricCacheHit))
	assert.Equal(t, []time.Duration{5 * time.Millisecond}, m.GetTimings(MetricCalendarDuration))
}

func TestHealthRegistry(t *testing.T) {
	r := NewHealthRegistry()
	r.Register("database", PingChecker(func(context.Context) error { return nil }, HealthStatusUnhealthy))
	r.Register("cache", PingChecker(func(context.Context) error { return errors.New("dial tcp: refused") }, HealthStatusDegraded))

	health := r.Check(context.Background())
	assert.Equal(t, HealthStatusDegraded, health.Status)
	assert.Equal(t, "dial tcp: refused", health.Checks["cache"].Message)

	rec := httptest.NewRecorder()
	r.Handler(time.Second).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	r.Register("broker", PingChecker(func(context.Context) error { return errors.New("closed") }, HealthStatusUnhealthy))
	rec = httptest.NewRecorder()
	r.Handler(time.Second).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
