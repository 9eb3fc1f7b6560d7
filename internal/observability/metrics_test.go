package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/helpdesk-service/internal/config"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/tickets/:id", "GET", 200, 4*time.Millisecond)
	m.RecordRequest("/tickets/:id", "GET", 200, 2*time.Millisecond)
	m.RecordRequest("/tickets", "POST", 201, time.Millisecond)
	m.RecordError("/tickets/:id", "GET", "NOT_FOUND")

	snap := m.Snapshot()
	assert.EqualValues(t, 3, snap.TotalRequests)
	assert.EqualValues(t, 1, snap.TotalErrors)
	require.Len(t, snap.Requests, 2)
	assert.Equal(t, RouteStat{Route: "/tickets", Method: "POST", Status: 201, Count: 1, AvgDurationMs: 1}, snap.Requests[0])
	assert.Equal(t, "/tickets/:id", snap.Requests[1].Route)
	assert.EqualValues(t, 2, snap.Requests[1].Count)
	assert.InDelta(t, 3.0, snap.Requests[1].AvgDurationMs, 0.001)
	assert.Equal(t, []ErrorStat{{Route: "/tickets/:id", Method: "GET", Code: "NOT_FOUND", Count: 1}}, snap.Errors)
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	snap := m.Snapshot()
	assert.Empty(t, snap.Requests)
	assert.NotNil(t, snap.Errors)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	metrics := NewMetrics()

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), metrics))
	app.Get("/tickets/:id", func(c *fiber.Ctx) error {
		if c.Params("id") == "missing" {
			return apperrors.NewNotFound("ticket", nil)
		}
		return c.SendStatus(http.StatusOK)
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return apperrors.NewInternalError(nil)
	})

	for _, path := range []string{"/tickets/a", "/tickets/missing", "/boom"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		resp.Body.Close()
	}

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.EqualValues(t, http.StatusNotFound, entries[1].ContextMap()["status"])
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)

	snap := metrics.Snapshot()
	assert.EqualValues(t, 3, snap.TotalRequests)
	var byRoute int64
	for _, stat := range snap.Requests {
		if stat.Route == "/tickets/:id" {
			byRoute += stat.Count
		}
	}
	assert.EqualValues(t, 2, byRoute)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "nonsense"}, config.AppConfig{Name: "helpdesk-service", Env: "production"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLogger(config.LoggerConfig{Level: "DEBUG"}, config.AppConfig{})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}
