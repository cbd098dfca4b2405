package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/event-service/internal/config"
)

func TestRequestLogger_LogsAndCounts(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	metrics := NewMetrics()

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(RequestLogger(zap.New(core), metrics))
	app.Get("/events/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/events/42", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/events/42", fields["path"])
	assert.Equal(t, "/events/:id", fields["route"])
	assert.EqualValues(t, http.StatusNoContent, fields["status"])
	assert.NotEmpty(t, fields["request_id"])

	assert.Equal(t, 1.0, counterValue(t, metrics, "event_service_http_requests_total"))
}

func TestMetrics_RecordRegistration(t *testing.T) {
	metrics := NewMetrics()
	metrics.RecordRegistration(OutcomeRegistered)
	metrics.RecordRegistration(OutcomeRegistered)
	metrics.RecordRegistration(OutcomeCapacityExceeded)

	assert.Equal(t, 3.0, counterValue(t, metrics, "event_service_registrations_total"))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var metrics *Metrics
	assert.NotPanics(t, func() {
		metrics.RecordRequest("/", http.MethodGet, http.StatusOK, 0)
		metrics.RecordError("/", http.MethodGet, "NOT_FOUND")
		metrics.RecordRegistration(OutcomeError)
	})
}

func TestNewLogger_FallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "chatty"}, config.AppConfig{Name: "event-service"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}

// counterValue sums every sample of the named counter family.
func counterValue(t *testing.T, metrics *Metrics, name string) float64 {
	t.Helper()
	families, err := metrics.Registry.Gather()
	require.NoError(t, err)

	var family *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == name {
			family = f
		}
	}
	require.NotNil(t, family, "metric %s not registered", name)

	var total float64
	for _, m := range family.GetMetric() {
		total += m.GetCounter().GetValue()
	}
	return total
}
