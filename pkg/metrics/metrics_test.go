package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	var pb dto.Metric
	require.NoError(t, (<-ch).Write(&pb))
	if pb.Counter != nil {
		return pb.Counter.GetValue()
	}
	return 0
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := NewServerMetrics("test")

	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/metrics", m.Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, 1.0, value(t, m.Requests.WithLabelValues("/ping", "200")))

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(body), "phsar_test_http_requests_total"))
}

func TestDomainCounters(t *testing.T) {
	m := NewServerMetrics("test")

	m.CheckoutResult("success")
	m.WebhookOutcome(WebhookProcessed)
	m.OrdersMarkedPaid(2)
	m.OrdersMarkedPaid(0)
	m.StatusChanged("DELIVERING")

	assert.Equal(t, 1.0, value(t, m.Checkouts.WithLabelValues("success")))
	assert.Equal(t, 1.0, value(t, m.WebhookEvents.WithLabelValues(WebhookProcessed)))
	assert.Equal(t, 2.0, value(t, m.OrdersPaid))
	assert.Equal(t, 1.0, value(t, m.StatusChanges.WithLabelValues("DELIVERING")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *ServerMetrics
	assert.NotPanics(t, func() {
		m.CheckoutResult("success")
		m.WebhookOutcome(WebhookFailed)
		m.OrdersMarkedPaid(1)
		m.StatusChanged("PAID")
	})
}
