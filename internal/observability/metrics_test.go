package observability

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsDispatchCollectors(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()

	metrics.IncMessageSent("Twilio")
	metrics.IncMessageFailed("twilio")
	metrics.ObserveSendDuration("twilio", 120*time.Millisecond)
	metrics.SetDispatchQueueDepth(3)
	metrics.IncDeliveryReport("applied")
	metrics.IncDeliveryReport("unknown_message")
	metrics.AddBootstrapRecovered(450)

	if got := testutil.ToFloat64(metrics.messagesSentTotal.WithLabelValues("twilio")); got != 1 {
		t.Fatalf("messages_sent_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.messagesFailedTotal.WithLabelValues("twilio")); got != 1 {
		t.Fatalf("messages_failed_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.dispatchQueueDepth); got != 3 {
		t.Fatalf("dispatch_queue_depth = %v, want 3", got)
	}
	if got := testutil.ToFloat64(metrics.deliveryReportsTotal.WithLabelValues("applied")); got != 1 {
		t.Fatalf("delivery_reports_total{applied} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.deliveryReportsTotal.WithLabelValues("unknown_message")); got != 1 {
		t.Fatalf("delivery_reports_total{unknown_message} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.bootstrapRecovered); got != 450 {
		t.Fatalf("bootstrap_recovered_total = %v, want 450", got)
	}
}

func TestMetricsHTTPMiddlewareRecordsRequest(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()
	app := fiber.New()
	app.Use(metrics.HTTPMiddleware())
	app.Get("/livez", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/livez", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if got := testutil.ToFloat64(metrics.httpRequestsTotal.WithLabelValues("GET", "/livez", "200")); got != 1 {
		t.Fatalf("http_requests_total = %v, want 1", got)
	}
}

func TestMetricsHTTPMiddlewareSkipsMetricsEndpoint(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()
	app := fiber.New()
	app.Use(metrics.HTTPMiddleware())
	app.Get("/metrics", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/metrics", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if got := testutil.ToFloat64(metrics.httpRequestsTotal.WithLabelValues("GET", "/metrics", "200")); got != 0 {
		t.Fatalf("http_requests_total{/metrics} = %v, want 0", got)
	}
}
