package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors used by the API, the dispatch worker,
// and the callback reconciler.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal     *prometheus.CounterVec
	httpRequestDuration   *prometheus.HistogramVec
	messagesSentTotal     *prometheus.CounterVec
	messagesFailedTotal   *prometheus.CounterVec
	sendDuration          *prometheus.HistogramVec
	dispatchQueueDepth    prometheus.Gauge
	deliveryReportsTotal  *prometheus.CounterVec
	bootstrapRecovered    prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "smsgate",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "smsgate",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		messagesSentTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "smsgate",
				Name:      "messages_sent_total",
				Help:      "Total number of messages handed to a provider without failure.",
			},
			[]string{"provider"},
		),
		messagesFailedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "smsgate",
				Name:      "messages_failed_total",
				Help:      "Total number of messages whose send attempt ended FAILED.",
			},
			[]string{"provider"},
		),
		sendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "smsgate",
				Name:      "send_duration_seconds",
				Help:      "Provider send call duration in seconds grouped by provider.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"provider"},
		),
		dispatchQueueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "smsgate",
				Name:      "dispatch_queue_depth",
				Help:      "Number of batches currently waiting on the dispatch queue.",
			},
		),
		deliveryReportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "smsgate",
				Name:      "delivery_reports_total",
				Help:      "Total number of provider delivery reports by outcome.",
			},
			[]string{"outcome"},
		),
		bootstrapRecovered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "smsgate",
				Name:      "bootstrap_recovered_total",
				Help:      "Total number of pending messages re-dispatched at startup.",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.messagesSentTotal,
		m.messagesFailedTotal,
		m.sendDuration,
		m.dispatchQueueDepth,
		m.deliveryReportsTotal,
		m.bootstrapRecovered,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncMessageSent(provider string) {
	if m == nil {
		return
	}
	m.messagesSentTotal.WithLabelValues(normalizeProviderLabel(provider)).Inc()
}

func (m *Metrics) IncMessageFailed(provider string) {
	if m == nil {
		return
	}
	m.messagesFailedTotal.WithLabelValues(normalizeProviderLabel(provider)).Inc()
}

func (m *Metrics) ObserveSendDuration(provider string, duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.sendDuration.WithLabelValues(normalizeProviderLabel(provider)).Observe(seconds)
}

func (m *Metrics) SetDispatchQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.dispatchQueueDepth.Set(float64(depth))
}

func (m *Metrics) IncDeliveryReport(outcome string) {
	if m == nil {
		return
	}
	outcomeLabel := strings.TrimSpace(strings.ToLower(outcome))
	if outcomeLabel == "" {
		outcomeLabel = "unknown"
	}
	m.deliveryReportsTotal.WithLabelValues(outcomeLabel).Inc()
}

func (m *Metrics) AddBootstrapRecovered(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.bootstrapRecovered.Add(float64(count))
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeProviderLabel(provider string) string {
	normalized := strings.ToLower(strings.TrimSpace(provider))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
