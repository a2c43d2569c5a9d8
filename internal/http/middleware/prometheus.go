package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the HTTP layer and the
// document generation pipeline.
type Metrics struct {
	requestCount       *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests processed.",
			},
			[]string{"method", "path", "status"},
		),
		generationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "document_generation_duration_seconds",
				Help:    "Time spent filling a template and converting it to PDF.",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
			},
			[]string{"format"},
		),
	}

	if err := reg.Register(m.requestCount); err != nil {
		return nil, err
	}
	if err := reg.Register(m.generationDuration); err != nil {
		return nil, err
	}

	return m, nil
}

// ObserveGeneration records the duration of one generate request for the
// given template format.
func (m *Metrics) ObserveGeneration(format string, d time.Duration) {
	m.generationDuration.WithLabelValues(format).Observe(d.Seconds())
}

// Handler returns the request counting middleware. /metrics itself is not
// counted.
func (m *Metrics) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}

		err := c.Next()

		// Route pattern (e.g. /templates/:id) keeps cardinality bounded;
		// fall back to the raw path when no route matched.
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}

		status := c.Response().StatusCode()
		if err != nil {
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		m.requestCount.WithLabelValues(
			c.Method(),
			path,
			strconv.Itoa(status),
		).Inc()

		return err
	}
}
