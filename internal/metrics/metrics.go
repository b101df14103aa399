// Package metrics exposes Prometheus metrics for the site.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Zachkp/portfolio/internal/contact"
)

// Metrics holds the collectors registered on one registry.
//
// Metrics:
//   - portfolio_http_requests_total{method,route,status}
//   - portfolio_http_request_duration_seconds{method,route}
//   - portfolio_contact_submissions_total{outcome}
//   - portfolio_contact_rate_limited_total
//   - portfolio_project_filter_cache_hits_total
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	ContactOutcomes *prometheus.CounterVec
	RateLimited     prometheus.Counter
}

var _ contact.Observer = (*Metrics)(nil)

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portfolio_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ContactOutcomes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_contact_submissions_total",
				Help: "Contact form submissions by outcome",
			},
			[]string{"outcome"}, // sent, dropped, invalid, failed
		),
		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_contact_rate_limited_total",
			Help: "Contact submissions rejected by the rate limiter",
		}),
	}
}

func (m *Metrics) ObserveContact(o contact.Outcome) {
	m.ContactOutcomes.WithLabelValues(string(o)).Inc()
}

// WatchFilterCache exports hits as a counter read at scrape time.
func (m *Metrics) WatchFilterCache(hits func() uint64) {
	m.registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "portfolio_project_filter_cache_hits_total",
			Help: "Project filter results served from the memo",
		},
		func() float64 { return float64(hits()) },
	))
}

// Middleware records request counts and latency by route template, so
// /projects/:slug is one series however many slugs exist.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
