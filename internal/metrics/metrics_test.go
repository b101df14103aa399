package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/portfolio/internal/contact"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestObserveContact(t *testing.T) {
	m := New()
	m.ObserveContact(contact.OutcomeSent)
	m.ObserveContact(contact.OutcomeSent)
	m.ObserveContact(contact.OutcomeDropped)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ContactOutcomes.WithLabelValues("sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ContactOutcomes.WithLabelValues("dropped")))
}

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	m := New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/projects/:slug", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, slug := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/projects/"+slug, nil))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/projects/:slug", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	var hits uint64 = 7
	m.WatchFilterCache(func() uint64 { return hits })
	m.RateLimited.Inc()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "portfolio_project_filter_cache_hits_total 7")
	assert.Contains(t, body, "portfolio_contact_rate_limited_total 1")
	assert.Contains(t, body, "go_goroutines")
}
