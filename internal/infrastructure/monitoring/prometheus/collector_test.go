package prometheus

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearclaim/clearclaim/internal/infrastructure/monitoring/logging"
)

func newCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "clearclaim"}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func TestNewMetricsCollectorRequiresNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{}, logging.NewNopLogger())
	require.Error(t, err)
}

func TestCounterRoundTrip(t *testing.T) {
	c := newCollector(t)
	vec := c.RegisterCounter("decisions_total", "Decisions synthesized", "status")
	vec.WithLabelValues("approved").Inc()
	vec.WithLabelValues("approved").Add(2)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, "clearclaim_decisions_total")
	assert.Contains(t, body, `status="approved"`)
}

func TestDuplicateRegistrationReturnsExisting(t *testing.T) {
	c := newCollector(t)
	first := c.RegisterCounter("queries_total", "Queries", "outcome")
	second := c.RegisterCounter("queries_total", "Queries", "outcome")

	first.WithLabelValues("ok").Inc()
	second.WithLabelValues("ok").Inc()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "clearclaim_queries_total")
}

func TestHistogramObserve(t *testing.T) {
	c := newCollector(t)
	vec := c.RegisterHistogram("decide_duration_seconds", "duration", DefaultPipelineDurationBuckets)
	vec.WithLabelValues().Observe(0.02)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "clearclaim_decide_duration_seconds")
}

func TestGauge(t *testing.T) {
	c := newCollector(t)
	vec := c.RegisterGauge("active_queries", "Active queries")
	vec.WithLabelValues().Set(3)
	vec.WithLabelValues().Inc()
	vec.WithLabelValues().Dec()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "clearclaim_active_queries 3")
}

func TestNopCollector(t *testing.T) {
	c := NewNopCollector()
	m := NewEngineMetrics(c)
	// All recording paths must be safe no-ops.
	m.QueriesTotal.WithLabelValues("ok").Inc()
	m.DecideDuration.WithLabelValues().Observe(0.5)
	m.RetrievalsTotal.WithLabelValues("memory", "ok").Add(1)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 204, rec.Code)
}

func TestNewEngineMetricsRegistersAll(t *testing.T) {
	c := newCollector(t)
	m := NewEngineMetrics(c)
	require.NotNil(t, m)

	m.DecisionsTotal.WithLabelValues("needs_review").Inc()
	m.ChainVerdicts.WithLabelValues("demographic", "pass").Inc()
	m.EvidenceClauses.WithLabelValues().Observe(4)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, "clearclaim_decisions_total")
	assert.Contains(t, body, "clearclaim_chain_verdicts_total")
}
