package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/country-explorer/internal/httpx"
)

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics()

	m.ObserveSearch("capital", "found", 20*time.Millisecond)
	m.ObserveSearch("capital", "found", 30*time.Millisecond)
	m.ObserveSearch("country", "empty", time.Millisecond)
	m.IncFetchError(&httpx.FetchError{Status: http.StatusBadGateway, Err: errors.New("status 502")})
	m.ObserveDetail(false, time.Millisecond)
	m.IncContactMessage()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Searches.WithLabelValues("capital", "found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Searches.WithLabelValues("country", "empty")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchErrors.WithLabelValues(ErrorStatus)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DetailLookups.WithLabelValues("absent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ContactMessages))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveSearch("region", "found", time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `country_explorer_searches_total{kind="region",outcome="found"} 1`)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveSearch("country", "found", time.Second)
	m.IncFetchError(errors.New("x"))
	m.ObserveDetail(true, time.Second)
	m.IncContactMessage()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
