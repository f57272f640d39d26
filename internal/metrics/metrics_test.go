package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.ObserveContract("token", true, time.Millisecond)
	m.ObserveContract("broken", false, time.Millisecond)
	m.ObserveContract("vault", true, time.Millisecond)
	m.SetContracts(2, 1)
	m.MetadataFetched(false)
	m.SignaturesChecked(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.contractLoads.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.contractLoads.WithLabelValues("error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.loadedContracts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failedContracts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.metadataFetches.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.signatureChecks.WithLabelValues("ok")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodGet, "/api/contracts", http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `contract_explorer_api_requests_total{method="GET",path="/api/contracts",status="200"} 1`)
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
