package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestCountersAreRegistered(t *testing.T) {
	before := testutil.ToFloat64(ProbeResetsTotal.WithLabelValues("refresh"))
	ProbeResetsTotal.WithLabelValues("refresh").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ProbeResetsTotal.WithLabelValues("refresh")))
}

func TestServerHandlers(t *testing.T) {
	s := NewServer("127.0.0.1:0", zerolog.Nop())

	rec := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "worklog_samples_total")
}
