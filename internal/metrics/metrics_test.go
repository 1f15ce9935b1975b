package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/UnknownOlympus/embellish/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	m.Assignments.WithLabelValues("borough", "matched").Inc()
	m.Boundaries.WithLabelValues("borough").Set(5)

	assert.InDelta(t, 1, testutil.ToFloat64(m.Assignments.WithLabelValues("borough", "matched")), 0)
	assert.InDelta(t, 5, testutil.ToFloat64(m.Boundaries.WithLabelValues("borough")), 0)

	count, err := testutil.GatherAndCount(reg, "embellish_dock_assignments_total", "embellish_boundaries")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestPush(t *testing.T) {
	t.Run("pushes gathered metrics under the job", func(t *testing.T) {
		var path, body string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			raw, _ := io.ReadAll(r.Body)
			body = string(raw)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		reg := prometheus.NewRegistry()
		m := metrics.NewMetrics(reg)
		m.FetchErrors.Inc()

		err := metrics.Push(t.Context(), server.URL, reg)

		require.NoError(t, err)
		assert.Equal(t, "/metrics/job/embellish", path)
		assert.NotEmpty(t, body)
	})

	t.Run("gateway rejects the push", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		reg := prometheus.NewRegistry()
		metrics.NewMetrics(reg).FetchErrors.Inc()

		err := metrics.Push(t.Context(), server.URL, reg)

		assert.ErrorContains(t, err, "failed to push metrics")
	})
}
