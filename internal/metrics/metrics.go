package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// JobName is the Pushgateway job enrichment runs are grouped under.
const JobName = "embellish"

type Metrics struct {
	Assignments    *prometheus.CounterVec
	FetchErrors    prometheus.Counter
	FetchSeconds   *prometheus.HistogramVec
	Boundaries     *prometheus.GaugeVec
	DocksPersisted *prometheus.CounterVec
	ActiveWorkers  prometheus.Gauge
	LastSuccess    prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Assignments: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "embellish_dock_assignments_total",
			Help: "Total number of dock to boundary assignments by layer and result.",
		}, []string{"layer", "result"}),
		FetchErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "embellish_boundary_fetch_errors_total",
			Help: "Total number of boundary layers that failed to load.",
		}),
		FetchSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "embellish_boundary_fetch_duration_seconds",
			Help:    "Duration of boundary layer loads.",
			Buckets: prometheus.DefBuckets,
		}, []string{"layer"}),
		Boundaries: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "embellish_boundaries",
			Help: "Number of boundaries loaded per layer.",
		}, []string{"layer"}),
		DocksPersisted: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "embellish_docks_persisted_total",
			Help: "Total number of docks written to the database by status.",
		}, []string{"status"}),
		ActiveWorkers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "embellish_active_workers",
			Help: "Current number of active workers persisting docks.",
		}),
		LastSuccess: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "embellish_last_success_timestamp_seconds",
			Help: "Unix time of the last successful enrichment run.",
		}),
	}
}

// Push sends everything gathered by g to the Pushgateway at url, replacing the
// metrics previously pushed for the job.
func Push(ctx context.Context, url string, g prometheus.Gatherer) error {
	if err := push.New(url, JobName).Gatherer(g).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}

	return nil
}
