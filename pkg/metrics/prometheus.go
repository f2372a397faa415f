// Package metrics provides Prometheus metrics for the selection service.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Pipeline
	teamsRegistered     prometheus.Counter
	duplicateSubmits    prometheus.Counter
	statusTransitions   *prometheus.CounterVec
	rejectedTransitions *prometheus.CounterVec
	teamsByStatus       *prometheus.GaugeVec

	// Ranking
	rankingRuns        *prometheus.CounterVec
	rankingDuration    prometheus.Histogram
	batchFailures      prometheus.Counter
	selectedTeams      *prometheus.GaugeVec
	recomputeQueueSize prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

//nolint:gochecknoglobals // process-wide collectors
var (
	customRegistry = prometheus.NewRegistry()
	globalManager  = NewManager(WithPrometheusRegistry(customRegistry))
	runtimeOnce    sync.Once
)

// NewManager creates a manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "qualify",
		subsystem:        "selection",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.teamsRegistered = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "teams_registered_total",
		Help: "Total number of registered teams",
	})
	m.duplicateSubmits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "duplicate_submissions_total",
		Help: "Registration submissions absorbed by the idempotency key check",
	})
	m.statusTransitions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "status_transitions_total",
		Help: "Applied status transitions by source and target status",
	}, []string{"from", "to"})
	m.rejectedTransitions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "rejected_updates_total",
		Help: "Team updates rejected by the status machine, by error kind",
	}, []string{"kind"})
	m.teamsByStatus = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "teams",
		Help: "Current number of teams by category and status",
	}, []string{"category", "status"})

	m.rankingRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "ranking_runs_total",
		Help: "Ranking runs by trigger (interview, batch, settings)",
	}, []string{"trigger"})
	m.rankingDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "ranking_duration_milliseconds",
		Help:    "Duration of a ranking or batch recomputation in milliseconds",
		Buckets: m.histogramBuckets,
	})
	m.batchFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "batch_team_failures_total",
		Help: "Teams skipped by batch recomputation",
	})
	m.selectedTeams = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "selected_teams",
		Help: "Teams currently holding a Selected decision, by category",
	}, []string{"category"})
	m.recomputeQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "recompute_queue_size",
		Help: "Pending recompute jobs",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// Init rebuilds the package-level collectors on a fresh registry with opts.
// Call it at startup, before handlers or collectors are in use.
func Init(opts ...Option) {
	reg := prometheus.NewRegistry()
	customRegistry = reg
	globalManager = NewManager(append(opts, WithPrometheusRegistry(reg))...)
	runtimeOnce = sync.Once{}
}

// GetRegistry returns the registry backing the package-level helpers.
func GetRegistry() *prometheus.Registry { return customRegistry }

// RecordTeamRegistered counts a newly registered team.
func RecordTeamRegistered() { globalManager.teamsRegistered.Inc() }

// RecordDuplicateSubmission counts a replayed registration.
func RecordDuplicateSubmission() { globalManager.duplicateSubmits.Inc() }

// RecordStatusTransition counts a status change.
func RecordStatusTransition(from, to string) {
	globalManager.statusTransitions.WithLabelValues(from, to).Inc()
}

// RecordRejectedUpdate counts an update rejected with the given error kind.
func RecordRejectedUpdate(kind string) {
	globalManager.rejectedTransitions.WithLabelValues(kind).Inc()
}

// UpdateTeamsByStatus replaces the per-category, per-status team gauge.
func UpdateTeamsByStatus(counts map[[2]string]int) {
	globalManager.teamsByStatus.Reset()
	for k, v := range counts {
		globalManager.teamsByStatus.WithLabelValues(k[0], k[1]).Set(float64(v))
	}
}

// RecordRankingRun counts a ranking run and its duration.
func RecordRankingRun(trigger string, durationMs float64) {
	globalManager.rankingRuns.WithLabelValues(trigger).Inc()
	globalManager.rankingDuration.Observe(durationMs)
}

// RecordBatchFailures adds n skipped teams.
func RecordBatchFailures(n int) {
	if n > 0 {
		globalManager.batchFailures.Add(float64(n))
	}
}

// UpdateSelectedTeams sets the selected count for a category.
func UpdateSelectedTeams(category string, n int) {
	globalManager.selectedTeams.WithLabelValues(category).Set(float64(n))
}

// UpdateRecomputeQueueSize sets the pending job gauge.
func UpdateRecomputeQueueSize(n int) { globalManager.recomputeQueueSize.Set(float64(n)) }

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes one HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RegisterRuntimeCollectors adds Go runtime and process collectors to the
// service registry. Calling it more than once is a no-op.
func RegisterRuntimeCollectors() {
	runtimeOnce.Do(func() {
		customRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
}
