package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"overlap/internal/structures"
)

type MetricsProviderInterface interface {
	IncRostersFetched()
	IncRosterFailures()
	AddChattersCollected(count int)
	AddRowsWritten(window string, count int)
	ObserveStageDuration(stage string, duration time.Duration)
	Push() error
}

// MetricsProvider collects per-invocation counters on a private registry and
// pushes them to a Pushgateway at the end of the run. A batch job has no
// scrape surface, so push is the only export path.
type MetricsProvider struct {
	registry          *prometheus.Registry
	pusher            *push.Pusher
	rostersFetched    prometheus.Counter
	rosterFailures    prometheus.Counter
	chattersCollected prometheus.Counter
	rowsWritten       *prometheus.CounterVec
	stageDuration     *prometheus.HistogramVec
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled || conf.Metrics.Gateway == "" {
		return &noopMetrics{}
	}

	registry := prometheus.NewRegistry()

	m := &MetricsProvider{
		registry: registry,

		rostersFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "overlap_rosters_fetched_total",
			Help: "Total number of channel rosters fetched",
		}),

		rosterFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "overlap_roster_failures_total",
			Help: "Total number of failed roster fetches",
		}),

		chattersCollected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "overlap_chatters_collected_total",
			Help: "Total number of chatter observations collected",
		}),

		rowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "overlap_rows_written_total",
			Help: "Total number of overlap rows written per window",
		}, []string{"window"}),

		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "overlap_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
	}

	registry.MustRegister(m.rostersFetched, m.rosterFailures, m.chattersCollected, m.rowsWritten, m.stageDuration)

	m.pusher = push.New(conf.Metrics.Gateway, conf.Metrics.Job).Gatherer(registry)

	return m
}

func (m *MetricsProvider) IncRostersFetched() { m.rostersFetched.Inc() }

func (m *MetricsProvider) IncRosterFailures() { m.rosterFailures.Inc() }

func (m *MetricsProvider) AddChattersCollected(count int) {
	m.chattersCollected.Add(float64(count))
}

func (m *MetricsProvider) AddRowsWritten(window string, count int) {
	m.rowsWritten.WithLabelValues(window).Add(float64(count))
}

func (m *MetricsProvider) ObserveStageDuration(stage string, duration time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

func (m *MetricsProvider) Push() error {
	return m.pusher.Add()
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRostersFetched()                             {}
func (n *noopMetrics) IncRosterFailures()                             {}
func (n *noopMetrics) AddChattersCollected(_ int)                     {}
func (n *noopMetrics) AddRowsWritten(_ string, _ int)                 {}
func (n *noopMetrics) ObserveStageDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) Push() error                                    { return nil }
