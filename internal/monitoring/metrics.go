package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the REPL core.
type Metrics struct {
	// Process lifecycle
	SpawnsTotal    *prometheus.CounterVec
	SessionsActive prometheus.Gauge
	KillsTotal     prometheus.Counter
	SignalsTotal   *prometheus.CounterVec

	// Environment construction
	SourcingTotal     prometheus.Counter
	DroppedPairsTotal prometheus.Counter

	// I/O
	BytesRead    prometheus.Counter
	BytesWritten prometheus.Counter

	// System
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates a metrics collector on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates a metrics collector on a caller-supplied registry.
// Tests use a fresh registry to avoid duplicate-registration panics.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		startTime: time.Now(),

		SpawnsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "replkit_spawns_total",
				Help: "Total number of child processes spawned",
			},
			[]string{"mode"},
		),
		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "replkit_sessions_active",
				Help: "Number of live REPL sessions",
			},
		),
		KillsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "replkit_kills_total",
				Help: "Total number of kill requests",
			},
		),
		SignalsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "replkit_signals_total",
				Help: "Total number of signals relayed to child processes",
			},
			[]string{"signal"},
		),
		SourcingTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "replkit_env_sourcing_total",
				Help: "Total number of login-shell activation sourcing runs",
			},
		),
		DroppedPairsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "replkit_env_dropped_pairs_total",
				Help: "Environment entries dropped due to encoding failures",
			},
		),
		BytesRead: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "replkit_bytes_read_total",
				Help: "Bytes read from child process output",
			},
		),
		BytesWritten: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "replkit_bytes_written_total",
				Help: "Bytes written to child process input",
			},
		),
		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "replkit_uptime_seconds",
				Help: "Host process uptime in seconds",
			},
		),
	}
}

// UpdateUptime refreshes the uptime gauge.
func (m *Metrics) UpdateUptime() {
	m.Uptime.Set(time.Since(m.startTime).Seconds())
}

// Spawn modes reported on SpawnsTotal.
const (
	ModeDirect   = "direct"
	ModeFiltered = "filtered"
	ModePTY      = "pty"
)
