package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// defaultBuckets covers mailbox-bound workloads from microseconds up to
// multi-second drains.
var defaultBuckets = []float64{.0001, .001, .005, .01, .05, .1, .5, 1, 5, 10, 30}

// promRuntime implements RuntimeMetrics using Prometheus.
type promRuntime struct {
	actorsRunning prometheus.Gauge
	actorsTotal   *prometheus.CounterVec
	mailboxDepth  *prometheus.GaugeVec
	broadcasts    prometheus.Counter
	runDuration   prometheus.Histogram
}

// NewPrometheusRuntime creates a Prometheus implementation of
// RuntimeMetrics and registers its collectors with reg.
func NewPrometheusRuntime(reg prometheus.Registerer) RuntimeMetrics {
	m := &promRuntime{
		actorsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "edgekit_runtime_actors_running",
			Help: "Number of actor tasks currently running",
		}),

		actorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edgekit_runtime_actors_stopped_total",
			Help: "Total number of actor tasks that finished",
		}, []string{"actor", "clean"}),

		mailboxDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "edgekit_runtime_mailbox_depth",
			Help: "Current mailbox queue depth per actor",
		}, []string{"actor"}),

		broadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "edgekit_runtime_control_broadcasts_total",
			Help: "Total number of shutdown broadcasts",
		}),

		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "edgekit_runtime_run_duration_seconds",
			Help:    "Wall time of complete runtime runs",
			Buckets: defaultBuckets,
		}),
	}

	reg.MustRegister(
		m.actorsRunning,
		m.actorsTotal,
		m.mailboxDepth,
		m.broadcasts,
		m.runDuration,
	)

	return m
}

func (m *promRuntime) ActorStarted(string) {
	m.actorsRunning.Inc()
}

func (m *promRuntime) ActorStopped(actor string, clean bool) {
	m.actorsRunning.Dec()
	m.actorsTotal.WithLabelValues(actor, boolToStr(clean)).Inc()
}

func (m *promRuntime) MailboxDepth(actor string, depth int) {
	m.mailboxDepth.WithLabelValues(actor).Set(float64(depth))
}

func (m *promRuntime) ControlBroadcast() {
	m.broadcasts.Inc()
}

func (m *promRuntime) RunDuration() Timer {
	return prometheus.NewTimer(m.runDuration)
}

func boolToStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
