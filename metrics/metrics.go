// Package metrics provides abstract instrumentation interfaces that allow
// pluggable backends (Prometheus, StatsD, etc.) without coupling the core
// runtime to any specific implementation.
package metrics

import "time"

// Counter is a monotonically increasing metric.
type Counter interface {
	// Inc increments the counter by 1.
	Inc()
	// Add increments the counter by delta. delta must be >= 0.
	Add(delta float64)
}

// Gauge is a metric that can go up and down.
type Gauge interface {
	// Set sets the gauge to value.
	Set(value float64)
	// Inc increments the gauge by 1.
	Inc()
	// Dec decrements the gauge by 1.
	Dec()
	// Add adds delta to the gauge. delta can be negative.
	Add(delta float64)
}

// Histogram samples observations (e.g., actor run durations) and counts
// them in configurable buckets.
type Histogram interface {
	// Observe adds a single observation to the histogram.
	Observe(value float64)
}

// Timer measures the duration of an operation. Call ObserveDuration when
// the operation completes to record the elapsed time.
type Timer interface {
	// ObserveDuration records and returns the elapsed time since the timer
	// was created.
	ObserveDuration() time.Duration
}

// RuntimeMetrics is the instrumentation surface the actor runtime reports
// through. The nop implementation is used unless a backend is configured.
type RuntimeMetrics interface {
	// ActorStarted records that the named actor's task began running.
	ActorStarted(actor string)

	// ActorStopped records that the named actor's task finished.
	// clean is false when the actor escalated an error.
	ActorStopped(actor string, clean bool)

	// MailboxDepth records the current queue depth of the named actor.
	MailboxDepth(actor string, depth int)

	// ControlBroadcast records one shutdown broadcast to all actors.
	ControlBroadcast()

	// RunDuration times a full runtime run.
	RunDuration() Timer
}
