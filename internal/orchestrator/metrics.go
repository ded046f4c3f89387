package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Launch results recorded by the launches counter.
const (
	ResultStarted           = "started"
	ResultDegraded          = "degraded"
	ResultEngineUnavailable = "engine_unavailable"
	ResultImageNotFound     = "image_not_found"
	ResultSpawnFailed       = "spawn_failed"
	ResultAborted           = "aborted"
)

// Teardown reasons recorded by the teardowns counter.
const (
	ReasonDisconnect = "disconnect"
	ReasonExit       = "exit"
	ReasonShutdown   = "shutdown"
)

// Metrics are the lifecycle manager's Prometheus collectors.
type Metrics struct {
	ActiveSessions prometheus.Gauge
	Launches       *prometheus.CounterVec
	Teardowns      *prometheus.CounterVec
	ProbeFailures  prometheus.Counter
	LaunchDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered, which tests use.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dojo",
			Name:      "active_sessions",
			Help:      "Sessions currently registered with a running container.",
		}),
		// Labelled by resolved image rather than scenario id so client input
		// cannot grow the label set.
		Launches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dojo",
			Name:      "session_launches_total",
			Help:      "Session launch attempts by image and result.",
		}, []string{"image", "result"}),
		Teardowns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dojo",
			Name:      "session_teardowns_total",
			Help:      "Session teardowns by the trigger that won.",
		}, []string{"reason"}),
		ProbeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dojo",
			Name:      "engine_probe_failures_total",
			Help:      "Container engine availability checks that failed.",
		}),
		LaunchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dojo",
			Name:      "session_launch_duration_seconds",
			Help:      "Time from connection to a registered running container.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	if reg != nil {
		reg.MustRegister(m.ActiveSessions, m.Launches, m.Teardowns, m.ProbeFailures, m.LaunchDuration)
	}
	return m
}
