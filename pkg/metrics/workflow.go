package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Confirm outcomes recorded by WorkflowMetrics.IncConfirm.
const (
	OutcomeSubmitted  = "submitted"
	OutcomeEmptyBatch = "empty_batch"
	OutcomeBlocked    = "blocked"
	OutcomeFailed     = "failed"
)

// WorkflowMetrics records hold/consume workflow activity.
type WorkflowMetrics struct {
	remoteDuration *prometheus.HistogramVec
	remoteFailure  *prometheus.CounterVec
	transitions    *prometheus.CounterVec
	confirms       *prometheus.CounterVec
	active         prometheus.Gauge
}

// NewWorkflowMetrics registers the workflow metrics on the provided registerer.
func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	if reg == nil {
		return &WorkflowMetrics{}
	}
	remoteDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "workflow_remote_call_duration_seconds",
		Help:    "Duration of workflow calls to the system of record.",
		Buckets: prometheus.DefBuckets,
	}, []string{"call"})
	remoteFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workflow_remote_call_failure",
		Help: "Failed workflow calls to the system of record.",
	}, []string{"call"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workflow_transitions",
		Help: "Screen transitions per workflow mode.",
	}, []string{"mode", "screen"})
	confirms := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workflow_confirm",
		Help: "Confirm attempts by outcome.",
	}, []string{"mode", "outcome"})
	active := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "workflow_active",
		Help: "Workflows currently held in memory.",
	})
	reg.MustRegister(remoteDuration, remoteFailure, transitions, confirms, active)
	return &WorkflowMetrics{
		remoteDuration: remoteDuration,
		remoteFailure:  remoteFailure,
		transitions:    transitions,
		confirms:       confirms,
		active:         active,
	}
}

// ObserveRemoteCall records the duration of a remote call and counts failures.
func (w *WorkflowMetrics) ObserveRemoteCall(call string, duration time.Duration, err error) {
	if w == nil || w.remoteDuration == nil {
		return
	}
	call = normalizeLabel(call)
	w.remoteDuration.WithLabelValues(call).Observe(duration.Seconds())
	if err != nil {
		w.remoteFailure.WithLabelValues(call).Inc()
	}
}

func (w *WorkflowMetrics) IncTransition(mode, screen string) {
	if w == nil || w.transitions == nil {
		return
	}
	w.transitions.WithLabelValues(normalizeLabel(mode), normalizeLabel(screen)).Inc()
}

func (w *WorkflowMetrics) IncConfirm(mode, outcome string) {
	if w == nil || w.confirms == nil {
		return
	}
	w.confirms.WithLabelValues(normalizeLabel(mode), normalizeLabel(outcome)).Inc()
}

// SetActive reports the number of live workflows.
func (w *WorkflowMetrics) SetActive(n int) {
	if w == nil || w.active == nil {
		return
	}
	w.active.Set(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
