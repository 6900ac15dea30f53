package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for the reconciliation pipeline.
type Metrics struct {
	config MetricsConfig

	// Planning metrics
	plansComputed *prometheus.CounterVec
	planDuration  prometheus.Histogram
	planActions   *prometheus.CounterVec
	diffEntries   *prometheus.CounterVec
	cycleErrors   prometheus.Counter

	// Apply metrics
	actionsApplied *prometheus.CounterVec
	applyDuration  *prometheus.HistogramVec
	runsCompleted  *prometheus.CounterVec

	// Policy metrics
	plansDenied      prometheus.Counter
	policyViolations *prometheus.CounterVec

	// Error metrics
	errorsByClass *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
// When disabled, every Record method is a no-op.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		plansComputed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plans_computed_total",
				Help:      "Total number of plans computed",
			},
			[]string{"outcome"},
		),
		planDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "plan_duration_seconds",
				Help:      "Duration of plan computation in seconds",
				Buckets:   buckets,
			},
		),
		planActions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plan_actions_total",
				Help:      "Total number of planned actions by kind",
			},
			[]string{"kind"},
		),
		diffEntries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "diff_entries_total",
				Help:      "Total number of diff entries by category",
			},
			[]string{"category"},
		),
		cycleErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cycle_errors_total",
				Help:      "Total number of plans aborted by a dependency cycle",
			},
		),

		actionsApplied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actions_applied_total",
				Help:      "Total number of applied actions by kind and status",
			},
			[]string{"kind", "status"},
		),
		applyDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "action_apply_duration_seconds",
				Help:      "Duration of action application in seconds",
				Buckets:   buckets,
			},
			[]string{"kind"},
		),
		runsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_completed_total",
				Help:      "Total number of plan applications by status",
			},
			[]string{"status"},
		),

		plansDenied: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plans_denied_total",
				Help:      "Total number of plans vetoed by policy",
			},
		),
		policyViolations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "policy_violations_total",
				Help:      "Total number of policy violations by policy and severity",
			},
			[]string{"policy", "severity"},
		),

		errorsByClass: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_by_class_total",
				Help:      "Total number of errors by error class",
			},
			[]string{"class"},
		),
	}

	registry.MustRegister(
		m.plansComputed,
		m.planDuration,
		m.planActions,
		m.diffEntries,
		m.cycleErrors,
		m.actionsApplied,
		m.applyDuration,
		m.runsCompleted,
		m.plansDenied,
		m.policyViolations,
		m.errorsByClass,
	)

	return m, nil
}

// RecordPlanComputed records a completed planning invocation.
func (m *Metrics) RecordPlanComputed(outcome string, duration time.Duration) {
	if m.plansComputed == nil {
		return
	}
	m.plansComputed.WithLabelValues(outcome).Inc()
	m.planDuration.Observe(duration.Seconds())
}

// RecordPlannedAction counts one planned action by kind.
func (m *Metrics) RecordPlannedAction(kind string) {
	if m.planActions == nil {
		return
	}
	m.planActions.WithLabelValues(kind).Inc()
}

// RecordDiffEntry counts one diff entry by category.
func (m *Metrics) RecordDiffEntry(category string) {
	if m.diffEntries == nil {
		return
	}
	m.diffEntries.WithLabelValues(category).Inc()
}

// RecordCycleError counts a plan aborted by a dependency cycle.
func (m *Metrics) RecordCycleError() {
	if m.cycleErrors == nil {
		return
	}
	m.cycleErrors.Inc()
}

// RecordActionApplied records one applied action with its outcome.
func (m *Metrics) RecordActionApplied(kind, status string, duration time.Duration) {
	if m.actionsApplied == nil {
		return
	}
	m.actionsApplied.WithLabelValues(kind, status).Inc()
	m.applyDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordRunCompleted records a completed plan application.
func (m *Metrics) RecordRunCompleted(status string) {
	if m.runsCompleted == nil {
		return
	}
	m.runsCompleted.WithLabelValues(status).Inc()
}

// RecordPlanDenied counts a plan vetoed by policy.
func (m *Metrics) RecordPlanDenied() {
	if m.plansDenied == nil {
		return
	}
	m.plansDenied.Inc()
}

// RecordPolicyViolation counts one policy violation.
func (m *Metrics) RecordPolicyViolation(policy, severity string) {
	if m.policyViolations == nil {
		return
	}
	m.policyViolations.WithLabelValues(policy, severity).Inc()
}

// RecordError records an error by class.
func (m *Metrics) RecordError(errorClass string) {
	if m.errorsByClass == nil {
		return
	}
	m.errorsByClass.WithLabelValues(errorClass).Inc()
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// StartMetricsServer starts an HTTP server to expose metrics.
func (m *Metrics) StartMetricsServer() error {
	if !m.config.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(m.config.Path, m.Handler())

	server := &http.Server{
		Addr:              m.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server error: %v\n", err)
		}
	}()

	return nil
}
