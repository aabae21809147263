package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"veritas-hq/meridian/pkg/config"
)

// Collector owns all Prometheus metrics for Meridian: decision
// evaluation, ledger appends, chain verification, and exports.
type Collector struct {
	config   config.MetricsConfig
	registry *prometheus.Registry

	// Decision metrics
	decisionsTotal     *prometheus.CounterVec
	evaluationDuration prometheus.Histogram

	// Ledger metrics
	appendsTotal   prometheus.Counter
	appendRetries  prometheus.Counter
	appendFailures prometheus.Counter
	headSequence   prometheus.Gauge

	// Verification metrics
	verificationRuns     *prometheus.CounterVec
	verificationFailures *prometheus.CounterVec

	// Export and policy metrics
	exportsTotal  *prometheus.CounterVec
	policyReloads *prometheus.CounterVec
}

// NewCollector creates a collector and registers all metrics with the
// given registry. If registry is nil, a new one is created.
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "meridian"
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		decisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "decisions_total",
				Help:      "Total number of decisions by outcome",
			},
			[]string{"outcome", "policy"},
		),

		evaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of policy evaluation in seconds",
				// Evaluation is in-memory; sub-millisecond buckets.
				Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
			},
		),

		appendsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "ledger_appends_total",
				Help:      "Total number of successful ledger appends",
			},
		),

		appendRetries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "ledger_append_retries_total",
				Help:      "Total number of append attempts retried after a storage failure",
			},
		),

		appendFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "ledger_append_failures_total",
				Help:      "Total number of appends that failed after all retries",
			},
		),

		headSequence: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "ledger_head_sequence",
				Help:      "Sequence number of the most recent ledger entry",
			},
		),

		verificationRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "verification_runs_total",
				Help:      "Total number of chain verification runs by result",
			},
			[]string{"result"},
		),

		verificationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "verification_failures_total",
				Help:      "Total number of entry verification failures by reason",
			},
			[]string{"reason"},
		),

		exportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "exports_total",
				Help:      "Total number of export packages built by format",
			},
			[]string{"format"},
		),

		policyReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "policy_reloads_total",
				Help:      "Total number of policy reload attempts by status",
			},
			[]string{"status"},
		),
	}

	registry.MustRegister(
		c.decisionsTotal,
		c.evaluationDuration,
		c.appendsTotal,
		c.appendRetries,
		c.appendFailures,
		c.headSequence,
		c.verificationRuns,
		c.verificationFailures,
		c.exportsTotal,
		c.policyReloads,
	)

	return c
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordDecision records a completed decision evaluation.
func (c *Collector) RecordDecision(outcome, policy string, evaluation time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.decisionsTotal.WithLabelValues(outcome, policy).Inc()
	c.evaluationDuration.Observe(evaluation.Seconds())
}

// RecordAppend records a successful ledger append at the given sequence.
func (c *Collector) RecordAppend(sequence uint64) {
	if !c.config.Enabled {
		return
	}
	c.appendsTotal.Inc()
	c.headSequence.Set(float64(sequence))
}

// RecordAppendRetry records a retried append attempt.
func (c *Collector) RecordAppendRetry() {
	if !c.config.Enabled {
		return
	}
	c.appendRetries.Inc()
}

// RecordAppendFailure records an append that exhausted its retries.
func (c *Collector) RecordAppendFailure() {
	if !c.config.Enabled {
		return
	}
	c.appendFailures.Inc()
}

// RecordVerification records a verification run. result is "pass" or
// "fail"; reasons lists the failure reasons encountered.
func (c *Collector) RecordVerification(result string, reasons []string) {
	if !c.config.Enabled {
		return
	}
	c.verificationRuns.WithLabelValues(result).Inc()
	for _, reason := range reasons {
		c.verificationFailures.WithLabelValues(reason).Inc()
	}
}

// RecordExport records a built export package.
func (c *Collector) RecordExport(format string) {
	if !c.config.Enabled {
		return
	}
	c.exportsTotal.WithLabelValues(format).Inc()
}

// RecordPolicyReload records a policy reload attempt. status is
// "success" or "error".
func (c *Collector) RecordPolicyReload(status string) {
	if !c.config.Enabled {
		return
	}
	c.policyReloads.WithLabelValues(status).Inc()
}
