package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/BrianCLong/govgate/pkg/config"
)

// Kill-switch modes tracked by the mode gauge. Exactly one carries the value
// 1 at any time; "none" means no configuration snapshot is loaded.
var killSwitchModes = []string{"none", "OFF", "DENY_ALL", "READ_ONLY", "ROUTE_DENY"}

// Collector manages all Prometheus metrics for the enforcement gateway.
// It registers metric families for decisions, kill-switch state, audit
// writes, and operational alerts, and provides a unified recording interface
// to the packages on the hot path.
//
// Recording methods are safe for concurrent use and stay cheap: vectors are
// pre-registered and recording allocates nothing beyond label lookups.
type Collector struct {
	config   config.MetricsConfig
	registry *prometheus.Registry

	// Decision metrics
	decisionsTotal   *prometheus.CounterVec
	decisionDuration prometheus.Histogram
	breakGlassTotal  prometheus.Counter

	// Kill-switch metrics
	killSwitchMode *prometheus.GaugeVec
	refreshesTotal *prometheus.CounterVec

	// Audit metrics
	auditWritesTotal *prometheus.CounterVec
	alertsTotal      *prometheus.CounterVec
}

// NewCollector creates a metrics collector and registers all metric families
// with the provided registry. If registry is nil, a new registry is created.
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "govgate"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "gateway"
	}
	if len(cfg.DecisionDurationBuckets) == 0 {
		// The enforcement pass is CPU-bound except for blocking audit
		// writes, so latencies cluster well under 10ms with a tail for
		// deny-path audit I/O.
		cfg.DecisionDurationBuckets = []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0}
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		decisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "decisions_total",
				Help:      "Total enforcement decisions by verdict status and primary reason code",
			},
			[]string{"status", "reason"},
		),

		decisionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "decision_duration_seconds",
				Help:      "Duration of the full enforcement pass in seconds",
				Buckets:   cfg.DecisionDurationBuckets,
			},
		),

		breakGlassTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "break_glass_total",
				Help:      "Total break-glass bypasses honored",
			},
		),

		killSwitchMode: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "killswitch_mode",
				Help:      "Currently active global kill-switch mode (1 for the active mode, 0 otherwise)",
			},
			[]string{"mode"},
		),

		refreshesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "killswitch_refreshes_total",
				Help:      "Total kill-switch configuration refreshes by result",
			},
			[]string{"result"},
		),

		auditWritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "audit_writes_total",
				Help:      "Total audit record writes by mode (blocking, async) and result",
			},
			[]string{"mode", "result"},
		),

		alertsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "alerts_total",
				Help:      "Total operational alerts by severity and code",
			},
			[]string{"severity", "code"},
		),
	}

	registry.MustRegister(
		c.decisionsTotal,
		c.decisionDuration,
		c.breakGlassTotal,
		c.killSwitchMode,
		c.refreshesTotal,
		c.auditWritesTotal,
		c.alertsTotal,
	)

	return c
}

// RecordDecision records a completed enforcement decision.
func (c *Collector) RecordDecision(status, reason string, duration time.Duration) {
	if c == nil {
		return
	}
	if reason == "" {
		reason = "none"
	}
	c.decisionsTotal.WithLabelValues(status, reason).Inc()
	c.decisionDuration.Observe(duration.Seconds())
}

// RecordBreakGlass records an honored break-glass bypass.
func (c *Collector) RecordBreakGlass() {
	if c == nil {
		return
	}
	c.breakGlassTotal.Inc()
}

// SetKillSwitchMode sets the active global kill-switch mode gauge. Passing
// an empty mode marks the no-config state ("none").
func (c *Collector) SetKillSwitchMode(mode string) {
	if c == nil {
		return
	}
	if mode == "" {
		mode = "none"
	}
	for _, m := range killSwitchModes {
		val := 0.0
		if m == mode {
			val = 1.0
		}
		c.killSwitchMode.WithLabelValues(m).Set(val)
	}
}

// RecordConfigRefresh records a kill-switch configuration refresh attempt.
// Result is "success" or "failure".
func (c *Collector) RecordConfigRefresh(result string) {
	if c == nil {
		return
	}
	c.refreshesTotal.WithLabelValues(result).Inc()
}

// RecordAuditWrite records an audit storage write. Mode is "blocking" or
// "async"; result is "success", "error", or "dropped".
func (c *Collector) RecordAuditWrite(mode, result string) {
	if c == nil {
		return
	}
	c.auditWritesTotal.WithLabelValues(mode, result).Inc()
}

// RecordAlert records an operational alert.
func (c *Collector) RecordAlert(severity, code string) {
	if c == nil {
		return
	}
	c.alertsTotal.WithLabelValues(severity, code).Inc()
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
