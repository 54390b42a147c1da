package audit

import (
	"log/slog"
	"time"

	"github.com/BrianCLong/govgate/pkg/telemetry/metrics"
)

// Alert codes raised by the audit pipeline.
const (
	// AlertAuditWriteFailed means a blocking audit write for a deny or
	// break-glass verdict did not complete. The verdict stands; this
	// alert is how operators learn evidence was lost.
	AlertAuditWriteFailed = "AUDIT_WRITE_FAILED"

	// AlertBreakGlassUsed is raised on every break-glass invocation,
	// whether or not the request was ultimately allowed.
	AlertBreakGlassUsed = "BREAK_GLASS_USED"
)

// Alert is one operational escalation.
type Alert struct {
	Code      string
	Severity  Severity
	Message   string
	VerdictID string
	TenantID  string
	Timestamp time.Time
}

// Sink receives alerts. Raise must not block request handling for long;
// sinks that talk to external systems should buffer internally.
type Sink interface {
	Raise(alert Alert)
}

// LogSink writes alerts to the structured log. The default sink.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink backed by the default logger.
func NewLogSink() *LogSink {
	return &LogSink{logger: slog.Default().With("component", "audit.alerts")}
}

func (s *LogSink) Raise(alert Alert) {
	s.logger.Error("operational alert",
		"code", alert.Code,
		"severity", string(alert.Severity),
		"message", alert.Message,
		"verdict_id", alert.VerdictID,
		"tenant", alert.TenantID,
	)
}

// Alerter fans alerts out to sinks and counts them in metrics.
type Alerter struct {
	sinks     []Sink
	collector *metrics.Collector
}

// NewAlerter creates an alerter. With no sinks it defaults to the log
// sink so alerts are never dropped silently.
func NewAlerter(collector *metrics.Collector, sinks ...Sink) *Alerter {
	if len(sinks) == 0 {
		sinks = []Sink{NewLogSink()}
	}
	return &Alerter{sinks: sinks, collector: collector}
}

// Raise delivers the alert to every sink.
func (a *Alerter) Raise(alert Alert) {
	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now().UTC()
	}
	a.collector.RecordAlert(string(alert.Severity), alert.Code)
	for _, s := range a.sinks {
		s.Raise(alert)
	}
}
