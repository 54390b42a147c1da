package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/BrianCLong/govgate/pkg/telemetry/metrics"
	"github.com/BrianCLong/govgate/pkg/verdict"
)

// Config contains configuration for the audit emitter.
type Config struct {
	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int

	// BlockingTimeout bounds the synchronous write performed for deny
	// and break-glass verdicts. Default: 300ms
	BlockingTimeout time.Duration

	// WriteTimeout bounds each async write. Default: 5s
	WriteTimeout time.Duration
}

// DefaultConfig returns the default emitter configuration.
func DefaultConfig() *Config {
	return &Config{
		AsyncBuffer:     1000,
		BlockingTimeout: 300 * time.Millisecond,
		WriteTimeout:    5 * time.Second,
	}
}

// Emitter persists audit records with a per-verdict-status write policy:
// deny and break-glass verdicts block until the record is durably
// written (or the bounded timeout fires), while allow and degrade
// verdicts are enqueued for a background worker.
//
// A failed blocking write never changes the verdict. It raises an
// AUDIT_WRITE_FAILED alert instead.
type Emitter struct {
	storage   Storage
	config    *Config
	alerter   *Alerter
	collector *metrics.Collector

	recordChan chan *Record
	wg         sync.WaitGroup
	done       chan struct{}
	closeOnce  sync.Once
	logger     *slog.Logger
}

// NewEmitter creates an emitter and starts its background worker.
func NewEmitter(storage Storage, config *Config, alerter *Alerter, collector *metrics.Collector) *Emitter {
	if config == nil {
		config = DefaultConfig()
	}

	e := &Emitter{
		storage:    storage,
		config:     config,
		alerter:    alerter,
		collector:  collector,
		recordChan: make(chan *Record, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "audit.emitter"),
	}

	e.wg.Add(1)
	go e.worker()

	e.logger.Info("audit emitter initialized",
		"async_buffer", config.AsyncBuffer,
		"blocking_timeout", config.BlockingTimeout,
	)

	return e
}

// RecordVerdict persists the audit record for a sealed verdict.
//
// Deny and break-glass verdicts block on the write. The write runs
// under its own deadline, detached from the caller's context, because
// evidence must still land when the client hangs up mid-response.
func (e *Emitter) RecordVerdict(v *verdict.Verdict) {
	rec := recordFromVerdict(v)

	if v.BreakGlass() {
		e.alerter.Raise(Alert{
			Code:      AlertBreakGlassUsed,
			Severity:  SeverityHigh,
			Message:   "break-glass invoked",
			VerdictID: v.ID(),
			TenantID:  v.TenantID(),
		})
	}

	if v.Status() == verdict.StatusDeny || v.BreakGlass() {
		e.writeBlocking(rec)
		return
	}
	e.enqueue(rec)
}

func recordFromVerdict(v *verdict.Verdict) *Record {
	sev := SeverityInfo
	if v.BreakGlass() {
		sev = SeverityHigh
	}
	ev := v.Evidence()
	return &Record{
		VerdictID:     v.ID(),
		RequestID:     ev.RequestID,
		TenantID:      v.TenantID(),
		Decision:      string(v.Status()),
		ReasonCodes:   v.ReasonCodes(),
		PolicyVersion: v.PolicyVersion(),
		Actor:         ev.Actor,
		Route:         ev.Route,
		Timestamp:     v.DecidedAt(),
		BreakGlass:    v.BreakGlass(),
		Severity:      sev,
	}
}

func (e *Emitter) writeBlocking(rec *Record) {
	// Deliberately not the request context: the write is logically
	// independent of the client connection.
	ctx, cancel := context.WithTimeout(context.Background(), e.config.BlockingTimeout)
	defer cancel()

	if err := e.storage.Store(ctx, rec); err != nil {
		e.collector.RecordAuditWrite("blocking", "error")
		e.logger.Error("blocking audit write failed",
			"verdict_id", rec.VerdictID,
			"tenant", rec.TenantID,
			"decision", rec.Decision,
			"error", err,
		)
		e.alerter.Raise(Alert{
			Code:      AlertAuditWriteFailed,
			Severity:  SeverityHigh,
			Message:   "blocking audit write failed; verdict stands, evidence lost",
			VerdictID: rec.VerdictID,
			TenantID:  rec.TenantID,
		})
		return
	}
	e.collector.RecordAuditWrite("blocking", "success")
}

func (e *Emitter) enqueue(rec *Record) {
	select {
	case e.recordChan <- rec:
	default:
		// Buffer full. Dropping an allow/degrade record is preferable
		// to stalling request handling, but it is still alert-worthy.
		e.collector.RecordAuditWrite("async", "dropped")
		e.logger.Error("audit record channel full, dropping record",
			"verdict_id", rec.VerdictID,
		)
		e.alerter.Raise(Alert{
			Code:      AlertAuditWriteFailed,
			Severity:  SeverityHigh,
			Message:   "async audit buffer full, record dropped",
			VerdictID: rec.VerdictID,
			TenantID:  rec.TenantID,
		})
	}
}

func (e *Emitter) worker() {
	defer e.wg.Done()

	for {
		select {
		case rec := <-e.recordChan:
			e.writeAsync(rec)
		case <-e.done:
			// Drain everything already enqueued before exiting.
			for {
				select {
				case rec := <-e.recordChan:
					e.writeAsync(rec)
				default:
					return
				}
			}
		}
	}
}

func (e *Emitter) writeAsync(rec *Record) {
	ctx, cancel := context.WithTimeout(context.Background(), e.config.WriteTimeout)
	defer cancel()

	if err := e.storage.Store(ctx, rec); err != nil {
		e.collector.RecordAuditWrite("async", "error")
		e.logger.Error("async audit write failed",
			"verdict_id", rec.VerdictID,
			"error", err,
		)
		return
	}
	e.collector.RecordAuditWrite("async", "success")
}

// Close stops the worker after draining pending records.
func (e *Emitter) Close() error {
	e.closeOnce.Do(func() {
		close(e.done)
	})
	e.wg.Wait()
	return nil
}
