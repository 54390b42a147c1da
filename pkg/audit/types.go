package audit

import (
	"context"
	"time"
)

// Severity classifies an audit record for downstream triage.
type Severity string

const (
	SeverityInfo Severity = "info"
	SeverityHigh Severity = "high"
)

// Record is one append-only audit entry, created when a verdict is
// sealed and never updated or deleted by the gateway. Retention is an
// operational concern handled by the pruner, not by request handling.
type Record struct {
	// VerdictID is the id of the sealed verdict this record evidences.
	VerdictID string `json:"verdict_id"`

	// RequestID correlates the record with the inbound request.
	RequestID string `json:"request_id"`

	// TenantID is the tenant the decision applied to.
	TenantID string `json:"tenant_id"`

	// Decision is the verdict status: allow, deny, or degrade.
	Decision string `json:"decision"`

	// ReasonCodes are the ordered reason codes from the verdict.
	ReasonCodes []string `json:"reason_codes"`

	// PolicyVersion is the ruleset the decision was made under.
	PolicyVersion string `json:"policy_version"`

	// Actor is the authenticated subject, when resolved.
	Actor string `json:"actor,omitempty"`

	// Route is the normalized request path.
	Route string `json:"route,omitempty"`

	// Timestamp is when the verdict was sealed.
	Timestamp time.Time `json:"timestamp"`

	// BreakGlass marks decisions made under a break-glass invocation,
	// denied attempts included. Always recorded with high severity.
	BreakGlass bool `json:"break_glass"`

	// Severity is info for routine decisions, high for break-glass
	// and other escalations.
	Severity Severity `json:"severity"`
}

// Query filters audit records.
type Query struct {
	// StartTime and EndTime bound the record timestamp, inclusive.
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	// TenantID filters by tenant.
	TenantID string `json:"tenant_id,omitempty"`

	// Decision filters by verdict status.
	Decision string `json:"decision,omitempty"`

	// BreakGlass filters break-glass records when set.
	BreakGlass *bool `json:"break_glass,omitempty"`

	// Limit and Offset paginate. Limit 0 means no limit.
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Storage is the interface audit backends implement. Implementations
// must be safe for concurrent use.
type Storage interface {
	// Store appends one record.
	Store(ctx context.Context, record *Record) error

	// Query returns records matching the filters, newest first.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of matching records.
	Count(ctx context.Context, query *Query) (int64, error)

	// DeleteOlderThan removes records with a timestamp before cutoff
	// and returns how many were removed. Retention use only.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases backend resources.
	Close() error
}
