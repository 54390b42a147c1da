package verdict

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status is the final disposition of one request.
type Status string

const (
	StatusAllow   Status = "allow"
	StatusDeny    Status = "deny"
	StatusDegrade Status = "degrade"
)

// Reason is one contributing factor of a verdict, in decision order.
type Reason struct {
	// Code is the stable machine-readable reason code.
	Code string `json:"code"`

	// Message is a human-readable explanation, safe to show callers.
	Message string `json:"message"`

	// Control identifies the policy control involved, when known.
	Control string `json:"control,omitempty"`
}

// Evidence ties a verdict back to the request that produced it.
type Evidence struct {
	// RequestID is the correlation id of the request. Required.
	RequestID string `json:"requestId"`

	// Actor is the authenticated subject, when resolved.
	Actor string `json:"actor,omitempty"`

	// Route is the normalized request path.
	Route string `json:"route,omitempty"`

	// InputsHash fingerprints the decision inputs.
	InputsHash string `json:"inputsHash,omitempty"`
}

// Verdict is the sealed outcome of one enforcement pass. All fields are
// set exactly once by Seal and never mutated afterwards; consumers read
// through the accessors. A verdict missing any mandatory field cannot
// be constructed.
type Verdict struct {
	id            string
	status        Status
	reasons       []Reason
	tenantID      string
	policyVersion string
	decidedAt     time.Time
	evidence      Evidence
	breakGlass    bool
}

// Seal constructs an immutable verdict, validating that every mandatory
// field is populated. An incomplete verdict is a contract violation,
// not a valid deny, so Seal fails loudly instead of papering over it.
func Seal(id string, status Status, reasons []Reason, tenantID, policyVersion string, decidedAt time.Time, evidence Evidence, breakGlass bool) (*Verdict, error) {
	switch {
	case id == "":
		return nil, fmt.Errorf("verdict missing id")
	case status != StatusAllow && status != StatusDeny && status != StatusDegrade:
		return nil, fmt.Errorf("verdict has invalid status %q", status)
	case tenantID == "":
		return nil, fmt.Errorf("verdict missing tenant id")
	case policyVersion == "":
		return nil, fmt.Errorf("verdict missing policy version")
	case decidedAt.IsZero():
		return nil, fmt.Errorf("verdict missing decision time")
	case evidence.RequestID == "":
		return nil, fmt.Errorf("verdict evidence missing request id")
	}

	return &Verdict{
		id:            id,
		status:        status,
		reasons:       append([]Reason(nil), reasons...),
		tenantID:      tenantID,
		policyVersion: policyVersion,
		decidedAt:     decidedAt,
		evidence:      evidence,
		breakGlass:    breakGlass,
	}, nil
}

func (v *Verdict) ID() string            { return v.id }
func (v *Verdict) Status() Status        { return v.status }
func (v *Verdict) TenantID() string      { return v.tenantID }
func (v *Verdict) PolicyVersion() string { return v.policyVersion }
func (v *Verdict) DecidedAt() time.Time  { return v.decidedAt }
func (v *Verdict) Evidence() Evidence    { return v.evidence }
func (v *Verdict) BreakGlass() bool      { return v.breakGlass }

// Reasons returns a copy of the ordered reason list.
func (v *Verdict) Reasons() []Reason {
	return append([]Reason(nil), v.reasons...)
}

// PrimaryReason returns the first reason code, or an empty string for a
// plain allow.
func (v *Verdict) PrimaryReason() string {
	if len(v.reasons) == 0 {
		return ""
	}
	return v.reasons[0].Code
}

// ReasonCodes returns the ordered reason codes.
func (v *Verdict) ReasonCodes() []string {
	codes := make([]string, len(v.reasons))
	for i, r := range v.reasons {
		codes[i] = r.Code
	}
	return codes
}

type verdictJSON struct {
	VerdictID     string    `json:"verdictId"`
	Status        Status    `json:"status"`
	Reasons       []Reason  `json:"reasons,omitempty"`
	TenantID      string    `json:"tenantId"`
	PolicyVersion string    `json:"policyVersion"`
	DecidedAt     time.Time `json:"decidedAt"`
	Evidence      Evidence  `json:"evidence"`
	BreakGlass    bool      `json:"breakGlass,omitempty"`
}

// MarshalJSON renders the sealed verdict for responses and audit
// bundles.
func (v *Verdict) MarshalJSON() ([]byte, error) {
	return json.Marshal(verdictJSON{
		VerdictID:     v.id,
		Status:        v.status,
		Reasons:       v.reasons,
		TenantID:      v.tenantID,
		PolicyVersion: v.policyVersion,
		DecidedAt:     v.decidedAt,
		Evidence:      v.evidence,
		BreakGlass:    v.breakGlass,
	})
}
