package verdict

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/BrianCLong/govgate/pkg/guard"
	"github.com/BrianCLong/govgate/pkg/policy"
	"github.com/BrianCLong/govgate/pkg/tenant"
)

// ReasonPolicyError marks a failure to reach or decode the policy
// evaluator. Distinct from POLICY_DENY so operators can tell an
// intentional denial from an outage. Always fail-closed.
const ReasonPolicyError = "POLICY_ERROR"

// reasonMessages maps stable reason codes to caller-safe text.
var reasonMessages = map[string]string{
	guard.ReasonCrossTenant:   "access to another tenant's resources is not permitted",
	guard.ReasonEnvMismatch:   "request environment does not match the resource environment",
	guard.ReasonTierRequired:  "this operation requires an elevated privilege tier",
	guard.ReasonKillSwitch:    "an operational kill switch is active",
	guard.ReasonReadOnly:      "the system is in read-only mode",
	guard.ReasonRouteDeny:     "this route is currently disabled",
	guard.ReasonConfigMissing: "governance configuration is unavailable",
	ReasonPolicyError:         "policy evaluation is unavailable",
}

// Input carries everything the engine needs to seal a verdict for one
// request.
type Input struct {
	// Context is the resolved caller identity.
	Context tenant.Context

	// RequestID correlates the verdict with the request.
	RequestID string

	// Method and Route identify the operation for evidence hashing.
	Method string
	Route  string

	// Guard is the structural enforcement outcome.
	Guard guard.Result

	// Policy is the evaluator's recommendation. Nil when the guard
	// short-circuited before policy ran, or when evaluation failed.
	Policy *policy.Evaluation

	// PolicyErr is set when the evaluator could not produce a
	// recommendation. Mutually exclusive with Policy.
	PolicyErr error

	// PolicyVersion is the evaluator's last known ruleset version,
	// used when Policy itself is absent.
	PolicyVersion string
}

// Outcome pairs the sealed verdict with the HTTP status the gateway
// must return.
type Outcome struct {
	Verdict    *Verdict
	HTTPStatus int
}

// Engine assembles final governance verdicts from guard results and
// policy recommendations.
type Engine struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewEngine creates a verdict engine.
func NewEngine() *Engine {
	return &Engine{
		logger: slog.Default().With("component", "verdict"),
		now:    time.Now,
	}
}

// Decide folds the guard result and policy recommendation into a single
// sealed verdict.
//
// Reason ordering is stable: guard reasons come first, policy reasons
// after, each in their producer's order. Any ambiguity between deny and
// error resolves to deny.
func (e *Engine) Decide(in Input) (Outcome, error) {
	status, httpStatus, reasons := e.resolve(in)

	ev := Evidence{
		RequestID:  in.RequestID,
		Actor:      in.Context.Actor,
		Route:      in.Route,
		InputsHash: InputsHash(in.Method, in.Route, in.Context.TenantID, in.Context.Purpose),
	}

	v, err := Seal(
		uuid.New().String(),
		status,
		reasons,
		in.Context.TenantID,
		e.policyVersion(in),
		e.now().UTC(),
		ev,
		in.Guard.BreakGlass,
	)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to seal verdict: %w", err)
	}

	return Outcome{Verdict: v, HTTPStatus: httpStatus}, nil
}

func (e *Engine) resolve(in Input) (Status, int, []Reason) {
	var reasons []Reason

	if !in.Guard.Allowed {
		reasons = append(reasons, guardReason(in.Guard.ReasonCode))
		reasons = append(reasons, policyDenyReasons(in.Policy)...)
		return StatusDeny, in.Guard.Status, reasons
	}

	// An overridden denial keeps its reason on the record even though
	// the request proceeds.
	if in.Guard.BreakGlass && in.Guard.ReasonCode != "" {
		reasons = append(reasons, guardReason(in.Guard.ReasonCode))
	}

	if in.PolicyErr != nil {
		e.logger.Error("policy evaluation failed, denying",
			"tenant", in.Context.TenantID,
			"route", in.Route,
			"error", in.PolicyErr,
		)
		reasons = append(reasons, Reason{
			Code:    ReasonPolicyError,
			Message: reasonMessages[ReasonPolicyError],
		})
		return StatusDeny, http.StatusServiceUnavailable, reasons
	}

	if in.Policy != nil {
		switch in.Policy.Recommendation {
		case policy.RecommendDeny:
			if in.Guard.BreakGlass {
				// The override covers policy denials too; keep
				// the reasons for the audit trail.
				reasons = append(reasons, policyReasons(in.Policy, "POLICY_DENY")...)
				return e.passStatus(in, reasons)
			}
			reasons = append(reasons, policyReasons(in.Policy, "POLICY_DENY")...)
			return StatusDeny, http.StatusForbidden, reasons

		case policy.RecommendDegrade:
			reasons = append(reasons, policyReasons(in.Policy, "POLICY_DEGRADE")...)
			return StatusDegrade, http.StatusOK, reasons
		}
	}

	return e.passStatus(in, reasons)
}

func (e *Engine) passStatus(in Input, reasons []Reason) (Status, int, []Reason) {
	if in.Guard.Degrade {
		if len(reasons) == 0 {
			reasons = append(reasons, guardReason(in.Guard.ReasonCode))
		}
		return StatusDegrade, http.StatusOK, reasons
	}
	return StatusAllow, http.StatusOK, reasons
}

func (e *Engine) policyVersion(in Input) string {
	if in.Policy != nil && in.Policy.RulesetVersion != "" {
		return in.Policy.RulesetVersion
	}
	return in.PolicyVersion
}

func guardReason(code string) Reason {
	msg, ok := reasonMessages[code]
	if !ok {
		msg = "request denied"
	}
	return Reason{Code: code, Message: msg}
}

func policyDenyReasons(eval *policy.Evaluation) []Reason {
	if eval == nil || eval.Recommendation != policy.RecommendDeny {
		return nil
	}
	return policyReasons(eval, "POLICY_DENY")
}

func policyReasons(eval *policy.Evaluation, fallbackCode string) []Reason {
	if len(eval.Reasons) == 0 {
		msg := "denied by policy"
		if fallbackCode == "POLICY_DEGRADE" {
			msg = "degraded by policy"
		}
		return []Reason{{Code: fallbackCode, Message: msg}}
	}
	out := make([]Reason, len(eval.Reasons))
	for i, r := range eval.Reasons {
		out[i] = Reason{Code: r.Code, Message: r.Message, Control: r.Control}
	}
	return out
}

// InputsHash fingerprints the decision inputs so evidence can be
// correlated without retaining request bodies.
func InputsHash(method, route, tenantID, purpose string) string {
	h := sha256.Sum256([]byte(method + "|" + route + "|" + tenantID + "|" + purpose))
	return hex.EncodeToString(h[:])
}
