package policy

import (
	"context"

	"github.com/BrianCLong/govgate/pkg/tenant"
)

// Recommendation is the outcome class a policy evaluation produces.
type Recommendation string

const (
	RecommendAllow   Recommendation = "allow"
	RecommendDeny    Recommendation = "deny"
	RecommendDegrade Recommendation = "degrade"
)

// Reason explains one contributing factor of a policy recommendation.
type Reason struct {
	// Code is the stable machine-readable reason code.
	Code string `json:"code" yaml:"code"`

	// Message is a human-readable explanation.
	Message string `json:"message" yaml:"message"`

	// Control is the policy control identifier that produced this
	// reason, when the evaluator exposes one.
	Control string `json:"control,omitempty" yaml:"control,omitempty"`
}

// Input is the triple handed to the policy evaluator for one request.
type Input struct {
	TenantID      string               `json:"tenantId"`
	Environment   tenant.Environment   `json:"environment"`
	PrivilegeTier tenant.PrivilegeTier `json:"privilegeTier"`
	Verb          string               `json:"verb"`
	Route         string               `json:"route"`
	Purpose       string               `json:"purpose"`
}

// Evaluation is a policy evaluator's answer for one input.
type Evaluation struct {
	// Recommendation is allow, deny, or degrade.
	Recommendation Recommendation

	// Reasons lists the contributing policy reasons in evaluator
	// order. May be empty for a plain allow.
	Reasons []Reason

	// RulesetVersion identifies the policy revision the evaluation
	// was produced under. Never empty.
	RulesetVersion string
}

// Evaluator produces policy recommendations. The gateway consumes the
// recommendation; it never implements policy logic itself.
//
// Evaluate must honor ctx cancellation. A non-nil error means the
// evaluator could not produce a recommendation at all, which the
// gateway treats as a fail-closed deny.
type Evaluator interface {
	Evaluate(ctx context.Context, input Input) (*Evaluation, error)

	// Version reports the last known ruleset version. Usable even when
	// the evaluator is currently unreachable.
	Version() string

	Close() error
}
