package policy

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule is one entry in a static ruleset. Empty match fields are
// wildcards. Rules are evaluated in file order; the first match wins.
type Rule struct {
	// ID names the rule for reason reporting.
	ID string `yaml:"id"`

	// Tenant restricts the rule to one tenant when set.
	Tenant string `yaml:"tenant,omitempty"`

	// Route is a glob matched against the request path. A trailing
	// "/*" also matches deeper subpaths.
	Route string `yaml:"route,omitempty"`

	// Verb restricts the rule to "read" or "write" when set.
	Verb string `yaml:"verb,omitempty"`

	// Purpose restricts the rule to one declared purpose when set.
	Purpose string `yaml:"purpose,omitempty"`

	// Effect is allow, deny, or degrade.
	Effect Recommendation `yaml:"effect"`

	// Reason is reported when the rule matches.
	Reason Reason `yaml:"reason,omitempty"`
}

// Ruleset is the on-disk shape of a static policy file.
type Ruleset struct {
	// Version identifies this ruleset revision. Required.
	Version string `yaml:"version"`

	// DefaultEffect applies when no rule matches. Defaults to allow.
	DefaultEffect Recommendation `yaml:"default_effect,omitempty"`

	Rules []Rule `yaml:"rules"`
}

// StaticEvaluator evaluates requests against a yaml ruleset loaded at
// startup. It is the evaluator used when no external policy service is
// configured.
type StaticEvaluator struct {
	ruleset *Ruleset
	logger  *slog.Logger
}

// NewStaticEvaluator loads a ruleset from a yaml file.
func NewStaticEvaluator(rulesPath string) (*StaticEvaluator, error) {
	data, err := os.ReadFile(rulesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy rules: %w", err)
	}

	var rs Ruleset
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("failed to parse policy rules: %w", err)
	}
	if err := validateRuleset(&rs); err != nil {
		return nil, err
	}

	return &StaticEvaluator{
		ruleset: &rs,
		logger:  slog.Default().With("component", "policy.static"),
	}, nil
}

// NewStaticEvaluatorFromRuleset wraps an in-memory ruleset. Test and
// embedding use.
func NewStaticEvaluatorFromRuleset(rs *Ruleset) (*StaticEvaluator, error) {
	if err := validateRuleset(rs); err != nil {
		return nil, err
	}
	return &StaticEvaluator{
		ruleset: rs,
		logger:  slog.Default().With("component", "policy.static"),
	}, nil
}

func validateRuleset(rs *Ruleset) error {
	if rs.Version == "" {
		return fmt.Errorf("policy ruleset missing version")
	}
	if rs.DefaultEffect == "" {
		rs.DefaultEffect = RecommendAllow
	}
	if !validEffect(rs.DefaultEffect) {
		return fmt.Errorf("invalid default_effect %q", rs.DefaultEffect)
	}
	for i := range rs.Rules {
		r := &rs.Rules[i]
		if r.ID == "" {
			return fmt.Errorf("rule %d missing id", i)
		}
		if !validEffect(r.Effect) {
			return fmt.Errorf("rule %s: invalid effect %q", r.ID, r.Effect)
		}
		if r.Verb != "" && r.Verb != "read" && r.Verb != "write" {
			return fmt.Errorf("rule %s: invalid verb %q", r.ID, r.Verb)
		}
		if r.Route != "" {
			if _, err := path.Match(strings.TrimSuffix(r.Route, "/*"), ""); err != nil {
				return fmt.Errorf("rule %s: invalid route pattern: %w", r.ID, err)
			}
		}
	}
	return nil
}

func validEffect(r Recommendation) bool {
	switch r {
	case RecommendAllow, RecommendDeny, RecommendDegrade:
		return true
	}
	return false
}

// Evaluate walks the rules in order and returns the first match, or the
// ruleset default when nothing matches.
func (s *StaticEvaluator) Evaluate(ctx context.Context, input Input) (*Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewEvaluationError("static", err)
	}

	for i := range s.ruleset.Rules {
		r := &s.ruleset.Rules[i]
		if !ruleMatches(r, input) {
			continue
		}
		eval := &Evaluation{
			Recommendation: r.Effect,
			RulesetVersion: s.ruleset.Version,
		}
		reason := r.Reason
		if reason.Code == "" {
			reason.Code = defaultReasonCode(r.Effect)
		}
		if reason.Control == "" {
			reason.Control = r.ID
		}
		eval.Reasons = []Reason{reason}
		return eval, nil
	}

	return &Evaluation{
		Recommendation: s.ruleset.DefaultEffect,
		RulesetVersion: s.ruleset.Version,
	}, nil
}

func ruleMatches(r *Rule, input Input) bool {
	if r.Tenant != "" && r.Tenant != input.TenantID {
		return false
	}
	if r.Verb != "" && r.Verb != input.Verb {
		return false
	}
	if r.Purpose != "" && r.Purpose != input.Purpose {
		return false
	}
	if r.Route != "" && !routeMatches(r.Route, input.Route) {
		return false
	}
	return true
}

func routeMatches(pattern, route string) bool {
	if ok, err := path.Match(pattern, route); err == nil && ok {
		return true
	}
	if strings.HasSuffix(pattern, "/*") {
		return strings.HasPrefix(route, strings.TrimSuffix(pattern, "*"))
	}
	return false
}

func defaultReasonCode(effect Recommendation) string {
	switch effect {
	case RecommendDeny:
		return "POLICY_DENY"
	case RecommendDegrade:
		return "POLICY_DEGRADE"
	default:
		return "POLICY_ALLOW"
	}
}

// Version returns the loaded ruleset version.
func (s *StaticEvaluator) Version() string {
	return s.ruleset.Version
}

// Close is a no-op for the static evaluator.
func (s *StaticEvaluator) Close() error {
	return nil
}
