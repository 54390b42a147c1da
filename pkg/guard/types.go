package guard

import (
	"net/http"

	"github.com/BrianCLong/govgate/pkg/tenant"
)

// Verb classifies a request by the kind of side effect it can have on
// governed resources.
type Verb string

const (
	// VerbRead covers requests with no side effects.
	VerbRead Verb = "read"
	// VerbWrite covers requests that create or modify resources.
	VerbWrite Verb = "write"
)

// VerbForMethod maps an HTTP method onto the enforcement verb. Safe
// methods are reads; everything else mutates.
func VerbForMethod(method string) Verb {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return VerbRead
	default:
		return VerbWrite
	}
}

// Reason codes produced by guard evaluation. These flow unchanged into
// verdicts, response headers, and audit records.
const (
	ReasonCrossTenant   = "CROSS_TENANT"
	ReasonEnvMismatch   = "ENV_MISMATCH"
	ReasonTierRequired  = "TIER_REQUIRED"
	ReasonKillSwitch    = "KILL_SWITCH"
	ReasonReadOnly      = "READ_ONLY"
	ReasonRouteDeny     = "ROUTE_DENY"
	ReasonConfigMissing = "CONFIG_MISSING"
)

// Request carries everything guard evaluation needs about one inbound
// call: who is asking (the resolved tenant context) and what they are
// asking about.
type Request struct {
	// Context is the resolved caller identity.
	Context tenant.Context

	// ResourceTenant is the tenant that owns the target resource.
	// Empty means the route is not tenant-scoped and isolation does
	// not apply.
	ResourceTenant string

	// ResourceEnvironment is the environment the target resource
	// lives in. Empty means unscoped.
	ResourceEnvironment tenant.Environment

	// Route is the normalized request path used for route-scoped
	// kill switches.
	Route string

	// Verb is the side-effect classification of the request.
	Verb Verb

	// RequiresElevation marks routes that demand an elevated or
	// break-glass privilege tier.
	RequiresElevation bool
}

// Result is the outcome of guard evaluation. A denied result carries the
// HTTP status and reason code the gateway must surface; an allowed result
// may still demand degraded handling.
type Result struct {
	// Allowed reports whether the request may proceed to policy
	// evaluation.
	Allowed bool

	// Status is the HTTP status to return when Allowed is false.
	Status int

	// ReasonCode identifies why the request was denied, or why it is
	// degraded.
	ReasonCode string

	// Degrade means the request proceeds but downstream must treat it
	// as best-effort with no side effects. Set for reads admitted
	// under a READ_ONLY switch.
	Degrade bool

	// BreakGlass records that an authorized break-glass invocation was
	// in effect for this decision, whatever the outcome. Denied
	// attempts carry it too, so the audit trail shows every use at
	// high severity with a blocking write.
	BreakGlass bool

	// EffectiveTier is the privilege tier the decision was made
	// under.
	EffectiveTier tenant.PrivilegeTier
}

func allowed(reqCtx tenant.Context) Result {
	return Result{
		Allowed:       true,
		BreakGlass:    reqCtx.BreakGlass,
		EffectiveTier: reqCtx.PrivilegeTier,
	}
}

func denied(reqCtx tenant.Context, status int, reason string) Result {
	return Result{
		Allowed:       false,
		Status:        status,
		ReasonCode:    reason,
		BreakGlass:    reqCtx.BreakGlass,
		EffectiveTier: reqCtx.PrivilegeTier,
	}
}
