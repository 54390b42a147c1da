package guard

import (
	"log/slog"
	"net/http"

	"github.com/BrianCLong/govgate/pkg/killswitch"
	"github.com/BrianCLong/govgate/pkg/tenant"
)

// Guard enforces the structural rules that sit in front of policy
// evaluation: tenant isolation, environment binding, privilege tiers,
// and the operational kill switch.
//
// Rule order is fixed. Isolation and environment checks run before the
// kill switch so a cross-tenant probe is always reported as
// CROSS_TENANT, never masked by an unrelated operational state. Nothing
// bypasses isolation, break-glass included.
type Guard struct {
	store  *killswitch.Store
	logger *slog.Logger
}

// NewGuard creates a guard backed by the given kill-switch store.
func NewGuard(store *killswitch.Store) *Guard {
	return &Guard{
		store:  store,
		logger: slog.Default().With("component", "guard"),
	}
}

// Evaluate applies the structural enforcement rules to one request.
//
// Order:
//  1. tenant isolation (CROSS_TENANT, never bypassed)
//  2. environment binding (ENV_MISMATCH, never bypassed)
//  3. privilege tier (TIER_REQUIRED, plus least-privilege downgrade
//     when the route does not demand elevation)
//  4. kill switch (DENY_ALL, READ_ONLY, ROUTE_DENY; break-glass may
//     bypass these operational denials, and only these)
//
// An authorized break-glass invocation marks every result it touches,
// denied attempts included, so each use lands in the audit trail at
// high severity.
func (g *Guard) Evaluate(req Request) Result {
	req.Context.PrivilegeTier = effectiveTier(req)
	reqCtx := req.Context

	if req.ResourceTenant != "" && req.ResourceTenant != reqCtx.TenantID {
		g.logger.Warn("cross-tenant access denied",
			"tenant", reqCtx.TenantID,
			"resource_tenant", req.ResourceTenant,
			"route", req.Route,
		)
		return denied(reqCtx, http.StatusForbidden, ReasonCrossTenant)
	}

	if req.ResourceEnvironment != "" && req.ResourceEnvironment != reqCtx.Environment {
		g.logger.Warn("environment mismatch denied",
			"tenant", reqCtx.TenantID,
			"request_env", string(reqCtx.Environment),
			"resource_env", string(req.ResourceEnvironment),
		)
		return denied(reqCtx, http.StatusForbidden, ReasonEnvMismatch)
	}

	if req.RequiresElevation && reqCtx.PrivilegeTier == tenant.TierStandard {
		return denied(reqCtx, http.StatusForbidden, ReasonTierRequired)
	}

	return g.applyKillSwitch(req)
}

// effectiveTier applies least privilege. A tier above standard is only
// honored when the route declares a need for it, with one exception: an
// authorized break-glass override keeps its tier so the bypass can
// reach the kill-switch rules below.
func effectiveTier(req Request) tenant.PrivilegeTier {
	tier := req.Context.PrivilegeTier
	if req.RequiresElevation {
		return tier
	}
	if tier == tenant.TierBreakGlass && req.Context.BreakGlass {
		return tier
	}
	if tier == tenant.TierElevated || tier == tenant.TierBreakGlass {
		return tenant.TierStandard
	}
	return tier
}

func (g *Guard) applyKillSwitch(req Request) Result {
	reqCtx := req.Context
	eff := g.store.EffectiveMode(reqCtx.Environment, reqCtx.TenantID, req.Route)

	// Missing operational state in prod is indistinguishable from a
	// tampered deployment. Fail closed, and break-glass cannot help:
	// there is no trusted state to override.
	if eff.ConfigMissing {
		g.logger.Error("kill-switch state missing in prod, denying",
			"tenant", reqCtx.TenantID,
			"route", req.Route,
		)
		return denied(reqCtx, http.StatusInternalServerError, ReasonConfigMissing)
	}

	switch eff.Mode {
	case killswitch.ModeOff:
		return allowed(reqCtx)

	case killswitch.ModeDenyAll:
		if reqCtx.BreakGlass {
			return g.breakGlassOverride(req, ReasonKillSwitch)
		}
		return denied(reqCtx, http.StatusServiceUnavailable, ReasonKillSwitch)

	case killswitch.ModeReadOnly:
		if req.Verb == VerbRead {
			// Reads pass in read-only mode but carry a degrade
			// annotation so downstream treats them as best-effort.
			res := allowed(reqCtx)
			res.Degrade = true
			res.ReasonCode = ReasonReadOnly
			return res
		}
		if reqCtx.BreakGlass {
			return g.breakGlassOverride(req, ReasonReadOnly)
		}
		return denied(reqCtx, http.StatusMethodNotAllowed, ReasonReadOnly)

	case killswitch.ModeRouteDeny:
		if !eff.RouteMatched {
			return allowed(reqCtx)
		}
		if reqCtx.BreakGlass {
			return g.breakGlassOverride(req, ReasonRouteDeny)
		}
		return denied(reqCtx, http.StatusForbidden, ReasonRouteDeny)

	default:
		// Unknown mode from a future config revision. Deny.
		g.logger.Error("unknown kill-switch mode, denying",
			"mode", string(eff.Mode),
		)
		return denied(reqCtx, http.StatusServiceUnavailable, ReasonKillSwitch)
	}
}

// breakGlassOverride allows a request through an operational denial under
// an authorized break-glass tier. The original reason code is preserved on
// the result so the verdict and audit trail show what was overridden.
func (g *Guard) breakGlassOverride(req Request, reason string) Result {
	reqCtx := req.Context
	g.logger.Warn("break-glass override applied",
		"tenant", reqCtx.TenantID,
		"actor", reqCtx.Actor,
		"route", req.Route,
		"overridden_reason", reason,
	)
	return Result{
		Allowed:       true,
		ReasonCode:    reason,
		BreakGlass:    true,
		EffectiveTier: reqCtx.PrivilegeTier,
	}
}
