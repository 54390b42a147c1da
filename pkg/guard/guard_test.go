package guard

import (
	"context"
	"net/http"
	"testing"

	"github.com/BrianCLong/govgate/pkg/killswitch"
	"github.com/BrianCLong/govgate/pkg/tenant"
)

func storeWith(t *testing.T, cfg *killswitch.Config) *killswitch.Store {
	t.Helper()
	store := killswitch.NewStore()
	if cfg == nil {
		return store
	}
	if err := store.Refresh(context.Background(), killswitch.NewMemorySource(cfg)); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	return store
}

func prodCtx(tenantID string) tenant.Context {
	return tenant.Context{
		TenantID:      tenantID,
		Environment:   tenant.EnvProd,
		PrivilegeTier: tenant.TierStandard,
		Actor:         "svc-reports",
		Purpose:       "general_access",
	}
}

func TestEvaluate_CrossTenantDenied(t *testing.T) {
	g := NewGuard(storeWith(t, &killswitch.Config{Version: "v1", Mode: killswitch.ModeOff}))

	res := g.Evaluate(Request{
		Context:        prodCtx("tenant-alpha"),
		ResourceTenant: "tenant-beta",
		Route:          "/v1/reports",
		Verb:           VerbRead,
	})

	if res.Allowed {
		t.Fatal("cross-tenant access was allowed")
	}
	if res.Status != http.StatusForbidden || res.ReasonCode != ReasonCrossTenant {
		t.Errorf("got status=%d reason=%s, want 403 CROSS_TENANT", res.Status, res.ReasonCode)
	}
}

func TestEvaluate_CrossTenantNotBypassedByBreakGlass(t *testing.T) {
	g := NewGuard(storeWith(t, &killswitch.Config{Version: "v1", Mode: killswitch.ModeOff}))

	ctx := prodCtx("tenant-alpha")
	ctx.PrivilegeTier = tenant.TierBreakGlass
	ctx.BreakGlass = true

	res := g.Evaluate(Request{
		Context:        ctx,
		ResourceTenant: "tenant-beta",
		Route:          "/v1/reports",
		Verb:           VerbRead,
	})

	if res.Allowed {
		t.Fatal("break-glass must never cross a tenant boundary")
	}
	if res.ReasonCode != ReasonCrossTenant {
		t.Errorf("reason = %s, want CROSS_TENANT", res.ReasonCode)
	}
	if !res.BreakGlass {
		t.Error("denied break-glass attempt must still be marked break-glass")
	}
}

func TestEvaluate_BreakGlassMarkedRegardlessOfOutcome(t *testing.T) {
	bg := func() tenant.Context {
		ctx := prodCtx("tenant-alpha")
		ctx.PrivilegeTier = tenant.TierBreakGlass
		ctx.BreakGlass = true
		return ctx
	}

	// Switch engaged: the override applies and the result is marked.
	denyAll := NewGuard(storeWith(t, &killswitch.Config{Version: "v1", Mode: killswitch.ModeDenyAll}))
	res := denyAll.Evaluate(Request{Context: bg(), Route: "/v1/reports", Verb: VerbWrite})
	if !res.Allowed || !res.BreakGlass {
		t.Errorf("override: got %+v, want allowed and break-glass", res)
	}

	// Switch disengaged: nothing to override, but the invocation still
	// lands on the result so the use is audited.
	off := NewGuard(storeWith(t, &killswitch.Config{Version: "v1", Mode: killswitch.ModeOff}))
	res = off.Evaluate(Request{Context: bg(), Route: "/v1/reports", Verb: VerbWrite})
	if !res.Allowed || !res.BreakGlass {
		t.Errorf("switch off: got %+v, want allowed and break-glass", res)
	}

	// Environment mismatch: denied, and the attempt is still marked.
	req := Request{Context: bg(), ResourceEnvironment: tenant.EnvStaging, Route: "/v1/reports", Verb: VerbRead}
	res = off.Evaluate(req)
	if res.Allowed || res.ReasonCode != ReasonEnvMismatch {
		t.Fatalf("got %+v, want ENV_MISMATCH deny", res)
	}
	if !res.BreakGlass {
		t.Error("denied break-glass attempt must still be marked break-glass")
	}
}

func TestEvaluate_SameTenantAllowed(t *testing.T) {
	g := NewGuard(storeWith(t, &killswitch.Config{Version: "v1", Mode: killswitch.ModeOff}))

	res := g.Evaluate(Request{
		Context:        prodCtx("tenant-alpha"),
		ResourceTenant: "tenant-alpha",
		Route:          "/v1/reports",
		Verb:           VerbWrite,
	})
	if !res.Allowed {
		t.Errorf("same-tenant request denied: %+v", res)
	}
}

func TestEvaluate_EnvironmentMismatch(t *testing.T) {
	g := NewGuard(storeWith(t, &killswitch.Config{Version: "v1", Mode: killswitch.ModeOff}))

	res := g.Evaluate(Request{
		Context:             prodCtx("tenant-alpha"),
		ResourceEnvironment: tenant.EnvStaging,
		Route:               "/v1/reports",
		Verb:                VerbRead,
	})

	if res.Allowed || res.Status != http.StatusForbidden || res.ReasonCode != ReasonEnvMismatch {
		t.Errorf("got %+v, want 403 ENV_MISMATCH", res)
	}
}

func TestEvaluate_ElevationRequired(t *testing.T) {
	g := NewGuard(storeWith(t, &killswitch.Config{Version: "v1", Mode: killswitch.ModeOff}))

	req := Request{
		Context:           prodCtx("tenant-alpha"),
		Route:             "/v1/admin/audit",
		Verb:              VerbRead,
		RequiresElevation: true,
	}

	if res := g.Evaluate(req); res.Allowed {
		t.Error("standard tier passed an elevation-required route")
	}

	req.Context.PrivilegeTier = tenant.TierElevated
	if res := g.Evaluate(req); !res.Allowed {
		t.Errorf("elevated tier denied: %+v", res)
	}
}

func TestEvaluate_ConfigMissingFailsClosed(t *testing.T) {
	g := NewGuard(storeWith(t, nil))

	res := g.Evaluate(Request{
		Context: prodCtx("tenant-alpha"),
		Route:   "/v1/reports",
		Verb:    VerbRead,
	})
	if res.Allowed || res.Status != http.StatusInternalServerError || res.ReasonCode != ReasonConfigMissing {
		t.Errorf("got %+v, want 500 CONFIG_MISSING", res)
	}

	// Break-glass cannot substitute for missing operational state.
	ctx := prodCtx("tenant-alpha")
	ctx.PrivilegeTier = tenant.TierBreakGlass
	ctx.BreakGlass = true
	res = g.Evaluate(Request{Context: ctx, Route: "/v1/reports", Verb: VerbRead})
	if res.Allowed || res.ReasonCode != ReasonConfigMissing {
		t.Errorf("break-glass bypassed CONFIG_MISSING: %+v", res)
	}
}

func TestEvaluate_ConfigMissingOutsideProdAllows(t *testing.T) {
	g := NewGuard(storeWith(t, nil))

	ctx := prodCtx("tenant-alpha")
	ctx.Environment = tenant.EnvStaging
	res := g.Evaluate(Request{Context: ctx, Route: "/v1/reports", Verb: VerbWrite})
	if !res.Allowed {
		t.Errorf("staging without kill-switch state should pass: %+v", res)
	}
}

func TestEvaluate_DenyAll(t *testing.T) {
	g := NewGuard(storeWith(t, &killswitch.Config{Version: "v1", Mode: killswitch.ModeDenyAll}))

	res := g.Evaluate(Request{Context: prodCtx("tenant-alpha"), Route: "/v1/reports", Verb: VerbRead})
	if res.Allowed || res.Status != http.StatusServiceUnavailable || res.ReasonCode != ReasonKillSwitch {
		t.Errorf("got %+v, want 503 KILL_SWITCH", res)
	}
}

func TestEvaluate_DenyAllBreakGlassOverride(t *testing.T) {
	g := NewGuard(storeWith(t, &killswitch.Config{Version: "v1", Mode: killswitch.ModeDenyAll}))

	ctx := prodCtx("tenant-alpha")
	ctx.PrivilegeTier = tenant.TierBreakGlass
	ctx.BreakGlass = true

	res := g.Evaluate(Request{Context: ctx, Route: "/v1/reports", Verb: VerbWrite})
	if !res.Allowed {
		t.Fatalf("authorized break-glass should override DENY_ALL: %+v", res)
	}
	if !res.BreakGlass {
		t.Error("result should be marked break-glass")
	}
	if res.ReasonCode != ReasonKillSwitch {
		t.Errorf("overridden reason = %s, want KILL_SWITCH preserved", res.ReasonCode)
	}
}

func TestEvaluate_ReadOnly(t *testing.T) {
	g := NewGuard(storeWith(t, &killswitch.Config{Version: "v1", Mode: killswitch.ModeReadOnly}))

	read := g.Evaluate(Request{Context: prodCtx("tenant-alpha"), Route: "/v1/reports", Verb: VerbRead})
	if !read.Allowed {
		t.Fatalf("read denied under READ_ONLY: %+v", read)
	}
	if !read.Degrade || read.ReasonCode != ReasonReadOnly {
		t.Errorf("read should carry a degrade annotation, got %+v", read)
	}

	write := g.Evaluate(Request{Context: prodCtx("tenant-alpha"), Route: "/v1/reports", Verb: VerbWrite})
	if write.Allowed || write.Status != http.StatusMethodNotAllowed || write.ReasonCode != ReasonReadOnly {
		t.Errorf("got %+v, want 405 READ_ONLY", write)
	}
}

func TestEvaluate_RouteDeny(t *testing.T) {
	g := NewGuard(storeWith(t, &killswitch.Config{
		Version:       "v1",
		Mode:          killswitch.ModeRouteDeny,
		RoutePatterns: []string{"/v1/exports/*"},
	}))

	hit := g.Evaluate(Request{Context: prodCtx("tenant-alpha"), Route: "/v1/exports/full", Verb: VerbRead})
	if hit.Allowed || hit.Status != http.StatusForbidden || hit.ReasonCode != ReasonRouteDeny {
		t.Errorf("got %+v, want 403 ROUTE_DENY", hit)
	}

	miss := g.Evaluate(Request{Context: prodCtx("tenant-alpha"), Route: "/v1/reports", Verb: VerbRead})
	if !miss.Allowed {
		t.Errorf("non-matching route denied: %+v", miss)
	}
}

func TestEvaluate_TenantOverrideDeniesOneTenant(t *testing.T) {
	g := NewGuard(storeWith(t, &killswitch.Config{
		Version: "v1",
		Mode:    killswitch.ModeOff,
		TenantOverrides: map[string]killswitch.Mode{
			"tenant-beta": killswitch.ModeDenyAll,
		},
	}))

	if res := g.Evaluate(Request{Context: prodCtx("tenant-alpha"), Route: "/x", Verb: VerbRead}); !res.Allowed {
		t.Errorf("tenant-alpha denied: %+v", res)
	}
	if res := g.Evaluate(Request{Context: prodCtx("tenant-beta"), Route: "/x", Verb: VerbRead}); res.Allowed {
		t.Error("tenant-beta override not applied")
	}
}

func TestEvaluate_IsolationBeforeKillSwitch(t *testing.T) {
	// Even with DENY_ALL active, a cross-tenant probe must be reported
	// as CROSS_TENANT so the audit trail reflects the real violation.
	g := NewGuard(storeWith(t, &killswitch.Config{Version: "v1", Mode: killswitch.ModeDenyAll}))

	res := g.Evaluate(Request{
		Context:        prodCtx("tenant-alpha"),
		ResourceTenant: "tenant-beta",
		Route:          "/v1/reports",
		Verb:           VerbRead,
	})
	if res.ReasonCode != ReasonCrossTenant {
		t.Errorf("reason = %s, want CROSS_TENANT ahead of KILL_SWITCH", res.ReasonCode)
	}
}

func TestEvaluate_LeastPrivilegeDowngrade(t *testing.T) {
	g := NewGuard(storeWith(t, &killswitch.Config{Version: "v1", Mode: killswitch.ModeOff}))

	// Elevated tier on a route that does not need it runs as standard.
	ctx := prodCtx("tenant-alpha")
	ctx.PrivilegeTier = tenant.TierElevated
	res := g.Evaluate(Request{Context: ctx, Route: "/v1/reports", Verb: VerbRead})
	if !res.Allowed {
		t.Fatalf("denied: %+v", res)
	}
	if res.EffectiveTier != tenant.TierStandard {
		t.Errorf("effective tier = %s, want standard", res.EffectiveTier)
	}

	// Break-glass tier without an active override downgrades too.
	ctx.PrivilegeTier = tenant.TierBreakGlass
	ctx.BreakGlass = false
	res = g.Evaluate(Request{Context: ctx, Route: "/v1/reports", Verb: VerbRead})
	if res.EffectiveTier != tenant.TierStandard {
		t.Errorf("effective tier = %s, want standard", res.EffectiveTier)
	}

	// With an active override the tier is kept.
	ctx.BreakGlass = true
	res = g.Evaluate(Request{Context: ctx, Route: "/v1/reports", Verb: VerbRead})
	if res.EffectiveTier != tenant.TierBreakGlass {
		t.Errorf("effective tier = %s, want break-glass", res.EffectiveTier)
	}
}

func TestVerbForMethod(t *testing.T) {
	tests := []struct {
		method string
		want   Verb
	}{
		{http.MethodGet, VerbRead},
		{http.MethodHead, VerbRead},
		{http.MethodOptions, VerbRead},
		{http.MethodPost, VerbWrite},
		{http.MethodPut, VerbWrite},
		{http.MethodPatch, VerbWrite},
		{http.MethodDelete, VerbWrite},
	}
	for _, tt := range tests {
		if got := VerbForMethod(tt.method); got != tt.want {
			t.Errorf("VerbForMethod(%s) = %s, want %s", tt.method, got, tt.want)
		}
	}
}
