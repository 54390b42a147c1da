package gateway

import (
	"context"

	"github.com/BrianCLong/govgate/pkg/tenant"
	"github.com/BrianCLong/govgate/pkg/verdict"
)

type contextKey string

const (
	verdictKey contextKey = "governance_verdict"
	tenantKey  contextKey = "tenant_context"
)

// WithVerdict attaches a sealed verdict to the context for downstream
// handlers.
func WithVerdict(ctx context.Context, v *verdict.Verdict) context.Context {
	return context.WithValue(ctx, verdictKey, v)
}

// GetVerdict returns the verdict attached to the context, or nil.
func GetVerdict(ctx context.Context) *verdict.Verdict {
	if v, ok := ctx.Value(verdictKey).(*verdict.Verdict); ok {
		return v
	}
	return nil
}

// WithTenant attaches the resolved tenant context.
func WithTenant(ctx context.Context, tc tenant.Context) context.Context {
	return context.WithValue(ctx, tenantKey, tc)
}

// GetTenant returns the resolved tenant context. ok is false when no
// tenant was resolved for this request.
func GetTenant(ctx context.Context) (tenant.Context, bool) {
	tc, ok := ctx.Value(tenantKey).(tenant.Context)
	return tc, ok
}
