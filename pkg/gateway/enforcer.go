package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BrianCLong/govgate/pkg/audit"
	"github.com/BrianCLong/govgate/pkg/guard"
	"github.com/BrianCLong/govgate/pkg/policy"
	"github.com/BrianCLong/govgate/pkg/telemetry/logging"
	"github.com/BrianCLong/govgate/pkg/telemetry/metrics"
	"github.com/BrianCLong/govgate/pkg/tenant"
	"github.com/BrianCLong/govgate/pkg/verdict"
)

// ResourceTenantHeader names the tenant that owns the target resource
// when the route itself is not tenant-scoped.
const ResourceTenantHeader = "X-Resource-Tenant"

// ResourceEnvironmentHeader names the environment of the target
// resource.
const ResourceEnvironmentHeader = "X-Resource-Environment"

// UnknownTenant is the sentinel tenant id used on verdicts produced
// before tenant resolution succeeded, so decisions are still sealed,
// headed, and audited.
const UnknownTenant = "unknown"

// Enforcer runs the full governance pass for every request: resolve the
// tenant, apply the structural guard, consult the policy evaluator,
// seal a verdict, record audit evidence, and either deny or hand off to
// the downstream handler.
type Enforcer struct {
	resolver  *tenant.Resolver
	guard     *guard.Guard
	evaluator policy.Evaluator
	engine    *verdict.Engine
	emitter   *audit.Emitter
	collector *metrics.Collector

	policyTimeout time.Duration
	logger        *slog.Logger
}

// NewEnforcer wires the enforcement pipeline.
func NewEnforcer(
	resolver *tenant.Resolver,
	g *guard.Guard,
	evaluator policy.Evaluator,
	engine *verdict.Engine,
	emitter *audit.Emitter,
	collector *metrics.Collector,
	policyTimeout time.Duration,
) *Enforcer {
	return &Enforcer{
		resolver:      resolver,
		guard:         g,
		evaluator:     evaluator,
		engine:        engine,
		emitter:       emitter,
		collector:     collector,
		policyTimeout: policyTimeout,
		logger:        slog.Default().With("component", "gateway"),
	}
}

// Wrap returns the enforcement middleware around next. The downstream
// handler only runs for allow and degrade verdicts.
func (e *Enforcer) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := logging.GetRequestID(r.Context())
		if requestID == "" {
			requestID = uuid.New().String()
		}

		reqCtx, rerr := e.resolver.Resolve(r)
		if rerr != nil {
			e.denyUnresolved(w, r, requestID, rerr, start)
			return
		}

		gres := e.guard.Evaluate(guard.Request{
			Context:             reqCtx,
			ResourceTenant:      resourceTenant(r),
			ResourceEnvironment: resourceEnvironment(r),
			Route:               r.URL.Path,
			Verb:                guard.VerbForMethod(r.Method),
			RequiresElevation:   requiresElevation(r.URL.Path),
		})

		var eval *policy.Evaluation
		var perr error
		if gres.Allowed {
			eval, perr = e.evaluatePolicy(r.Context(), reqCtx, gres, r)
		}

		out, err := e.engine.Decide(verdict.Input{
			Context:       reqCtx,
			RequestID:     requestID,
			Method:        r.Method,
			Route:         r.URL.Path,
			Guard:         gres,
			Policy:        eval,
			PolicyErr:     perr,
			PolicyVersion: e.evaluator.Version(),
		})
		if err != nil {
			// Sealing only fails on a contract violation; surface it
			// as a plain 500 rather than inventing a verdict.
			e.logger.Error("verdict sealing failed", "error", err, "request_id", requestID)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		e.finish(w, r, next, out, reqCtx, requestID, start)
	})
}

// denyUnresolved seals and audits a deny for requests whose tenant
// could not be resolved. The verdict carries the sentinel tenant so the
// decision is still fully evidenced.
func (e *Enforcer) denyUnresolved(w http.ResponseWriter, r *http.Request, requestID string, rerr *tenant.ResolveError, start time.Time) {
	reqCtx := tenant.Context{
		TenantID:      UnknownTenant,
		Environment:   e.resolver.Environment(),
		PrivilegeTier: tenant.TierStandard,
	}

	out, err := e.engine.Decide(verdict.Input{
		Context:   reqCtx,
		RequestID: requestID,
		Method:    r.Method,
		Route:     r.URL.Path,
		Guard: guard.Result{
			Allowed:       false,
			Status:        rerr.Status,
			ReasonCode:    rerr.Code,
			EffectiveTier: tenant.TierStandard,
		},
		PolicyVersion: e.evaluator.Version(),
	})
	if err != nil {
		e.logger.Error("verdict sealing failed", "error", err, "request_id", requestID)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	e.finish(w, r, nil, out, reqCtx, requestID, start)
}

func (e *Enforcer) evaluatePolicy(ctx context.Context, reqCtx tenant.Context, gres guard.Result, r *http.Request) (*policy.Evaluation, error) {
	pctx, cancel := context.WithTimeout(ctx, e.policyTimeout)
	defer cancel()

	return e.evaluator.Evaluate(pctx, policy.Input{
		TenantID:      reqCtx.TenantID,
		Environment:   reqCtx.Environment,
		PrivilegeTier: gres.EffectiveTier,
		Verb:          string(guard.VerbForMethod(r.Method)),
		Route:         r.URL.Path,
		Purpose:       reqCtx.Purpose,
	})
}

// finish records evidence, emits headers and metrics, and routes the
// request. Audit evidence is written before the response is finalized;
// for deny and break-glass that write blocks inside the emitter.
func (e *Enforcer) finish(w http.ResponseWriter, r *http.Request, next http.Handler, out verdict.Outcome, reqCtx tenant.Context, requestID string, start time.Time) {
	v := out.Verdict

	e.emitter.RecordVerdict(v)

	e.collector.RecordDecision(string(v.Status()), v.PrimaryReason(), time.Since(start))
	if v.BreakGlass() {
		e.collector.RecordBreakGlass()
	}

	setVerdictHeaders(w, v)

	if v.Status() == verdict.StatusDeny {
		e.logger.Info("request denied",
			"request_id", requestID,
			"tenant", v.TenantID(),
			"reason", v.PrimaryReason(),
			"status", out.HTTPStatus,
		)
		writeDeny(w, out.HTTPStatus, v, requestID)
		return
	}

	if next == nil {
		// Unresolved-tenant path never proceeds.
		writeDeny(w, out.HTTPStatus, v, requestID)
		return
	}

	ctx := WithVerdict(r.Context(), v)
	ctx = WithTenant(ctx, reqCtx)
	ctx = logging.WithTenantID(ctx, reqCtx.TenantID)
	ctx = logging.WithVerdictID(ctx, v.ID())
	next.ServeHTTP(w, r.WithContext(ctx))
}

// resourceTenant extracts the tenant that owns the target resource:
// the X-Resource-Tenant header when present, otherwise the first path
// segment under /tenants/. Empty means the route is not tenant-scoped.
func resourceTenant(r *http.Request) string {
	if h := r.Header.Get(ResourceTenantHeader); h != "" {
		return h
	}
	const prefix = "/tenants/"
	path := r.URL.Path
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	rest := path[len(prefix):]
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

func resourceEnvironment(r *http.Request) tenant.Environment {
	h := r.Header.Get(ResourceEnvironmentHeader)
	if h == "" {
		return ""
	}
	return tenant.ParseEnvironment(h)
}

// requiresElevation marks routes that demand more than the standard
// tier. Administrative surfaces only.
func requiresElevation(path string) bool {
	return strings.HasPrefix(path, "/admin/")
}
