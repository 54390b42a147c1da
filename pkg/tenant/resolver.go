package tenant

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/BrianCLong/govgate/pkg/config"
)

// Request headers consumed during resolution.
const (
	// TenantHeader carries an explicit tenant identifier. It is
	// cross-checked against the principal claim when both are present and
	// never trusted alone in prod.
	TenantHeader = "X-Tenant-Id"

	// PurposeHeader declares the access purpose for this request.
	PurposeHeader = "X-Purpose"

	// BreakGlassHeader requests an emergency bypass. Only honored for
	// pre-authorized break-glass tier principals.
	BreakGlassHeader = "X-Break-Glass"
)

// Reason codes reported by the resolver.
const (
	// ReasonTenantRequired means no source yielded a tenant identifier.
	ReasonTenantRequired = "TENANT_REQUIRED"

	// ReasonTenantMismatch means the tenant header and the principal claim
	// disagree.
	ReasonTenantMismatch = "TENANT_MISMATCH"

	// ReasonPurposeRequired means strict mode is enabled and the request
	// carried no X-Purpose header.
	ReasonPurposeRequired = "PURPOSE_REQUIRED"
)

// ResolveError reports a failed tenant resolution with the HTTP status and
// stable reason code the gateway surfaces to the caller.
type ResolveError struct {
	// Code is the stable reason code (e.g., TENANT_REQUIRED).
	Code string

	// Status is the HTTP status the gateway responds with.
	Status int

	// Message is a human-readable explanation, safe to return to callers.
	Message string
}

// Error implements the error interface.
func (e *ResolveError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Resolver extracts and validates a tenant Context from inbound request
// metadata. Resolution has no side effects: it reads the request and the
// principal registry and returns either a fully populated Context or a
// ResolveError.
type Resolver struct {
	registry *Registry
	cfg      config.ResolverConfig
	env      Environment
	logger   *slog.Logger
}

// NewResolver creates a resolver backed by the given principal registry.
func NewResolver(registry *Registry, cfg config.ResolverConfig) *Resolver {
	return &Resolver{
		registry: registry,
		cfg:      cfg,
		env:      ParseEnvironment(cfg.Environment),
		logger:   slog.Default().With("component", "tenant.resolver"),
	}
}

// Environment returns the deployment environment this resolver stamps on
// every resolved context.
func (r *Resolver) Environment() Environment {
	return r.env
}

// Resolve extracts a tenant Context from the request.
//
// The tenant is taken from the verified principal claim when the request
// carries a known bearer token. An explicit X-Tenant-Id header is
// cross-checked against the claim when both are present; a disagreement is a
// TENANT_MISMATCH (403). A header alone is accepted only outside prod. When
// no source yields a tenant, a configured default may be substituted in
// non-prod environments; in prod the resolver always fails closed with
// TENANT_REQUIRED (400).
func (r *Resolver) Resolve(req *http.Request) (Context, *ResolveError) {
	principal := r.lookupPrincipal(req)
	headerTenant := strings.TrimSpace(req.Header.Get(TenantHeader))

	purpose, rerr := r.resolvePurpose(req)
	if rerr != nil {
		return Context{}, rerr
	}

	ctx := Context{
		Environment:   r.env,
		PrivilegeTier: TierStandard,
		Purpose:       purpose,
	}

	switch {
	case principal != nil:
		if headerTenant != "" && headerTenant != principal.TenantID {
			return Context{}, &ResolveError{
				Code:    ReasonTenantMismatch,
				Status:  http.StatusForbidden,
				Message: "tenant header does not match principal claim",
			}
		}
		ctx.TenantID = principal.TenantID
		ctx.Actor = principal.Subject
		ctx.PrivilegeTier = principal.PrivilegeTier
		ctx.BreakGlass = r.breakGlassRequested(req, principal)

	case headerTenant != "" && r.env != EnvProd:
		// Unauthenticated header-only resolution is a non-prod
		// convenience; prod requires a verified claim.
		ctx.TenantID = headerTenant
		r.logger.Debug("tenant resolved from header without principal",
			"tenant_id", headerTenant,
			"environment", string(r.env),
		)

	case r.env != EnvProd && r.cfg.AllowDefaultTenant && r.cfg.DefaultTenant != "":
		ctx.TenantID = r.cfg.DefaultTenant
		ctx.Defaulted = true
		r.logger.Info("default tenant substituted",
			"tenant_id", ctx.TenantID,
			"environment", string(r.env),
		)

	default:
		return Context{}, &ResolveError{
			Code:    ReasonTenantRequired,
			Status:  http.StatusBadRequest,
			Message: "request carries no tenant claim or header",
		}
	}

	return ctx, nil
}

// lookupPrincipal resolves the bearer token, if any, to a known principal.
func (r *Resolver) lookupPrincipal(req *http.Request) *Principal {
	authz := req.Header.Get("Authorization")
	if authz == "" {
		return nil
	}

	token := authz
	if strings.HasPrefix(authz, "Bearer ") {
		token = strings.TrimPrefix(authz, "Bearer ")
	}

	p, err := r.registry.Lookup(strings.TrimSpace(token))
	if err != nil {
		r.logger.Warn("unknown bearer token",
			"remote_addr", req.RemoteAddr,
			"path", req.URL.Path,
		)
		return nil
	}
	return p
}

// resolvePurpose resolves the declared access purpose.
func (r *Resolver) resolvePurpose(req *http.Request) (string, *ResolveError) {
	purpose := strings.TrimSpace(req.Header.Get(PurposeHeader))
	if purpose != "" {
		return purpose, nil
	}
	if r.cfg.StrictMode {
		return "", &ResolveError{
			Code:    ReasonPurposeRequired,
			Status:  http.StatusBadRequest,
			Message: "strict mode requires an explicit purpose",
		}
	}
	return r.cfg.DefaultPurpose, nil
}

// breakGlassRequested reports whether the request carries a valid, honored
// break-glass bypass request. An unauthorized break-glass attempt is logged
// and ignored rather than rejected: the request still goes through standard
// enforcement.
func (r *Resolver) breakGlassRequested(req *http.Request, p *Principal) bool {
	raw := req.Header.Get(BreakGlassHeader)
	if raw == "" {
		return false
	}
	requested, err := strconv.ParseBool(raw)
	if err != nil || !requested {
		return false
	}

	if p.PrivilegeTier != TierBreakGlass || !p.BreakGlassAuthorized {
		r.logger.Warn("break-glass requested by unauthorized principal",
			"subject", p.Subject,
			"tenant_id", p.TenantID,
			"privilege_tier", string(p.PrivilegeTier),
		)
		return false
	}

	return true
}
