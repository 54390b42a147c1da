package tenant

// Environment is the deployment environment a request is evaluated in.
type Environment string

const (
	// EnvDev is the development environment.
	EnvDev Environment = "dev"
	// EnvStaging is the staging environment.
	EnvStaging Environment = "staging"
	// EnvProd is the production environment. Fail-closed rules apply only
	// here; non-prod environments may fail open on missing configuration.
	EnvProd Environment = "prod"
)

// ParseEnvironment parses an environment string. Unknown values map to
// EnvProd so a misconfigured deployment inherits the strictest rules.
func ParseEnvironment(s string) Environment {
	switch s {
	case "dev":
		return EnvDev
	case "staging":
		return EnvStaging
	default:
		return EnvProd
	}
}

// PrivilegeTier is the privilege level carried by a tenant context.
type PrivilegeTier string

const (
	// TierStandard is the default privilege tier.
	TierStandard PrivilegeTier = "standard"
	// TierElevated marks principals with elevated access.
	TierElevated PrivilegeTier = "elevated"
	// TierBreakGlass marks principals eligible for emergency bypass.
	TierBreakGlass PrivilegeTier = "break-glass"
)

// Context is the tenant identity for a single request. It is created once by
// the resolver from verified principal claims and is never mutated afterward;
// evaluation stages operate on copies of the value.
type Context struct {
	// TenantID is the resolved tenant identifier.
	TenantID string

	// Environment is the deployment environment of this gateway instance.
	Environment Environment

	// PrivilegeTier is the privilege level of the calling principal.
	PrivilegeTier PrivilegeTier

	// Actor is the principal subject, recorded in verdict evidence.
	Actor string

	// Purpose is the declared access purpose from X-Purpose (or the
	// configured default when strict mode is disabled).
	Purpose string

	// BreakGlass reports that the caller requested break-glass bypass and
	// was pre-authorized for it. Requesting is not the same as being
	// granted a bypass; the isolation guard decides that.
	BreakGlass bool

	// Defaulted reports that the tenant was substituted from the
	// configured non-prod default rather than resolved from the request.
	Defaulted bool
}
