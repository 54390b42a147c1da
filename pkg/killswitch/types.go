package killswitch

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// Mode is a kill-switch operating mode.
type Mode string

const (
	// ModeOff means configuration is present and the switch is disengaged.
	ModeOff Mode = "OFF"

	// ModeDenyAll blocks every request in scope.
	ModeDenyAll Mode = "DENY_ALL"

	// ModeReadOnly blocks mutating verbs and degrades the rest.
	ModeReadOnly Mode = "READ_ONLY"

	// ModeRouteDeny blocks requests whose route matches the configured
	// patterns; other routes proceed unaffected.
	ModeRouteDeny Mode = "ROUTE_DENY"
)

// Scope is the scope a kill-switch configuration applies to.
type Scope string

const (
	// ScopeGlobal applies the mode to all tenants.
	ScopeGlobal Scope = "global"

	// ScopeTenant applies modes per tenant via the overrides map.
	ScopeTenant Scope = "tenant"
)

// Config is one kill-switch configuration as read from the external source.
// "No configuration" (HasConfig=false) is a distinct, meaningful state,
// separate from ModeOff: absence fails closed in prod and open elsewhere.
type Config struct {
	// Version identifies this configuration revision.
	Version string `yaml:"version"`

	// Mode is the global operating mode.
	Mode Mode `yaml:"mode"`

	// Scope declares whether the config is global or tenant-scoped.
	Scope Scope `yaml:"scope"`

	// TenantOverrides maps tenant IDs to per-tenant modes that take
	// precedence over the global Mode.
	TenantOverrides map[string]Mode `yaml:"tenant_overrides"`

	// RoutePatterns are path globs evaluated for ModeRouteDeny.
	RoutePatterns []string `yaml:"route_patterns"`

	// HasConfig reports that configuration was actually loaded. It is set
	// by the store, never from the source document.
	HasConfig bool `yaml:"-"`
}

// Validate checks the configuration for structural errors.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeOff, ModeDenyAll, ModeReadOnly, ModeRouteDeny:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}

	switch c.Scope {
	case "", ScopeGlobal, ScopeTenant:
	default:
		return fmt.Errorf("unknown scope %q", c.Scope)
	}

	for tid, m := range c.TenantOverrides {
		switch m {
		case ModeOff, ModeDenyAll, ModeReadOnly, ModeRouteDeny:
		default:
			return fmt.Errorf("tenant override %q: unknown mode %q", tid, m)
		}
	}

	for _, p := range c.RoutePatterns {
		if _, err := path.Match(p, "/probe"); err != nil {
			return fmt.Errorf("route pattern %q: %w", p, err)
		}
	}

	return nil
}

// matchesRoute reports whether the route matches any configured pattern.
// Patterns use path.Match globs; a trailing "/*" also matches any deeper
// sub-path so "/v1/exports/*" covers "/v1/exports/a/b".
func (c *Config) matchesRoute(route string) bool {
	for _, pattern := range c.RoutePatterns {
		if ok, err := path.Match(pattern, route); err == nil && ok {
			return true
		}
		if strings.HasSuffix(pattern, "/*") {
			prefix := strings.TrimSuffix(pattern, "/*")
			if strings.HasPrefix(route, prefix+"/") {
				return true
			}
		}
	}
	return false
}

// Snapshot is one immutable, atomically published view of the kill-switch
// state. Request-path code only ever reads the current snapshot reference;
// the config inside is never mutated after publication.
type Snapshot struct {
	// Config is the configuration this snapshot carries.
	Config Config

	// Hash is the sha256 fingerprint of the configuration document.
	Hash string

	// LoadedAt is when this snapshot was published.
	LoadedAt time.Time
}
