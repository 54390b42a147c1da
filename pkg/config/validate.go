package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateResolver(&cfg.Resolver)...)
	errs = append(errs, validateKillSwitch(&cfg.KillSwitch)...)
	errs = append(errs, validatePolicy(&cfg.Policy)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(s *ServerConfig) []FieldError {
	var errs []FieldError

	if s.ListenAddress == "" {
		errs = append(errs, FieldError{"server.listen_address", "field is required"})
	} else if _, _, err := net.SplitHostPort(s.ListenAddress); err != nil {
		errs = append(errs, FieldError{"server.listen_address", fmt.Sprintf("invalid host:port address: %v", err)})
	}

	if s.UpstreamURL != "" {
		u, err := url.Parse(s.UpstreamURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, FieldError{"server.upstream_url", "must be an absolute URL"})
		}
	}

	if s.ReadTimeout < 0 {
		errs = append(errs, FieldError{"server.read_timeout", "must not be negative"})
	}
	if s.WriteTimeout < 0 {
		errs = append(errs, FieldError{"server.write_timeout", "must not be negative"})
	}

	if s.TLS.Enabled {
		if s.TLS.CertFile == "" {
			errs = append(errs, FieldError{"server.tls.cert_file", "required when TLS is enabled"})
		}
		if s.TLS.KeyFile == "" {
			errs = append(errs, FieldError{"server.tls.key_file", "required when TLS is enabled"})
		}
	}

	return errs
}

func validateResolver(r *ResolverConfig) []FieldError {
	var errs []FieldError

	switch r.Environment {
	case "dev", "staging", "prod":
	default:
		errs = append(errs, FieldError{"resolver.environment", fmt.Sprintf("must be one of dev, staging, prod (got %q)", r.Environment)})
	}

	if r.AllowDefaultTenant && r.DefaultTenant == "" {
		errs = append(errs, FieldError{"resolver.default_tenant", "required when allow_default_tenant is set"})
	}
	if r.AllowDefaultTenant && r.Environment == "prod" {
		errs = append(errs, FieldError{"resolver.allow_default_tenant", "default tenant substitution is not permitted in prod"})
	}

	seen := make(map[string]bool, len(r.Principals))
	for i, p := range r.Principals {
		field := fmt.Sprintf("resolver.principals[%d]", i)
		if p.Token == "" {
			errs = append(errs, FieldError{field + ".token", "field is required"})
		} else if seen[p.Token] {
			errs = append(errs, FieldError{field + ".token", "duplicate token"})
		} else {
			seen[p.Token] = true
		}
		if p.TenantID == "" {
			errs = append(errs, FieldError{field + ".tenant_id", "field is required"})
		}
		switch p.PrivilegeTier {
		case "standard", "elevated", "break-glass":
		default:
			errs = append(errs, FieldError{field + ".privilege_tier", fmt.Sprintf("must be one of standard, elevated, break-glass (got %q)", p.PrivilegeTier)})
		}
		if p.BreakGlassAuthorized && p.PrivilegeTier != "break-glass" {
			errs = append(errs, FieldError{field + ".break_glass_authorized", "only permitted for break-glass tier principals"})
		}
	}

	return errs
}

func validateKillSwitch(k *KillSwitchConfig) []FieldError {
	var errs []FieldError

	if k.SourcePath == "" {
		errs = append(errs, FieldError{"kill_switch.source_path", "field is required"})
	}
	if k.DebounceInterval < 0 {
		errs = append(errs, FieldError{"kill_switch.debounce_interval", "must not be negative"})
	}
	if k.History.Enabled && k.History.Path == "" {
		errs = append(errs, FieldError{"kill_switch.history.path", "required when history is enabled"})
	}

	return errs
}

func validatePolicy(p *PolicyConfig) []FieldError {
	var errs []FieldError

	switch p.Mode {
	case "static":
		if p.RulesPath == "" {
			errs = append(errs, FieldError{"policy.rules_path", "required in static mode"})
		}
	case "http":
		if p.Endpoint == "" {
			errs = append(errs, FieldError{"policy.endpoint", "required in http mode"})
		} else {
			u, err := url.Parse(p.Endpoint)
			if err != nil || u.Scheme == "" || u.Host == "" {
				errs = append(errs, FieldError{"policy.endpoint", "must be an absolute URL"})
			}
		}
		// Verdicts are never sealed with an empty policy version, so the
		// http adapter needs a version to stamp before its first response.
		if p.InitialVersion == "" {
			errs = append(errs, FieldError{"policy.initial_version", "required in http mode"})
		}
	default:
		errs = append(errs, FieldError{"policy.mode", fmt.Sprintf("must be one of static, http (got %q)", p.Mode)})
	}

	if p.Timeout <= 0 {
		errs = append(errs, FieldError{"policy.timeout", "must be positive"})
	}

	return errs
}

func validateAudit(a *AuditConfig) []FieldError {
	var errs []FieldError

	switch a.Backend {
	case "sqlite":
		if a.SQLite.Path == "" {
			errs = append(errs, FieldError{"audit.sqlite.path", "required for sqlite backend"})
		}
	case "memory":
	default:
		errs = append(errs, FieldError{"audit.backend", fmt.Sprintf("must be one of sqlite, memory (got %q)", a.Backend)})
	}

	if a.AsyncBuffer <= 0 {
		errs = append(errs, FieldError{"audit.async_buffer", "must be positive"})
	}
	if a.BlockingTimeout <= 0 {
		errs = append(errs, FieldError{"audit.blocking_timeout", "must be positive"})
	}
	if a.Retention.RetentionDays < 0 {
		errs = append(errs, FieldError{"audit.retention.retention_days", "must not be negative"})
	}
	if a.Retention.MaxRecords < 0 {
		errs = append(errs, FieldError{"audit.retention.max_records", "must not be negative"})
	}

	return errs
}

func validateTelemetry(t *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch t.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{"telemetry.logging.level", fmt.Sprintf("must be one of debug, info, warn, error (got %q)", t.Logging.Level)})
	}

	switch t.Logging.Format {
	case "json", "text", "console":
	default:
		errs = append(errs, FieldError{"telemetry.logging.format", fmt.Sprintf("must be one of json, text, console (got %q)", t.Logging.Format)})
	}

	if t.Metrics.Enabled && !strings.HasPrefix(t.Metrics.Path, "/") {
		errs = append(errs, FieldError{"telemetry.metrics.path", "must start with /"})
	}

	return errs
}
