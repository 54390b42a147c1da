package config

import (
	"strings"
	"testing"
)

// validConfig returns a configuration that passes validation.
func validConfig() *Config {
	cfg := &Config{}
	cfg.Server.ListenAddress = "127.0.0.1:8080"
	cfg.Resolver.Environment = "prod"
	cfg.KillSwitch.SourcePath = "./killswitch.yaml"
	cfg.Policy.Mode = "static"
	cfg.Policy.RulesPath = "./rules.yaml"
	cfg.Audit.Backend = "memory"
	ApplyDefaults(cfg)
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "missing listen address",
			mutate:    func(c *Config) { c.Server.ListenAddress = "" },
			wantField: "server.listen_address",
		},
		{
			name:      "malformed listen address",
			mutate:    func(c *Config) { c.Server.ListenAddress = "8080" },
			wantField: "server.listen_address",
		},
		{
			name:      "relative upstream URL",
			mutate:    func(c *Config) { c.Server.UpstreamURL = "/v1" },
			wantField: "server.upstream_url",
		},
		{
			name:      "unknown environment",
			mutate:    func(c *Config) { c.Resolver.Environment = "qa" },
			wantField: "resolver.environment",
		},
		{
			name: "default tenant in prod",
			mutate: func(c *Config) {
				c.Resolver.AllowDefaultTenant = true
				c.Resolver.DefaultTenant = "tenant-dev"
			},
			wantField: "resolver.allow_default_tenant",
		},
		{
			name: "default tenant flag without tenant",
			mutate: func(c *Config) {
				c.Resolver.Environment = "dev"
				c.Resolver.AllowDefaultTenant = true
			},
			wantField: "resolver.default_tenant",
		},
		{
			name: "principal missing tenant",
			mutate: func(c *Config) {
				c.Resolver.Principals = []PrincipalConfig{{Token: "tok", PrivilegeTier: "standard"}}
			},
			wantField: "resolver.principals[0].tenant_id",
		},
		{
			name: "duplicate principal token",
			mutate: func(c *Config) {
				c.Resolver.Principals = []PrincipalConfig{
					{Token: "tok", TenantID: "t1", PrivilegeTier: "standard"},
					{Token: "tok", TenantID: "t2", PrivilegeTier: "standard"},
				}
			},
			wantField: "resolver.principals[1].token",
		},
		{
			name: "break-glass authorization on standard tier",
			mutate: func(c *Config) {
				c.Resolver.Principals = []PrincipalConfig{
					{Token: "tok", TenantID: "t1", PrivilegeTier: "standard", BreakGlassAuthorized: true},
				}
			},
			wantField: "resolver.principals[0].break_glass_authorized",
		},
		{
			name:      "http mode without endpoint",
			mutate:    func(c *Config) { c.Policy.Mode = "http"; c.Policy.InitialVersion = "v1" },
			wantField: "policy.endpoint",
		},
		{
			name: "http mode without initial version",
			mutate: func(c *Config) {
				c.Policy.Mode = "http"
				c.Policy.Endpoint = "http://127.0.0.1:8181/v1/data/govgate"
			},
			wantField: "policy.initial_version",
		},
		{
			name:      "unknown audit backend",
			mutate:    func(c *Config) { c.Audit.Backend = "postgres" },
			wantField: "audit.backend",
		},
		{
			name:      "bad log level",
			mutate:    func(c *Config) { c.Telemetry.Logging.Level = "trace" },
			wantField: "telemetry.logging.level",
		},
		{
			name:      "TLS enabled without cert",
			mutate:    func(c *Config) { c.Server.TLS.Enabled = true; c.Server.TLS.KeyFile = "k.pem" },
			wantField: "server.tls.cert_file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("error should mention %q, got: %v", tt.wantField, err)
			}
		})
	}
}

func TestValidationError_MultipleErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.ListenAddress = ""
	cfg.Resolver.Environment = "qa"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}

	verr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Errors) != 2 {
		t.Errorf("expected 2 field errors, got %d: %v", len(verr.Errors), verr)
	}
	if !strings.Contains(err.Error(), "2 errors") {
		t.Errorf("message should report error count, got: %v", err)
	}
}
