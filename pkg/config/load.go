package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention GOVGATE_SECTION_FIELD (e.g., GOVGATE_SERVER_LISTEN_ADDRESS) and
// always take precedence over file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Variables use the format GOVGATE_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("GOVGATE_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("GOVGATE_SERVER_UPSTREAM_URL"); val != "" {
		cfg.Server.UpstreamURL = val
	}
	if d, ok := envDuration("GOVGATE_SERVER_READ_TIMEOUT"); ok {
		cfg.Server.ReadTimeout = d
	}
	if d, ok := envDuration("GOVGATE_SERVER_WRITE_TIMEOUT"); ok {
		cfg.Server.WriteTimeout = d
	}
	if d, ok := envDuration("GOVGATE_SERVER_SHUTDOWN_TIMEOUT"); ok {
		cfg.Server.ShutdownTimeout = d
	}

	// Resolver overrides
	if val := os.Getenv("GOVGATE_RESOLVER_ENVIRONMENT"); val != "" {
		cfg.Resolver.Environment = val
	}
	if b, ok := envBool("GOVGATE_RESOLVER_STRICT_MODE"); ok {
		cfg.Resolver.StrictMode = b
	}
	if val := os.Getenv("GOVGATE_RESOLVER_DEFAULT_PURPOSE"); val != "" {
		cfg.Resolver.DefaultPurpose = val
	}
	if b, ok := envBool("GOVGATE_RESOLVER_ALLOW_DEFAULT_TENANT"); ok {
		cfg.Resolver.AllowDefaultTenant = b
	}
	if val := os.Getenv("GOVGATE_RESOLVER_DEFAULT_TENANT"); val != "" {
		cfg.Resolver.DefaultTenant = val
	}

	// Kill-switch overrides
	if val := os.Getenv("GOVGATE_KILL_SWITCH_SOURCE_PATH"); val != "" {
		cfg.KillSwitch.SourcePath = val
	}
	if b, ok := envBool("GOVGATE_KILL_SWITCH_WATCH"); ok {
		cfg.KillSwitch.Watch = b
	}

	// Policy overrides
	if val := os.Getenv("GOVGATE_POLICY_MODE"); val != "" {
		cfg.Policy.Mode = val
	}
	if val := os.Getenv("GOVGATE_POLICY_ENDPOINT"); val != "" {
		cfg.Policy.Endpoint = val
	}
	if d, ok := envDuration("GOVGATE_POLICY_TIMEOUT"); ok {
		cfg.Policy.Timeout = d
	}
	if val := os.Getenv("GOVGATE_POLICY_RULES_PATH"); val != "" {
		cfg.Policy.RulesPath = val
	}

	// Audit overrides
	if val := os.Getenv("GOVGATE_AUDIT_BACKEND"); val != "" {
		cfg.Audit.Backend = val
	}
	if val := os.Getenv("GOVGATE_AUDIT_SQLITE_PATH"); val != "" {
		cfg.Audit.SQLite.Path = val
	}
	if d, ok := envDuration("GOVGATE_AUDIT_BLOCKING_TIMEOUT"); ok {
		cfg.Audit.BlockingTimeout = d
	}

	// Telemetry overrides
	if val := os.Getenv("GOVGATE_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("GOVGATE_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if b, ok := envBool("GOVGATE_TELEMETRY_METRICS_ENABLED"); ok {
		cfg.Telemetry.Metrics.Enabled = b
	}
}

// envDuration parses a duration environment variable. Invalid values are
// ignored so a typo cannot silently zero a timeout.
func envDuration(name string) (time.Duration, bool) {
	val := os.Getenv(name)
	if val == "" {
		return 0, false
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, false
	}
	return d, true
}

// envBool parses a boolean environment variable.
func envBool(name string) (bool, bool) {
	val := os.Getenv(name)
	if val == "" {
		return false, false
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, false
	}
	return b, true
}
