package config

import "time"

// Config is the root configuration structure for the govgate enforcement
// gateway. It contains all configuration sections for the HTTP server, tenant
// resolution, kill-switch state, the policy evaluator, audit storage, and
// telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, TLS, and the optional upstream target the gateway fronts.
	Server ServerConfig `yaml:"server"`

	// Resolver contains tenant context resolution configuration including
	// the deployment environment, strict mode, and the principal registry.
	Resolver ResolverConfig `yaml:"resolver"`

	// KillSwitch contains kill-switch state store configuration including
	// the config source file, watch mode, and the history journal.
	KillSwitch KillSwitchConfig `yaml:"kill_switch"`

	// Policy contains policy evaluator configuration. The evaluator is an
	// external capability; this section only configures how it is reached.
	Policy PolicyConfig `yaml:"policy"`

	// Audit contains audit record storage and emission configuration.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains observability configuration (logging, metrics).
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port". Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// UpstreamURL is the downstream service the gateway fronts. Requests
	// that receive an allow or degrade verdict are proxied to this URL.
	// When empty, the gateway responds 204 after enforcement (useful for
	// sidecar-style deployments where enforcement is the only concern).
	UpstreamURL string `yaml:"upstream_url"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out response writes.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size. Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// RequestTimeout bounds total downstream handling time per request.
	// Default: 30s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`

	// TLS contains TLS listener configuration.
	TLS TLSConfig `yaml:"tls"`
}

// CORSConfig contains CORS configuration for the gateway endpoints.
type CORSConfig struct {
	// Enabled controls whether CORS headers are emitted. Default: false
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is the list of allowed origins. Default: empty
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is the list of allowed HTTP methods.
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is the list of allowed request headers.
	AllowedHeaders []string `yaml:"allowed_headers"`

	// MaxAge is the preflight cache duration in seconds. Default: 3600
	MaxAge int `yaml:"max_age"`
}

// TLSConfig contains TLS listener configuration.
type TLSConfig struct {
	// Enabled controls whether the server listens with TLS.
	Enabled bool `yaml:"enabled"`

	// CertFile is the path to the PEM certificate.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM private key.
	KeyFile string `yaml:"key_file"`
}

// ResolverConfig contains tenant context resolution configuration.
type ResolverConfig struct {
	// Environment is the deployment environment of this gateway instance:
	// "dev", "staging", or "prod". It controls fail-closed behavior and
	// whether a default tenant may be substituted. Default: "prod"
	Environment string `yaml:"environment"`

	// StrictMode requires an explicit X-Purpose header on every request.
	// When disabled, absent purposes default to DefaultPurpose.
	// Default: false
	StrictMode bool `yaml:"strict_mode"`

	// DefaultPurpose is substituted when X-Purpose is absent and strict
	// mode is disabled. Default: "general_access"
	DefaultPurpose string `yaml:"default_purpose"`

	// AllowDefaultTenant permits substituting DefaultTenant when no tenant
	// can be resolved. It is never honored in prod; the resolver fails
	// closed with MISSING_TENANT regardless of this flag. Default: false
	AllowDefaultTenant bool `yaml:"allow_default_tenant"`

	// DefaultTenant is the tenant substituted in non-prod environments when
	// AllowDefaultTenant is set and no tenant can be resolved.
	DefaultTenant string `yaml:"default_tenant"`

	// Principals is the registry of pre-verified principals keyed by bearer
	// token. In production deployments this is populated from the identity
	// provider; the gateway consumes already-verified claims.
	Principals []PrincipalConfig `yaml:"principals"`
}

// PrincipalConfig describes one pre-verified principal.
type PrincipalConfig struct {
	// Token is the bearer token presented by the caller.
	Token string `yaml:"token"`

	// Subject is the principal identity recorded as the verdict actor.
	Subject string `yaml:"subject"`

	// TenantID is the tenant claim carried by this principal.
	TenantID string `yaml:"tenant_id"`

	// PrivilegeTier is "standard", "elevated", or "break-glass".
	// Default: "standard"
	PrivilegeTier string `yaml:"privilege_tier"`

	// BreakGlassAuthorized marks the principal as pre-authorized for
	// break-glass bypass. Only honored when PrivilegeTier is "break-glass".
	BreakGlassAuthorized bool `yaml:"break_glass_authorized"`
}

// KillSwitchConfig contains kill-switch state store configuration.
type KillSwitchConfig struct {
	// SourcePath is the kill-switch config YAML file. When the file is
	// absent the store reports "no config", which fails closed in prod.
	SourcePath string `yaml:"source_path"`

	// Watch enables the fsnotify watcher that refreshes the store when the
	// source file changes. Default: true
	Watch bool `yaml:"watch"`

	// DebounceInterval is the quiet period after a file event before the
	// store refreshes. Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// History contains the config history journal configuration.
	History HistoryConfig `yaml:"history"`
}

// HistoryConfig configures the kill-switch config history journal, which
// records every applied snapshot so operators can prove which configuration
// was live for any decision.
type HistoryConfig struct {
	// Enabled controls whether snapshots are journaled. Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the journal database file. Default: "data/killswitch.db"
	Path string `yaml:"path"`
}

// PolicyConfig contains policy evaluator configuration.
type PolicyConfig struct {
	// Mode selects the evaluator adapter: "http" or "static".
	// Default: "static"
	Mode string `yaml:"mode"`

	// Endpoint is the decision endpoint URL for the http adapter.
	Endpoint string `yaml:"endpoint"`

	// Timeout bounds each evaluator call. Default: 500ms
	Timeout time.Duration `yaml:"timeout"`

	// InitialVersion is the ruleset identifier stamped on verdicts before
	// the http evaluator has reported a version. Required in http mode:
	// verdicts must never carry an empty policy version.
	InitialVersion string `yaml:"initial_version"`

	// RulesPath is the rules YAML file for the static adapter.
	// Default: "./policy-rules.yaml"
	RulesPath string `yaml:"rules_path"`
}

// AuditConfig contains audit record storage and emission configuration.
type AuditConfig struct {
	// Backend selects the storage backend: "sqlite" or "memory".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains sqlite backend configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// AsyncBuffer is the async write channel size for allow/degrade
	// records. Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// BlockingTimeout bounds the synchronous audit write performed for
	// deny and break-glass verdicts. Default: 300ms
	BlockingTimeout time.Duration `yaml:"blocking_timeout"`

	// WriteTimeout bounds async audit writes. Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// Retention contains the operator-side retention pruner configuration.
	// The enforcement core itself never deletes audit records.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains sqlite storage configuration.
type SQLiteConfig struct {
	// Path is the database file path. Default: "data/audit.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the connection pool size. Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the idle connection count. Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging. Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the lock wait duration. Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig contains audit retention pruner configuration.
type RetentionConfig struct {
	// RetentionDays is the record age limit in days. Zero disables
	// age-based pruning. Default: 0
	RetentionDays int `yaml:"retention_days"`

	// MaxRecords caps the total record count. Zero disables count-based
	// pruning. Default: 0
	MaxRecords int64 `yaml:"max_records"`

	// PruneSchedule is a cron expression for scheduled pruning. Empty
	// disables the scheduler. Default: ""
	PruneSchedule string `yaml:"prune_schedule"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json", "text", or "console".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records. Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric namespace. Default: "govgate"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem. Default: "gateway"
	Subsystem string `yaml:"subsystem"`

	// Path is the scrape endpoint path. Default: "/metrics"
	Path string `yaml:"path"`

	// DecisionDurationBuckets overrides the decision latency histogram
	// buckets (seconds).
	DecisionDurationBuckets []float64 `yaml:"decision_duration_buckets"`
}
