package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// CORS defaults
	DefaultCORSMaxAge = 3600 // 1 hour

	// Resolver defaults
	DefaultEnvironment = "prod"
	DefaultPurpose     = "general_access"

	// Kill-switch defaults
	DefaultKillSwitchSourcePath = "./killswitch.yaml"
	DefaultKillSwitchWatch      = true
	DefaultKillSwitchDebounce   = 100 * time.Millisecond
	DefaultHistoryPath          = "data/killswitch.db"

	// Policy defaults
	DefaultPolicyMode      = "static"
	DefaultPolicyTimeout   = 500 * time.Millisecond
	DefaultPolicyRulesPath = "./policy-rules.yaml"

	// Audit defaults
	DefaultAuditBackend         = "sqlite"
	DefaultAuditSQLitePath      = "data/audit.db"
	DefaultAuditMaxOpenConns    = 10
	DefaultAuditMaxIdleConns    = 5
	DefaultAuditWALMode         = true
	DefaultAuditBusyTimeout     = 5 * time.Second
	DefaultAuditAsyncBuffer     = 1000
	DefaultAuditBlockingTimeout = 300 * time.Millisecond
	DefaultAuditWriteTimeout    = 5 * time.Second

	// Telemetry defaults
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultMetricsEnabled   = true
	DefaultMetricsNamespace = "govgate"
	DefaultMetricsSubsystem = "gateway"
	DefaultMetricsPath      = "/metrics"
)

// ApplyDefaults fills in default values for any unset configuration fields.
// It is called automatically by LoadConfig before validation.
func ApplyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyResolverDefaults(&cfg.Resolver)
	applyKillSwitchDefaults(&cfg.KillSwitch)
	applyPolicyDefaults(&cfg.Policy)
	applyAuditDefaults(&cfg.Audit)
	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyServerDefaults(s *ServerConfig) {
	if s.ListenAddress == "" {
		s.ListenAddress = DefaultListenAddress
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = DefaultWriteTimeout
	}
	if s.IdleTimeout == 0 {
		s.IdleTimeout = DefaultIdleTimeout
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = DefaultShutdownTimeout
	}
	if s.RequestTimeout == 0 {
		s.RequestTimeout = DefaultRequestTimeout
	}
	if s.MaxHeaderBytes == 0 {
		s.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if s.CORS.MaxAge == 0 {
		s.CORS.MaxAge = DefaultCORSMaxAge
	}
	if len(s.CORS.AllowedMethods) == 0 {
		s.CORS.AllowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
}

func applyResolverDefaults(r *ResolverConfig) {
	if r.Environment == "" {
		r.Environment = DefaultEnvironment
	}
	if r.DefaultPurpose == "" {
		r.DefaultPurpose = DefaultPurpose
	}
	for i := range r.Principals {
		if r.Principals[i].PrivilegeTier == "" {
			r.Principals[i].PrivilegeTier = "standard"
		}
	}
}

func applyKillSwitchDefaults(k *KillSwitchConfig) {
	if k.SourcePath == "" {
		k.SourcePath = DefaultKillSwitchSourcePath
	}
	if k.DebounceInterval == 0 {
		k.DebounceInterval = DefaultKillSwitchDebounce
	}
	if k.History.Path == "" {
		k.History.Path = DefaultHistoryPath
	}
}

func applyPolicyDefaults(p *PolicyConfig) {
	if p.Mode == "" {
		p.Mode = DefaultPolicyMode
	}
	if p.Timeout == 0 {
		p.Timeout = DefaultPolicyTimeout
	}
	if p.RulesPath == "" {
		p.RulesPath = DefaultPolicyRulesPath
	}
}

func applyAuditDefaults(a *AuditConfig) {
	if a.Backend == "" {
		a.Backend = DefaultAuditBackend
	}
	if a.SQLite.Path == "" {
		a.SQLite.Path = DefaultAuditSQLitePath
	}
	if a.SQLite.MaxOpenConns == 0 {
		a.SQLite.MaxOpenConns = DefaultAuditMaxOpenConns
	}
	if a.SQLite.MaxIdleConns == 0 {
		a.SQLite.MaxIdleConns = DefaultAuditMaxIdleConns
	}
	if a.SQLite.BusyTimeout == 0 {
		a.SQLite.BusyTimeout = DefaultAuditBusyTimeout
	}
	if !a.SQLite.WALMode {
		a.SQLite.WALMode = DefaultAuditWALMode
	}
	if a.AsyncBuffer == 0 {
		a.AsyncBuffer = DefaultAuditAsyncBuffer
	}
	if a.BlockingTimeout == 0 {
		a.BlockingTimeout = DefaultAuditBlockingTimeout
	}
	if a.WriteTimeout == 0 {
		a.WriteTimeout = DefaultAuditWriteTimeout
	}
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.Logging.Level == "" {
		t.Logging.Level = DefaultLogLevel
	}
	if t.Logging.Format == "" {
		t.Logging.Format = DefaultLogFormat
	}
	if t.Metrics.Namespace == "" {
		t.Metrics.Namespace = DefaultMetricsNamespace
	}
	if !t.Metrics.Enabled {
		t.Metrics.Enabled = DefaultMetricsEnabled
	}
	if t.Metrics.Subsystem == "" {
		t.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if t.Metrics.Path == "" {
		t.Metrics.Path = DefaultMetricsPath
	}
}
