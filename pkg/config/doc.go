// Package config provides configuration management for the govgate
// enforcement gateway.
//
// Configuration is loaded from YAML with optional environment variable
// overrides, has defaults applied, and is validated before use:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// Environment variables follow the naming convention GOVGATE_SECTION_FIELD
// and always take precedence over file-based configuration. For example,
// GOVGATE_SERVER_LISTEN_ADDRESS overrides server.listen_address and
// GOVGATE_RESOLVER_ENVIRONMENT overrides resolver.environment.
//
// For application-wide access, a guarded singleton is available:
//
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//	cfg := config.GetConfig()
//
// For testing, prefer dependency injection with explicit Config instances
// rather than the global singleton.
//
// A minimal configuration file:
//
//	server:
//	  listen_address: "127.0.0.1:8080"
//	  upstream_url: "http://127.0.0.1:9000"
//
//	resolver:
//	  environment: "prod"
//	  principals:
//	    - token: "tok-alpha"
//	      subject: "svc-reporting"
//	      tenant_id: "tenant-alpha"
//
//	kill_switch:
//	  source_path: "./killswitch.yaml"
//	  watch: true
//
//	policy:
//	  mode: "static"
//	  rules_path: "./policy-rules.yaml"
//
//	audit:
//	  backend: "sqlite"
//	  sqlite:
//	    path: "data/audit.db"
package config
