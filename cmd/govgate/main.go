// Govgate is a runtime policy enforcement gateway for multi-tenant
// services.
//
// It fronts (or runs beside) a service and decides, per request,
// whether the request may proceed: tenant isolation, environment
// separation, privilege-tier checks, operational kill switches, and an
// external policy evaluator all feed a single sealed verdict that is
// stamped on the response and written to the audit store.
//
// Usage:
//
//	# Start the gateway with the default configuration
//	govgate run
//
//	# Start with a custom configuration file
//	govgate run --config /etc/govgate/config.yaml
//
//	# Validate configuration, kill-switch, and policy files
//	govgate validate
//
//	# Query the audit store
//	govgate audit query --tenant tenant-a --decision deny
//
//	# Export audit evidence as a verifiable bundle
//	govgate audit export --output ./evidence --start 2026-08-01T00:00:00Z
//
//	# Show recent kill-switch configuration changes
//	govgate killswitch history
package main

func main() {
	Execute()
}
