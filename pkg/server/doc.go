// Package server ties the gateway together and manages its lifecycle.
//
// The server fronts an optional upstream service: requests pass through
// the middleware chain and the enforcement pipeline, and only allow or
// degrade verdicts reach the upstream (or the 204 responder in sidecar
// mode). Health probes and the metrics endpoint are served directly.
//
// # Routes
//
//   - GET /healthz - liveness probe (always 200)
//   - GET /readyz - readiness probe (503 until kill-switch config loads in prod)
//   - GET /metrics - Prometheus scrape endpoint (path configurable)
//   - GET /admin/killswitch - current kill-switch snapshot (enforced)
//   - POST /admin/killswitch/refresh - explicit config refresh (enforced)
//   - * - enforced and proxied to the upstream
//
// # Middleware Chain
//
// Requests pass through, outermost first:
//  1. Recovery: recovers from panics and returns a sanitized 500
//  2. RequestID: assigns or propagates X-Request-ID
//  3. Logging: structured request/response logging
//  4. CORS: Cross-Origin Resource Sharing headers when enabled
//  5. Timeout: per-request deadline
//  6. Enforcer: tenant resolution, guard, policy, verdict, audit
//
// Shutdown is graceful: on SIGTERM/SIGINT or context cancellation the
// server stops accepting connections and gives in-flight requests
// ShutdownTimeout to complete, so their verdicts and audit records land
// normally.
package server
