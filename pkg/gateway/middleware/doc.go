// Package middleware provides the HTTP middleware chain that wraps the
// enforcement handler: request-id correlation, structured request
// logging, panic recovery, CORS, and per-request timeouts.
package middleware
