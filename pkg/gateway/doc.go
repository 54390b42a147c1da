// Package gateway implements the enforcement surface of the governance
// gateway. The Enforcer middleware resolves the calling tenant, runs the
// isolation guard and policy evaluation, seals the resulting verdict,
// emits audit evidence, and stamps governance headers on every response.
// Admin carries the operator endpoints: health probes and kill-switch
// refresh and status.
package gateway
