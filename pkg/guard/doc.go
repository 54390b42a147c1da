// Package guard enforces the structural gate that every request must
// clear before policy evaluation: tenant isolation, environment
// binding, privilege tiers, and the operational kill switch.
//
// Guard checks run in a fixed order so denial reasons are stable.
// Isolation violations are always reported as CROSS_TENANT regardless
// of kill-switch state, and no override mechanism, break-glass
// included, can cross a tenant boundary.
package guard
