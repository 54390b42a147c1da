// Package killswitch holds the runtime kill-switch state for the gateway.
//
// The Store publishes immutable configuration snapshots behind an atomic
// pointer: request-path code calls EffectiveMode against the current snapshot
// and never blocks on a refresh. Refreshes arrive out-of-band, from a
// fsnotify Watcher on the config file or from an administrative endpoint.
//
// Absence of configuration is a first-class state. With no snapshot loaded,
// prod evaluations resolve to DENY_ALL with ConfigMissing set (fail-closed);
// non-prod evaluations resolve to OFF. That distinction is the load-bearing
// correctness property of this package.
package killswitch
