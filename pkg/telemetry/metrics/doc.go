// Package metrics provides Prometheus metrics for the enforcement gateway.
//
// A single Collector owns all metric families:
//
//   - govgate_gateway_decisions_total{status,reason}
//   - govgate_gateway_decision_duration_seconds
//   - govgate_gateway_break_glass_total
//   - govgate_gateway_killswitch_mode{mode}
//   - govgate_gateway_killswitch_refreshes_total{result}
//   - govgate_gateway_audit_writes_total{mode,result}
//   - govgate_gateway_alerts_total{severity,code}
//
// All recording methods tolerate a nil receiver so callers do not need to
// branch on whether metrics are enabled.
package metrics
