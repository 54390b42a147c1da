// Package policy consumes policy evaluation results. The gateway never
// implements policy logic itself; it forwards a (tenant, operation,
// resource) triple to an evaluator and folds the recommendation into
// its verdict.
//
// Two evaluators are provided: StaticEvaluator reads a yaml ruleset
// from disk, and HTTPEvaluator calls an external policy service. Both
// satisfy the Evaluator interface. Evaluation failures are surfaced as
// EvaluationError and always result in a fail-closed deny upstream.
package policy
