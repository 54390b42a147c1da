// Package verdict assembles and seals governance verdicts. The engine
// folds the structural guard outcome and the policy recommendation into
// a single immutable verdict per request, stamped with the active
// policy version and evidence fields for audit correlation.
//
// Verdicts are sealed in one atomic step and cannot be mutated
// afterwards. DataEnvelope adds payload integrity: the payload hash is
// recorded at creation and re-checked on every validation, with a
// mismatch treated as tamper and routed through the deny path.
package verdict
