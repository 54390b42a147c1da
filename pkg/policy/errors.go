package policy

import "fmt"

// EvaluationError wraps a failure to obtain a policy recommendation.
// The gateway maps any evaluation error to a fail-closed deny.
type EvaluationError struct {
	// Endpoint is the evaluator endpoint or rules path involved.
	Endpoint string

	// Err is the underlying cause.
	Err error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("policy evaluation failed (%s): %v", e.Endpoint, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// NewEvaluationError creates a new EvaluationError.
func NewEvaluationError(endpoint string, err error) *EvaluationError {
	return &EvaluationError{Endpoint: endpoint, Err: err}
}
