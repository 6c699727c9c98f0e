package agent

import "fmt"

// GenerationError reports a failed or empty model call.
type GenerationError struct {
	Iteration int
	Err       error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed at iteration %d: %v", e.Iteration, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// PolicyViolation reports a tool call emitted out of the declared order.
type PolicyViolation struct {
	Tool   string
	Reason string
}

func (e *PolicyViolation) Error() string {
	return fmt.Sprintf("policy violation: %s called %s", e.Tool, e.Reason)
}
