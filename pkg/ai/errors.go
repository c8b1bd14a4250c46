package ai

import "fmt"

// InvalidResponseError indicates the model output could not be parsed as a
// single JSON object. Distinct from transport errors: retrying the same
// prompt may yield a parseable answer, a network failure may not.
type InvalidResponseError struct {
	Cause error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid evaluation response: %v", e.Cause)
}

func (e *InvalidResponseError) Unwrap() error {
	return e.Cause
}

// ValidationError indicates the model output parsed as JSON but violated the
// response contract. Field names the offending key.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid evaluation payload: field %q %s", e.Field, e.Reason)
}
