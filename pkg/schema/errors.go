package schema

import "fmt"

// ValidationError reports a single snapshot field whose shape disagrees
// with the target matrix.
type ValidationError struct {
	Key    string // Field name as it appears on the wire
	Reason string // Human-readable reason for the rejection
	Value  any    // The offending length or value, when one exists
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("snapshot field %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("snapshot field %q: %s (got %v)", e.Key, e.Reason, e.Value)
}

// AggregateError collects every shape mismatch found in one pass, so a
// caller fixing a payload sees all problems at once.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// ValidationErrors returns all collected errors if err is an
// AggregateError, otherwise nil.
func ValidationErrors(err error) []error {
	if aggr, ok := err.(*AggregateError); ok {
		return aggr.Errors
	}
	return nil
}
