package taskset

import "fmt"

// AggregateError wraps every error collected by a Group running in
// CollectAll mode.
type AggregateError struct {
	Errors []error
}

func (a AggregateError) Error() string {
	if len(a.Errors) == 0 {
		return "no errors"
	}
	return fmt.Sprintf("%d errors: %v", len(a.Errors), a.Errors)
}

// Unwrap exposes the collected errors to errors.Is/errors.As.
func (a AggregateError) Unwrap() []error {
	return a.Errors
}
