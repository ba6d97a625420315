// Package strategy implements the ordered extraction strategies and the
// coordinator that falls through them.
package strategy

import "fmt"

// AttemptError represents a single strategy attempt that did not succeed.
// Recoverable: the coordinator records it and moves to the next strategy.
type AttemptError struct {
	Strategy string
	Message  string
	Cause    error
}

func (e *AttemptError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("strategy %s failed: %s: %v", e.Strategy, e.Message, e.Cause)
	}
	return fmt.Sprintf("strategy %s failed: %s", e.Strategy, e.Message)
}

func (e *AttemptError) Unwrap() error {
	return e.Cause
}

// ExhaustedError is the terminal failure returned when every strategy for a
// target has been attempted without success.
type ExhaustedError struct {
	URL      string
	Attempts int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d strategies failed for %s", e.Attempts, e.URL)
}
