package model

import "fmt"

// InvalidInputError reports malformed caller input: a missing or non-zero
// demand depot, a negative demand, a non-finite coordinate, or an empty
// fleet. It is surfaced immediately and never retried.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

func Invalidf(format string, args ...any) *InvalidInputError {
	return &InvalidInputError{Reason: fmt.Sprintf(format, args...)}
}
