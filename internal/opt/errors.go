package opt

import "fmt"

// NoSolutionError is the search strategy's first-class "no feasible
// assignment" outcome: total demand exceeds the fleet's capacity, or the
// search budget expired without finding a feasible point. It is a result
// the caller is expected to react to (raise capacity, add vehicles); the
// engine never retries on its own.
type NoSolutionError struct {
	Reason        string
	TotalDemand   int
	TotalCapacity int
	Cause         error
}

func (e *NoSolutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("no solution: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("no solution: %s", e.Reason)
}

func (e *NoSolutionError) Unwrap() error { return e.Cause }

// CapacityExceededError is a structural diagnostic: a single stop's demand
// exceeds every vehicle's capacity, so no assignment can ever place it.
// It is wrapped inside a NoSolutionError so callers can distinguish it
// from a generic search failure with errors.As.
type CapacityExceededError struct {
	StopIndex   int
	Demand      int
	MaxCapacity int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("stop %d demand %d exceeds every vehicle capacity (max %d)",
		e.StopIndex, e.Demand, e.MaxCapacity)
}
