package swarm

import "fmt"

// LengthMismatchError reports a slice whose length violates an ensemble
// invariant. Construction and the length-checked setters return it without
// mutating any state.
type LengthMismatchError struct {
	Field string
	Want  int
	Got   int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("swarm: %s must have %d elements, got %d", e.Field, e.Want, e.Got)
}
