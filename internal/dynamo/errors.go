package dynamo

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidParameter indicates malformed or out-of-range run input.
	ErrInvalidParameter = errors.New("dynamo: invalid parameter")

	// ErrCanceled indicates the simulation was interrupted between steps.
	ErrCanceled = errors.New("dynamo: simulation canceled")
)

// InvalidParameterError describes a rejected input. Line is the 1-indexed
// parameter line when the input came from a text source, zero otherwise.
type InvalidParameterError struct {
	Line   int
	Term   int
	Field  string
	Value  float64
	Text   string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	var b strings.Builder
	b.WriteString("invalid parameter")
	if e.Line > 0 {
		fmt.Fprintf(&b, " on line %d", e.Line)
	} else if e.Term > 0 {
		fmt.Fprintf(&b, " in term %d", e.Term)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " %s", e.Field)
	}
	if e.Text != "" {
		fmt.Fprintf(&b, " (%q)", e.Text)
	} else if e.Field != "" {
		fmt.Fprintf(&b, " = %g", e.Value)
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	return b.String()
}

func (e *InvalidParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Wrapped.Error())
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
