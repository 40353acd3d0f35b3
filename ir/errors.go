package ir

import (
	"errors"
	"fmt"
)

// MalformedIRError reports IR that cannot be loaded or scheduled:
// unparseable syntax, unsupported constructs, a missing entry
// function, or a dependence cycle. It is fatal; the kernel is rejected
// before any cycle is simulated.
type MalformedIRError struct {
	Line int
	Msg  string
}

func (e *MalformedIRError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed IR at line %d: %s", e.Line, e.Msg)
	}
	return "malformed IR: " + e.Msg
}

// Malformedf builds a MalformedIRError. Line 0 means no source
// position is available.
func Malformedf(line int, format string, args ...any) error {
	return &MalformedIRError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// IsMalformed reports whether err is a MalformedIRError.
func IsMalformed(err error) bool {
	var m *MalformedIRError
	return errors.As(err, &m)
}

// UnresolvedDependencyError reports a register read with no reachable
// definition. Detected at graph-build time; fatal.
type UnresolvedDependencyError struct {
	Func  string
	Value string
}

func (e *UnresolvedDependencyError) Error() string {
	return fmt.Sprintf(
		"unresolved dependency: %%%s read with no reachable definition in @%s",
		e.Value, e.Func)
}

// ErrDivideByZero is returned when an integer division or remainder
// sees a zero divisor at evaluation time.
var ErrDivideByZero = errors.New("integer division by zero")
