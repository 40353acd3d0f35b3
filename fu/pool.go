// Package fu models the accelerator's finite functional units: each
// class has a fixed operation latency and a fixed number of instances,
// and the scheduler may not issue more concurrent operations of a class
// than instances exist.
package fu

import (
	"fmt"
	"sort"

	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/ir"
)

// Class names a functional-unit type.
type Class string

const (
	IntALU  Class = "int_alu"
	IntMul  Class = "int_mul"
	IntDiv  Class = "int_div"
	Bitwise Class = "bitwise"
	Shift   Class = "shift"
	Compare Class = "compare"
	FPAdd   Class = "fp_add"
	FPMul   Class = "fp_mul"
	FPDiv   Class = "fp_div"
	GEP     Class = "gep"
	MemPort Class = "mem_port"
	Control Class = "control"
	Call    Class = "call"
)

// DefaultClassFor maps an opcode to the unit class that executes it
// when the configuration does not override the assignment.
func DefaultClassFor(op ir.Opcode) Class {
	switch op {
	case ir.OpAdd, ir.OpSub:
		return IntALU
	case ir.OpMul:
		return IntMul
	case ir.OpUDiv, ir.OpSDiv, ir.OpURem, ir.OpSRem:
		return IntDiv
	case ir.OpAnd, ir.OpOr, ir.OpXor:
		return Bitwise
	case ir.OpShl, ir.OpLShr, ir.OpAShr:
		return Shift
	case ir.OpICmp, ir.OpFCmp:
		return Compare
	case ir.OpFAdd, ir.OpFSub:
		return FPAdd
	case ir.OpFMul:
		return FPMul
	case ir.OpFDiv:
		return FPDiv
	case ir.OpGEP:
		return GEP
	case ir.OpLoad, ir.OpStore:
		return MemPort
	case ir.OpCall:
		return Call
	default:
		return Control
	}
}

// Spec configures one unit class. Limit 0 means unlimited instances.
type Spec struct {
	Cycles int
	Limit  int
}

// UnconfiguredUnitError reports an instruction needing a unit class the
// configuration does not provide. Raised on first issue; fatal.
type UnconfiguredUnitError struct {
	Class Class
	Op    ir.Opcode
}

func (e *UnconfiguredUnitError) Error() string {
	return fmt.Sprintf(
		"unconfigured functional unit %q required by %s", e.Class, e.Op)
}

// Pool tracks per-class occupancy within the current cycle window.
type Pool struct {
	specs map[Class]Spec
	busy  map[Class]int
}

// NewPool builds a pool over the configured unit classes.
func NewPool(specs map[Class]Spec) *Pool {
	s := make(map[Class]Spec, len(specs))
	for c, sp := range specs {
		s[c] = sp
	}
	return &Pool{specs: s, busy: make(map[Class]int)}
}

// TryAcquire claims one instance of a class. It returns the class spec
// and whether an instance was free. An unknown class is a configuration
// error, not contention.
func (p *Pool) TryAcquire(c Class, op ir.Opcode) (Spec, bool, error) {
	sp, ok := p.specs[c]
	if !ok {
		return Spec{}, false, &UnconfiguredUnitError{Class: c, Op: op}
	}
	if sp.Limit > 0 && p.busy[c] >= sp.Limit {
		return sp, false, nil
	}
	p.busy[c]++
	return sp, true, nil
}

// Release returns an instance claimed by TryAcquire.
func (p *Pool) Release(c Class) {
	if p.busy[c] > 0 {
		p.busy[c]--
	}
}

// InUse reports how many instances of a class are currently claimed.
func (p *Pool) InUse(c Class) int {
	return p.busy[c]
}

// Reset clears all occupancy, for reuse across invocations.
func (p *Pool) Reset() {
	p.busy = make(map[Class]int)
}

// Classes lists the configured classes in stable order.
func (p *Pool) Classes() []Class {
	out := make([]Class, 0, len(p.specs))
	for c := range p.specs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SpecOf returns the configuration of a class.
func (p *Pool) SpecOf(c Class) (Spec, bool) {
	sp, ok := p.specs[c]
	return sp, ok
}
