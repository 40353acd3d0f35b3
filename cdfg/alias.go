package cdfg

import "github.com/Josh-Slycord/gem5-SALAM-dev-sub001/ir"

// symAddr is a symbolic address: a root register plus a constant byte
// offset, with the access width. known is false when the address could
// not be reduced to that form.
type symAddr struct {
	root  ir.RegID
	off   uint64
	size  int
	known bool

	// absolute is set when the address is a literal constant; root is
	// meaningless then.
	absolute bool
}

// rootAnalysis reduces pointer registers to root-plus-constant-offset
// form by walking chains of getelementptr with constant indices. A
// register with more than one definition is left unresolved.
type rootAnalysis struct {
	fn     *ir.Function
	defs   map[ir.RegID]*ir.Instruction
	multi  map[ir.RegID]bool
	memo   map[ir.RegID]symAddr
	inProg map[ir.RegID]bool
}

func newRootAnalysis(fn *ir.Function) *rootAnalysis {
	ra := &rootAnalysis{
		fn:     fn,
		defs:   make(map[ir.RegID]*ir.Instruction),
		multi:  make(map[ir.RegID]bool),
		memo:   make(map[ir.RegID]symAddr),
		inProg: make(map[ir.RegID]bool),
	}
	for _, in := range fn.Instrs {
		if in.Result == ir.NoReg {
			continue
		}
		if _, ok := ra.defs[in.Result]; ok {
			ra.multi[in.Result] = true
		}
		ra.defs[in.Result] = in
	}
	return ra
}

// resolve reduces a pointer operand; size is the access width in bytes.
func (ra *rootAnalysis) resolve(ptr ir.Operand, size int) symAddr {
	if ptr.Kind == ir.OperandConst {
		return symAddr{off: ptr.Const.Uint(), size: size, known: true, absolute: true}
	}
	a := ra.resolveReg(ptr.Reg)
	a.size = size
	return a
}

func (ra *rootAnalysis) resolveReg(reg ir.RegID) symAddr {
	if a, ok := ra.memo[reg]; ok {
		return a
	}
	if ra.multi[reg] || ra.inProg[reg] {
		return symAddr{}
	}

	// Parameters and otherwise-undefined registers are their own root.
	in, ok := ra.defs[reg]
	if !ok {
		a := symAddr{root: reg, known: true}
		ra.memo[reg] = a
		return a
	}

	if in.Op != ir.OpGEP {
		a := symAddr{}
		ra.memo[reg] = a
		return a
	}

	var off uint64
	for _, idx := range in.Operands[1:] {
		if idx.Kind != ir.OperandConst {
			a := symAddr{}
			ra.memo[reg] = a
			return a
		}
		off += uint64(idx.Const.Int()) * uint64(in.Elem.Bytes())
	}

	base := in.Operands[0]
	var a symAddr
	if base.Kind == ir.OperandConst {
		a = symAddr{off: base.Const.Uint() + off, known: true, absolute: true}
	} else {
		ra.inProg[reg] = true
		ba := ra.resolveReg(base.Reg)
		delete(ra.inProg, reg)
		if !ba.known {
			a = symAddr{}
		} else {
			a = symAddr{root: ba.root, off: ba.off + off, known: true, absolute: ba.absolute}
		}
	}
	ra.memo[reg] = a
	return a
}

// disjoint reports whether two accesses provably do not overlap. Only
// accesses sharing a root (or both absolute) can be compared; anything
// else may alias.
func disjoint(a, b symAddr) bool {
	if !a.known || !b.known {
		return false
	}
	if a.absolute != b.absolute {
		return false
	}
	if !a.absolute && a.root != b.root {
		return false
	}
	return a.off+uint64(a.size) <= b.off || b.off+uint64(b.size) <= a.off
}
