package core

import (
	"fmt"

	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/ir"
)

// regStore holds the committed value of every virtual register of the
// running function. Values become visible when the producing
// instruction completes, never at issue.
type regStore struct {
	fn    *ir.Function
	vals  []ir.Value
	valid []bool
}

func newRegStore(fn *ir.Function) *regStore {
	return &regStore{
		fn:    fn,
		vals:  make([]ir.Value, fn.NumRegs),
		valid: make([]bool, fn.NumRegs),
	}
}

func (r *regStore) write(id ir.RegID, v ir.Value) {
	r.vals[id] = v
	r.valid[id] = true
}

// read returns the committed value of a register. Reading a register
// no completed instruction has written is a scheduler bug; the graph
// builder rejects kernels that could reach this state.
func (r *regStore) read(id ir.RegID) ir.Value {
	if !r.valid[id] {
		panic(fmt.Sprintf("read of unwritten register %%%s", r.fn.RegName(id)))
	}
	return r.vals[id]
}

func (r *regStore) reset() {
	for i := range r.valid {
		r.valid[i] = false
	}
}
