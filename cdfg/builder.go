package cdfg

import "github.com/Josh-Slycord/gem5-SALAM-dev-sub001/ir"

// Build constructs the dependence graph for one function and validates
// that every register read has a definition on every path reaching it.
func Build(fn *ir.Function) (*Graph, error) {
	g := &Graph{
		Fn:    fn,
		deps:  make([][]Edge, len(fn.Instrs)),
		succs: make([][]Edge, len(fn.Instrs)),
	}

	ra := newRootAnalysis(fn)

	for _, blk := range fn.Blocks {
		g.buildDataEdges(blk)
		g.buildMemEdges(blk, ra)
	}

	if err := checkReachingDefs(fn); err != nil {
		return nil, err
	}
	return g, nil
}

// buildDataEdges wires producer-to-consumer edges within one block.
// Phi reads resolve at block entry from the previous block's committed
// values, so phis take no intra-block data edges; a later definition of
// a phi input in the same block belongs to the next activation.
func (g *Graph) buildDataEdges(blk *ir.BasicBlock) {
	lastWriter := make(map[ir.RegID]int)

	for _, in := range blk.Instrs {
		if in.Op != ir.OpPhi {
			for _, o := range in.Operands {
				if o.Kind != ir.OperandReg {
					continue
				}
				if from, ok := lastWriter[o.Reg]; ok {
					g.addEdge(Edge{From: from, To: in.ID, Kind: Data})
				}
			}
		}
		if in.Result != ir.NoReg {
			lastWriter[in.Result] = in.ID
		}
	}
}

// buildMemEdges serializes scratchpad accesses that may alias: a store
// orders after every prior load or store it may conflict with, a load
// after every prior conflicting store. Accesses proven disjoint by the
// root-plus-constant-offset analysis stay unordered.
func (g *Graph) buildMemEdges(blk *ir.BasicBlock, ra *rootAnalysis) {
	type memAccess struct {
		id      int
		isStore bool
		addr    symAddr
	}
	var prior []memAccess

	for _, in := range blk.Instrs {
		if !in.Op.IsMemory() {
			continue
		}

		isStore := in.Op == ir.OpStore
		ptrIdx := 0
		if isStore {
			ptrIdx = 1
		}
		addr := ra.resolve(in.Operands[ptrIdx], in.Elem.Bytes())

		for _, p := range prior {
			if !p.isStore && !isStore {
				continue
			}
			if disjoint(p.addr, addr) {
				continue
			}
			g.addEdge(Edge{From: p.id, To: in.ID, Kind: MemOrder})
		}
		prior = append(prior, memAccess{id: in.ID, isStore: isStore, addr: addr})
	}
}

// checkReachingDefs verifies every register read is defined on all
// paths reaching the read. A read whose only definition comes later in
// the same block is a dependence cycle and malformed; a read with no
// definition anywhere reachable is an unresolved dependency.
func checkReachingDefs(fn *ir.Function) error {
	nBlocks := len(fn.Blocks)

	def := make([]map[ir.RegID]bool, nBlocks)
	for i := range def {
		def[i] = make(map[ir.RegID]bool)
	}
	for _, in := range fn.Instrs {
		if in.Result != ir.NoReg {
			def[in.Block][in.Result] = true
		}
	}

	preds := make([][]int, nBlocks)
	for _, blk := range fn.Blocks {
		for _, s := range blk.Succs {
			preds[s] = append(preds[s], blk.Index)
		}
	}

	// Forward must-dataflow: IN[b] is the set of registers defined on
	// every path from entry to b. Initialized to the universal set,
	// iterated to a fixpoint.
	univ := make(map[ir.RegID]bool, fn.NumRegs)
	for r := 0; r < fn.NumRegs; r++ {
		univ[ir.RegID(r)] = true
	}
	in := make([]map[ir.RegID]bool, nBlocks)
	out := make([]map[ir.RegID]bool, nBlocks)
	for i := range in {
		in[i] = copySet(univ)
	}
	in[0] = make(map[ir.RegID]bool)
	for _, p := range fn.Params {
		in[0][p.Reg] = true
	}

	for changed := true; changed; {
		changed = false
		for b := 0; b < nBlocks; b++ {
			if b != 0 {
				next := copySet(univ)
				if len(preds[b]) == 0 {
					next = make(map[ir.RegID]bool)
				}
				for _, p := range preds[b] {
					if out[p] == nil {
						continue
					}
					next = intersect(next, out[p])
				}
				if !sameSet(next, in[b]) {
					in[b] = next
					changed = true
				}
			}
			o := copySet(in[b])
			for r := range def[b] {
				o[r] = true
			}
			if !sameSet(o, out[b]) {
				out[b] = o
				changed = true
			}
		}
	}

	for _, blk := range fn.Blocks {
		seen := copySet(in[blk.Index])
		for _, inst := range blk.Instrs {
			if inst.Op == ir.OpPhi {
				for k, o := range inst.Operands {
					if o.Kind != ir.OperandReg {
						continue
					}
					src := inst.Incoming[k]
					if out[src] == nil || !out[src][o.Reg] {
						return useError(fn, blk, o.Reg)
					}
				}
			} else {
				for _, o := range inst.Operands {
					if o.Kind == ir.OperandReg && !seen[o.Reg] {
						return useError(fn, blk, o.Reg)
					}
				}
			}
			if inst.Result != ir.NoReg {
				seen[inst.Result] = true
			}
		}
	}
	return nil
}

func useError(fn *ir.Function, blk *ir.BasicBlock, reg ir.RegID) error {
	for _, inst := range blk.Instrs {
		if inst.Result == reg {
			return ir.Malformedf(0,
				"dependence cycle through %%%s in block %q of @%s",
				fn.RegName(reg), blk.Label, fn.Name)
		}
	}
	return &ir.UnresolvedDependencyError{Func: fn.Name, Value: fn.RegName(reg)}
}

func copySet(s map[ir.RegID]bool) map[ir.RegID]bool {
	out := make(map[ir.RegID]bool, len(s))
	for r := range s {
		out[r] = true
	}
	return out
}

func intersect(a, b map[ir.RegID]bool) map[ir.RegID]bool {
	out := make(map[ir.RegID]bool)
	for r := range a {
		if b[r] {
			out[r] = true
		}
	}
	return out
}

func sameSet(a, b map[ir.RegID]bool) bool {
	if b == nil || len(a) != len(b) {
		return false
	}
	for r := range a {
		if !b[r] {
			return false
		}
	}
	return true
}
