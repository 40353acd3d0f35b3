// Package cdfg builds the control/data-flow graph the scheduler issues
// against: intra-block data edges, conservative memory-order edges, and
// the reaching-definition check that rejects kernels reading registers
// no path defines.
package cdfg

import "github.com/Josh-Slycord/gem5-SALAM-dev-sub001/ir"

// EdgeKind discriminates dependence edges.
type EdgeKind uint8

const (
	// Data orders a value producer before its consumer.
	Data EdgeKind = iota
	// MemOrder orders scratchpad accesses that may alias.
	MemOrder
)

func (k EdgeKind) String() string {
	if k == MemOrder {
		return "mem"
	}
	return "data"
}

// Edge is a dependence between two instructions of the same block,
// identified by instruction ID. From always precedes To in program
// order.
type Edge struct {
	From int
	To   int
	Kind EdgeKind
}

// Graph carries the per-instruction dependence edges of one function.
// Cross-block value flow is not edge-material: it is resolved through
// the register store at block entry, and validated here by reaching
// definitions instead.
type Graph struct {
	Fn *ir.Function

	deps  [][]Edge
	succs [][]Edge
}

// Deps returns the edges into an instruction: everything that must
// complete before it may issue.
func (g *Graph) Deps(id int) []Edge {
	return g.deps[id]
}

// Succs returns the edges out of an instruction.
func (g *Graph) Succs(id int) []Edge {
	return g.succs[id]
}

func (g *Graph) addEdge(e Edge) {
	for _, prev := range g.deps[e.To] {
		if prev.From == e.From && prev.Kind == e.Kind {
			return
		}
	}
	g.deps[e.To] = append(g.deps[e.To], e)
	g.succs[e.From] = append(g.succs[e.From], e)
}

// NumEdges counts all dependence edges.
func (g *Graph) NumEdges() int {
	n := 0
	for _, es := range g.deps {
		n += len(es)
	}
	return n
}
