package cdfg

import (
	"fmt"
	"strings"

	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/ir"
)

// DOT renders the graph in Graphviz format: one cluster per basic
// block, solid edges for data dependences, dashed for memory order,
// dotted block-to-block edges for control flow.
func (g *Graph) DOT() string {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %q {\n", g.Fn.Name)
	b.WriteString("  node [shape=box fontname=monospace];\n")

	for _, blk := range g.Fn.Blocks {
		fmt.Fprintf(&b, "  subgraph cluster_%d {\n", blk.Index)
		fmt.Fprintf(&b, "    label=%q;\n", blk.Label)
		for _, in := range blk.Instrs {
			label := in.String()
			if in.Result != ir.NoReg {
				label = fmt.Sprintf("%s -> %%%s", label, g.Fn.RegName(in.Result))
			}
			fmt.Fprintf(&b, "    n%d [label=%q];\n", in.ID, label)
		}
		b.WriteString("  }\n")
	}

	for id := range g.Fn.Instrs {
		for _, e := range g.Deps(id) {
			style := "solid"
			if e.Kind == MemOrder {
				style = "dashed"
			}
			fmt.Fprintf(&b, "  n%d -> n%d [style=%s];\n", e.From, e.To, style)
		}
	}

	for _, blk := range g.Fn.Blocks {
		for _, s := range blk.Succs {
			fmt.Fprintf(&b, "  n%d -> n%d [style=dotted constraint=false];\n",
				blk.Terminator().ID, g.Fn.Blocks[s].Instrs[0].ID)
		}
	}

	b.WriteString("}\n")
	return b.String()
}
