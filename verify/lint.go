package verify

import (
	"fmt"

	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/config"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/ir"
)

// IssueType classifies a lint finding.
type IssueType string

const (
	// IssueStruct flags kernel structure the core would reject or
	// execute wrongly.
	IssueStruct IssueType = "STRUCT"
	// IssueConfig flags a kernel/configuration mismatch.
	IssueConfig IssueType = "CONFIG"
)

// Issue is one lint finding.
type Issue struct {
	Type    IssueType
	Fn      string
	InstID  int
	Message string
}

func (i Issue) String() string {
	if i.InstID >= 0 {
		return fmt.Sprintf("[%s] @%s #%d: %s", i.Type, i.Fn, i.InstID, i.Message)
	}
	return fmt.Sprintf("[%s] @%s: %s", i.Type, i.Fn, i.Message)
}

// RunLint performs static checks on a kernel against a hardware
// description: phi predecessor coverage, unit availability for every
// opcode, call-site sanity, block reachability, and constant addresses
// that fall outside the scratchpad.
func RunLint(mod *ir.Module, cfg config.Config) []Issue {
	var issues []Issue
	for _, fn := range mod.Funcs {
		issues = append(issues, lintFunction(mod, fn, cfg)...)
	}
	issues = append(issues, lintCallGraph(mod)...)
	return issues
}

func lintFunction(mod *ir.Module, fn *ir.Function, cfg config.Config) []Issue {
	var issues []Issue

	preds := predecessors(fn)
	issues = append(issues, checkPhis(fn, preds)...)
	issues = append(issues, checkUnits(fn, cfg)...)
	issues = append(issues, checkCalls(mod, fn)...)
	issues = append(issues, checkReachability(fn)...)
	issues = append(issues, checkStaticBounds(fn, cfg)...)

	return issues
}

func predecessors(fn *ir.Function) [][]int {
	preds := make([][]int, len(fn.Blocks))
	for i, blk := range fn.Blocks {
		for _, s := range blk.Succs {
			preds[s] = append(preds[s], i)
		}
	}
	return preds
}

// checkPhis verifies that every phi names exactly the predecessors of
// its block. A missing arm is a runtime fault; an extra arm is dead.
func checkPhis(fn *ir.Function, preds [][]int) []Issue {
	var issues []Issue
	for bi, blk := range fn.Blocks {
		for _, in := range blk.Instrs {
			if in.Op != ir.OpPhi {
				break
			}

			covered := make(map[int]bool, len(in.Incoming))
			for _, p := range in.Incoming {
				covered[p] = true
			}
			for _, p := range preds[bi] {
				if !covered[p] {
					issues = append(issues, Issue{
						Type:   IssueStruct,
						Fn:     fn.Name,
						InstID: in.ID,
						Message: fmt.Sprintf(
							"phi %%%s has no arm for predecessor %s",
							fn.RegName(in.Result), fn.Blocks[p].Label),
					})
				}
				delete(covered, p)
			}
			for p := range covered {
				issues = append(issues, Issue{
					Type:   IssueStruct,
					Fn:     fn.Name,
					InstID: in.ID,
					Message: fmt.Sprintf(
						"phi %%%s has an arm for %s, which is not a predecessor",
						fn.RegName(in.Result), fn.Blocks[p].Label),
				})
			}
		}
	}
	return issues
}

// checkUnits reports opcodes whose unit class the configuration does
// not provide. The timed core fails the whole run at first issue of
// such an opcode; lint finds it before any cycle is spent.
func checkUnits(fn *ir.Function, cfg config.Config) []Issue {
	var issues []Issue
	seen := make(map[ir.Opcode]bool)
	for _, in := range fn.Instrs {
		if in.Op == ir.OpPhi || seen[in.Op] {
			continue
		}
		seen[in.Op] = true

		class := cfg.ClassFor(in.Op)
		if _, ok := cfg.Units[string(class)]; !ok {
			issues = append(issues, Issue{
				Type:   IssueConfig,
				Fn:     fn.Name,
				InstID: in.ID,
				Message: fmt.Sprintf(
					"%s needs unit class %q, which is not configured",
					in.Op, class),
			})
		}
	}
	return issues
}

func checkCalls(mod *ir.Module, fn *ir.Function) []Issue {
	var issues []Issue
	for _, in := range fn.Instrs {
		if in.Op != ir.OpCall {
			continue
		}
		callee := mod.Function(in.Callee)
		if callee == nil {
			issues = append(issues, Issue{
				Type:    IssueStruct,
				Fn:      fn.Name,
				InstID:  in.ID,
				Message: fmt.Sprintf("call to undefined function @%s", in.Callee),
			})
			continue
		}
		if len(in.Operands) != len(callee.Params) {
			issues = append(issues, Issue{
				Type:   IssueStruct,
				Fn:     fn.Name,
				InstID: in.ID,
				Message: fmt.Sprintf(
					"call passes %d arguments, @%s takes %d",
					len(in.Operands), callee.Name, len(callee.Params)),
			})
		}
	}
	return issues
}

func checkReachability(fn *ir.Function) []Issue {
	reached := make([]bool, len(fn.Blocks))
	stack := []int{0}
	reached[0] = true
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, s := range fn.Blocks[b].Succs {
			if !reached[s] {
				reached[s] = true
				stack = append(stack, s)
			}
		}
	}

	var issues []Issue
	for i, r := range reached {
		if !r {
			issues = append(issues, Issue{
				Type:    IssueStruct,
				Fn:      fn.Name,
				InstID:  -1,
				Message: fmt.Sprintf("block %s is unreachable", fn.Blocks[i].Label),
			})
		}
	}
	return issues
}

// checkStaticBounds flags loads and stores whose constant address falls
// outside the scratchpad.
func checkStaticBounds(fn *ir.Function, cfg config.Config) []Issue {
	var issues []Issue
	for _, in := range fn.Instrs {
		var addrOp ir.Operand
		switch in.Op {
		case ir.OpLoad:
			addrOp = in.Operands[0]
		case ir.OpStore:
			addrOp = in.Operands[1]
		default:
			continue
		}
		if addrOp.Kind != ir.OperandConst {
			continue
		}

		addr := addrOp.Const.Uint()
		size := uint64(in.Elem.Bytes())
		if addr+size > cfg.SPMBytes {
			issues = append(issues, Issue{
				Type:   IssueStruct,
				Fn:     fn.Name,
				InstID: in.ID,
				Message: fmt.Sprintf(
					"%s at 0x%x overruns the %d-byte scratchpad",
					in.Op, addr, cfg.SPMBytes),
			})
		}
	}
	return issues
}

// lintCallGraph rejects recursion. The timed core evaluates calls as a
// unit, so a recursive kernel would only fail deep inside a run.
func lintCallGraph(mod *ir.Module) []Issue {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int)

	var issues []Issue
	var visit func(fn *ir.Function)
	visit = func(fn *ir.Function) {
		color[fn.Name] = gray
		for _, in := range fn.Instrs {
			if in.Op != ir.OpCall {
				continue
			}
			callee := mod.Function(in.Callee)
			if callee == nil {
				continue
			}
			switch color[callee.Name] {
			case white:
				visit(callee)
			case gray:
				issues = append(issues, Issue{
					Type:    IssueStruct,
					Fn:      fn.Name,
					InstID:  in.ID,
					Message: fmt.Sprintf("recursive call into @%s", callee.Name),
				})
			}
		}
		color[fn.Name] = black
	}

	for _, fn := range mod.Funcs {
		if color[fn.Name] == white {
			visit(fn)
		}
	}
	return issues
}
