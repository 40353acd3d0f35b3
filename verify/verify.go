// Package verify cross-checks the cycle-accurate core against the
// functional interpreter. Both engines share the evaluation core, so a
// disagreement in memory or return value points at the scheduler, and
// a shared wrong answer points at the kernel. A static lint pass runs
// first to catch kernels the core would reject mid-run.
package verify

import (
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/config"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/core"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/ir"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/telemetry"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/timing"
)

// MemInit stages bytes in the scratchpad before both runs.
type MemInit struct {
	Addr uint64
	Data []byte
}

// Region names a scratchpad range to compare after both runs.
type Region struct {
	Name     string
	Addr     uint64
	NumBytes uint64
}

// Mismatch is one byte where the two engines disagree.
type Mismatch struct {
	Region string
	Addr   uint64
	Func   byte
	Timed  byte
}

// Report holds the outcome of one verification run.
type Report struct {
	LintIssues []Issue

	FuncErr   error
	FuncValue ir.Value
	FuncHas   bool

	TimedErr   error
	TimedValue ir.Value
	TimedHas   bool

	Cycles     timing.Tick
	Mismatches []Mismatch
}

// OK reports whether both engines ran clean and agreed.
func (r *Report) OK() bool {
	if len(r.LintIssues) > 0 || r.FuncErr != nil || r.TimedErr != nil {
		return false
	}
	if len(r.Mismatches) > 0 {
		return false
	}
	if r.FuncHas != r.TimedHas {
		return false
	}
	if r.FuncHas && r.FuncValue.Bits != r.TimedValue.Bits {
		return false
	}
	return true
}

// Run lints the kernel, executes it on both engines over identical
// scratchpad images, and compares the outputs.
func Run(
	mod *ir.Module,
	cfg config.Config,
	args []ir.Value,
	inits []MemInit,
	outputs []Region,
) *Report {
	r := &Report{LintIssues: RunLint(mod, cfg)}

	funcMem := ir.NewFlatMemory(cfg.SPMBytes)
	timedMem := ir.NewFlatMemory(cfg.SPMBytes)
	for _, init := range inits {
		if err := funcMem.WriteBytes(init.Addr, init.Data); err != nil {
			r.FuncErr = err
			return r
		}
		if err := timedMem.WriteBytes(init.Addr, init.Data); err != nil {
			r.TimedErr = err
			return r
		}
	}

	interp := ir.NewInterpreter(mod, funcMem)
	v, err := interp.Run(args...)
	r.FuncErr = err
	if err == nil {
		r.FuncValue = v
		r.FuncHas = v.Ty != ir.Void
	}

	res, err := core.Execute(cfg, mod, timedMem, args, telemetry.NullSink{})
	r.TimedErr = err
	if err == nil {
		r.TimedValue = res.Value
		r.TimedHas = res.HasValue
		r.Cycles = res.Cycles
	}

	if r.FuncErr == nil && r.TimedErr == nil {
		r.Mismatches = compareRegions(funcMem, timedMem, outputs)
	}
	return r
}

func compareRegions(funcMem, timedMem *ir.FlatMemory, outputs []Region) []Mismatch {
	var mismatches []Mismatch
	for _, region := range outputs {
		fb, err := funcMem.ReadBytes(region.Addr, int(region.NumBytes))
		if err != nil {
			continue
		}
		tb, err := timedMem.ReadBytes(region.Addr, int(region.NumBytes))
		if err != nil {
			continue
		}
		for i := range fb {
			if fb[i] != tb[i] {
				mismatches = append(mismatches, Mismatch{
					Region: region.Name,
					Addr:   region.Addr + uint64(i),
					Func:   fb[i],
					Timed:  tb[i],
				})
			}
		}
	}
	return mismatches
}
