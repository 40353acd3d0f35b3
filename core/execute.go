package core

import (
	"errors"

	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/config"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/ir"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/telemetry"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/timing"
)

// ErrCycleLimit is returned when a standalone run does not reach ret
// within the cycle budget.
var ErrCycleLimit = errors.New("execution exceeded cycle limit")

const defaultMaxCycles = 50_000_000

// ExecResult summarizes one standalone invocation.
type ExecResult struct {
	Cycles   timing.Tick
	Value    ir.Value
	HasValue bool
	Issued   uint64
	Stalls   uint64
}

// Execute runs the entry kernel to completion without an event engine.
// Verification and offline tools use this; simulations go through the
// Comp component instead.
func Execute(
	cfg config.Config,
	mod *ir.Module,
	spm *ir.FlatMemory,
	args []ir.Value,
	sink telemetry.Sink,
) (ExecResult, error) {
	ctx := &timing.ManualContext{}
	s, err := newScheduler(cfg, mod, spm, ctx, sink)
	if err != nil {
		return ExecResult{}, err
	}
	if err := s.start(args); err != nil {
		return ExecResult{}, err
	}

	for i := 0; i < defaultMaxCycles && !s.finished; i++ {
		ctx.Advance()
		s.tick()
	}
	if !s.finished {
		return ExecResult{}, ErrCycleLimit
	}
	if s.err != nil {
		return ExecResult{}, s.err
	}

	v, ok := s.result()
	return ExecResult{
		Cycles:   s.totalCycles(),
		Value:    v,
		HasValue: ok,
		Issued:   s.issuedCount,
		Stalls:   s.stallCount,
	}, nil
}
