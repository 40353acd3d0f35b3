package telemetry

import "github.com/Josh-Slycord/gem5-SALAM-dev-sub001/timing"

// RateLimited forwards cycle-granularity events only every Interval
// cycles, so a sink with real I/O behind it does not slow the core
// down. Discrete events (issue, complete, stall, start/end) always pass
// through. CycleUpdate decides the sampled cycles; QueueState and
// FUState pass only when their cycle was sampled, so callers publish
// CycleUpdate first.
type RateLimited struct {
	Inner    Sink
	Interval timing.Tick

	lastCycle timing.Tick
	seen      bool
}

// NewRateLimited wraps a sink with a publish interval.
func NewRateLimited(inner Sink, interval timing.Tick) *RateLimited {
	if interval == 0 {
		interval = 1
	}
	return &RateLimited{Inner: inner, Interval: interval}
}

func (r *RateLimited) due(cycle timing.Tick) bool {
	if !r.seen || cycle >= r.lastCycle+r.Interval {
		r.seen = true
		r.lastCycle = cycle
		return true
	}
	return false
}

func (r *RateLimited) SimulationStart(simName, accName string) {
	r.seen = false
	r.Inner.SimulationStart(simName, accName)
}

func (r *RateLimited) SimulationEnd(totalCycles timing.Tick) {
	r.Inner.SimulationEnd(totalCycles)
}

func (r *RateLimited) CycleUpdate(cycle timing.Tick) {
	if r.due(cycle) {
		r.Inner.CycleUpdate(cycle)
	}
}

func (r *RateLimited) QueueState(cycle timing.Tick, readDepth, writeDepth, computeDepth int) {
	if cycle == r.lastCycle && r.seen {
		r.Inner.QueueState(cycle, readDepth, writeDepth, computeDepth)
	}
}

func (r *RateLimited) FUState(cycle timing.Tick, unit string, busy int, utilization float64) {
	if cycle == r.lastCycle && r.seen {
		r.Inner.FUState(cycle, unit, busy, utilization)
	}
}

func (r *RateLimited) InstructionIssue(cycle timing.Tick, id int, opcode, unit string) {
	r.Inner.InstructionIssue(cycle, id, opcode, unit)
}

func (r *RateLimited) InstructionComplete(cycle timing.Tick, id int) {
	r.Inner.InstructionComplete(cycle, id)
}

func (r *RateLimited) Stall(cycle timing.Tick, id int, reason string) {
	r.Inner.Stall(cycle, id, reason)
}

func (r *RateLimited) Heartbeat() {
	r.Inner.Heartbeat()
}
