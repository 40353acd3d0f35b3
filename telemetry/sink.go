// Package telemetry streams scheduler events to an observer: run
// start/end, per-cycle queue and unit occupancy, instruction issue and
// completion, and stalls. The core publishes unconditionally; sinks
// decide what to keep.
package telemetry

import (
	"context"
	"log/slog"

	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/timing"
)

// Sink receives execution events. Implementations must be cheap when
// idle; the scheduler calls into the sink on its hot path.
type Sink interface {
	SimulationStart(simName, accName string)
	SimulationEnd(totalCycles timing.Tick)

	CycleUpdate(cycle timing.Tick)
	QueueState(cycle timing.Tick, readDepth, writeDepth, computeDepth int)
	FUState(cycle timing.Tick, unit string, busy int, utilization float64)

	InstructionIssue(cycle timing.Tick, id int, opcode, unit string)
	InstructionComplete(cycle timing.Tick, id int)
	Stall(cycle timing.Tick, id int, reason string)

	Heartbeat()
}

// NullSink drops everything.
type NullSink struct{}

func (NullSink) SimulationStart(string, string)                      {}
func (NullSink) SimulationEnd(timing.Tick)                           {}
func (NullSink) CycleUpdate(timing.Tick)                             {}
func (NullSink) QueueState(timing.Tick, int, int, int)               {}
func (NullSink) FUState(timing.Tick, string, int, float64)           {}
func (NullSink) InstructionIssue(timing.Tick, int, string, string)   {}
func (NullSink) InstructionComplete(timing.Tick, int)                {}
func (NullSink) Stall(timing.Tick, int, string)                      {}
func (NullSink) Heartbeat()                                          {}

// SlogSink logs events through a structured logger.
type SlogSink struct {
	Logger *slog.Logger
	Level  slog.Level
}

// NewSlogSink logs to the given logger at debug level.
func NewSlogSink(l *slog.Logger) *SlogSink {
	return &SlogSink{Logger: l, Level: slog.LevelDebug}
}

func (s *SlogSink) log(msg string, args ...any) {
	s.Logger.Log(context.Background(), s.Level, msg, args...)
}

func (s *SlogSink) SimulationStart(simName, accName string) {
	s.log("simulation start", "sim", simName, "accelerator", accName)
}

func (s *SlogSink) SimulationEnd(totalCycles timing.Tick) {
	s.log("simulation end", "total_cycles", uint64(totalCycles))
}

func (s *SlogSink) CycleUpdate(cycle timing.Tick) {
	s.log("cycle", "cycle", uint64(cycle))
}

func (s *SlogSink) QueueState(cycle timing.Tick, readDepth, writeDepth, computeDepth int) {
	s.log("queue state", "cycle", uint64(cycle),
		"read", readDepth, "write", writeDepth, "compute", computeDepth)
}

func (s *SlogSink) FUState(cycle timing.Tick, unit string, busy int, utilization float64) {
	s.log("fu state", "cycle", uint64(cycle),
		"unit", unit, "busy", busy, "utilization", utilization)
}

func (s *SlogSink) InstructionIssue(cycle timing.Tick, id int, opcode, unit string) {
	s.log("issue", "cycle", uint64(cycle), "inst", id, "op", opcode, "unit", unit)
}

func (s *SlogSink) InstructionComplete(cycle timing.Tick, id int) {
	s.log("complete", "cycle", uint64(cycle), "inst", id)
}

func (s *SlogSink) Stall(cycle timing.Tick, id int, reason string) {
	s.log("stall", "cycle", uint64(cycle), "inst", id, "reason", reason)
}

func (s *SlogSink) Heartbeat() {
	s.log("heartbeat")
}
