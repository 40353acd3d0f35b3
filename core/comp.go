// Package core implements the accelerator compute unit: a ticking
// component that executes a loaded kernel cycle by cycle against its
// functional-unit inventory, scratchpad, and DMA engine, controlled by
// the host through memory-mapped registers.
package core

import (
	"encoding/binary"

	"github.com/sarchlab/akita/v4/mem/mem"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/config"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/dma"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/ir"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/telemetry"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/timing"
)

// Control-register status values. The host starts an invocation by
// writing StatusStart to the status register and polls until the done
// bit is set; writing StatusIdle resets the unit.
const (
	StatusIdle    uint64 = 0x0
	StatusStart   uint64 = 0x1
	StatusRunning uint64 = 0x2
	StatusDone    uint64 = 0x4
	StatusError   uint64 = 0x8
)

// ArgRegOffset is where the argument registers start inside the MMIO
// window; each argument takes ArgRegStride bytes.
const (
	ArgRegOffset uint64 = 0x08
	ArgRegStride uint64 = 0x08
)

// Comp is one accelerator compute unit.
type Comp struct {
	*sim.TickingComponent

	cfg  config.Config
	mod  *ir.Module
	sink telemetry.Sink

	ctrlPort  sim.Port
	memPort   sim.Port
	memRemote sim.RemotePort

	spm   *ir.FlatMemory
	sched *scheduler
	dma   *dma.Engine

	cycle    timing.Tick
	wantTick bool

	status     uint64
	args       []uint64
	wasRunning bool

	ctrlRsps  []sim.Msg
	reqTokens map[string]uint64
}

// CtrlPort exposes the control-register port for wiring.
func (c *Comp) CtrlPort() sim.Port {
	return c.ctrlPort
}

// MemPort exposes the system-memory port for wiring.
func (c *Comp) MemPort() sim.Port {
	return c.memPort
}

// SetMemRemote names the system-memory port this unit copies against.
func (c *Comp) SetMemRemote(remote sim.RemotePort) {
	c.memRemote = remote
}

// SPM exposes the scratchpad for test inspection.
func (c *Comp) SPM() *ir.FlatMemory {
	return c.spm
}

// MMIOBase returns the base address of the control-register window.
func (c *Comp) MMIOBase() uint64 {
	return c.cfg.MMIO.Base
}

// Status returns the current control-register value.
func (c *Comp) Status() uint64 {
	return c.status
}

// TotalCycles reports the length of the last invocation.
func (c *Comp) TotalCycles() timing.Tick {
	return c.sched.totalCycles()
}

// Result returns the entry function's return value of the last
// invocation.
func (c *Comp) Result() (ir.Value, bool) {
	return c.sched.result()
}

// ExecError returns the fatal execution error of the last invocation,
// if any.
func (c *Comp) ExecError() error {
	return c.sched.err
}

// CurrentTick implements timing.Context.
func (c *Comp) CurrentTick() timing.Tick {
	return c.cycle
}

// TickLater implements timing.Context.
func (c *Comp) TickLater() {
	c.wantTick = true
}

// SendRead implements dma.MemSender.
func (c *Comp) SendRead(addr, numBytes uint64, token uint64) bool {
	if !c.memPort.CanSend() {
		return false
	}
	req := mem.ReadReqBuilder{}.
		WithAddress(addr).
		WithSrc(c.memPort.AsRemote()).
		WithDst(c.memRemote).
		WithByteSize(numBytes).
		Build()
	if err := c.memPort.Send(req); err != nil {
		return false
	}
	c.reqTokens[req.ID] = token
	return true
}

// SendWrite implements dma.MemSender.
func (c *Comp) SendWrite(addr uint64, data []byte, token uint64) bool {
	if !c.memPort.CanSend() {
		return false
	}
	req := mem.WriteReqBuilder{}.
		WithAddress(addr).
		WithData(data).
		WithSrc(c.memPort.AsRemote()).
		WithDst(c.memRemote).
		Build()
	if err := c.memPort.Send(req); err != nil {
		return false
	}
	c.reqTokens[req.ID] = token
	return true
}

// Tick runs the unit for one cycle.
func (c *Comp) Tick() (madeProgress bool) {
	c.cycle++

	madeProgress = c.sendCtrlRsps() || madeProgress
	madeProgress = c.handleMemRsps() || madeProgress
	madeProgress = c.handleCtrl() || madeProgress
	madeProgress = c.sched.tick() || madeProgress
	madeProgress = c.dma.Tick() || madeProgress

	c.observe()

	if c.wantTick {
		c.wantTick = false
		madeProgress = true
	}
	return madeProgress
}

func (c *Comp) sendCtrlRsps() bool {
	madeProgress := false
	for len(c.ctrlRsps) > 0 {
		if err := c.ctrlPort.Send(c.ctrlRsps[0]); err != nil {
			break
		}
		c.ctrlRsps = c.ctrlRsps[1:]
		madeProgress = true
	}
	return madeProgress
}

func (c *Comp) handleMemRsps() bool {
	madeProgress := false
	for {
		item := c.memPort.PeekIncoming()
		if item == nil {
			break
		}

		switch rsp := item.(type) {
		case *mem.DataReadyRsp:
			if token, ok := c.reqTokens[rsp.RespondTo]; ok {
				delete(c.reqTokens, rsp.RespondTo)
				c.dma.CompleteRead(token, rsp.Data)
			}
		case *mem.WriteDoneRsp:
			if token, ok := c.reqTokens[rsp.RespondTo]; ok {
				delete(c.reqTokens, rsp.RespondTo)
				c.dma.CompleteWrite(token)
			}
		default:
			panic("compute unit: unexpected message on mem port")
		}

		c.memPort.RetrieveIncoming()
		madeProgress = true
	}
	return madeProgress
}

func (c *Comp) handleCtrl() bool {
	madeProgress := false
	for {
		item := c.ctrlPort.PeekIncoming()
		if item == nil {
			break
		}

		switch req := item.(type) {
		case *mem.WriteReq:
			c.handleCtrlWrite(req)
		case *mem.ReadReq:
			c.handleCtrlRead(req)
		case *dma.CopyReq:
			if !c.handleCopy(req) {
				return madeProgress
			}
		default:
			panic("compute unit: unexpected message on ctrl port")
		}

		c.ctrlPort.RetrieveIncoming()
		madeProgress = true
	}
	return madeProgress
}

func (c *Comp) handleCtrlWrite(req *mem.WriteReq) {
	offset := req.Address - c.cfg.MMIO.Base
	value := ir.Uint64LE(req.Data)

	switch {
	case offset == 0:
		c.commandWrite(value)
	case offset >= ArgRegOffset:
		idx := int((offset - ArgRegOffset) / ArgRegStride)
		if idx < len(c.args) {
			c.args[idx] = value
		}
	}

	rsp := mem.WriteDoneRspBuilder{}.
		WithSrc(c.ctrlPort.AsRemote()).
		WithDst(req.Src).
		WithRspTo(req.ID).
		Build()
	c.ctrlRsps = append(c.ctrlRsps, rsp)
	c.wantTick = true
}

func (c *Comp) commandWrite(value uint64) {
	switch value {
	case StatusStart:
		if c.status == StatusRunning {
			return
		}
		args := make([]ir.Value, len(c.mod.Entry().Params))
		for i, p := range c.mod.Entry().Params {
			args[i] = ir.Value{Ty: p.Ty, Bits: c.args[i] & p.Ty.Mask()}
		}
		c.status = StatusRunning
		c.wasRunning = true
		c.sink.SimulationStart(c.mod.Name, c.Name())
		if err := c.sched.start(args); err != nil {
			c.status = StatusDone | StatusError
		}
	case StatusIdle:
		c.sched.reset()
		c.dma.Reset()
		c.reqTokens = make(map[string]uint64)
		c.status = StatusIdle
		c.wasRunning = false
		for i := range c.args {
			c.args[i] = 0
		}
	}
}

func (c *Comp) handleCtrlRead(req *mem.ReadReq) {
	offset := req.Address - c.cfg.MMIO.Base

	var value uint64
	switch {
	case offset == 0:
		value = c.status
	case offset >= ArgRegOffset:
		idx := int((offset - ArgRegOffset) / ArgRegStride)
		if idx < len(c.args) {
			value = c.args[idx]
		}
	}

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], value)
	data := make([]byte, req.AccessByteSize)
	copy(data, buf[:])

	rsp := mem.DataReadyRspBuilder{}.
		WithSrc(c.ctrlPort.AsRemote()).
		WithDst(req.Src).
		WithRspTo(req.ID).
		WithData(data).
		Build()
	c.ctrlRsps = append(c.ctrlRsps, rsp)
	c.wantTick = true
}

func (c *Comp) handleCopy(req *dma.CopyReq) bool {
	txn := &dma.Transaction{
		ID:       req.ID,
		SysAddr:  req.SysAddr,
		SPMAddr:  req.SPMAddr,
		NumBytes: req.NumBytes,
		Dir:      req.Dir,
	}
	txn.OnDone = func() {
		rsp := dma.CopyDoneRspBuilder{}.
			WithSrc(c.ctrlPort.AsRemote()).
			WithDst(req.Src).
			WithRspTo(req.ID).
			Build()
		c.ctrlRsps = append(c.ctrlRsps, rsp)
		c.wantTick = true
	}
	return c.dma.Enqueue(txn)
}

// observe publishes the cycle-granularity telemetry and catches the
// end of an invocation.
func (c *Comp) observe() {
	if c.sched.running {
		c.sink.CycleUpdate(c.cycle)
		c.sink.QueueState(c.cycle,
			c.dma.ReadDepth(), c.dma.WriteDepth(), c.sched.memBusy)
		for _, class := range c.sched.pool.Classes() {
			spec, _ := c.sched.pool.SpecOf(class)
			util := 0.0
			if spec.Limit > 0 {
				util = float64(c.sched.pool.InUse(class)) / float64(spec.Limit)
			}
			c.sink.FUState(c.cycle, string(class),
				c.sched.pool.InUse(class), util)
		}
	}

	if c.wasRunning && c.sched.finished {
		c.wasRunning = false
		if c.sched.err != nil {
			c.status = StatusDone | StatusError
			Trace("ExecError", "Err", c.sched.err.Error())
		} else {
			c.status = StatusDone
		}
		c.sink.SimulationEnd(c.sched.totalCycles())
	}
}
