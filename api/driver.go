// Package api defines the host driver for the accelerator: it stages
// buffers in system memory, programs the control registers, and runs
// queued commands against the device in order.
package api

import (
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/akita/v4/sim/directconnection"

	"github.com/sarchlab/akita/v4/mem/mem"

	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/core"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/dma"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/ir"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/sysmem"
)

// Driver provides the interface to control an accelerator.
type Driver interface {
	// RegisterAccelerator connects the driver to a compute unit's
	// control port.
	RegisterAccelerator(acc *core.Comp)

	// RegisterMemory connects the compute unit's memory port to system
	// memory. Call after RegisterAccelerator.
	RegisterMemory(m *sysmem.Comp)

	// WriteMemory stages data in system memory, outside simulated time.
	WriteMemory(addr uint64, data []byte) error

	// ReadMemory reads system memory, outside simulated time.
	ReadMemory(addr, numBytes uint64) ([]byte, error)

	// CopyToDevice queues a DMA copy from system memory into the
	// scratchpad.
	CopyToDevice(spmAddr, sysAddr, numBytes uint64)

	// CopyFromDevice queues a DMA copy from the scratchpad into system
	// memory.
	CopyFromDevice(sysAddr, spmAddr, numBytes uint64)

	// SetArg queues a write to one argument register.
	SetArg(index int, value uint64)

	// Start queues the start command.
	Start()

	// Wait queues a poll of the status register until the done bit
	// rises.
	Wait()

	// Reset queues the reset command, returning the unit to idle.
	Reset()

	// Run executes all queued commands to completion.
	Run()
}

type portFactory interface {
	make(c sim.Component, name string) sim.Port
}

type taskKind int

const (
	taskWrite taskKind = iota
	taskPoll
	taskCopy
)

// hostTask is one queued command. Tasks run strictly in order; the
// next task is not issued until the previous one's response arrives.
type hostTask struct {
	kind taskKind

	addr  uint64
	value uint64
	mask  uint64

	dir      dma.Direction
	sysAddr  uint64
	spmAddr  uint64
	numBytes uint64

	sent bool
}

type driverImpl struct {
	*sim.TickingComponent

	portFactory portFactory

	ctrlPort   sim.Port
	ctrlRemote sim.RemotePort

	acc    *core.Comp
	memory *sysmem.Comp

	tasks []*hostTask
}

// Tick runs the driver for one cycle.
func (d *driverImpl) Tick() (madeProgress bool) {
	madeProgress = d.processRsps() || madeProgress
	madeProgress = d.issueHead() || madeProgress

	return madeProgress
}

func (d *driverImpl) processRsps() bool {
	item := d.ctrlPort.PeekIncoming()
	if item == nil {
		return false
	}
	if len(d.tasks) == 0 {
		panic("driver: response with no task in flight")
	}
	task := d.tasks[0]

	switch rsp := item.(type) {
	case *mem.WriteDoneRsp:
		d.popTask()
	case *mem.DataReadyRsp:
		if ir.Uint64LE(rsp.Data)&task.mask != 0 {
			d.popTask()
		} else {
			task.sent = false
		}
	case *dma.CopyDoneRsp:
		d.popTask()
	default:
		panic("driver: unexpected message on ctrl port")
	}

	d.ctrlPort.RetrieveIncoming()
	return true
}

func (d *driverImpl) popTask() {
	d.tasks = d.tasks[1:]
}

func (d *driverImpl) issueHead() bool {
	if len(d.tasks) == 0 {
		return false
	}
	task := d.tasks[0]
	if task.sent {
		return false
	}

	var msg sim.Msg
	switch task.kind {
	case taskWrite:
		data := make([]byte, 8)
		ir.PutUint64LE(data, task.value)
		msg = mem.WriteReqBuilder{}.
			WithAddress(task.addr).
			WithData(data).
			WithSrc(d.ctrlPort.AsRemote()).
			WithDst(d.ctrlRemote).
			Build()
	case taskPoll:
		msg = mem.ReadReqBuilder{}.
			WithAddress(task.addr).
			WithByteSize(8).
			WithSrc(d.ctrlPort.AsRemote()).
			WithDst(d.ctrlRemote).
			Build()
	case taskCopy:
		msg = dma.CopyReqBuilder{}.
			WithSrc(d.ctrlPort.AsRemote()).
			WithDst(d.ctrlRemote).
			WithDirection(task.dir).
			WithSysAddr(task.sysAddr).
			WithSPMAddr(task.spmAddr).
			WithNumBytes(task.numBytes).
			Build()
	}

	if err := d.ctrlPort.Send(msg); err != nil {
		return false
	}
	task.sent = true
	return true
}

// RegisterAccelerator connects the driver to a compute unit.
func (d *driverImpl) RegisterAccelerator(acc *core.Comp) {
	d.acc = acc
	d.ctrlRemote = acc.CtrlPort().AsRemote()

	conn := directconnection.MakeBuilder().
		WithEngine(d.Engine).
		WithFreq(d.Freq).
		Build(d.Name() + ".CtrlConn")
	conn.PlugIn(d.ctrlPort)
	conn.PlugIn(acc.CtrlPort())
}

// RegisterMemory connects the accelerator's memory port to system
// memory.
func (d *driverImpl) RegisterMemory(m *sysmem.Comp) {
	if d.acc == nil {
		panic("driver: register the accelerator before memory")
	}
	d.memory = m

	conn := directconnection.MakeBuilder().
		WithEngine(d.Engine).
		WithFreq(d.Freq).
		Build(d.Name() + ".MemConn")
	conn.PlugIn(d.acc.MemPort())
	conn.PlugIn(m.TopPort())

	d.acc.SetMemRemote(m.TopPort().AsRemote())
}

func (d *driverImpl) WriteMemory(addr uint64, data []byte) error {
	return d.memory.Write(addr, data)
}

func (d *driverImpl) ReadMemory(addr, numBytes uint64) ([]byte, error) {
	return d.memory.Read(addr, numBytes)
}

func (d *driverImpl) CopyToDevice(spmAddr, sysAddr, numBytes uint64) {
	d.tasks = append(d.tasks, &hostTask{
		kind:     taskCopy,
		dir:      dma.HostToDev,
		sysAddr:  sysAddr,
		spmAddr:  spmAddr,
		numBytes: numBytes,
	})
}

func (d *driverImpl) CopyFromDevice(sysAddr, spmAddr, numBytes uint64) {
	d.tasks = append(d.tasks, &hostTask{
		kind:     taskCopy,
		dir:      dma.DevToHost,
		sysAddr:  sysAddr,
		spmAddr:  spmAddr,
		numBytes: numBytes,
	})
}

func (d *driverImpl) SetArg(index int, value uint64) {
	base := d.acc.MMIOBase()
	d.tasks = append(d.tasks, &hostTask{
		kind:  taskWrite,
		addr:  base + core.ArgRegOffset + uint64(index)*core.ArgRegStride,
		value: value,
	})
}

func (d *driverImpl) Start() {
	d.tasks = append(d.tasks, &hostTask{
		kind:  taskWrite,
		addr:  d.acc.MMIOBase(),
		value: core.StatusStart,
	})
}

func (d *driverImpl) Wait() {
	d.tasks = append(d.tasks, &hostTask{
		kind: taskPoll,
		addr: d.acc.MMIOBase(),
		mask: core.StatusDone,
	})
}

func (d *driverImpl) Reset() {
	d.tasks = append(d.tasks, &hostTask{
		kind:  taskWrite,
		addr:  d.acc.MMIOBase(),
		value: core.StatusIdle,
	})
}

// Run runs all the queued commands in the driver.
func (d *driverImpl) Run() {
	d.TickNow()
	if err := d.Engine.Run(); err != nil {
		panic(err)
	}
}
