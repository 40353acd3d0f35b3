// Package sysmem provides the system-memory endpoint the DMA engine
// copies against: a fixed-latency component serving read and write
// requests in arrival order, with functional access for the host to
// stage buffers.
package sysmem

import (
	"github.com/sarchlab/akita/v4/mem/mem"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/port"
)

type pendingRsp struct {
	due uint64
	rsp sim.Msg
}

// Comp is the memory component. All requests see the same fixed
// latency; there is no bank or channel model.
type Comp struct {
	*sim.TickingComponent

	topPort sim.Port
	storage *mem.Storage
	latency uint64

	cycle   uint64
	pending []pendingRsp
}

// TopPort exposes the request port for wiring.
func (c *Comp) TopPort() sim.Port {
	return c.topPort
}

// Read accesses the backing storage functionally, outside simulated
// time. The host driver stages input buffers this way.
func (c *Comp) Read(addr, numBytes uint64) ([]byte, error) {
	return c.storage.Read(addr, numBytes)
}

// Write accesses the backing storage functionally, outside simulated
// time.
func (c *Comp) Write(addr uint64, data []byte) error {
	return c.storage.Write(addr, data)
}

// Tick serves one cycle: deliver due responses, then accept new
// requests.
func (c *Comp) Tick() (madeProgress bool) {
	c.cycle++

	madeProgress = c.respond() || madeProgress
	madeProgress = c.accept() || madeProgress

	if len(c.pending) > 0 {
		c.TickLater()
	}
	return madeProgress
}

func (c *Comp) respond() bool {
	madeProgress := false
	for len(c.pending) > 0 {
		head := c.pending[0]
		if head.due > c.cycle {
			break
		}
		if err := c.topPort.Send(head.rsp); err != nil {
			break
		}
		c.pending = c.pending[1:]
		madeProgress = true
	}
	return madeProgress
}

func (c *Comp) accept() bool {
	madeProgress := false
	for {
		item := c.topPort.PeekIncoming()
		if item == nil {
			break
		}

		switch req := item.(type) {
		case *mem.ReadReq:
			data, err := c.storage.Read(req.Address, req.AccessByteSize)
			if err != nil {
				panic(err)
			}
			rsp := mem.DataReadyRspBuilder{}.
				WithSrc(c.topPort.AsRemote()).
				WithDst(req.Src).
				WithRspTo(req.ID).
				WithData(data).
				Build()
			c.pending = append(c.pending, pendingRsp{
				due: c.cycle + c.latency,
				rsp: rsp,
			})
		case *mem.WriteReq:
			if err := c.storage.Write(req.Address, req.Data); err != nil {
				panic(err)
			}
			rsp := mem.WriteDoneRspBuilder{}.
				WithSrc(c.topPort.AsRemote()).
				WithDst(req.Src).
				WithRspTo(req.ID).
				Build()
			c.pending = append(c.pending, pendingRsp{
				due: c.cycle + c.latency,
				rsp: rsp,
			})
		default:
			panic("sysmem: unexpected message type")
		}

		c.topPort.RetrieveIncoming()
		madeProgress = true
	}
	return madeProgress
}

// Builder can build system memory components.
type Builder struct {
	engine   sim.Engine
	freq     sim.Freq
	latency  uint64
	capacity uint64
}

// MakeBuilder returns a builder with a 1 MiB capacity and a 10-cycle
// access latency.
func MakeBuilder() Builder {
	return Builder{
		latency:  10,
		capacity: 1 << 20,
	}
}

// WithEngine sets the engine that drives the component.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the component.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithLatency sets the access latency in cycles.
func (b Builder) WithLatency(latency uint64) Builder {
	b.latency = latency
	return b
}

// WithCapacity sets the storage size in bytes.
func (b Builder) WithCapacity(capacity uint64) Builder {
	b.capacity = capacity
	return b
}

// Build creates the memory component.
func (b Builder) Build(name string) *Comp {
	c := &Comp{
		storage: mem.NewStorage(b.capacity),
		latency: b.latency,
	}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)
	c.topPort = port.New(c, 8, 8, name+".TopPort")
	return c
}
