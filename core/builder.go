package core

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/config"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/dma"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/ir"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/port"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/telemetry"
)

// Builder can create compute units.
type Builder struct {
	engine sim.Engine
	freq   sim.Freq
	cfg    config.Config
	mod    *ir.Module
	sink   telemetry.Sink
}

// NewBuilder returns a builder with the default configuration and a
// null telemetry sink.
func NewBuilder() Builder {
	return Builder{
		cfg:  config.Default(),
		sink: telemetry.NullSink{},
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the unit.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithConfig sets the hardware description.
func (b Builder) WithConfig(cfg config.Config) Builder {
	b.cfg = cfg
	return b
}

// WithModule sets the kernel the unit executes.
func (b Builder) WithModule(mod *ir.Module) Builder {
	b.mod = mod
	return b
}

// WithTelemetry sets the event sink.
func (b Builder) WithTelemetry(sink telemetry.Sink) Builder {
	b.sink = sink
	return b
}

// Build creates a compute unit. It fails when the configuration is
// invalid or the kernel's dependence graph cannot be built.
func (b Builder) Build(name string) (*Comp, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}
	if b.mod == nil || b.mod.Entry() == nil {
		return nil, ir.Malformedf(0, "missing entry function @%s", ir.EntryName)
	}

	c := &Comp{
		cfg:       b.cfg,
		mod:       b.mod,
		sink:      b.sink,
		spm:       ir.NewFlatMemory(b.cfg.SPMBytes),
		args:      make([]uint64, len(b.mod.Entry().Params)),
		reqTokens: make(map[string]uint64),
	}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)
	c.ctrlPort = port.New(c, 8, 8, name+".CtrlPort")
	c.memPort = port.New(c, 8, 8, name+".MemPort")

	sched, err := newScheduler(b.cfg, b.mod, c.spm, c, b.sink)
	if err != nil {
		return nil, err
	}
	c.sched = sched
	c.dma = dma.NewEngine(name+".DMA", b.cfg.DMA, c, c.spm, c)

	return c, nil
}
