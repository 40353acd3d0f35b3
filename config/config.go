// Package config loads and validates the accelerator description: the
// functional-unit inventory, the DMA engine parameters, the MMIO window
// layout, and the scratchpad size.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/fu"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/ir"
)

// UnitSpec configures one functional-unit class.
type UnitSpec struct {
	Cycles int `yaml:"cycles"`
	Limit  int `yaml:"limit"`
}

// DMASpec configures the DMA engine.
type DMASpec struct {
	Type           string `yaml:"type"`
	MaxRequestSize uint64 `yaml:"max_request_size"`
	BufferSize     int    `yaml:"buffer_size"`
	PerByteLatency int    `yaml:"per_byte_latency"`
	FixedOverhead  int    `yaml:"fixed_overhead"`
}

// MMIOSpec places the control-register window in the host address map.
type MMIOSpec struct {
	Base      uint64 `yaml:"base"`
	Alignment uint64 `yaml:"alignment"`
}

// Config is the full accelerator description.
type Config struct {
	Units       map[string]UnitSpec `yaml:"units"`
	OpcodeUnits map[string]string   `yaml:"opcode_units"`
	DMA         DMASpec             `yaml:"dma"`
	MMIO        MMIOSpec            `yaml:"mmio"`
	SPMBytes    uint64              `yaml:"spm_bytes"`
}

// Default returns a configuration with a small inventory of every unit
// class at typical latencies, a 64-byte-burst DMA engine, and a 64 KiB
// scratchpad.
func Default() Config {
	return Config{
		Units: map[string]UnitSpec{
			string(fu.IntALU):  {Cycles: 1, Limit: 2},
			string(fu.IntMul):  {Cycles: 3, Limit: 1},
			string(fu.IntDiv):  {Cycles: 12, Limit: 1},
			string(fu.Bitwise): {Cycles: 1, Limit: 2},
			string(fu.Shift):   {Cycles: 1, Limit: 1},
			string(fu.Compare): {Cycles: 1, Limit: 1},
			string(fu.FPAdd):   {Cycles: 5, Limit: 1},
			string(fu.FPMul):   {Cycles: 4, Limit: 1},
			string(fu.FPDiv):   {Cycles: 12, Limit: 1},
			string(fu.GEP):     {Cycles: 1, Limit: 2},
			string(fu.MemPort): {Cycles: 2, Limit: 2},
			string(fu.Control): {Cycles: 1},
			string(fu.Call):    {Cycles: 1, Limit: 1},
		},
		DMA: DMASpec{
			Type:           "basic",
			MaxRequestSize: 64,
			BufferSize:     8,
			PerByteLatency: 1,
			FixedOverhead:  10,
		},
		MMIO: MMIOSpec{
			Base:      0x1000_0000,
			Alignment: 8,
		},
		SPMBytes: 64 * 1024,
	}
}

// Load reads a configuration file. Fields absent from the file keep
// their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(data)
}

// Parse decodes a configuration document over the defaults.
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects descriptions no hardware could have.
func (c Config) Validate() error {
	for name, u := range c.Units {
		if u.Cycles < 1 {
			return fmt.Errorf("unit %q: cycles must be at least 1", name)
		}
		if u.Limit < 0 {
			return fmt.Errorf("unit %q: negative instance limit", name)
		}
	}
	for op, class := range c.OpcodeUnits {
		if _, ok := ir.ParseOpcode(op); !ok {
			return fmt.Errorf("opcode_units: unknown opcode %q", op)
		}
		if _, ok := c.Units[class]; !ok {
			return fmt.Errorf("opcode_units: %q maps to unconfigured unit %q", op, class)
		}
	}
	if c.DMA.MaxRequestSize == 0 {
		return fmt.Errorf("dma: max_request_size must be positive")
	}
	if c.DMA.BufferSize < 1 {
		return fmt.Errorf("dma: buffer_size must be at least 1")
	}
	if c.DMA.PerByteLatency < 0 || c.DMA.FixedOverhead < 0 {
		return fmt.Errorf("dma: negative latency")
	}
	if c.MMIO.Alignment == 0 || c.MMIO.Base%c.MMIO.Alignment != 0 {
		return fmt.Errorf("mmio: base 0x%x not aligned to %d", c.MMIO.Base, c.MMIO.Alignment)
	}
	if c.SPMBytes == 0 {
		return fmt.Errorf("spm_bytes must be positive")
	}
	return nil
}

// UnitSpecs converts the unit table to the pool's form.
func (c Config) UnitSpecs() map[fu.Class]fu.Spec {
	out := make(map[fu.Class]fu.Spec, len(c.Units))
	for name, u := range c.Units {
		out[fu.Class(name)] = fu.Spec{Cycles: u.Cycles, Limit: u.Limit}
	}
	return out
}

// ClassFor resolves the unit class for an opcode, honoring the
// opcode_units overrides.
func (c Config) ClassFor(op ir.Opcode) fu.Class {
	if class, ok := c.OpcodeUnits[op.String()]; ok {
		return fu.Class(class)
	}
	return fu.DefaultClassFor(op)
}
