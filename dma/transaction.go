// Package dma models the accelerator's DMA engine: queued host-device
// copy transactions, chunked into bounded-size memory requests, with a
// transfer-size-proportional latency floor.
package dma

import "github.com/Josh-Slycord/gem5-SALAM-dev-sub001/timing"

// Direction says which way a transaction moves data.
type Direction uint8

const (
	// HostToDev copies from system memory into the scratchpad.
	HostToDev Direction = iota
	// DevToHost copies from the scratchpad into system memory.
	DevToHost
)

func (d Direction) String() string {
	if d == DevToHost {
		return "dev-to-host"
	}
	return "host-to-dev"
}

// Transaction is one queued copy. SysAddr is the system-memory side,
// SPMAddr the scratchpad side.
type Transaction struct {
	ID        string
	Dir       Direction
	SysAddr   uint64
	SPMAddr   uint64
	NumBytes  uint64
	OnDone    func()

	started     bool
	nextOffset  uint64
	outstanding int
	minDone     timing.Tick
}

// issued reports whether every chunk has been sent.
func (t *Transaction) issued() bool {
	return t.started && t.nextOffset >= t.NumBytes
}

// settled reports whether all chunk responses have arrived.
func (t *Transaction) settled() bool {
	return t.issued() && t.outstanding == 0
}
