package dma

import (
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/config"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/ir"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/timing"
)

// MemSender carries the engine's chunk requests toward system memory.
// A false return is backpressure; the engine retries next cycle. The
// token comes back through CompleteRead or CompleteWrite.
type MemSender interface {
	SendRead(addr, numBytes uint64, token uint64) bool
	SendWrite(addr uint64, data []byte, token uint64) bool
}

type chunk struct {
	txn *Transaction
	off uint64
	n   uint64
}

// Engine runs the copy queues: host-to-device transactions through the
// read queue, device-to-host through the write queue. Each head
// transaction is chunked into requests no larger than MaxRequestSize,
// and completes no earlier than its size-proportional latency floor.
type Engine struct {
	spec   config.DMASpec
	ctx    timing.Context
	spm    ir.ByteStore
	sender MemSender

	readQ  *Queue
	writeQ *Queue

	nextToken uint64
	pending   map[uint64]chunk
}

// NewEngine builds a DMA engine over the scratchpad.
func NewEngine(
	name string,
	spec config.DMASpec,
	ctx timing.Context,
	spm ir.ByteStore,
	sender MemSender,
) *Engine {
	return &Engine{
		spec:    spec,
		ctx:     ctx,
		spm:     spm,
		sender:  sender,
		readQ:   NewQueue(name+".ReadQueue", spec.BufferSize),
		writeQ:  NewQueue(name+".WriteQueue", spec.BufferSize),
		pending: make(map[uint64]chunk),
	}
}

// Enqueue accepts a transaction; false when its queue is full.
func (e *Engine) Enqueue(t *Transaction) bool {
	q := e.readQ
	if t.Dir == DevToHost {
		q = e.writeQ
	}
	if !q.Push(t) {
		return false
	}
	e.ctx.TickLater()
	return true
}

// Tick advances both queues by one cycle.
func (e *Engine) Tick() (madeProgress bool) {
	madeProgress = e.tickQueue(e.readQ) || madeProgress
	madeProgress = e.tickQueue(e.writeQ) || madeProgress

	if !e.Idle() {
		e.ctx.TickLater()
	}
	return madeProgress
}

func (e *Engine) tickQueue(q *Queue) bool {
	t := q.Head()
	if t == nil {
		return false
	}

	madeProgress := false
	if !t.started {
		t.started = true
		t.minDone = e.ctx.CurrentTick() +
			timing.Tick(e.spec.PerByteLatency)*timing.Tick(t.NumBytes) +
			timing.Tick(e.spec.FixedOverhead)
		madeProgress = true
	}

	madeProgress = e.issueChunks(t) || madeProgress

	if t.settled() && e.ctx.CurrentTick() >= t.minDone {
		q.Pop()
		if t.OnDone != nil {
			t.OnDone()
		}
		madeProgress = true
	}
	return madeProgress
}

func (e *Engine) issueChunks(t *Transaction) bool {
	madeProgress := false
	for t.nextOffset < t.NumBytes {
		n := t.NumBytes - t.nextOffset
		if n > e.spec.MaxRequestSize {
			n = e.spec.MaxRequestSize
		}

		ck := chunk{txn: t, off: t.nextOffset, n: n}
		token := e.nextToken

		var sent bool
		if t.Dir == HostToDev {
			sent = e.sender.SendRead(t.SysAddr+ck.off, n, token)
		} else {
			data, err := e.spm.ReadBytes(t.SPMAddr+ck.off, int(n))
			if err != nil {
				panic(err)
			}
			sent = e.sender.SendWrite(t.SysAddr+ck.off, data, token)
		}
		if !sent {
			break
		}

		e.nextToken++
		e.pending[token] = ck
		t.nextOffset += n
		t.outstanding++
		madeProgress = true
	}
	return madeProgress
}

// CompleteRead lands system-memory data in the scratchpad.
func (e *Engine) CompleteRead(token uint64, data []byte) {
	ck, ok := e.pending[token]
	if !ok {
		return
	}
	delete(e.pending, token)

	if err := e.spm.WriteBytes(ck.txn.SPMAddr+ck.off, data); err != nil {
		panic(err)
	}
	ck.txn.outstanding--
	e.ctx.TickLater()
}

// CompleteWrite acknowledges a chunk written to system memory.
func (e *Engine) CompleteWrite(token uint64) {
	ck, ok := e.pending[token]
	if !ok {
		return
	}
	delete(e.pending, token)

	ck.txn.outstanding--
	e.ctx.TickLater()
}

// ReadDepth reports the host-to-device queue depth.
func (e *Engine) ReadDepth() int {
	return e.readQ.Depth()
}

// WriteDepth reports the device-to-host queue depth.
func (e *Engine) WriteDepth() int {
	return e.writeQ.Depth()
}

// Idle reports whether nothing is queued or in flight.
func (e *Engine) Idle() bool {
	return e.readQ.Depth() == 0 && e.writeQ.Depth() == 0 && len(e.pending) == 0
}

// Reset aborts all queued and in-flight transactions without running
// their completion callbacks. Responses for chunks already on the wire
// are dropped when they arrive.
func (e *Engine) Reset() {
	e.readQ.Clear()
	e.writeQ.Clear()
	e.pending = make(map[uint64]chunk)
}
