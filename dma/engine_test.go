package dma

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/config"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/ir"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/timing"
)

type readReq struct {
	addr, n, token uint64
}

type writeReq struct {
	addr  uint64
	data  []byte
	token uint64
}

type fakeSender struct {
	reads   []readReq
	writes  []writeReq
	blocked bool
}

func (f *fakeSender) SendRead(addr, n, token uint64) bool {
	if f.blocked {
		return false
	}
	f.reads = append(f.reads, readReq{addr, n, token})
	return true
}

func (f *fakeSender) SendWrite(addr uint64, data []byte, token uint64) bool {
	if f.blocked {
		return false
	}
	d := make([]byte, len(data))
	copy(d, data)
	f.writes = append(f.writes, writeReq{addr, d, token})
	return true
}

var _ = Describe("Engine", func() {
	var (
		ctx    *timing.ManualContext
		spm    *ir.FlatMemory
		sender *fakeSender
		eng    *Engine
		spec   config.DMASpec
	)

	BeforeEach(func() {
		ctx = &timing.ManualContext{}
		spm = ir.NewFlatMemory(1024)
		sender = &fakeSender{}
		spec = config.DMASpec{
			Type:           "basic",
			MaxRequestSize: 64,
			BufferSize:     4,
			PerByteLatency: 1,
			FixedOverhead:  10,
		}
		eng = NewEngine("Eng", spec, ctx, spm, sender)
	})

	step := func(n int) {
		for i := 0; i < n; i++ {
			eng.Tick()
			ctx.Advance()
		}
	}

	It("should chunk a copy into bounded requests", func() {
		done := false
		ok := eng.Enqueue(&Transaction{
			Dir:      HostToDev,
			SysAddr:  0x400,
			SPMAddr:  0,
			NumBytes: 100,
			OnDone:   func() { done = true },
		})
		Expect(ok).To(BeTrue())

		step(1)
		Expect(sender.reads).To(HaveLen(2))
		Expect(sender.reads[0].n).To(Equal(uint64(64)))
		Expect(sender.reads[0].addr).To(Equal(uint64(0x400)))
		Expect(sender.reads[1].n).To(Equal(uint64(36)))
		Expect(sender.reads[1].addr).To(Equal(uint64(0x440)))
		Expect(done).To(BeFalse())
	})

	It("should land read responses in the scratchpad", func() {
		done := false
		eng.Enqueue(&Transaction{
			Dir: HostToDev, SysAddr: 0x400, SPMAddr: 16, NumBytes: 8,
			OnDone: func() { done = true },
		})
		step(1)
		Expect(sender.reads).To(HaveLen(1))

		eng.CompleteRead(sender.reads[0].token,
			[]byte{1, 2, 3, 4, 5, 6, 7, 8})
		step(100)

		Expect(done).To(BeTrue())
		got, err := spm.ReadBytes(16, 8)
		Expect(err).ToNot(HaveOccurred())
		Expect(got).To(Equal([]byte{1, 2, 3, 4, 5, 6, 7, 8}))
	})

	It("should hold completion until the latency floor", func() {
		done := false
		eng.Enqueue(&Transaction{
			Dir: HostToDev, SysAddr: 0, SPMAddr: 0, NumBytes: 100,
			OnDone: func() { done = true },
		})
		step(1)
		for _, r := range sender.reads {
			eng.CompleteRead(r.token, make([]byte, r.n))
		}

		// Floor is 1*100 + 10 cycles from the start tick.
		step(105)
		Expect(done).To(BeFalse())
		step(10)
		Expect(done).To(BeTrue())
	})

	It("should send scratchpad data on device-to-host copies", func() {
		Expect(spm.WriteBytes(32, []byte{9, 8, 7, 6})).To(Succeed())

		done := false
		eng.Enqueue(&Transaction{
			Dir: DevToHost, SysAddr: 0x200, SPMAddr: 32, NumBytes: 4,
			OnDone: func() { done = true },
		})
		step(1)
		Expect(sender.writes).To(HaveLen(1))
		Expect(sender.writes[0].addr).To(Equal(uint64(0x200)))
		Expect(sender.writes[0].data).To(Equal([]byte{9, 8, 7, 6}))

		eng.CompleteWrite(sender.writes[0].token)
		step(100)
		Expect(done).To(BeTrue())
	})

	It("should retry after backpressure", func() {
		sender.blocked = true
		eng.Enqueue(&Transaction{
			Dir: HostToDev, SysAddr: 0, SPMAddr: 0, NumBytes: 8,
		})
		step(3)
		Expect(sender.reads).To(BeEmpty())

		sender.blocked = false
		step(1)
		Expect(sender.reads).To(HaveLen(1))
	})

	It("should complete same-queue transactions in arrival order", func() {
		var order []int
		for i := 0; i < 2; i++ {
			i := i
			eng.Enqueue(&Transaction{
				Dir: HostToDev, SysAddr: uint64(i) * 64, SPMAddr: uint64(i) * 64,
				NumBytes: 8,
				OnDone:   func() { order = append(order, i) },
			})
		}

		// The second transaction must not issue while the first is the
		// head of the queue.
		step(1)
		Expect(sender.reads).To(HaveLen(1))

		for i := 0; i < 100; i++ {
			for _, r := range sender.reads {
				eng.CompleteRead(r.token, make([]byte, r.n))
			}
			eng.Tick()
			ctx.Advance()
		}
		Expect(order).To(Equal([]int{0, 1}))
	})

	It("should drop queued and in-flight work on reset", func() {
		done := false
		eng.Enqueue(&Transaction{
			Dir: HostToDev, SysAddr: 0x400, SPMAddr: 0, NumBytes: 8,
			OnDone: func() { done = true },
		})
		eng.Enqueue(&Transaction{
			Dir: DevToHost, SysAddr: 0x200, SPMAddr: 0, NumBytes: 8,
		})
		step(1)
		Expect(sender.reads).To(HaveLen(1))

		eng.Reset()
		Expect(eng.Idle()).To(BeTrue())
		Expect(eng.ReadDepth()).To(Equal(0))
		Expect(eng.WriteDepth()).To(Equal(0))

		// The response for the chunk already on the wire lands nowhere
		// and must not revive the aborted transaction.
		eng.CompleteRead(sender.reads[0].token, make([]byte, 8))
		step(200)
		Expect(done).To(BeFalse())
		Expect(eng.Idle()).To(BeTrue())
	})

	It("should reject transactions beyond the queue capacity", func() {
		spec.BufferSize = 1
		eng = NewEngine("Eng", spec, ctx, spm, sender)

		Expect(eng.Enqueue(&Transaction{Dir: HostToDev, NumBytes: 4})).To(BeTrue())
		Expect(eng.Enqueue(&Transaction{Dir: HostToDev, NumBytes: 4})).To(BeFalse())
		Expect(eng.Enqueue(&Transaction{Dir: DevToHost, NumBytes: 4})).To(BeTrue())
	})

	It("should report queue depths", func() {
		eng.Enqueue(&Transaction{Dir: HostToDev, NumBytes: 4})
		eng.Enqueue(&Transaction{Dir: DevToHost, NumBytes: 4})
		eng.Enqueue(&Transaction{Dir: DevToHost, NumBytes: 4})

		Expect(eng.ReadDepth()).To(Equal(1))
		Expect(eng.WriteDepth()).To(Equal(2))
		Expect(eng.Idle()).To(BeFalse())
	})
})
