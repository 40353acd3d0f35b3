package fu

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/ir"
)

var _ = Describe("Pool", func() {
	var p *Pool

	BeforeEach(func() {
		p = NewPool(map[Class]Spec{
			IntALU:  {Cycles: 1, Limit: 2},
			MemPort: {Cycles: 3, Limit: 1},
			Control: {Cycles: 1},
		})
	})

	It("should hand out instances up to the limit", func() {
		for i := 0; i < 2; i++ {
			_, ok, err := p.TryAcquire(IntALU, ir.OpAdd)
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeTrue())
		}
		_, ok, err := p.TryAcquire(IntALU, ir.OpAdd)
		Expect(err).ToNot(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("should free instances on release", func() {
		_, _, _ = p.TryAcquire(MemPort, ir.OpLoad)
		_, ok, _ := p.TryAcquire(MemPort, ir.OpStore)
		Expect(ok).To(BeFalse())

		p.Release(MemPort)
		_, ok, _ = p.TryAcquire(MemPort, ir.OpStore)
		Expect(ok).To(BeTrue())
	})

	It("should treat limit zero as unlimited", func() {
		for i := 0; i < 100; i++ {
			_, ok, err := p.TryAcquire(Control, ir.OpBr)
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeTrue())
		}
	})

	It("should fail fast on an unconfigured class", func() {
		_, _, err := p.TryAcquire(FPDiv, ir.OpFDiv)
		var u *UnconfiguredUnitError
		Expect(err).To(BeAssignableToTypeOf(u))
		Expect(err.Error()).To(ContainSubstring("fp_div"))
	})

	It("should report the latency from the class spec", func() {
		sp, ok, err := p.TryAcquire(MemPort, ir.OpLoad)
		Expect(err).ToNot(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(sp.Cycles).To(Equal(3))
	})

	It("should clear occupancy on reset", func() {
		_, _, _ = p.TryAcquire(MemPort, ir.OpLoad)
		p.Reset()
		Expect(p.InUse(MemPort)).To(Equal(0))
	})
})

var _ = Describe("DefaultClassFor", func() {
	It("should split opcodes across distinct unit classes", func() {
		Expect(DefaultClassFor(ir.OpAdd)).To(Equal(IntALU))
		Expect(DefaultClassFor(ir.OpMul)).To(Equal(IntMul))
		Expect(DefaultClassFor(ir.OpXor)).To(Equal(Bitwise))
		Expect(DefaultClassFor(ir.OpShl)).To(Equal(Shift))
		Expect(DefaultClassFor(ir.OpICmp)).To(Equal(Compare))
		Expect(DefaultClassFor(ir.OpFAdd)).To(Equal(FPAdd))
		Expect(DefaultClassFor(ir.OpLoad)).To(Equal(MemPort))
		Expect(DefaultClassFor(ir.OpBr)).To(Equal(Control))
	})
})
