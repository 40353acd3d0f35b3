package ir

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("EvalBinary", func() {
	It("should wrap integer arithmetic at the type width", func() {
		v, err := EvalBinary(OpAdd, I8, IntValue(I8, 250), IntValue(I8, 10))
		Expect(err).ToNot(HaveOccurred())
		Expect(v.Uint()).To(Equal(uint64(4)))

		v, err = EvalBinary(OpMul, I16, IntValue(I16, 0x8000), IntValue(I16, 2))
		Expect(err).ToNot(HaveOccurred())
		Expect(v.Uint()).To(Equal(uint64(0)))
	})

	It("should distinguish signed and unsigned division", func() {
		a := IntValue(I32, uint64(0xFFFFFFF8)) // -8 as i32
		b := IntValue(I32, 2)

		v, err := EvalBinary(OpSDiv, I32, a, b)
		Expect(err).ToNot(HaveOccurred())
		Expect(v.Int()).To(Equal(int64(-4)))

		v, err = EvalBinary(OpUDiv, I32, a, b)
		Expect(err).ToNot(HaveOccurred())
		Expect(v.Uint()).To(Equal(uint64(0x7FFFFFFC)))
	})

	It("should reject zero divisors", func() {
		for _, op := range []Opcode{OpUDiv, OpSDiv, OpURem, OpSRem} {
			_, err := EvalBinary(op, I32, IntValue(I32, 1), IntValue(I32, 0))
			Expect(err).To(MatchError(ErrDivideByZero))
		}
	})

	It("should wrap shift amounts modulo the operand width", func() {
		v, err := EvalBinary(OpShl, I32, IntValue(I32, 1), IntValue(I32, 33))
		Expect(err).ToNot(HaveOccurred())
		Expect(v.Uint()).To(Equal(uint64(2)))
	})

	It("should sign-extend through arithmetic shifts", func() {
		a := IntValue(I16, uint64(0x8000))
		v, err := EvalBinary(OpAShr, I16, a, IntValue(I16, 3))
		Expect(err).ToNot(HaveOccurred())
		Expect(v.Uint()).To(Equal(uint64(0xF000)))

		v, err = EvalBinary(OpLShr, I16, a, IntValue(I16, 3))
		Expect(err).ToNot(HaveOccurred())
		Expect(v.Uint()).To(Equal(uint64(0x1000)))
	})

	It("should round float math in single precision", func() {
		a := FloatValue(1e8)
		b := FloatValue(1)
		v, err := EvalBinary(OpFAdd, Float, a, b)
		Expect(err).ToNot(HaveOccurred())
		// 1e8 + 1 is not representable as float32.
		Expect(v.Float32()).To(Equal(float32(1e8)))

		dv, err := EvalBinary(OpFAdd, Double, DoubleValue(1e8), DoubleValue(1))
		Expect(err).ToNot(HaveOccurred())
		Expect(dv.Float64()).To(Equal(1e8 + 1))
	})
})

var _ = Describe("EvalCompare", func() {
	It("should distinguish signed and unsigned order", func() {
		a := IntValue(I32, uint64(0xFFFFFFFF)) // -1 as i32
		b := IntValue(I32, 1)

		v, err := EvalCompare(CmpSLT, I32, a, b)
		Expect(err).ToNot(HaveOccurred())
		Expect(v.IsTrue()).To(BeTrue())

		v, err = EvalCompare(CmpULT, I32, a, b)
		Expect(err).ToNot(HaveOccurred())
		Expect(v.IsTrue()).To(BeFalse())
	})

	It("should treat NaN as unordered", func() {
		nan := DoubleValue(math.NaN())
		v, err := EvalCompare(CmpOEQ, Double, nan, nan)
		Expect(err).ToNot(HaveOccurred())
		Expect(v.IsTrue()).To(BeFalse())
	})
})

var _ = Describe("GEPAddress", func() {
	It("should scale indices by the element size", func() {
		addr := GEPAddress(0x1000, I32, []Value{IntValue(I64, 3)})
		Expect(addr).To(Equal(uint64(0x100c)))
	})

	It("should sign-extend negative indices", func() {
		addr := GEPAddress(0x1000, I64, []Value{IntValue(I32, uint64(0xFFFFFFFF))})
		Expect(addr).To(Equal(uint64(0xFF8)))
	})
})

var _ = Describe("FlatMemory", func() {
	It("should store multi-byte values little-endian", func() {
		mem := NewFlatMemory(16)
		Expect(WriteMem(mem, 0, IntValue(I32, 0x11223344))).To(Succeed())

		data, err := mem.ReadBytes(0, 4)
		Expect(err).ToNot(HaveOccurred())
		Expect(data).To(Equal([]byte{0x44, 0x33, 0x22, 0x11}))

		v, err := ReadMem(mem, 0, I32)
		Expect(err).ToNot(HaveOccurred())
		Expect(v.Uint()).To(Equal(uint64(0x11223344)))
	})

	It("should reject out-of-range accesses", func() {
		mem := NewFlatMemory(8)
		_, err := mem.ReadBytes(6, 4)
		Expect(err).To(HaveOccurred())
		Expect(mem.WriteBytes(8, []byte{1})).ToNot(Succeed())
	})
})
