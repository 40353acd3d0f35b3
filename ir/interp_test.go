package ir

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Interpreter", func() {
	It("should run the vector-add kernel over flat memory", func() {
		mod, err := Parse(vecAddSrc)
		Expect(err).ToNot(HaveOccurred())

		mem := NewFlatMemory(4096)
		a := []uint64{1, 2, 3, 4}
		b := []uint64{20, 60, 120, 200}
		for i := range a {
			Expect(WriteMem(mem, uint64(0x000+4*i), IntValue(I32, a[i]))).To(Succeed())
			Expect(WriteMem(mem, uint64(0x100+4*i), IntValue(I32, b[i]))).To(Succeed())
		}

		it := NewInterpreter(mod, mem)
		_, err = it.Run(
			IntValue(Ptr, 0x000),
			IntValue(Ptr, 0x100),
			IntValue(Ptr, 0x200),
			IntValue(I32, 4),
		)
		Expect(err).ToNot(HaveOccurred())

		want := []uint64{21, 62, 123, 204}
		for i, w := range want {
			v, err := ReadMem(mem, uint64(0x200+4*i), I32)
			Expect(err).ToNot(HaveOccurred())
			Expect(v.Uint()).To(Equal(w))
		}
	})

	It("should return the entry function's value", func() {
		mod, err := Parse(`
define i32 @top(i32 %x) {
    %y = mul i32 %x, 3
    ret i32 %y
}
`)
		Expect(err).ToNot(HaveOccurred())

		it := NewInterpreter(mod, NewFlatMemory(64))
		v, err := it.Run(IntValue(I32, 7))
		Expect(err).ToNot(HaveOccurred())
		Expect(v.Uint()).To(Equal(uint64(21)))
	})

	It("should evaluate calls to defined functions", func() {
		mod, err := Parse(`
define i32 @double(i32 %x) {
    %y = add i32 %x, %x
    ret i32 %y
}

define i32 @top(i32 %x) {
    %y = call i32 @double(i32 %x)
    %z = call i32 @double(i32 %y)
    ret i32 %z
}
`)
		Expect(err).ToNot(HaveOccurred())

		it := NewInterpreter(mod, NewFlatMemory(64))
		v, err := it.Run(IntValue(I32, 5))
		Expect(err).ToNot(HaveOccurred())
		Expect(v.Uint()).To(Equal(uint64(20)))
	})

	It("should resolve phis against the actual predecessor", func() {
		mod, err := Parse(`
define i32 @top(i1 %take) {
entry:
    br i1 %take, label %a, label %b
a:
    br label %join
b:
    br label %join
join:
    %v = phi i32 [ 11, %a ], [ 22, %b ]
    ret i32 %v
}
`)
		Expect(err).ToNot(HaveOccurred())

		it := NewInterpreter(mod, NewFlatMemory(64))
		v, err := it.Run(IntValue(I1, 1))
		Expect(err).ToNot(HaveOccurred())
		Expect(v.Uint()).To(Equal(uint64(11)))

		v, err = it.Run(IntValue(I1, 0))
		Expect(err).ToNot(HaveOccurred())
		Expect(v.Uint()).To(Equal(uint64(22)))
	})

	It("should read phi inputs before committing any of them", func() {
		// The two phis swap registers each iteration; committing in
		// textual order would break the swap.
		mod, err := Parse(`
define i32 @top(i32 %n) {
entry:
    br label %loop
loop:
    %i = phi i32 [ 0, %entry ], [ %inext, %loop ]
    %x = phi i32 [ 1, %entry ], [ %y, %loop ]
    %y = phi i32 [ 2, %entry ], [ %x, %loop ]
    %inext = add i32 %i, 1
    %cont = icmp slt i32 %inext, %n
    br i1 %cont, label %loop, label %exit
exit:
    ret i32 %x
}
`)
		Expect(err).ToNot(HaveOccurred())

		it := NewInterpreter(mod, NewFlatMemory(64))
		v, err := it.Run(IntValue(I32, 3))
		Expect(err).ToNot(HaveOccurred())
		Expect(v.Uint()).To(Equal(uint64(1)))
	})

	It("should fail on integer division by zero", func() {
		mod, err := Parse(`
define i32 @top(i32 %x) {
    %y = sdiv i32 %x, 0
    ret i32 %y
}
`)
		Expect(err).ToNot(HaveOccurred())

		it := NewInterpreter(mod, NewFlatMemory(64))
		_, err = it.Run(IntValue(I32, 1))
		Expect(err).To(MatchError(ErrDivideByZero))
	})

	It("should stop a non-terminating kernel at the step limit", func() {
		mod, err := Parse(`
define void @top() {
spin:
    br label %spin
}
`)
		Expect(err).ToNot(HaveOccurred())

		it := NewInterpreter(mod, NewFlatMemory(64))
		it.MaxSteps = 1000
		_, err = it.Run()
		Expect(err).To(MatchError(ErrStepLimit))
	})

	It("should fail an out-of-range access", func() {
		mod, err := Parse(`
define void @top(ptr %p) {
    store i32 1, ptr %p
    ret void
}
`)
		Expect(err).ToNot(HaveOccurred())

		it := NewInterpreter(mod, NewFlatMemory(16))
		_, err = it.Run(IntValue(Ptr, 64))
		Expect(err).To(HaveOccurred())
	})
})
