package ir

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const vecAddSrc = `
; c[i] = a[i] + b[i]
define void @top(ptr %a, ptr %b, ptr %c, i32 %n) {
entry:
    br label %loop
loop:
    %i = phi i32 [ 0, %entry ], [ %inext, %loop ]
    %pa = getelementptr i32, ptr %a, i32 %i
    %pb = getelementptr i32, ptr %b, i32 %i
    %va = load i32, ptr %pa
    %vb = load i32, ptr %pb
    %sum = add i32 %va, %vb
    %pc = getelementptr i32, ptr %c, i32 %i
    store i32 %sum, ptr %pc
    %inext = add i32 %i, 1
    %cont = icmp slt i32 %inext, %n
    br i1 %cont, label %loop, label %exit
exit:
    ret void
}
`

var _ = Describe("Parse", func() {
	It("should load a vector-add kernel", func() {
		mod, err := Parse(vecAddSrc)
		Expect(err).ToNot(HaveOccurred())

		fn := mod.Entry()
		Expect(fn).ToNot(BeNil())
		Expect(fn.Name).To(Equal("top"))
		Expect(fn.RetTy).To(Equal(Void))
		Expect(fn.Params).To(HaveLen(4))
		Expect(fn.Params[0].Ty).To(Equal(Ptr))
		Expect(fn.Params[3].Ty).To(Equal(I32))
		Expect(fn.Blocks).To(HaveLen(3))
		Expect(fn.Blocks[0].Label).To(Equal("entry"))
		Expect(fn.Blocks[1].Label).To(Equal("loop"))
		Expect(fn.Blocks[2].Label).To(Equal("exit"))
	})

	It("should wire successor sets from terminators", func() {
		mod, err := Parse(vecAddSrc)
		Expect(err).ToNot(HaveOccurred())

		fn := mod.Entry()
		Expect(fn.Blocks[0].Succs).To(Equal([]int{1}))
		Expect(fn.Blocks[1].Succs).To(Equal([]int{1, 2}))
		Expect(fn.Blocks[2].Succs).To(BeEmpty())
	})

	It("should record phi incoming edges", func() {
		mod, err := Parse(vecAddSrc)
		Expect(err).ToNot(HaveOccurred())

		phi := mod.Entry().Blocks[1].Instrs[0]
		Expect(phi.Op).To(Equal(OpPhi))
		Expect(phi.Incoming).To(Equal([]int{0, 1}))
		Expect(phi.Operands[0].Kind).To(Equal(OperandConst))
		Expect(phi.Operands[0].Const.Uint()).To(Equal(uint64(0)))
		Expect(phi.Operands[1].Kind).To(Equal(OperandReg))
	})

	It("should number instructions in program order", func() {
		mod, err := Parse(vecAddSrc)
		Expect(err).ToNot(HaveOccurred())

		fn := mod.Entry()
		for id, in := range fn.Instrs {
			Expect(in.ID).To(Equal(id))
		}
		Expect(fn.Instrs[0].Op).To(Equal(OpBr))
		Expect(fn.Instrs[len(fn.Instrs)-1].Op).To(Equal(OpRet))
	})

	It("should accept hex and negative constants", func() {
		mod, err := Parse(`
define i64 @top() {
    %x = xor i64 0xff, -1
    ret i64 %x
}
`)
		Expect(err).ToNot(HaveOccurred())
		in := mod.Entry().Instrs[0]
		Expect(in.Operands[0].Const.Uint()).To(Equal(uint64(0xff)))
		Expect(in.Operands[1].Const.Int()).To(Equal(int64(-1)))
	})

	It("should reject a module without the entry function", func() {
		_, err := Parse(`
define void @helper() {
    ret void
}
`)
		Expect(err).To(HaveOccurred())
		Expect(IsMalformed(err)).To(BeTrue())
	})

	It("should reject an unsupported opcode", func() {
		_, err := Parse(`
define void @top() {
    %x = fancyop i32 1, 2
    ret void
}
`)
		Expect(IsMalformed(err)).To(BeTrue())
	})

	It("should reject a block without a terminator", func() {
		_, err := Parse(`
define void @top() {
entry:
    %x = add i32 1, 2
}
`)
		Expect(IsMalformed(err)).To(BeTrue())
	})

	It("should reject a phi after a non-phi instruction", func() {
		_, err := Parse(`
define void @top() {
entry:
    br label %next
next:
    %x = add i32 1, 2
    %p = phi i32 [ 0, %entry ]
    ret void
}
`)
		Expect(IsMalformed(err)).To(BeTrue())
	})

	It("should reject a branch to an unknown block", func() {
		_, err := Parse(`
define void @top() {
    br label %nowhere
}
`)
		Expect(IsMalformed(err)).To(BeTrue())
	})

	It("should reject duplicate block labels", func() {
		_, err := Parse(`
define void @top() {
body:
    br label %body
body:
    ret void
}
`)
		Expect(IsMalformed(err)).To(BeTrue())
	})

	It("should report the offending line number", func() {
		_, err := Parse("define void @top() {\n    bogus i32 1\n}\n")
		var m *MalformedIRError
		Expect(err).To(BeAssignableToTypeOf(m))
		Expect(err.(*MalformedIRError).Line).To(Equal(2))
	})
})
