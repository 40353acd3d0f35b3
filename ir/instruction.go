package ir

import "fmt"

// Opcode identifies the operation an instruction performs. The
// instruction set is the subset of LLVM opcodes the accelerator core
// models; anything outside this set is rejected at load time.
type Opcode uint8

const (
	OpInvalid Opcode = iota
	OpAdd
	OpSub
	OpMul
	OpUDiv
	OpSDiv
	OpURem
	OpSRem
	OpAnd
	OpOr
	OpXor
	OpShl
	OpLShr
	OpAShr
	OpFAdd
	OpFSub
	OpFMul
	OpFDiv
	OpICmp
	OpFCmp
	OpBr
	OpPhi
	OpLoad
	OpStore
	OpGEP
	OpCall
	OpRet
)

var opcodeNames = map[Opcode]string{
	OpAdd:   "add",
	OpSub:   "sub",
	OpMul:   "mul",
	OpUDiv:  "udiv",
	OpSDiv:  "sdiv",
	OpURem:  "urem",
	OpSRem:  "srem",
	OpAnd:   "and",
	OpOr:    "or",
	OpXor:   "xor",
	OpShl:   "shl",
	OpLShr:  "lshr",
	OpAShr:  "ashr",
	OpFAdd:  "fadd",
	OpFSub:  "fsub",
	OpFMul:  "fmul",
	OpFDiv:  "fdiv",
	OpICmp:  "icmp",
	OpFCmp:  "fcmp",
	OpBr:    "br",
	OpPhi:   "phi",
	OpLoad:  "load",
	OpStore: "store",
	OpGEP:   "getelementptr",
	OpCall:  "call",
	OpRet:   "ret",
}

var opcodesByName = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeNames))
	for op, name := range opcodeNames {
		m[name] = op
	}
	return m
}()

// ParseOpcode resolves a textual opcode name.
func ParseOpcode(s string) (Opcode, bool) {
	op, ok := opcodesByName[s]
	return op, ok
}

func (o Opcode) String() string {
	if n, ok := opcodeNames[o]; ok {
		return n
	}
	return fmt.Sprintf("opcode(%d)", uint8(o))
}

// IsTerminator reports whether the opcode ends a basic block.
func (o Opcode) IsTerminator() bool {
	return o == OpBr || o == OpRet
}

// IsMemory reports whether the opcode touches the scratchpad.
func (o Opcode) IsMemory() bool {
	return o == OpLoad || o == OpStore
}

// CmpPred selects the comparison performed by icmp and fcmp.
type CmpPred uint8

const (
	CmpInvalid CmpPred = iota
	CmpEQ
	CmpNE
	CmpUGT
	CmpUGE
	CmpULT
	CmpULE
	CmpSGT
	CmpSGE
	CmpSLT
	CmpSLE
	CmpOEQ
	CmpONE
	CmpOGT
	CmpOGE
	CmpOLT
	CmpOLE
)

var predNames = map[CmpPred]string{
	CmpEQ:  "eq",
	CmpNE:  "ne",
	CmpUGT: "ugt",
	CmpUGE: "uge",
	CmpULT: "ult",
	CmpULE: "ule",
	CmpSGT: "sgt",
	CmpSGE: "sge",
	CmpSLT: "slt",
	CmpSLE: "sle",
	CmpOEQ: "oeq",
	CmpONE: "one",
	CmpOGT: "ogt",
	CmpOGE: "oge",
	CmpOLT: "olt",
	CmpOLE: "ole",
}

var predsByName = func() map[string]CmpPred {
	m := make(map[string]CmpPred, len(predNames))
	for p, name := range predNames {
		m[name] = p
	}
	return m
}()

func (p CmpPred) String() string {
	if n, ok := predNames[p]; ok {
		return n
	}
	return fmt.Sprintf("pred(%d)", uint8(p))
}

// RegID names a virtual register within one function.
type RegID int

// NoReg marks instructions that do not produce a value.
const NoReg RegID = -1

// OperandKind discriminates the operand variants.
type OperandKind uint8

const (
	OperandConst OperandKind = iota
	OperandReg
	OperandBlock
)

// Operand is a single input of an instruction: an immediate constant, a
// register reference, or a basic-block reference (branch targets and
// phi incoming edges).
type Operand struct {
	Kind  OperandKind
	Reg   RegID
	Const Value
	Block int
}

// ConstOperand wraps a constant value.
func ConstOperand(v Value) Operand {
	return Operand{Kind: OperandConst, Const: v}
}

// RegOperand references a register.
func RegOperand(id RegID) Operand {
	return Operand{Kind: OperandReg, Reg: id}
}

// BlockOperand references a basic block by index.
func BlockOperand(idx int) Operand {
	return Operand{Kind: OperandBlock, Block: idx}
}

// Instruction is the single tagged-variant instruction record. It is
// created by the loader and immutable afterwards; all per-invocation
// scheduling state lives with the scheduler, keyed by ID.
//
// Operand layout by opcode:
//
//	arith/bitwise/shift/cmp  two value operands
//	br                       [target] or [cond, taken, fallthrough]
//	phi                      value operands, Incoming[k] names the
//	                         predecessor block Operands[k] arrives from
//	load                     [ptr]
//	store                    [value, ptr]
//	getelementptr            [base, index...]
//	call                     argument values, Callee names the target
//	ret                      [] or [value]
type Instruction struct {
	ID       int
	Op       Opcode
	Pred     CmpPred
	Ty       Type // result type, Void when none
	Elem     Type // element type for load/store/getelementptr
	Operands []Operand
	Incoming []int
	Result   RegID
	Block    int
	Callee   string
}

func (in *Instruction) String() string {
	if in.Op == OpICmp || in.Op == OpFCmp {
		return fmt.Sprintf("#%d %s %s", in.ID, in.Op, in.Pred)
	}
	return fmt.Sprintf("#%d %s", in.ID, in.Op)
}
