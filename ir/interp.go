package ir

import (
	"errors"
	"fmt"
)

// DefaultMaxSteps bounds a functional run so a kernel that never
// reaches ret fails instead of hanging the host.
const DefaultMaxSteps = 10_000_000

const maxCallDepth = 64

// ErrStepLimit is returned when a functional run exceeds its step
// budget.
var ErrStepLimit = errors.New("functional execution exceeded step limit")

// Interpreter executes a module functionally, with no notion of time.
// It shares the evaluation core with the cycle-accurate scheduler, so
// the two agree bit for bit; the verifier relies on that.
type Interpreter struct {
	Mod      *Module
	Mem      ByteStore
	MaxSteps int
}

// NewInterpreter builds an interpreter over the given memory.
func NewInterpreter(mod *Module, mem ByteStore) *Interpreter {
	return &Interpreter{Mod: mod, Mem: mem, MaxSteps: DefaultMaxSteps}
}

// Run executes the entry function with the given arguments and returns
// its result. Memory effects are left in it.Mem.
func (it *Interpreter) Run(args ...Value) (Value, error) {
	entry := it.Mod.Entry()
	if entry == nil {
		return Value{}, Malformedf(0, "missing entry function @%s", EntryName)
	}
	steps := 0
	return it.call(entry, args, 0, &steps)
}

// CallFunction executes a named function functionally. The timed core
// uses this to evaluate call instructions.
func (it *Interpreter) CallFunction(name string, args ...Value) (Value, error) {
	fn := it.Mod.Function(name)
	if fn == nil {
		return Value{}, fmt.Errorf("call to undefined function @%s", name)
	}
	steps := 0
	return it.call(fn, args, 0, &steps)
}

func (it *Interpreter) call(fn *Function, args []Value, depth int, steps *int) (Value, error) {
	if depth > maxCallDepth {
		return Value{}, fmt.Errorf("call depth limit exceeded in @%s", fn.Name)
	}
	if len(args) != len(fn.Params) {
		return Value{}, fmt.Errorf(
			"@%s expects %d arguments, got %d", fn.Name, len(fn.Params), len(args))
	}

	regs := make([]Value, fn.NumRegs)
	for i, p := range fn.Params {
		regs[p.Reg] = Value{Ty: p.Ty, Bits: args[i].Bits & p.Ty.Mask()}
	}

	cur, prev := 0, -1
	for {
		blk := fn.Blocks[cur]

		// Phis read their inputs simultaneously at block entry, so
		// resolve them all against the pre-entry register state before
		// committing any.
		var phiVals []Value
		for _, in := range blk.Instrs {
			if in.Op != OpPhi {
				break
			}
			v, err := it.phiValue(fn, in, prev, regs)
			if err != nil {
				return Value{}, err
			}
			phiVals = append(phiVals, v)
		}
		for i, in := range blk.Instrs {
			if in.Op != OpPhi {
				break
			}
			regs[in.Result] = phiVals[i]
		}

		for _, in := range blk.Instrs {
			if in.Op == OpPhi {
				continue
			}
			*steps++
			if *steps > it.MaxSteps {
				return Value{}, ErrStepLimit
			}

			next, ret, done, err := it.step(fn, in, regs, depth, steps)
			if err != nil {
				return Value{}, err
			}
			if done {
				return ret, nil
			}
			if in.Op == OpBr {
				prev, cur = cur, next
			}
		}
	}
}

func (it *Interpreter) phiValue(fn *Function, in *Instruction, prev int, regs []Value) (Value, error) {
	for k, blk := range in.Incoming {
		if blk == prev {
			return operandValue(in.Operands[k], regs), nil
		}
	}
	return Value{}, fmt.Errorf(
		"phi %%%s has no incoming value for predecessor block %d in @%s",
		fn.RegName(in.Result), prev, fn.Name)
}

func operandValue(o Operand, regs []Value) Value {
	if o.Kind == OperandReg {
		return regs[o.Reg]
	}
	return o.Const
}

// step executes one non-phi instruction. For br it returns the taken
// block index; for ret it returns (value, done).
func (it *Interpreter) step(fn *Function, in *Instruction, regs []Value, depth int, steps *int) (next int, ret Value, done bool, err error) {
	switch in.Op {
	case OpAdd, OpSub, OpMul, OpUDiv, OpSDiv, OpURem, OpSRem,
		OpAnd, OpOr, OpXor, OpShl, OpLShr, OpAShr,
		OpFAdd, OpFSub, OpFMul, OpFDiv:
		a := operandValue(in.Operands[0], regs)
		b := operandValue(in.Operands[1], regs)
		v, e := EvalBinary(in.Op, in.Ty, a, b)
		if e != nil {
			return 0, Value{}, false, e
		}
		regs[in.Result] = v

	case OpICmp, OpFCmp:
		a := operandValue(in.Operands[0], regs)
		b := operandValue(in.Operands[1], regs)
		v, e := EvalCompare(in.Pred, in.Elem, a, b)
		if e != nil {
			return 0, Value{}, false, e
		}
		regs[in.Result] = v

	case OpLoad:
		addr := operandValue(in.Operands[0], regs).Uint()
		v, e := ReadMem(it.Mem, addr, in.Elem)
		if e != nil {
			return 0, Value{}, false, e
		}
		regs[in.Result] = v

	case OpStore:
		val := operandValue(in.Operands[0], regs)
		addr := operandValue(in.Operands[1], regs).Uint()
		if e := WriteMem(it.Mem, addr, val); e != nil {
			return 0, Value{}, false, e
		}

	case OpGEP:
		base := operandValue(in.Operands[0], regs).Uint()
		var indices []Value
		for _, o := range in.Operands[1:] {
			indices = append(indices, operandValue(o, regs))
		}
		regs[in.Result] = IntValue(Ptr, GEPAddress(base, in.Elem, indices))

	case OpCall:
		callee := it.Mod.Function(in.Callee)
		if callee == nil {
			return 0, Value{}, false, fmt.Errorf(
				"call to undefined function @%s", in.Callee)
		}
		var args []Value
		for _, o := range in.Operands {
			args = append(args, operandValue(o, regs))
		}
		v, e := it.call(callee, args, depth+1, steps)
		if e != nil {
			return 0, Value{}, false, e
		}
		if in.Result != NoReg {
			regs[in.Result] = v
		}

	case OpBr:
		if len(in.Operands) == 1 {
			return in.Operands[0].Block, Value{}, false, nil
		}
		if operandValue(in.Operands[0], regs).IsTrue() {
			return in.Operands[1].Block, Value{}, false, nil
		}
		return in.Operands[2].Block, Value{}, false, nil

	case OpRet:
		if len(in.Operands) == 1 {
			return 0, operandValue(in.Operands[0], regs), true, nil
		}
		return 0, Value{Ty: Void}, true, nil

	default:
		return 0, Value{}, false, Malformedf(0, "cannot execute %s", in.Op)
	}
	return 0, Value{}, false, nil
}
