package ir

// The evaluation core is shared by the cycle-accurate scheduler and the
// untimed interpreter, so both produce bit-identical results.

type binFn func(ty Type, a, b Value) (Value, error)

var binOps = map[Opcode]binFn{
	OpAdd:  func(ty Type, a, b Value) (Value, error) { return IntValue(ty, a.Uint()+b.Uint()), nil },
	OpSub:  func(ty Type, a, b Value) (Value, error) { return IntValue(ty, a.Uint()-b.Uint()), nil },
	OpMul:  func(ty Type, a, b Value) (Value, error) { return IntValue(ty, a.Uint()*b.Uint()), nil },
	OpAnd:  func(ty Type, a, b Value) (Value, error) { return IntValue(ty, a.Uint()&b.Uint()), nil },
	OpOr:   func(ty Type, a, b Value) (Value, error) { return IntValue(ty, a.Uint()|b.Uint()), nil },
	OpXor:  func(ty Type, a, b Value) (Value, error) { return IntValue(ty, a.Uint()^b.Uint()), nil },
	OpUDiv: divide(func(a, b uint64) uint64 { return a / b }),
	OpURem: divide(func(a, b uint64) uint64 { return a % b }),
	OpSDiv: sdivide(func(a, b int64) int64 { return a / b }),
	OpSRem: sdivide(func(a, b int64) int64 { return a % b }),
	OpShl: func(ty Type, a, b Value) (Value, error) {
		return IntValue(ty, a.Uint()<<shiftAmount(ty, b)), nil
	},
	OpLShr: func(ty Type, a, b Value) (Value, error) {
		return IntValue(ty, a.Uint()>>shiftAmount(ty, b)), nil
	},
	OpAShr: func(ty Type, a, b Value) (Value, error) {
		return IntValue(ty, uint64(a.Int()>>shiftAmount(ty, b))), nil
	},
	OpFAdd: floatOp(func(a, b float64) float64 { return a + b }),
	OpFSub: floatOp(func(a, b float64) float64 { return a - b }),
	OpFMul: floatOp(func(a, b float64) float64 { return a * b }),
	OpFDiv: floatOp(func(a, b float64) float64 { return a / b }),
}

func divide(f func(a, b uint64) uint64) binFn {
	return func(ty Type, a, b Value) (Value, error) {
		if b.Uint() == 0 {
			return Value{}, ErrDivideByZero
		}
		return IntValue(ty, f(a.Uint(), b.Uint())), nil
	}
}

func sdivide(f func(a, b int64) int64) binFn {
	return func(ty Type, a, b Value) (Value, error) {
		if b.Uint() == 0 {
			return Value{}, ErrDivideByZero
		}
		return IntValue(ty, uint64(f(a.Int(), b.Int()))), nil
	}
}

// Shift amounts wrap modulo the operand width, matching what the
// hardware's barrel shifter does.
func shiftAmount(ty Type, b Value) uint {
	return uint(b.Uint()) % uint(ty.Bits())
}

// floatOp computes in float32 for Float operands and float64 for
// Double, then re-encodes, so single-precision rounding is preserved.
func floatOp(f func(a, b float64) float64) binFn {
	return func(ty Type, a, b Value) (Value, error) {
		if ty == Float {
			return FloatValue(float32(f(
				float64(a.Float32()), float64(b.Float32())))), nil
		}
		return DoubleValue(f(a.Float64(), b.Float64())), nil
	}
}

// EvalBinary applies a two-operand arithmetic, bitwise, or shift
// opcode. ty is the operand type.
func EvalBinary(op Opcode, ty Type, a, b Value) (Value, error) {
	fn, ok := binOps[op]
	if !ok {
		return Value{}, Malformedf(0, "%s is not a binary opcode", op)
	}
	return fn(ty, a, b)
}

// EvalCompare applies an icmp or fcmp predicate. ty is the operand
// type; the result is always i1.
func EvalCompare(pred CmpPred, ty Type, a, b Value) (Value, error) {
	var r bool
	switch pred {
	case CmpEQ:
		r = a.Uint() == b.Uint()
	case CmpNE:
		r = a.Uint() != b.Uint()
	case CmpUGT:
		r = a.Uint() > b.Uint()
	case CmpUGE:
		r = a.Uint() >= b.Uint()
	case CmpULT:
		r = a.Uint() < b.Uint()
	case CmpULE:
		r = a.Uint() <= b.Uint()
	case CmpSGT:
		r = a.Int() > b.Int()
	case CmpSGE:
		r = a.Int() >= b.Int()
	case CmpSLT:
		r = a.Int() < b.Int()
	case CmpSLE:
		r = a.Int() <= b.Int()
	case CmpOEQ, CmpONE, CmpOGT, CmpOGE, CmpOLT, CmpOLE:
		fa, fb := a.Float64(), b.Float64()
		if ty == Float {
			fa, fb = float64(a.Float32()), float64(b.Float32())
		}
		switch pred {
		case CmpOEQ:
			r = fa == fb
		case CmpONE:
			r = fa != fb
		case CmpOGT:
			r = fa > fb
		case CmpOGE:
			r = fa >= fb
		case CmpOLT:
			r = fa < fb
		case CmpOLE:
			r = fa <= fb
		}
	default:
		return Value{}, Malformedf(0, "unknown comparison predicate")
	}
	if r {
		return IntValue(I1, 1), nil
	}
	return IntValue(I1, 0), nil
}

// GEPAddress computes the address of a getelementptr: the base plus
// each index scaled by the element size. Indices are sign-extended.
func GEPAddress(base uint64, elem Type, indices []Value) uint64 {
	addr := base
	for _, idx := range indices {
		addr += uint64(idx.Int()) * uint64(elem.Bytes())
	}
	return addr
}
