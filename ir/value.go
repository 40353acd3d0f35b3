package ir

import (
	"fmt"
	"math"
)

// Value is a typed bit pattern. Integer values are stored masked to
// their width; float and double values are stored as their IEEE-754
// encodings so that timed and untimed evaluation agree bit for bit.
type Value struct {
	Ty   Type
	Bits uint64
}

// IntValue wraps bits into a value of the given integer type.
func IntValue(ty Type, bits uint64) Value {
	return Value{Ty: ty, Bits: bits & ty.Mask()}
}

// FloatValue wraps a float32.
func FloatValue(f float32) Value {
	return Value{Ty: Float, Bits: uint64(math.Float32bits(f))}
}

// DoubleValue wraps a float64.
func DoubleValue(f float64) Value {
	return Value{Ty: Double, Bits: math.Float64bits(f)}
}

// Uint returns the zero-extended integer interpretation.
func (v Value) Uint() uint64 {
	return v.Bits & v.Ty.Mask()
}

// Int returns the sign-extended integer interpretation.
func (v Value) Int() int64 {
	bits := v.Ty.Bits()
	if bits == 0 || bits >= 64 {
		return int64(v.Bits)
	}
	shift := 64 - uint(bits)
	return int64(v.Bits<<shift) >> shift
}

// Float32 reinterprets the low 32 bits as an IEEE-754 single.
func (v Value) Float32() float32 {
	return math.Float32frombits(uint32(v.Bits))
}

// Float64 reinterprets the bits as an IEEE-754 double.
func (v Value) Float64() float64 {
	return math.Float64frombits(v.Bits)
}

// IsTrue reports the i1 interpretation of the value.
func (v Value) IsTrue() bool {
	return v.Bits&1 == 1
}

func (v Value) String() string {
	switch {
	case v.Ty == Float:
		return fmt.Sprintf("float %v", v.Float32())
	case v.Ty == Double:
		return fmt.Sprintf("double %v", v.Float64())
	default:
		return fmt.Sprintf("%s %d", v.Ty, v.Int())
	}
}
