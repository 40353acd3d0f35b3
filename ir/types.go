// Package ir defines the in-memory form of a computation kernel: typed
// values, instructions, basic blocks, and functions, together with the
// loader that builds them from textual IR and the untimed interpreter
// that serves as the functional reference for the timed core.
package ir

// Type tags the width and interpretation of a value.
type Type uint8

const (
	Void Type = iota
	I1
	I8
	I16
	I32
	I64
	Float
	Double
	Ptr
)

var typeNames = map[Type]string{
	Void:   "void",
	I1:     "i1",
	I8:     "i8",
	I16:    "i16",
	I32:    "i32",
	I64:    "i64",
	Float:  "float",
	Double: "double",
	Ptr:    "ptr",
}

var typesByName = map[string]Type{
	"void":   Void,
	"i1":     I1,
	"i8":     I8,
	"i16":    I16,
	"i32":    I32,
	"i64":    I64,
	"float":  Float,
	"double": Double,
	"ptr":    Ptr,
}

// ParseType resolves a textual type name.
func ParseType(s string) (Type, bool) {
	t, ok := typesByName[s]
	return t, ok
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "unknown"
}

// Bits returns the width of the type in bits.
func (t Type) Bits() int {
	switch t {
	case I1:
		return 1
	case I8:
		return 8
	case I16:
		return 16
	case I32, Float:
		return 32
	case I64, Double, Ptr:
		return 64
	default:
		return 0
	}
}

// Bytes returns the storage size of the type in bytes.
func (t Type) Bytes() int {
	return (t.Bits() + 7) / 8
}

// Mask returns the bit mask covering the type's width.
func (t Type) Mask() uint64 {
	bits := t.Bits()
	if bits == 0 || bits >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << bits) - 1
}

// IsInteger reports whether t is a fixed-width integer type. Pointers
// count as 64-bit integers for arithmetic purposes.
func (t Type) IsInteger() bool {
	switch t {
	case I1, I8, I16, I32, I64, Ptr:
		return true
	}
	return false
}

// IsFloat reports whether t follows IEEE-754 semantics.
func (t Type) IsFloat() bool {
	return t == Float || t == Double
}
