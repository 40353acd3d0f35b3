package ir

import "fmt"

// ByteStore is the byte-addressable storage loads and stores run
// against. All multi-byte accesses are little-endian.
type ByteStore interface {
	ReadBytes(addr uint64, n int) ([]byte, error)
	WriteBytes(addr uint64, data []byte) error
}

// Uint64LE decodes up to eight little-endian bytes.
func Uint64LE(data []byte) uint64 {
	var v uint64
	for i := len(data) - 1; i >= 0; i-- {
		v = v<<8 | uint64(data[i])
	}
	return v
}

// PutUint64LE encodes v little-endian, truncated to len(data) bytes.
func PutUint64LE(data []byte, v uint64) {
	for i := range data {
		data[i] = byte(v)
		v >>= 8
	}
}

// ReadMem loads a typed value from memory.
func ReadMem(m ByteStore, addr uint64, ty Type) (Value, error) {
	data, err := m.ReadBytes(addr, ty.Bytes())
	if err != nil {
		return Value{}, err
	}
	return Value{Ty: ty, Bits: Uint64LE(data) & ty.Mask()}, nil
}

// WriteMem stores a typed value to memory.
func WriteMem(m ByteStore, addr uint64, v Value) error {
	data := make([]byte, v.Ty.Bytes())
	PutUint64LE(data, v.Bits)
	return m.WriteBytes(addr, data)
}

// FlatMemory is a bounds-checked flat byte array. The untimed
// interpreter and the scratchpad both run on it.
type FlatMemory struct {
	data []byte
}

// NewFlatMemory allocates a zeroed memory of the given size.
func NewFlatMemory(size uint64) *FlatMemory {
	return &FlatMemory{data: make([]byte, size)}
}

// Size returns the capacity in bytes.
func (m *FlatMemory) Size() uint64 {
	return uint64(len(m.data))
}

func (m *FlatMemory) ReadBytes(addr uint64, n int) ([]byte, error) {
	if err := m.check(addr, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, m.data[addr:])
	return out, nil
}

func (m *FlatMemory) WriteBytes(addr uint64, data []byte) error {
	if err := m.check(addr, len(data)); err != nil {
		return err
	}
	copy(m.data[addr:], data)
	return nil
}

func (m *FlatMemory) check(addr uint64, n int) error {
	if addr+uint64(n) > uint64(len(m.data)) || addr+uint64(n) < addr {
		return fmt.Errorf(
			"memory access [0x%x, 0x%x) out of range, size 0x%x",
			addr, addr+uint64(n), len(m.data))
	}
	return nil
}
