// Some helpers using closures to generate test data streams
package valgen

func MakeConstGen(constant uint32) func() uint32 {
	return func() uint32 {
		return constant
	}
}

func MakeIncreasingGen(start uint32) func() uint32 {
	current := start
	return func() uint32 {
		current++
		return current
	}
}

// MakeXorShiftGen returns a deterministic pseudo-random word stream.
// The seed must be nonzero.
func MakeXorShiftGen(seed uint32) func() uint32 {
	state := seed
	return func() uint32 {
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		return state
	}
}

// Take collects the next n values from a generator.
func Take(n int, gen func() uint32) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = gen()
	}
	return out
}

// Bytes collects the next n values little-endian.
func Bytes(n int, gen func() uint32) []byte {
	out := make([]byte, 0, 4*n)
	for i := 0; i < n; i++ {
		v := gen()
		out = append(out, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	return out
}
