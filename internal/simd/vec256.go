package simd

import "encoding/binary"

// Vec256 is a 256-bit register held as four 64-bit lanes.
//
// Byte i of the register is byte i%8 (little-endian) of lane i/8, so byte i
// maps to bit i of MoveMask, matching _mm256_movemask_epi8.
type Vec256 [4]uint64

// Width is the register width in bytes.
const Width = 32

const (
	lowBits7 = 0x7f7f7f7f7f7f7f7f
	highBits = 0x8080808080808080
	byteOnes = 0x0101010101010101
	allOnes  = ^uint64(0)

	// moveMaskMagic gathers bit 8*i of a lane into bit 56+i.
	moveMaskMagic = 0x0102040810204080
)

// Zero returns a register with all bits cleared.
func Zero() Vec256 { return Vec256{} }

// Ones returns a register with all bits set.
func Ones() Vec256 { return Vec256{allOnes, allOnes, allOnes, allOnes} }

// Set1 broadcasts b into all 32 byte lanes.
func Set1(b byte) Vec256 {
	w := uint64(b) * byteOnes
	return Vec256{w, w, w, w}
}

// Load reads 32 bytes from p. p must hold at least 32 bytes.
func Load(p []byte) Vec256 {
	_ = p[Width-1]
	return Vec256{
		binary.LittleEndian.Uint64(p[0:8]),
		binary.LittleEndian.Uint64(p[8:16]),
		binary.LittleEndian.Uint64(p[16:24]),
		binary.LittleEndian.Uint64(p[24:32]),
	}
}

// Store writes the register into the first 32 bytes of p.
func (a Vec256) Store(p []byte) {
	_ = p[Width-1]
	binary.LittleEndian.PutUint64(p[0:8], a[0])
	binary.LittleEndian.PutUint64(p[8:16], a[1])
	binary.LittleEndian.PutUint64(p[16:24], a[2])
	binary.LittleEndian.PutUint64(p[24:32], a[3])
}

// And returns a & b.
func (a Vec256) And(b Vec256) Vec256 {
	return Vec256{a[0] & b[0], a[1] & b[1], a[2] & b[2], a[3] & b[3]}
}

// Or returns a | b.
func (a Vec256) Or(b Vec256) Vec256 {
	return Vec256{a[0] | b[0], a[1] | b[1], a[2] | b[2], a[3] | b[3]}
}

// Not returns ^a.
func (a Vec256) Not() Vec256 {
	return Vec256{^a[0], ^a[1], ^a[2], ^a[3]}
}

// AndNot returns ^a & b, the operand order of _mm256_andnot_si256.
func (a Vec256) AndNot(b Vec256) Vec256 {
	return Vec256{^a[0] & b[0], ^a[1] & b[1], ^a[2] & b[2], ^a[3] & b[3]}
}

// IsZero reports whether every bit is clear.
func (a Vec256) IsZero() bool {
	return a[0]|a[1]|a[2]|a[3] == 0
}

// MoveMask packs the most significant bit of each byte into a 32-bit mask.
func (a Vec256) MoveMask() uint32 {
	return uint32(moveMask8(a[0])) |
		uint32(moveMask8(a[1]))<<8 |
		uint32(moveMask8(a[2]))<<16 |
		uint32(moveMask8(a[3]))<<24
}

// CmpEqI8 sets a byte to 0xff where a and b hold equal bytes.
func CmpEqI8(a, b Vec256) Vec256 {
	return Vec256{eqBytes(a[0], b[0]), eqBytes(a[1], b[1]), eqBytes(a[2], b[2]), eqBytes(a[3], b[3])}
}

// CmpGtI8 sets a byte to 0xff where the signed byte of a is greater than b.
func CmpGtI8(a, b Vec256) Vec256 {
	return Vec256{gtBytes(a[0], b[0]), gtBytes(a[1], b[1]), gtBytes(a[2], b[2]), gtBytes(a[3], b[3])}
}

// CmpLtI8 sets a byte to 0xff where the signed byte of a is less than b.
func CmpLtI8(a, b Vec256) Vec256 {
	return CmpGtI8(b, a)
}

// Prefetch hints that p is about to be streamed. Go exposes no portable
// prefetch instruction, so the hint has no effect on generated code.
func Prefetch(p []byte) {}

func moveMask8(w uint64) uint8 {
	return uint8(((w & highBits) >> 7) * moveMaskMagic >> 56)
}

// expand turns the high bit of every byte into a full 0x00/0xff byte.
func expand(h uint64) uint64 {
	return (h >> 7) * 0xff
}

func eqBytes(a, b uint64) uint64 {
	x := a ^ b
	nonZero := ((x & lowBits7) + lowBits7) | x
	return expand(^nonZero & highBits)
}

// gtBytes compares signed bytes. Flipping the sign bit maps signed order onto
// unsigned order, and a > b holds where b - a borrows out of the byte.
func gtBytes(a, b uint64) uint64 {
	x := b ^ highBits
	y := a ^ highBits
	diff := ((x | highBits) - (y &^ highBits)) ^ ((x ^ ^y) & highBits)
	borrow := (^x & y) | ((^x | y) & diff)
	return expand(borrow & highBits)
}
