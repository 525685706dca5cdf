package byteslice

import (
	"fmt"

	"github.com/hupe1980/byteslice/internal/conv"
	"github.com/hupe1980/byteslice/internal/mem"
	"github.com/hupe1980/byteslice/persistence"
)

// flipBit turns unsigned byte order into signed byte order, so that signed
// 8-bit vector compares order stored bytes like the original codes.
const flipBit = 0x80

// ByteSliceColumnBlock stores each code split into ceil(W/8) byte planes.
// Plane 0 holds the most significant byte. Every stored byte has its high
// bit flipped.
type ByteSliceColumnBlock struct {
	slices   [maxBytesPerCode][]byte
	numBytes int
	bitWidth int
	padding  uint
	dir      Direction
	mask     uint64
	num      int
}

// NewByteSliceColumnBlock creates a block of num zero rows.
func NewByteSliceColumnBlock(bitWidth int, dir Direction, num int) (*ByteSliceColumnBlock, error) {
	if err := validateBitWidth(bitWidth); err != nil {
		return nil, err
	}
	if err := checkBlockSize(num); err != nil {
		return nil, err
	}
	numBytes := (bitWidth + 7) / 8
	b := &ByteSliceColumnBlock{
		numBytes: numBytes,
		bitWidth: bitWidth,
		padding:  uint(numBytes*8 - bitWidth),
		dir:      dir,
		mask:     codeMask(bitWidth),
		num:      num,
	}
	for j := range numBytes {
		s := mem.AllocAligned(NumTuplesPerBlock)
		fillBytes(s, flipBit)
		b.slices[j] = s
	}
	return b, nil
}

func fillBytes(s []byte, v byte) {
	for i := range s {
		s[i] = v
	}
}

// Type implements ColumnBlock.
func (b *ByteSliceColumnBlock) Type() ColumnType {
	if b.dir == DirectionLeft {
		return TypeByteSlicePadLeft
	}
	return TypeByteSlicePadRight
}

// BitWidth implements ColumnBlock.
func (b *ByteSliceColumnBlock) BitWidth() int { return b.bitWidth }

// NumTuples implements ColumnBlock.
func (b *ByteSliceColumnBlock) NumTuples() int { return b.num }

// NumByteSlices returns the number of byte planes.
func (b *ByteSliceColumnBlock) NumByteSlices() int { return b.numBytes }

// ByteSlice returns plane j. The slice aliases the block storage.
func (b *ByteSliceColumnBlock) ByteSlice(j int) []byte { return b.slices[j] }

// MemSize implements ColumnBlock.
func (b *ByteSliceColumnBlock) MemSize() int64 {
	return int64(b.numBytes) * NumTuplesPerBlock
}

func (b *ByteSliceColumnBlock) checkPos(pos int) {
	if pos < 0 || pos >= b.num {
		panic(fmt.Sprintf("byteslice: row %d out of range [0, %d)", pos, b.num))
	}
}

// GetTuple implements ColumnBlock.
func (b *ByteSliceColumnBlock) GetTuple(pos int) uint64 {
	b.checkPos(pos)
	var v uint64
	for j := range b.numBytes {
		v = v<<8 | uint64(b.slices[j][pos]^flipBit)
	}
	if b.dir == DirectionRight {
		v >>= b.padding
	}
	return v
}

// SetTuple implements ColumnBlock.
func (b *ByteSliceColumnBlock) SetTuple(pos int, value uint64) {
	b.checkPos(pos)
	b.store(pos, value)
}

func (b *ByteSliceColumnBlock) store(pos int, value uint64) {
	value &= b.mask
	if b.dir == DirectionRight {
		value <<= b.padding
	}
	for j := range b.numBytes {
		shift := uint(8 * (b.numBytes - 1 - j))
		b.slices[j][pos] = byte(value>>shift) ^ flipBit
	}
}

// BulkLoadArray implements ColumnBlock.
func (b *ByteSliceColumnBlock) BulkLoadArray(codes []uint64, pos int) error {
	if err := checkBulkRange(pos, len(codes), b.num); err != nil {
		return err
	}
	for i, c := range codes {
		b.store(pos+i, c)
	}
	return nil
}

// Resize implements ColumnBlock.
func (b *ByteSliceColumnBlock) Resize(num int) error {
	if err := checkBlockSize(num); err != nil {
		return err
	}
	if num > b.num {
		for j := range b.numBytes {
			fillBytes(b.slices[j][b.num:num], flipBit)
		}
	}
	b.num = num
	return nil
}

// Serialize implements ColumnBlock.
func (b *ByteSliceColumnBlock) Serialize(w *persistence.SequentialWriter) error {
	n, err := conv.IntToUint64(b.num)
	if err != nil {
		return err
	}
	if err := w.AppendUint64(n); err != nil {
		return err
	}
	for j := range b.numBytes {
		if err := w.Append(b.slices[j]); err != nil {
			return err
		}
	}
	return nil
}

// Deserialize implements ColumnBlock.
func (b *ByteSliceColumnBlock) Deserialize(r *persistence.SequentialReader) error {
	raw, err := r.ReadUint64()
	if err != nil {
		return err
	}
	n, err := conv.Uint64ToInt(raw)
	if err != nil || n > NumTuplesPerBlock {
		return fmt.Errorf("%w: block row count %d exceeds capacity", ErrCorrupt, raw)
	}
	for j := range b.numBytes {
		if err := r.Read(b.slices[j]); err != nil {
			return err
		}
	}
	b.num = n
	return nil
}
