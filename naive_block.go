package byteslice

import (
	"fmt"
	"unsafe"

	"github.com/hupe1980/byteslice/internal/conv"
	"github.com/hupe1980/byteslice/internal/mem"
	"github.com/hupe1980/byteslice/persistence"
)

type naiveElem interface {
	uint8 | uint16 | uint32
}

// naiveColumnBlock stores codes row-major in the narrowest native integer
// that holds the code width. It is the reference the byte-sliced scan is
// checked against.
type naiveColumnBlock[T naiveElem] struct {
	data []T
	mask uint64
	num  int
}

// NewNaiveColumnBlock creates a naive block of num zero rows for codes of
// the given width.
func NewNaiveColumnBlock(bitWidth, num int) (ColumnBlock, error) {
	if err := validateBitWidth(bitWidth); err != nil {
		return nil, err
	}
	if err := checkBlockSize(num); err != nil {
		return nil, err
	}
	mask := codeMask(bitWidth)
	switch (bitWidth + 7) / 8 {
	case 1:
		return &naiveColumnBlock[uint8]{data: mem.AllocAligned(NumTuplesPerBlock), mask: mask, num: num}, nil
	case 2:
		return &naiveColumnBlock[uint16]{data: mem.AllocAlignedUint16(NumTuplesPerBlock), mask: mask, num: num}, nil
	default:
		return &naiveColumnBlock[uint32]{data: mem.AllocAlignedUint32(NumTuplesPerBlock), mask: mask, num: num}, nil
	}
}

func (b *naiveColumnBlock[T]) Type() ColumnType { return TypeNaive }

// BitWidth reports the width of the storage type, not the code width.
func (b *naiveColumnBlock[T]) BitWidth() int {
	var zero T
	return 8 * int(unsafe.Sizeof(zero))
}

func (b *naiveColumnBlock[T]) NumTuples() int { return b.num }

func (b *naiveColumnBlock[T]) MemSize() int64 {
	var zero T
	return int64(unsafe.Sizeof(zero)) * NumTuplesPerBlock
}

func (b *naiveColumnBlock[T]) checkPos(pos int) {
	if pos < 0 || pos >= b.num {
		panic(fmt.Sprintf("byteslice: row %d out of range [0, %d)", pos, b.num))
	}
}

func (b *naiveColumnBlock[T]) GetTuple(pos int) uint64 {
	b.checkPos(pos)
	return uint64(b.data[pos])
}

func (b *naiveColumnBlock[T]) SetTuple(pos int, value uint64) {
	b.checkPos(pos)
	b.data[pos] = T(value & b.mask)
}

func (b *naiveColumnBlock[T]) BulkLoadArray(codes []uint64, pos int) error {
	if err := checkBulkRange(pos, len(codes), b.num); err != nil {
		return err
	}
	dst := b.data[pos : pos+len(codes)]
	for i, c := range codes {
		dst[i] = T(c & b.mask)
	}
	return nil
}

func (b *naiveColumnBlock[T]) Resize(num int) error {
	if err := checkBlockSize(num); err != nil {
		return err
	}
	if num > b.num {
		clear(b.data[b.num:num])
	}
	b.num = num
	return nil
}

func (b *naiveColumnBlock[T]) Scan(cmp Comparator, literal uint64, bv *BitVectorBlock, opt Bitwise) error {
	if err := validateScanArgs(cmp, opt); err != nil {
		return err
	}
	if err := checkScanTarget(b.num, bv); err != nil {
		return err
	}
	b.scan(cmp, func(int) uint64 { return literal }, bv, opt)
	return nil
}

func (b *naiveColumnBlock[T]) ScanBlock(cmp Comparator, other ColumnBlock, bv *BitVectorBlock, opt Bitwise) error {
	if err := validateScanArgs(cmp, opt); err != nil {
		return err
	}
	if err := checkPeer(b, other); err != nil {
		return err
	}
	if err := checkScanTarget(b.num, bv); err != nil {
		return err
	}
	if peer, ok := other.(*naiveColumnBlock[T]); ok {
		b.scan(cmp, func(pos int) uint64 { return uint64(peer.data[pos]) }, bv, opt)
	} else {
		b.scan(cmp, other.GetTuple, bv, opt)
	}
	return nil
}

func (b *naiveColumnBlock[T]) scan(cmp Comparator, rhs func(pos int) uint64, bv *BitVectorBlock, opt Bitwise) {
	words := bv.Words()
	for offset := 0; offset < b.num; offset += WordBits {
		end := min(offset+WordBits, b.num)
		var word uint64
		for pos := offset; pos < end; pos++ {
			if cmp.Eval(uint64(b.data[pos]), rhs(pos)) {
				word |= 1 << uint(pos-offset)
			}
		}
		w := offset / WordBits
		words[w] = opt.combine(words[w], word)
	}
	bv.ClearTail()
}

func (b *naiveColumnBlock[T]) Serialize(w *persistence.SequentialWriter) error {
	n, err := conv.IntToUint64(b.num)
	if err != nil {
		return err
	}
	if err := w.AppendUint64(n); err != nil {
		return err
	}
	switch data := any(b.data).(type) {
	case []uint8:
		return w.Append(data)
	case []uint16:
		return w.AppendUint16s(data)
	case []uint32:
		return w.AppendUint32s(data)
	}
	return nil
}

func (b *naiveColumnBlock[T]) Deserialize(r *persistence.SequentialReader) error {
	raw, err := r.ReadUint64()
	if err != nil {
		return err
	}
	n, err := conv.Uint64ToInt(raw)
	if err != nil || n > NumTuplesPerBlock {
		return fmt.Errorf("%w: block row count %d exceeds capacity", ErrCorrupt, raw)
	}
	switch data := any(b.data).(type) {
	case []uint8:
		err = r.Read(data)
	case []uint16:
		err = r.ReadUint16s(data)
	case []uint32:
		err = r.ReadUint32s(data)
	}
	if err != nil {
		return err
	}
	b.num = n
	return nil
}
