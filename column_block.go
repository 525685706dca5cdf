package byteslice

import (
	"github.com/hupe1980/byteslice/persistence"
)

// ColumnBlock is one fixed-capacity partition of a Column.
//
// Row positions are block-local. GetTuple and SetTuple panic on positions
// outside [0, NumTuples()); Column performs the checked translation from
// global row ids.
type ColumnBlock interface {
	// Type returns the storage encoding.
	Type() ColumnType
	// BitWidth returns the code width the block compares at.
	BitWidth() int
	// NumTuples returns the number of rows in use.
	NumTuples() int

	GetTuple(pos int) uint64
	// SetTuple stores value masked to the column's code width.
	SetTuple(pos int, value uint64)
	// BulkLoadArray stores codes at consecutive rows starting at pos.
	BulkLoadArray(codes []uint64, pos int) error

	// Scan evaluates row <cmp> literal for every row and merges the result
	// into bv according to opt.
	Scan(cmp Comparator, literal uint64, bv *BitVectorBlock, opt Bitwise) error
	// ScanBlock evaluates row <cmp> other's row for every row.
	ScanBlock(cmp Comparator, other ColumnBlock, bv *BitVectorBlock, opt Bitwise) error

	// Resize sets the number of rows in use. Rows exposed by growing read as zero.
	Resize(num int) error
	// MemSize returns the bytes held by the block's storage.
	MemSize() int64

	// Serialize appends the block's row count and full-capacity storage to w.
	Serialize(w *persistence.SequentialWriter) error
	// Deserialize replaces the block's row count and storage from r.
	Deserialize(r *persistence.SequentialReader) error
}

// newColumnBlock creates an empty block for the column's encoding.
func newColumnBlock(typ ColumnType, bitWidth, num int) (ColumnBlock, error) {
	switch typ {
	case TypeNaive:
		return NewNaiveColumnBlock(bitWidth, num)
	case TypeByteSlicePadRight:
		return NewByteSliceColumnBlock(bitWidth, DirectionRight, num)
	case TypeByteSlicePadLeft:
		return NewByteSliceColumnBlock(bitWidth, DirectionLeft, num)
	default:
		return nil, &ErrUnsupportedColumnType{Type: typ}
	}
}

// blockMemSize returns the storage bytes of one block of the given encoding.
func blockMemSize(typ ColumnType, bitWidth int) int64 {
	bytes := (bitWidth + 7) / 8
	if typ == TypeNaive && bytes == 3 {
		bytes = 4
	}
	return int64(bytes) * NumTuplesPerBlock
}

func checkBlockSize(num int) error {
	if num < 0 || num > NumTuplesPerBlock {
		return &ErrSizeMismatch{What: "block capacity", Expected: NumTuplesPerBlock, Actual: num}
	}
	return nil
}

func checkBulkRange(pos, n, num int) error {
	if pos < 0 || pos+n > num {
		return ErrOutOfRange
	}
	return nil
}

func checkScanTarget(num int, bv *BitVectorBlock) error {
	if bv.Num() != num {
		return &ErrSizeMismatch{What: "bit vector block", Expected: num, Actual: bv.Num()}
	}
	return nil
}

func checkPeer(b, other ColumnBlock) error {
	if other.Type() != b.Type() || other.BitWidth() != b.BitWidth() {
		return &ErrTypeMismatch{
			ExpectedType:  b.Type(),
			ActualType:    other.Type(),
			ExpectedWidth: b.BitWidth(),
			ActualWidth:   other.BitWidth(),
		}
	}
	if other.NumTuples() != b.NumTuples() {
		return &ErrSizeMismatch{What: "column block", Expected: b.NumTuples(), Actual: other.NumTuples()}
	}
	return nil
}

// constantWord is the scan result when every row compares the same way
// against the literal.
func constantWord(match bool) uint64 {
	if match {
		return ^uint64(0)
	}
	return 0
}

// fillConstant merges a uniform result into every word of bv.
func fillConstant(bv *BitVectorBlock, match bool, opt Bitwise) {
	c := constantWord(match)
	words := bv.Words()
	for i, w := range words {
		words[i] = opt.combine(w, c)
	}
	bv.ClearTail()
}

// literalAboveDomain reports the uniform outcome for a literal that no code
// of the given mask can reach.
func literalAboveDomain(cmp Comparator) bool {
	switch cmp {
	case Less, LessEqual, Inequal:
		return true
	default:
		return false
	}
}
