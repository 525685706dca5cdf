package byteslice

import (
	"fmt"
	"strings"
)

const (
	// NumTuplesPerBlock is the fixed row capacity of every block.
	NumTuplesPerBlock = 1 << 20

	// WordBits is the number of rows covered by one bit-vector word.
	WordBits = 64

	// AvxBits is the register width the block geometry is aligned to.
	AvxBits = 256

	// MaxBitWidth is the widest supported code.
	MaxBitWidth = 32

	wordsPerAvx      = AvxBits / WordBits
	maxWordsPerBlock = NumTuplesPerBlock / WordBits
	maxBytesPerCode  = MaxBitWidth / 8
)

// ColumnType selects the storage encoding of a column.
type ColumnType uint8

const (
	// TypeNaive stores codes row-major in the narrowest native integer.
	TypeNaive ColumnType = iota
	// TypeByteSlicePadRight stores byte planes with padding bits at the low end.
	TypeByteSlicePadRight
	// TypeByteSlicePadLeft stores byte planes with padding bits at the high end.
	TypeByteSlicePadLeft
)

// String returns the stable name of the column type.
func (t ColumnType) String() string {
	switch t {
	case TypeNaive:
		return "naive"
	case TypeByteSlicePadRight:
		return "byteslice-pad-right"
	case TypeByteSlicePadLeft:
		return "byteslice-pad-left"
	default:
		return fmt.Sprintf("ColumnType(%d)", uint8(t))
	}
}

func (t ColumnType) valid() bool {
	return t <= TypeByteSlicePadLeft
}

// ParseColumnType parses a name produced by String or one of the short
// forms "na", "bs" (pad right) and "bsl" (pad left).
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "naive", "na":
		return TypeNaive, nil
	case "byteslice-pad-right", "byteslice", "bs":
		return TypeByteSlicePadRight, nil
	case "byteslice-pad-left", "bsl":
		return TypeByteSlicePadLeft, nil
	default:
		return 0, fmt.Errorf("unknown column type %q", s)
	}
}

// Direction is the side of a code's stored bytes that holds padding bits.
type Direction uint8

const (
	// DirectionRight shifts codes left so padding occupies the low bits.
	DirectionRight Direction = iota
	// DirectionLeft stores codes unshifted so padding occupies the high bits.
	DirectionLeft
)

func (d Direction) String() string {
	if d == DirectionLeft {
		return "left"
	}
	return "right"
}

// Comparator is a scan predicate.
type Comparator uint8

const (
	Equal Comparator = iota
	Inequal
	Less
	Greater
	LessEqual
	GreaterEqual
)

func (c Comparator) String() string {
	switch c {
	case Equal:
		return "=="
	case Inequal:
		return "!="
	case Less:
		return "<"
	case Greater:
		return ">"
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	default:
		return fmt.Sprintf("Comparator(%d)", uint8(c))
	}
}

func (c Comparator) valid() bool {
	return c <= GreaterEqual
}

// Eval applies the comparator to two codes.
func (c Comparator) Eval(a, b uint64) bool {
	switch c {
	case Equal:
		return a == b
	case Inequal:
		return a != b
	case Less:
		return a < b
	case Greater:
		return a > b
	case LessEqual:
		return a <= b
	case GreaterEqual:
		return a >= b
	default:
		return false
	}
}

// ParseComparator accepts the operator symbols and the names eq, ne, lt, gt, le, ge.
func ParseComparator(s string) (Comparator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "==", "=", "eq":
		return Equal, nil
	case "!=", "<>", "ne":
		return Inequal, nil
	case "<", "lt":
		return Less, nil
	case ">", "gt":
		return Greater, nil
	case "<=", "le":
		return LessEqual, nil
	case ">=", "ge":
		return GreaterEqual, nil
	default:
		return 0, fmt.Errorf("unknown comparator %q", s)
	}
}

// Bitwise is the mode used to combine a scan result with the destination bits.
type Bitwise uint8

const (
	// BitwiseSet overwrites the destination.
	BitwiseSet Bitwise = iota
	// BitwiseAnd keeps a bit only if it was set and the row matches.
	BitwiseAnd
	// BitwiseOr sets a bit if it was set or the row matches.
	BitwiseOr
)

func (b Bitwise) String() string {
	switch b {
	case BitwiseSet:
		return "set"
	case BitwiseAnd:
		return "and"
	case BitwiseOr:
		return "or"
	default:
		return fmt.Sprintf("Bitwise(%d)", uint8(b))
	}
}

func (b Bitwise) valid() bool {
	return b <= BitwiseOr
}

// combine merges a freshly computed word into the existing one.
func (b Bitwise) combine(existing, word uint64) uint64 {
	switch b {
	case BitwiseAnd:
		return existing & word
	case BitwiseOr:
		return existing | word
	default:
		return word
	}
}

func numBlocksFor(num int) int {
	return (num + NumTuplesPerBlock - 1) / NumTuplesPerBlock
}

func codeMask(bitWidth int) uint64 {
	return uint64(1)<<uint(bitWidth) - 1
}
