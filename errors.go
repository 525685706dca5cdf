package byteslice

import (
	"errors"
	"fmt"

	"github.com/hupe1980/byteslice/internal/resource"
)

var (
	// ErrOutOfRange is returned when a row id, range or code falls outside
	// the column or block it addresses.
	ErrOutOfRange = errors.New("out of range")

	// ErrInvalidComparator is returned for a Comparator outside the defined set.
	ErrInvalidComparator = errors.New("invalid comparator")

	// ErrInvalidBitwise is returned for a Bitwise mode outside the defined set.
	ErrInvalidBitwise = errors.New("invalid bitwise mode")

	// ErrClosed is returned by operations on a closed Column.
	ErrClosed = errors.New("column closed")

	// ErrCorrupt is returned when serialized data does not match the expected shape.
	ErrCorrupt = errors.New("corrupt column data")

	// ErrMemoryLimitExceeded is returned when block storage would exceed the
	// resource controller's memory limit.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded
)

// ErrInvalidBitWidth indicates a code width outside [1, MaxBitWidth].
type ErrInvalidBitWidth struct {
	BitWidth int
}

func (e *ErrInvalidBitWidth) Error() string {
	return fmt.Sprintf("invalid bit width: %d (must be 1..%d)", e.BitWidth, MaxBitWidth)
}

// ErrUnsupportedColumnType indicates an unknown column encoding.
type ErrUnsupportedColumnType struct {
	Type ColumnType
}

func (e *ErrUnsupportedColumnType) Error() string {
	return fmt.Sprintf("unsupported column type: %s", e.Type)
}

// ErrSizeMismatch indicates two operands with different row counts.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrSizeMismatch struct {
	What     string
	Expected int
	Actual   int
	cause    error
}

func (e *ErrSizeMismatch) Error() string {
	return fmt.Sprintf("%s size mismatch: expected %d, got %d", e.What, e.Expected, e.Actual)
}

func (e *ErrSizeMismatch) Unwrap() error { return e.cause }

// ErrTypeMismatch indicates two blocks or columns with different encodings or widths.
type ErrTypeMismatch struct {
	ExpectedType  ColumnType
	ActualType    ColumnType
	ExpectedWidth int
	ActualWidth   int
}

func (e *ErrTypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch: expected %s/%d bits, got %s/%d bits",
		e.ExpectedType, e.ExpectedWidth, e.ActualType, e.ActualWidth)
}

func validateBitWidth(bitWidth int) error {
	if bitWidth < 1 || bitWidth > MaxBitWidth {
		return &ErrInvalidBitWidth{BitWidth: bitWidth}
	}
	return nil
}

func validateScanArgs(cmp Comparator, opt Bitwise) error {
	if !cmp.valid() {
		return fmt.Errorf("%w: %d", ErrInvalidComparator, uint8(cmp))
	}
	if !opt.valid() {
		return fmt.Errorf("%w: %d", ErrInvalidBitwise, uint8(opt))
	}
	return nil
}
