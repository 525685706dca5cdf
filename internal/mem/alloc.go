package mem

import (
	"unsafe"
)

// Alignment is the byte alignment of a 256-bit register (32 bytes).
const Alignment = 32

// AllocAligned allocates a zeroed byte slice of the given size with 32-byte alignment.
// The returned slice is guaranteed to start at a memory address divisible by 32.
//
// Note: This function allocates slightly more memory than requested to ensure alignment.
// The underlying array is kept alive by the returned slice.
func AllocAligned(size int) []byte {
	if size <= 0 {
		return nil
	}

	buf := make([]byte, size+Alignment)

	ptr := unsafe.Pointer(&buf[0]) //nolint:gosec // unsafe is required for memory alignment
	addr := uintptr(ptr)
	offset := (Alignment - (addr & (Alignment - 1))) & (Alignment - 1)

	return buf[offset : offset+uintptr(size) : offset+uintptr(size)]
}

// AllocAlignedUint64 allocates a zeroed uint64 slice of n words with 32-byte alignment.
func AllocAlignedUint64(n int) []uint64 {
	if n <= 0 {
		return nil
	}
	byteSlice := AllocAligned(n * 8)
	ptr := unsafe.Pointer(&byteSlice[0])    //nolint:gosec // unsafe is required for memory alignment
	return unsafe.Slice((*uint64)(ptr), n) //nolint:gosec // unsafe is required for memory alignment
}

// AllocAlignedUint16 allocates a zeroed uint16 slice of n elements with 32-byte alignment.
func AllocAlignedUint16(n int) []uint16 {
	if n <= 0 {
		return nil
	}
	byteSlice := AllocAligned(n * 2)
	ptr := unsafe.Pointer(&byteSlice[0])    //nolint:gosec // unsafe is required for memory alignment
	return unsafe.Slice((*uint16)(ptr), n) //nolint:gosec // unsafe is required for memory alignment
}

// AllocAlignedUint32 allocates a zeroed uint32 slice of n elements with 32-byte alignment.
func AllocAlignedUint32(n int) []uint32 {
	if n <= 0 {
		return nil
	}
	byteSlice := AllocAligned(n * 4)
	ptr := unsafe.Pointer(&byteSlice[0])    //nolint:gosec // unsafe is required for memory alignment
	return unsafe.Slice((*uint32)(ptr), n) //nolint:gosec // unsafe is required for memory alignment
}

// IsAligned reports whether the slice's first element sits on an Alignment boundary.
func IsAligned[T any](s []T) bool {
	if len(s) == 0 {
		return true
	}
	return uintptr(unsafe.Pointer(&s[0]))&(Alignment-1) == 0 //nolint:gosec // address inspection only
}
