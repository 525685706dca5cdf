package persistence

import "unsafe"

// isLittleEndian selects the zero-copy path for typed slices.
var isLittleEndian = func() bool {
	var probe uint16 = 0x0001
	return *(*byte)(unsafe.Pointer(&probe)) == 1 //nolint:gosec // endianness probe
}()

func uint16Bytes(s []uint16) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*2) //nolint:gosec // raw view of owned slice
}

func uint32Bytes(s []uint32) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4) //nolint:gosec // raw view of owned slice
}
