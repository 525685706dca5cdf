// Package mem provides memory allocation utilities.
//
// # Aligned Allocation
//
// Byte slices and bit-vector words are allocated on a 32-byte boundary so every
// 256-bit lane of a block starts on a register-width address.
package mem
