// Package simd provides the vector operations used by the byte-slice scan
// and the bit-vector word kernels.
//
// # Vector Model
//
// [Vec256] models a 256-bit register as four 64-bit lanes. The operation set
// mirrors what the scan needs from AVX2: broadcast, signed byte compares,
// bitwise logic, move-mask and an all-zero test. The operations are written
// as SWAR (SIMD within a register) so they run on every GOARCH.
//
// # Supported Platforms
//
//   - x86-64: AVX-512, AVX2
//   - ARM64: NEON
//
// Runtime CPU feature detection selects the word kernels. Set BYTESLICE_SIMD
// to "generic" to force the scalar fallback.
package simd
