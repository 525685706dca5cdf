package simd

import "math/bits"

// Kernel function pointers for bit-vector word operations.
// Generic implementations are the default; installKernels swaps in the
// register-wide variants when a vector ISA is active.
var (
	kernelAndWords      = andWordsGeneric
	kernelOrWords       = orWordsGeneric
	kernelFillWords     = fillWordsGeneric
	kernelPopcountWords = popcountWordsGeneric
)

func installKernels(isa ISA) {
	switch isa {
	case AVX2, AVX512, NEON:
		kernelAndWords = andWordsWide
		kernelOrWords = orWordsWide
		kernelFillWords = fillWordsWide
		kernelPopcountWords = popcountWordsWide
	default:
		kernelAndWords = andWordsGeneric
		kernelOrWords = orWordsGeneric
		kernelFillWords = fillWordsGeneric
		kernelPopcountWords = popcountWordsGeneric
	}
}

// AndWords performs dst[i] &= src[i] for all words of dst.
// src must be at least as long as dst.
func AndWords(dst, src []uint64) {
	kernelAndWords(dst, src)
}

// OrWords performs dst[i] |= src[i] for all words of dst.
// src must be at least as long as dst.
func OrWords(dst, src []uint64) {
	kernelOrWords(dst, src)
}

// FillWords sets every word of dst to v.
func FillWords(dst []uint64, v uint64) {
	kernelFillWords(dst, v)
}

// PopcountWords counts all set bits across words.
func PopcountWords(words []uint64) int {
	return kernelPopcountWords(words)
}

// ==============================================================================
// Generic implementations
// ==============================================================================

func andWordsGeneric(dst, src []uint64) {
	src = src[:len(dst)]
	i := 0
	for ; i+4 <= len(dst); i += 4 {
		dst[i] &= src[i]
		dst[i+1] &= src[i+1]
		dst[i+2] &= src[i+2]
		dst[i+3] &= src[i+3]
	}
	for ; i < len(dst); i++ {
		dst[i] &= src[i]
	}
}

func orWordsGeneric(dst, src []uint64) {
	src = src[:len(dst)]
	i := 0
	for ; i+4 <= len(dst); i += 4 {
		dst[i] |= src[i]
		dst[i+1] |= src[i+1]
		dst[i+2] |= src[i+2]
		dst[i+3] |= src[i+3]
	}
	for ; i < len(dst); i++ {
		dst[i] |= src[i]
	}
}

func fillWordsGeneric(dst []uint64, v uint64) {
	for i := range dst {
		dst[i] = v
	}
}

func popcountWordsGeneric(words []uint64) int {
	count := 0
	i := 0
	for ; i+4 <= len(words); i += 4 {
		count += bits.OnesCount64(words[i])
		count += bits.OnesCount64(words[i+1])
		count += bits.OnesCount64(words[i+2])
		count += bits.OnesCount64(words[i+3])
	}
	for ; i < len(words); i++ {
		count += bits.OnesCount64(words[i])
	}
	return count
}

// ==============================================================================
// Register-wide implementations (one Vec256 per step)
// ==============================================================================

func andWordsWide(dst, src []uint64) {
	n := len(dst) &^ 3
	for i := 0; i < n; i += 4 {
		v := Vec256(dst[i : i+4]).And(Vec256(src[i : i+4]))
		copy(dst[i:i+4], v[:])
	}
	andWordsGeneric(dst[n:], src[n:])
}

func orWordsWide(dst, src []uint64) {
	n := len(dst) &^ 3
	for i := 0; i < n; i += 4 {
		v := Vec256(dst[i : i+4]).Or(Vec256(src[i : i+4]))
		copy(dst[i:i+4], v[:])
	}
	orWordsGeneric(dst[n:], src[n:])
}

func fillWordsWide(dst []uint64, v uint64) {
	lane := Vec256{v, v, v, v}
	n := len(dst) &^ 3
	for i := 0; i < n; i += 4 {
		copy(dst[i:i+4], lane[:])
	}
	fillWordsGeneric(dst[n:], v)
}

func popcountWordsWide(words []uint64) int {
	var acc [4]int
	n := len(words) &^ 3
	for i := 0; i < n; i += 4 {
		v := Vec256(words[i : i+4])
		acc[0] += bits.OnesCount64(v[0])
		acc[1] += bits.OnesCount64(v[1])
		acc[2] += bits.OnesCount64(v[2])
		acc[3] += bits.OnesCount64(v[3])
	}
	return acc[0] + acc[1] + acc[2] + acc[3] + popcountWordsGeneric(words[n:])
}
