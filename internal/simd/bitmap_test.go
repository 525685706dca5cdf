package simd

import (
	"math/bits"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

type wordKernels struct {
	name     string
	and      func(dst, src []uint64)
	or       func(dst, src []uint64)
	fill     func(dst []uint64, v uint64)
	popcount func(words []uint64) int
}

var allKernels = []wordKernels{
	{"generic", andWordsGeneric, orWordsGeneric, fillWordsGeneric, popcountWordsGeneric},
	{"wide", andWordsWide, orWordsWide, fillWordsWide, popcountWordsWide},
	{"dispatch", AndWords, OrWords, FillWords, PopcountWords},
}

func TestAndWords(t *testing.T) {
	tests := []struct {
		name string
		dst  []uint64
		src  []uint64
		want []uint64
	}{
		{
			name: "Empty",
			dst:  []uint64{},
			src:  []uint64{},
			want: []uint64{},
		},
		{
			name: "Single word",
			dst:  []uint64{0xFF00FF00FF00FF00},
			src:  []uint64{0x0F0F0F0F0F0F0F0F},
			want: []uint64{0x0F000F000F000F00},
		},
		{
			name: "4 words (lane boundary)",
			dst:  []uint64{0xFF, 0xFF, 0xFF, 0xFF},
			src:  []uint64{0x0F, 0xF0, 0x55, 0xAA},
			want: []uint64{0x0F, 0xF0, 0x55, 0xAA},
		},
		{
			name: "5 words (lane + tail)",
			dst:  []uint64{0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
			src:  []uint64{0x0F, 0xF0, 0x55, 0xAA, 0x33},
			want: []uint64{0x0F, 0xF0, 0x55, 0xAA, 0x33},
		},
	}

	for _, k := range allKernels {
		for _, tt := range tests {
			t.Run(k.name+"/"+tt.name, func(t *testing.T) {
				dst := append([]uint64(nil), tt.dst...)
				k.and(dst, tt.src)
				assert.Equal(t, len(tt.want), len(dst))
				for i := range dst {
					assert.Equal(t, tt.want[i], dst[i])
				}
			})
		}
	}
}

func TestOrFillPopcount(t *testing.T) {
	r := rand.New(rand.NewSource(9))
	for _, k := range allKernels {
		t.Run(k.name, func(t *testing.T) {
			for _, n := range []int{0, 1, 3, 4, 7, 16, 33} {
				a := make([]uint64, n)
				b := make([]uint64, n)
				want := 0
				for i := range a {
					a[i] = r.Uint64()
					b[i] = r.Uint64()
				}
				dst := append([]uint64(nil), a...)
				k.or(dst, b)
				for i := range dst {
					assert.Equal(t, a[i]|b[i], dst[i])
					want += bits.OnesCount64(dst[i])
				}
				assert.Equal(t, want, k.popcount(dst))

				k.fill(dst, 0x5555)
				for i := range dst {
					assert.Equal(t, uint64(0x5555), dst[i])
				}
			}
		})
	}
}

func TestISAParse(t *testing.T) {
	for _, isa := range []ISA{Generic, NEON, AVX2, AVX512} {
		got, ok := ParseISA(isa.String())
		assert.True(t, ok)
		assert.Equal(t, isa, got)
	}
	_, ok := ParseISA("sse9")
	assert.False(t, ok)
	assert.Equal(t, "unknown", ISA(99).String())
	assert.True(t, isISAAvailable(Generic))
	assert.True(t, isISAAvailable(ActiveISA()))
}

func BenchmarkPopcountWords(b *testing.B) {
	words := make([]uint64, 1<<14)
	for i := range words {
		words[i] = uint64(i) * 0x9E3779B97F4A7C15
	}
	b.SetBytes(int64(len(words) * 8))
	for b.Loop() {
		_ = PopcountWords(words)
	}
}
