package mem

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocAligned(t *testing.T) {
	sizes := []int{1, 10, 31, 32, 33, 100, 1024, 1 << 20}

	for _, size := range sizes {
		buf := AllocAligned(size)
		assert.Len(t, buf, size)
		assert.Equal(t, size, cap(buf))
		assert.True(t, IsAligned(buf), "size %d should be aligned to %d", size, Alignment)
	}

	assert.Nil(t, AllocAligned(0))
	assert.Nil(t, AllocAligned(-1))
}

func TestAllocAlignedZeroed(t *testing.T) {
	buf := AllocAligned(4096)
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d not zeroed", i)
		}
	}
}

func TestAllocAlignedTyped(t *testing.T) {
	for _, n := range []int{1, 3, 4, 17, 1024} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			w := AllocAlignedUint64(n)
			assert.Len(t, w, n)
			assert.True(t, IsAligned(w))

			h := AllocAlignedUint16(n)
			assert.Len(t, h, n)
			assert.True(t, IsAligned(h))

			u := AllocAlignedUint32(n)
			assert.Len(t, u, n)
			assert.True(t, IsAligned(u))
		})
	}

	assert.Nil(t, AllocAlignedUint64(0))
	assert.Nil(t, AllocAlignedUint16(-1))
	assert.Nil(t, AllocAlignedUint32(0))
}

func BenchmarkAllocAligned(b *testing.B) {
	for _, size := range []int{256, 4096, 1 << 20} {
		b.Run(fmt.Sprintf("%d", size), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				_ = AllocAligned(size)
			}
		})
	}
}
