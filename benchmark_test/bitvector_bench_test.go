package benchmark_test

import (
	"fmt"
	"testing"

	"github.com/hupe1980/byteslice"
	"github.com/hupe1980/byteslice/testutil"
)

func setupBitVector(b *testing.B, rows int, rate float64, seed int64) *byteslice.BitVector {
	b.Helper()
	bv, err := byteslice.NewBitVector(rows)
	if err != nil {
		b.Fatal(err)
	}
	bv.SetZeros()
	for i, set := range testutil.NewRNG(seed).Sparse(rows, rate) {
		if set {
			bv.SetBit(i)
		}
	}
	return bv
}

func BenchmarkBitVector_CountOnes(b *testing.B) {
	const rows = 16 << 20
	bv := setupBitVector(b, rows, 0.3, 1)

	BenchLoop(b, func(int) {
		_ = bv.CountOnes()
	})
	reportRows(b, rows)
}

func BenchmarkBitVector_And(b *testing.B) {
	const rows = 16 << 20
	x := setupBitVector(b, rows, 0.5, 1)
	y := setupBitVector(b, rows, 0.5, 2)

	BenchLoop(b, func(int) {
		_ = x.And(y)
	})
	reportRows(b, rows)
}

func BenchmarkBitVector_SetOnes(b *testing.B) {
	const rows = 16 << 20
	bv := setupBitVector(b, rows, 0, 1)

	BenchLoop(b, func(int) {
		bv.SetOnes()
	})
	reportRows(b, rows)
}

// BenchmarkIterator walks every set position at several densities.
func BenchmarkIterator(b *testing.B) {
	const rows = 4 << 20

	for _, rate := range []float64{0.001, 0.1, 0.9} {
		bv := setupBitVector(b, rows, rate, 3)
		b.Run(fmt.Sprintf("rate=%g", rate), func(b *testing.B) {
			BenchLoop(b, func(int) {
				it := bv.Iterator()
				for it.Next() {
					_ = it.Position()
				}
			})
			reportRows(b, rows)
		})
	}
}

func BenchmarkToRoaring(b *testing.B) {
	const rows = 4 << 20
	bv := setupBitVector(b, rows, 0.1, 4)

	BenchLoop(b, func(int) {
		if _, err := bv.ToRoaring(); err != nil {
			b.Fatal(err)
		}
	})
}
