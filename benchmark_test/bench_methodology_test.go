package benchmark_test

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/hupe1980/byteslice"
	"github.com/hupe1980/byteslice/testutil"
)

// Scan benchmarks follow the same shape:
//
//  1. Setup: build and populate the column outside the timed region.
//  2. Warmup: run WarmupIterations scans so caches hold the planes.
//  3. GC: clear setup allocations before timing.
//  4. Measure: one scan per b.N iteration, reported as ns/row.
//
// Result validation happens after the timed loop.

// WarmupIterations is the number of untimed iterations before measurement.
const WarmupIterations = 3

// BenchLoop runs fn WarmupIterations times, collects garbage and then runs
// fn b.N times under the timer.
func BenchLoop(b *testing.B, fn func(i int)) {
	b.Helper()

	for i := 0; i < WarmupIterations; i++ {
		fn(i)
	}

	runtime.GC()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		fn(i)
	}
}

// reportRows attaches a per-row cost to b so runs of different sizes compare.
func reportRows(b *testing.B, rows int) {
	b.Helper()
	if b.N == 0 || rows == 0 {
		return
	}
	b.ReportMetric(float64(b.Elapsed().Nanoseconds())/float64(b.N)/float64(rows), "ns/row")
}

func formatCount(n int) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMi", n>>20)
	case n >= 1000 && n%1000 == 0:
		return fmt.Sprintf("%dK", n/1000)
	default:
		return fmt.Sprint(n)
	}
}

// setupColumn builds a populated column and returns it with its codes.
func setupColumn(b *testing.B, typ byteslice.ColumnType, bits, rows int, opts ...byteslice.Option) (*byteslice.Column, []uint64) {
	b.Helper()

	col, err := byteslice.NewColumn(typ, bits, rows, opts...)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = col.Close() })

	codes := testutil.NewRNG(42).Codes(rows, bits)
	if err := col.BulkLoadArray(codes, 0); err != nil {
		b.Fatal(err)
	}
	return col, codes
}

func newBitVector(b *testing.B, col *byteslice.Column) *byteslice.BitVector {
	b.Helper()
	bv, err := byteslice.NewBitVectorFor(col)
	if err != nil {
		b.Fatal(err)
	}
	return bv
}
