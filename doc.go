// Package byteslice is an in-memory column store that evaluates range and
// equality predicates over fixed-width integer columns with vectorized scans.
//
// # Encoding
//
// A [Column] of bit width W (1..32) is partitioned into blocks of
// [NumTuplesPerBlock] rows. Byte-sliced blocks store ceil(W/8) byte planes per
// block: plane 0 holds the most significant byte of every row. Each stored byte
// has its top bit flipped so a signed byte compare yields unsigned order, which
// lets a scan compare 32 rows per plane with one register-wide compare.
//
// # Scanning
//
//	col, _ := byteslice.NewColumn(byteslice.TypeByteSlicePadRight, 12, n)
//	_ = col.BulkLoadArray(codes, 0)
//
//	bv, _ := byteslice.NewBitVectorFor(col)
//	_ = col.Scan(byteslice.Less, 100, bv, byteslice.BitwiseSet)
//	_ = col.Scan(byteslice.GreaterEqual, 10, bv, byteslice.BitwiseAnd)
//
//	it := bv.Iterator()
//	for it.Next() {
//	    fmt.Println(it.Position())
//	}
//
// Scans fan out one goroutine per block. Each block writes only its own
// [BitVectorBlock], so no locking is involved. Scans are read-only on the
// column; Resize and loads must not run concurrently with them.
//
// # Persistence
//
// Blocks serialize as raw byte ranges with no header; see [Column.WriteTo].
// [SaveSnapshot] and [LoadSnapshot] add a descriptor and store both in a
// blobstore.BlobStore (local disk, memory, S3, MinIO).
package byteslice
