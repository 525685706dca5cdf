// Package persistence provides the sequential binary files used to serialize
// column blocks.
//
// [SequentialWriter] appends raw byte ranges (Open/Append/Flush/Close) and
// [SequentialReader] reads them back in order (Open/Read/IsEnd/Close). There
// is no framing: callers must read exactly what was appended, in the same
// order, and must already know the shape of the data.
//
// An optional [Compression] wraps the whole stream in a zstd or LZ4 frame.
// The logical byte sequence seen by Append and Read is unchanged.
//
// Typed slices are written as little-endian raw memory. On little-endian
// hosts this is a zero-copy view; big-endian hosts encode element by element.
package persistence
