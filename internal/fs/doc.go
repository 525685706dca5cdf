// Package fs provides filesystem abstractions for testability and fault injection.
//
// The package defines two key interfaces:
//
//   - [File]: an open file with read/write/sync capabilities
//   - [FileSystem]: the handful of filesystem operations column persistence needs
//
// # Implementations
//
//   - [LocalFS]: production implementation using the os package
//   - [FaultyFS]: test utility that injects write, read, sync and close failures
//
// Production code uses fs.Default (which is [LocalFS]). Tests wrap it:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("col.bin", fs.Fault{FailAfterBytes: 1024, FailAfterReadBytes: -1})
//
// Filesystem calls take no context.Context; slow remote storage goes through
// the blobstore package instead.
package fs
