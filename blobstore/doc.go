// Package blobstore abstracts the storage that column snapshots are written to.
//
// A snapshot consists of a streamed data blob and a small descriptor blob.
// BlobStore implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, blobs become visible atomically on Close
//   - MemoryStore: in-process map, for tests
//   - s3.Store: Amazon S3 with multipart streaming uploads
//   - s3.DDBCommitStore: S3 data plus DynamoDB versioned descriptor commits
//   - minio.Store: MinIO and other S3-compatible servers
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)            // Open for reading
//	    Create(ctx, name) (WritableBlob, error)  // Create for streaming writes
//	    Put(ctx, name, data) error               // Atomic small write
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
