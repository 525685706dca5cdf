// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("columns/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	desc, err := byteslice.SaveSnapshot(ctx, store, "orders-qty", col)
//
// # Features
//
//   - Range reads for streaming snapshot loads
//   - Multipart streaming uploads with CRC32C checksums
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
//   - DynamoDB-backed versioned descriptor commits (DDBCommitStore)
package s3
