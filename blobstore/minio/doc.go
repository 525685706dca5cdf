// Package minio provides a BlobStore implementation using the MinIO client.
//
// It targets MinIO and other S3-compatible systems (Ceph, SeaweedFS, Garage)
// without pulling in the AWS SDK.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "my-bucket", "columns/")
//	desc, err := byteslice.SaveSnapshot(ctx, store, "orders", col)
//
// Column snapshots are written with Create, which streams the serialized
// planes into a multipart upload of PartSize chunks.
package minio
