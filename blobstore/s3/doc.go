// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("galaxy/"),
//	    s3.WithRegion("eu-west-1"),
//	)
//
//	db, err := starscan.Open(ctx, store)
//
// # Features
//
//   - Range reads for streaming shard decompression
//   - Multipart uploads for large blobs, single PUT with CRC32C for small ones
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
//
// S3 PUT is atomic per object, so catalog publication never exposes a
// partially written document.
package s3
