// Package blobstore provides the storage abstraction for shard files and
// the subsector catalog.
//
// BlobStore is the interface for reading and writing named blobs. Names are
// slash-separated paths relative to the store root (for example
// "sectors/Alpha.jsonl.gz"). Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, atomic Put via temp file + fsync + rename
//   - MemoryStore: in-memory store for tests
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
// Implement the BlobStore interface to support custom storage backends:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error         // Atomic replace
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Readers never observe a partially written blob: Put either publishes the
// complete new content or leaves the previous content in place.
package blobstore
