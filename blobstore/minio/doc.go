// Package minio provides a BlobStore implementation using the MinIO client.
//
// MinIO is a high-performance, S3-compatible object storage system. This package
// uses the official MinIO Go client library for compatibility with MinIO
// and other S3-compatible storage systems like Ceph, SeaweedFS, and Garage.
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
//	store := minioblob.NewStore(client, "galaxy", "dumps/2024/")
//	db, err := starscan.Open(ctx, store)
//
// # Features
//
//   - Range reads for streaming shard decompression
//   - Single-request atomic Put for catalog publication
//   - Works with any S3-compatible storage (Ceph, Garage, SeaweedFS)
package minio
