package minio

import (
	"context"
	"io"
	"testing"

	"github.com/hupe1980/starscan/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMinioStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestMinioStore_Integration(t *testing.T) {
	endpoint := "localhost:9000"
	bucket := "test-starscan"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()

	if _, err = client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, "test-prefix/")

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "sectors/test.jsonl", data))

	blob, err := store.Open(ctx, "sectors/test.jsonl")
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), blob.Size())

	r, err := blob.ReadRange(ctx, 6, 5)
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "minio", string(got))
	require.NoError(t, r.Close())

	names, err := store.List(ctx, "sectors/")
	require.NoError(t, err)
	assert.Contains(t, names, "sectors/test.jsonl")

	require.NoError(t, store.Delete(ctx, "sectors/test.jsonl"))
	_, err = store.Open(ctx, "sectors/test.jsonl")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/gzip", contentType("sectors/a.jsonl.gz"))
	assert.Equal(t, "application/zstd", contentType("sectors/a.jsonl.zst"))
	assert.Equal(t, "application/json", contentType("sector_index.json"))
	assert.Equal(t, "application/octet-stream", contentType("sectors/a.jsonl"))
}
