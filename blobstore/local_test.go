package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/starscan/internal/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBlobStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)

	ctx := context.Background()

	// 1. Put a blob in a nested directory
	blobName := "sectors/Alpha.jsonl"
	data := []byte("hello world, this is a test shard")
	require.NoError(t, store.Put(ctx, blobName, data))

	expectedPath := filepath.Join(tmpDir, "sectors", "Alpha.jsonl")
	_, err := os.Stat(expectedPath)
	require.NoError(t, err)

	// 2. Open and ReadRange
	blob, err := store.Open(ctx, blobName)
	require.NoError(t, err)
	defer blob.Close()

	require.Equal(t, int64(len(data)), blob.Size())

	r, err := blob.ReadRange(ctx, 6, 5)
	require.NoError(t, err)
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "world", string(content))

	// 3. List
	require.NoError(t, store.Put(ctx, "sectors/Beta.jsonl.gz", []byte{0x1f, 0x8b}))
	require.NoError(t, store.Put(ctx, "sector_index.json", []byte("{}")))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"sector_index.json", "sectors/Alpha.jsonl", "sectors/Beta.jsonl.gz"}, names)

	names, err = store.List(ctx, "sectors/")
	require.NoError(t, err)
	require.Equal(t, []string{"sectors/Alpha.jsonl", "sectors/Beta.jsonl.gz"}, names)

	// 4. Delete
	require.NoError(t, store.Delete(ctx, "sectors/Beta.jsonl.gz"))
	require.NoError(t, store.Delete(ctx, "sectors/Beta.jsonl.gz"))

	_, err = store.Open(ctx, "sectors/Beta.jsonl.gz")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalBlobStore_ReadRange_Boundaries(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "boundary.bin", []byte("0123456789")))

	blob, err := store.Open(ctx, "boundary.bin")
	require.NoError(t, err)
	defer blob.Close()

	r, err := NewReader(ctx, blob)
	require.NoError(t, err)
	content, _ := io.ReadAll(r)
	require.Equal(t, "0123456789", string(content))

	r, err = blob.ReadRange(ctx, 8, 5)
	require.NoError(t, err)
	content, err = io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "89", string(content))

	r, err = blob.ReadRange(ctx, 20, 5)
	require.NoError(t, err)
	content, err = io.ReadAll(r)
	require.NoError(t, err)
	require.Empty(t, content)

	_, err = blob.ReadRange(ctx, -1, 5)
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestLocalBlobStore_InvalidNames(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	for _, name := range []string{"", "/", `a\b`} {
		_, err := store.Open(ctx, name)
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}

	// Traversal is clamped to the root.
	require.NoError(t, store.Put(ctx, "../escape.json", []byte("x")))
	_, err := os.Stat(filepath.Join(store.Root(), "escape.json"))
	require.NoError(t, err)
}

func TestLocalBlobStore_AtomicPut(t *testing.T) {
	tests := []struct {
		name  string
		fault fs.Fault
	}{
		{"write", fs.Fault{FailAfterBytes: 2}},
		{"sync", fs.Fault{FailAfterBytes: -1, FailOnSync: true}},
		{"close", fs.Fault{FailAfterBytes: -1, FailOnClose: true}},
		{"rename", fs.Fault{FailAfterBytes: -1, FailOnRename: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			ctx := context.Background()

			require.NoError(t, NewLocalStore(tmpDir).Put(ctx, "sector_index.json", []byte(`{"old":true}`)))

			ffs := fs.NewFaultyFS(nil)
			ffs.AddRule("sector_index.json", tt.fault)
			store := NewLocalStore(tmpDir, WithFileSystem(ffs))

			err := store.Put(ctx, "sector_index.json", []byte(`{"new":true}`))
			require.ErrorIs(t, err, fs.ErrInjected)

			got, err := ReadAll(ctx, store, "sector_index.json")
			require.NoError(t, err)
			assert.Equal(t, `{"old":true}`, string(got))

			entries, err := os.ReadDir(tmpDir)
			require.NoError(t, err)
			assert.Len(t, entries, 1, "temp file must be cleaned up")
		})
	}
}

func TestLocalBlobStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "missing"))
	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}
