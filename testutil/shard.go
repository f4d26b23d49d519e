package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hupe1980/starscan/blobstore"
	"github.com/hupe1980/starscan/model"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"
)

// Line encodes a system as one shard line (without newline).
func Line(t testing.TB, sys model.System) string {
	t.Helper()
	b, err := json.Marshal(sys)
	require.NoError(t, err)
	return string(b)
}

// Encode joins lines with newlines and compresses them with the codec
// implied by name's suffix (.gz, .zst, .lz4, otherwise plain).
func Encode(t testing.TB, name string, lines ...string) []byte {
	t.Helper()

	raw := []byte(strings.Join(lines, "\n"))
	if len(lines) > 0 {
		raw = append(raw, '\n')
	}

	var buf bytes.Buffer
	switch {
	case strings.HasSuffix(name, ".gz"):
		w := gzip.NewWriter(&buf)
		_, err := w.Write(raw)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case strings.HasSuffix(name, ".zst"):
		w, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedFastest))
		require.NoError(t, err)
		_, err = w.Write(raw)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case strings.HasSuffix(name, ".lz4"):
		w := lz4.NewWriter(&buf)
		_, err := w.Write(raw)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	default:
		buf.Write(raw)
	}
	return buf.Bytes()
}

// PutShard encodes systems into a shard blob named name.
func PutShard(t testing.TB, store blobstore.BlobStore, name string, systems ...model.System) {
	t.Helper()
	lines := make([]string, 0, len(systems))
	for _, sys := range systems {
		lines = append(lines, Line(t, sys))
	}
	PutLines(t, store, name, lines...)
}

// PutLines writes raw lines into a shard blob named name.
func PutLines(t testing.TB, store blobstore.BlobStore, name string, lines ...string) {
	t.Helper()
	require.NoError(t, store.Put(context.Background(), name, Encode(t, name, lines...)))
}
