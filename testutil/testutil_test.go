package testutil

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/hupe1980/starscan/blobstore"
	"github.com/hupe1980/starscan/model"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystems(t *testing.T) {
	rng := NewRNG(4711)

	systems := rng.Systems("Alpha", 20)
	require.Len(t, systems, 20)

	for _, sys := range systems {
		require.NotEmpty(t, sys.Bodies)
		assert.Equal(t, model.NoParent, sys.Bodies[0].Parent)
		for i, b := range sys.Bodies[1:] {
			assert.Less(t, b.Parent, i+1)
		}
		_, err := model.DecodeSystem([]byte(Line(t, sys)))
		require.NoError(t, err)
	}

	again := NewRNG(4711).Systems("Alpha", 20)
	assert.Equal(t, systems, again)
}

func TestEncodeGzip(t *testing.T) {
	data := Encode(t, "x.jsonl.gz", "a", "b")
	r, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", string(got))
}

func TestPutShard(t *testing.T) {
	store := blobstore.NewMemoryStore()
	PutShard(t, store, "Alpha.jsonl", System("Sol", 0, 0, 0, Body("Star", "G (White-Yellow) Star", model.NoParent)))

	got, err := blobstore.ReadAll(context.Background(), store, "Alpha.jsonl")
	require.NoError(t, err)
	assert.Contains(t, string(got), `"name":"Sol"`)
}
