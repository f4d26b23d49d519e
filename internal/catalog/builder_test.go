package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hupe1980/starscan/blobstore"
	"github.com/hupe1980/starscan/internal/resource"
	"github.com/hupe1980/starscan/internal/stream"
	"github.com/hupe1980/starscan/model"
	"github.com/hupe1980/starscan/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCorpus(t *testing.T, bs blobstore.BlobStore) {
	t.Helper()
	star := testutil.Body("Star", "G (White-Yellow) Star", model.NoParent)
	testutil.PutShard(t, bs, "sectors/Alpha.jsonl.gz",
		testutil.System("Alpha AB-C d1-23", 0, 0, 0, star),
		testutil.System("Alpha AB-C d1-24", 1, 0, 0, star),
		testutil.System("Alpha XY-Z a0", 2, 0, 0),
		testutil.System("Sol", 3, 0, 0),
	)
	testutil.PutShard(t, bs, "sectors/Beta.jsonl.zst",
		testutil.System("Beta AB-C d1", 1000, 0, 0, star),
	)
	testutil.PutShard(t, bs, "sectors/Gamma.jsonl.lz4",
		testutil.System("Gamma QR-S b2-1", 2000, 0, 0),
	)
	testutil.PutShard(t, bs, "sectors/Delta.jsonl")
	require.NoError(t, bs.Put(context.Background(), "sectors/README.md", []byte("not a shard")))
}

func TestBuilder_Build(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	writeCorpus(t, bs)

	var (
		mu       sync.Mutex
		observed []string
	)
	b := NewBuilder(bs, NewStore(bs), BuildOptions{
		Workers:   2,
		BatchSize: 2,
		OnShard: func(f *Fragment, _ time.Duration) {
			mu.Lock()
			defer mu.Unlock()
			observed = append(observed, f.Shard)
		},
	})

	c, stats, err := b.Build(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"Alpha", "Beta", "Delta", "Gamma"}, c.Shards())
	assert.Equal(t, 4, stats.Shards)
	assert.Equal(t, int64(6), stats.Systems)
	assert.Equal(t, 2, stats.Batches)
	assert.Equal(t, 5, stats.Regions)
	assert.ElementsMatch(t, []string{"Alpha", "Beta", "Delta", "Gamma"}, observed)

	alpha, _ := c.Shard("Alpha")
	assert.Equal(t, []string{"Alpha_AB-C", "Alpha_NAMED", "Alpha_XY-Z"}, alpha.Regions)
	assert.Equal(t, "sectors/Alpha.jsonl.gz", alpha.File)
	r, _ := c.Region("Alpha_AB-C")
	assert.Equal(t, int64(2), r.Systems)

	loaded, err := NewStore(bs).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)

	_, err = bs.Open(ctx, CheckpointName)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestBuilder_GridShardsShareSector(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	testutil.PutShard(t, bs, "sector_+000_+000_+000.jsonl.gz",
		testutil.System("Synuefe AB-C d1-1", 10, 0, 0),
	)
	testutil.PutShard(t, bs, "sector_+001_+000_+000.jsonl.gz",
		testutil.System("Synuefe AB-C d1-2", 1010, 0, 0),
	)

	c, stats, err := NewBuilder(bs, NewStore(bs), BuildOptions{Workers: 2, BatchSize: 1}).Build(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Regions)
	assert.Equal(t, []string{
		"sector_+000_+000_+000_Synuefe_AB-C",
		"sector_+001_+000_+000_Synuefe_AB-C",
	}, c.RegionsFor("Synuefe_AB-C"))
}

func TestBuilder_Idempotent(t *testing.T) {
	ctx := context.Background()

	src := blobstore.NewMemoryStore()
	rng := testutil.NewRNG(4711)
	for _, sector := range []string{"Alpha", "Beta", "Gamma", "Delta", "Epsilon"} {
		testutil.PutShard(t, src, "sectors/"+sector+".jsonl.gz", rng.Systems(sector, 40)...)
	}

	var outputs [][]byte
	for _, cfg := range []BuildOptions{
		{Workers: 1, BatchSize: 1},
		{Workers: 4, BatchSize: 2},
		{Workers: 8, BatchSize: 8},
	} {
		dst := blobstore.NewMemoryStore()
		_, _, err := NewBuilder(src, NewStore(dst), cfg).Build(ctx)
		require.NoError(t, err)

		data, err := blobstore.ReadAll(ctx, dst, IndexName)
		require.NoError(t, err)
		outputs = append(outputs, data)
	}

	assert.Equal(t, outputs[0], outputs[1])
	assert.Equal(t, outputs[0], outputs[2])
}

func TestBuilder_StepsCallerControlsCheckpoint(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	writeCorpus(t, bs)
	store := NewStore(bs)

	b := NewBuilder(bs, store, BuildOptions{Workers: 1, BatchSize: 1})

	merged := New()
	steps := 0
	for step, err := range b.Steps(ctx, nil) {
		require.NoError(t, err)
		for _, f := range step.Fragments {
			require.NoError(t, merged.Merge(f))
		}
		steps++
		if steps == 2 {
			require.NoError(t, step.Checkpoint(ctx, merged))
		}
	}
	assert.Equal(t, 4, steps)

	cp, err := store.LoadCheckpoint(ctx)
	require.NoError(t, err)
	assert.Len(t, cp.Sectors, 2)

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound, "Steps never publishes")
}

func TestBuilder_StepsEarlyBreak(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	writeCorpus(t, bs)
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20})

	b := NewBuilder(bs, NewStore(bs), BuildOptions{Workers: 4, BatchSize: 1, Resources: rc})
	for _, err := range b.Steps(ctx, nil) {
		require.NoError(t, err)
		break
	}
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestBuilder_Resume(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	writeCorpus(t, bs)
	store := NewStore(bs)

	full, _, err := NewBuilder(bs, NewStore(blobstore.NewMemoryStore()), BuildOptions{}).Build(ctx)
	require.NoError(t, err)

	// Simulate an interrupted build that checkpointed Alpha and Beta.
	cp := New()
	for _, name := range []string{"Alpha", "Beta"} {
		e := full.Sectors[name]
		f := NewFragment(e.File)
		f.Systems = e.Systems
		for _, code := range e.Regions {
			f.Regions[code] = full.Subsectors[code].Systems
		}
		require.NoError(t, cp.Merge(f))
	}
	require.NoError(t, store.SaveCheckpoint(ctx, cp))
	alphaOpens := bs.Opens("sectors/Alpha.jsonl.gz")

	c, stats, err := NewBuilder(bs, store, BuildOptions{Resume: true}).Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.ResumedShards)
	assert.Equal(t, int64(1), stats.Systems)
	assert.Equal(t, alphaOpens, bs.Opens("sectors/Alpha.jsonl.gz"), "resumed shard must not be re-read")
	assert.Equal(t, full, c)
}

func TestBuilder_ShardFailureAborts(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	writeCorpus(t, bs)

	data := testutil.Encode(t, "x.gz", testutil.Line(t, testutil.System("Broken AB-C d1", 0, 0, 0)))
	require.NoError(t, bs.Put(ctx, "sectors/Broken.jsonl.gz", data[:len(data)-6]))

	_, _, err := NewBuilder(bs, NewStore(bs), BuildOptions{Workers: 2, BatchSize: 1}).Build(ctx)
	var re *stream.ReadError
	require.ErrorAs(t, err, &re)

	_, err = NewStore(bs).Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBuilder_DecodeErrors(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	testutil.PutLines(t, bs, "Alpha.jsonl",
		testutil.Line(t, testutil.System("Alpha AB-C d1", 0, 0, 0)),
		`{"broken":`,
	)

	_, stats, err := NewBuilder(bs, NewStore(bs), BuildOptions{}).Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.DecodeErrors)
	assert.Equal(t, int64(1), stats.Systems)

	_, _, err = NewBuilder(bs, NewStore(blobstore.NewMemoryStore()), BuildOptions{Strict: true}).Build(ctx)
	var de *stream.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, int64(2), de.Line)
}

func TestBuilder_DuplicateShardName(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	testutil.PutShard(t, bs, "a/Alpha.jsonl", testutil.System("Sol", 0, 0, 0))
	testutil.PutShard(t, bs, "b/Alpha.jsonl.gz", testutil.System("Achenar", 0, 0, 0))

	_, _, err := NewBuilder(bs, NewStore(bs), BuildOptions{}).Build(ctx)
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestBuilder_Canceled(t *testing.T) {
	bs := blobstore.NewMemoryStore()
	writeCorpus(t, bs)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewBuilder(bs, NewStore(bs), BuildOptions{}).Build(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestBuilder_MemoryLimitSmallerThanBatch(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	writeCorpus(t, bs)

	rc := resource.NewController(resource.Config{MemoryLimitBytes: 16, MaxWorkers: 1})
	_, stats, err := NewBuilder(bs, NewStore(bs), BuildOptions{Workers: 4, BatchSize: 2, Resources: rc}).Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Shards)
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestListShards(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	writeCorpus(t, bs)
	require.NoError(t, bs.Put(ctx, IndexName, []byte("{}")))

	names, err := ListShards(ctx, bs, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"sectors/Alpha.jsonl.gz",
		"sectors/Beta.jsonl.zst",
		"sectors/Delta.jsonl",
		"sectors/Gamma.jsonl.lz4",
	}, names)
}
