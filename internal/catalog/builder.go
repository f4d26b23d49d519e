package catalog

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"path"
	"runtime"
	"slices"
	"time"

	"github.com/hupe1980/starscan/blobstore"
	"github.com/hupe1980/starscan/internal/region"
	"github.com/hupe1980/starscan/internal/resource"
	"github.com/hupe1980/starscan/internal/stream"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize is the number of shards per build step.
const DefaultBatchSize = 8

// ShardObserver is notified after each shard has been indexed.
type ShardObserver func(f *Fragment, d time.Duration)

// BuildOptions configures a Builder.
type BuildOptions struct {
	// Workers is the number of batches indexed concurrently. Default GOMAXPROCS.
	Workers int
	// BatchSize is the number of shards per step. Default 8.
	BatchSize int
	// Prefix restricts shard discovery to blob names with this prefix.
	Prefix string
	// Strict aborts the build on the first malformed line.
	Strict bool
	// Resume continues from an existing checkpoint.
	Resume bool
	// Resources bounds memory, open streams and read throughput.
	Resources *resource.Controller
	// Logger receives progress logs.
	Logger *slog.Logger
	// OnShard is called after each shard.
	OnShard ShardObserver
}

// BuildStats summarises a completed build.
type BuildStats struct {
	Shards        int
	ResumedShards int
	Regions       int
	Systems       int64
	DecodeErrors  int64
	Batches       int
	BytesRead     int64
	Duration      time.Duration
}

// Step is one completed batch. The consumer merges Fragments and then calls
// Checkpoint with the merged catalog; when to flush is the consumer's choice.
type Step struct {
	Batch      int
	Fragments  []*Fragment
	Checkpoint func(ctx context.Context, merged *Catalog) error
}

// Builder derives a catalog from the shards in a blob store.
type Builder struct {
	src   blobstore.BlobStore
	store *Store
	opts  BuildOptions
	log   *slog.Logger
}

// NewBuilder creates a builder reading shards from src and publishing to store.
func NewBuilder(src blobstore.BlobStore, store *Store, opts BuildOptions) *Builder {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Builder{src: src, store: store, opts: opts, log: log}
}

// ListShards returns the shard blobs in the source store, sorted.
func ListShards(ctx context.Context, src blobstore.BlobStore, prefix string) ([]string, error) {
	names, err := src.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := names[:0]
	for _, name := range names {
		base := path.Base(name)
		if base == IndexName || base == CheckpointName {
			continue
		}
		if region.IsShardFile(name) {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out, nil
}

// Steps indexes every shard not already present in base and yields one
// Step per batch. Producers block until the consumer takes a step, so at
// most Workers batches of fragments are held in memory. Iteration stops at
// the first error.
func (b *Builder) Steps(ctx context.Context, base *Catalog) iter.Seq2[Step, error] {
	return func(yield func(Step, error) bool) {
		files, err := ListShards(ctx, b.src, b.opts.Prefix)
		if err != nil {
			yield(Step{}, fmt.Errorf("list shards: %w", err))
			return
		}
		if base != nil {
			files = slices.DeleteFunc(files, func(f string) bool {
				_, done := base.Sectors[region.ShardName(f)]
				return done
			})
		}

		batches := slices.Collect(slices.Chunk(files, b.opts.BatchSize))

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		type batchResult struct {
			idx   int
			frags []*Fragment
			mem   int64
			err   error
		}
		results := make(chan batchResult)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(b.opts.Workers)
		go func() {
			defer close(results)
			for i, batch := range batches {
				if gctx.Err() != nil {
					break
				}
				g.Go(func() error {
					frags, mem, err := b.indexBatch(gctx, batch)
					select {
					case results <- batchResult{idx: i, frags: frags, mem: mem, err: err}:
					case <-gctx.Done():
						b.opts.Resources.ReleaseMemory(mem)
						if err == nil {
							err = gctx.Err()
						}
					}
					return err
				})
			}
			_ = g.Wait()
		}()

		drain := func() {
			cancel()
			for res := range results {
				b.opts.Resources.ReleaseMemory(res.mem)
			}
		}

		for res := range results {
			if res.err != nil {
				b.opts.Resources.ReleaseMemory(res.mem)
				drain()
				yield(Step{}, res.err)
				return
			}
			step := Step{
				Batch:      res.idx,
				Fragments:  res.frags,
				Checkpoint: b.store.SaveCheckpoint,
			}
			cont := yield(step, nil)
			b.opts.Resources.ReleaseMemory(res.mem)
			if !cont {
				drain()
				return
			}
		}

		if err := ctx.Err(); err != nil {
			yield(Step{}, err)
		}
	}
}

func (b *Builder) indexBatch(ctx context.Context, files []string) ([]*Fragment, int64, error) {
	frags := make([]*Fragment, 0, len(files))
	var mem int64
	for _, file := range files {
		f, err := b.indexShard(ctx, file)
		if err != nil {
			return nil, 0, err
		}
		mem += f.SizeBytes()
		frags = append(frags, f)
	}
	// One reservation per batch; it is released once the consumer has taken the step.
	if err := b.opts.Resources.AcquireMemory(ctx, mem); err != nil {
		return nil, 0, err
	}
	return frags, mem, nil
}

func (b *Builder) indexShard(ctx context.Context, file string) (*Fragment, error) {
	if err := b.opts.Resources.AcquireWorker(ctx); err != nil {
		return nil, err
	}
	defer b.opts.Resources.ReleaseWorker()

	start := time.Now()
	r, err := stream.OpenStore(ctx, b.src, file,
		stream.Strict(b.opts.Strict),
		stream.WithResourceController(b.opts.Resources),
		stream.WithLogger(b.log),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	f := NewFragment(file)
	for sys, err := range r.All() {
		if err != nil {
			return nil, err
		}
		f.Add(sys.Name)
		if f.Systems%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}
	st := r.Stats()
	f.DecodeErrors = st.DecodeErrors
	f.Bytes = st.CompressedBytes

	d := time.Since(start)
	b.log.Debug("shard indexed",
		slog.String("shard", f.Shard),
		slog.Int64("systems", f.Systems),
		slog.Int("regions", len(f.Regions)),
		slog.Int64("decode_errors", f.DecodeErrors),
		slog.Duration("duration", d),
	)
	if b.opts.OnShard != nil {
		b.opts.OnShard(f, d)
	}
	return f, nil
}

// Build indexes the corpus, verifies the totals and publishes the catalog
// atomically. On failure nothing is published and the last checkpoint is kept.
func (b *Builder) Build(ctx context.Context) (*Catalog, BuildStats, error) {
	start := time.Now()
	var stats BuildStats

	merged := New()
	if b.opts.Resume {
		cp, err := b.store.LoadCheckpoint(ctx)
		switch {
		case err == nil:
			merged = cp
			stats.ResumedShards = len(cp.Sectors)
			b.log.Info("resuming build from checkpoint", slog.Int("shards", stats.ResumedShards))
		case errors.Is(err, ErrNotFound):
		default:
			return nil, stats, fmt.Errorf("load checkpoint: %w", err)
		}
	}
	base := merged.TotalSystems()

	for step, err := range b.Steps(ctx, merged.Clone()) {
		if err != nil {
			return nil, stats, err
		}
		for _, f := range step.Fragments {
			if err := merged.Merge(f); err != nil {
				return nil, stats, err
			}
			stats.Systems += f.Systems
			stats.DecodeErrors += f.DecodeErrors
			stats.BytesRead += f.Bytes
		}
		stats.Batches++
		if err := step.Checkpoint(ctx, merged); err != nil {
			return nil, stats, fmt.Errorf("checkpoint: %w", err)
		}
		b.log.Info("build checkpoint",
			slog.Int("batch", step.Batch),
			slog.Int("shards", len(merged.Sectors)),
			slog.Int64("systems", merged.TotalSystems()),
		)
	}

	if got, want := merged.TotalSystems(), base+stats.Systems; got != want {
		return nil, stats, fmt.Errorf("%w: shards sum to %d, scanned %d", ErrCountMismatch, got, want)
	}
	if err := b.store.Save(ctx, merged); err != nil {
		return nil, stats, fmt.Errorf("publish catalog: %w", err)
	}
	if err := b.store.DeleteCheckpoint(ctx); err != nil {
		b.log.Warn("failed to delete checkpoint", slog.String("error", err.Error()))
	}

	stats.Shards = len(merged.Sectors)
	stats.Regions = len(merged.Subsectors)
	stats.Duration = time.Since(start)
	return merged, stats, nil
}
