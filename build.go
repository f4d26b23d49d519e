package starscan

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/starscan/internal/catalog"
	"github.com/hupe1980/starscan/internal/resource"
)

// Build scans every shard of backend and publishes a fresh catalog.
//
// Shards are indexed in batches of WithBatchSize; after each batch the
// merged progress is written as a checkpoint, so an interrupted build can
// continue WithResume. The catalog is validated and replaced atomically;
// searchers see it after DB.Reload. A shard that cannot be read fails the
// build, since a catalog missing shards must never be published.
func Build(ctx context.Context, backend Backend, optFns ...Option) (*BuildStats, error) {
	if backend.store == nil {
		return nil, fmt.Errorf("%w: backend has no store", ErrInvalidArgument)
	}
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}

	catStore := o.catalogStore
	if catStore == nil {
		catStore = backend.store
	}

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   o.memoryLimit,
		MaxWorkers:         int64(o.workers),
		IOLimitBytesPerSec: o.ioLimit,
	})

	b := catalog.NewBuilder(backend.store, catalog.NewStore(catStore), catalog.BuildOptions{
		Workers:   o.workers,
		BatchSize: o.batchSize,
		Prefix:    o.prefix,
		Strict:    o.strict,
		Resume:    o.resume,
		Resources: rc,
		Logger:    o.logger.Logger,
		OnShard: func(f *catalog.Fragment, d time.Duration) {
			o.metricsCollector.RecordShardIndexed(f.Systems, f.DecodeErrors, d)
			o.logger.LogShardIndexed(ctx, f.Shard, f.Systems, f.DecodeErrors, d)
		},
	})

	start := time.Now()
	_, stats, err := b.Build(ctx)
	err = translateError(err)
	o.metricsCollector.RecordBuild(stats.Shards, stats.Systems, time.Since(start), err)
	o.logger.LogBuild(ctx, stats, err)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
