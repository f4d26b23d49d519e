package starscan

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hupe1980/starscan/blobstore"
	"github.com/hupe1980/starscan/internal/catalog"
	"github.com/hupe1980/starscan/internal/engine"
	"github.com/hupe1980/starscan/internal/resource"
	"github.com/hupe1980/starscan/internal/spatial"
)

// Backend is where shards (and by default the catalog) are stored.
type Backend struct {
	store blobstore.BlobStore
}

// Local returns a backend rooted at a local directory.
func Local(dir string) Backend {
	return Backend{store: blobstore.NewLocalStore(dir)}
}

// Remote returns a backend for any blob store, e.g. S3 or MinIO.
func Remote(store blobstore.BlobStore) Backend {
	return Backend{store: store}
}

// Store returns the underlying blob store.
func (b Backend) Store() blobstore.BlobStore {
	return b.store
}

// DB searches a sharded star-system corpus.
//
// The catalog is loaded once at Open and replaced atomically by Reload; a
// search uses the catalog that was current when it started.
type DB struct {
	shards   blobstore.BlobStore
	catalogs *catalog.Store
	cat      atomic.Pointer[catalog.Catalog]

	planner *engine.Planner
	coord   *engine.Coordinator
	pool    *engine.WorkerPool
	rc      *resource.Controller

	opts   options
	closed atomic.Bool
}

// Open opens a corpus. A missing catalog is not an error: galaxy, pattern
// and named-shards searches then list the store, while corridor and
// named-regions searches fail with ErrCatalogNotFound. A corrupt catalog
// fails Open with ErrIndexCorrupt.
func Open(ctx context.Context, backend Backend, optFns ...Option) (*DB, error) {
	if backend.store == nil {
		return nil, fmt.Errorf("%w: backend has no store", ErrInvalidArgument)
	}
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	if err := o.grid.Validate(); err != nil {
		return nil, translateError(err)
	}

	catStore := o.catalogStore
	if catStore == nil {
		catStore = backend.store
	}

	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: o.ioLimit})
	pool := engine.NewWorkerPool(o.workers, o.logger.Logger)

	db := &DB{
		shards:   backend.store,
		catalogs: catalog.NewStore(catStore),
		planner:  &engine.Planner{Store: backend.store, Prefix: o.prefix, Grid: o.grid},
		pool:     pool,
		rc:       rc,
		opts:     o,
	}
	db.coord = engine.NewCoordinator(backend.store, pool, engine.Config{
		ResultBuffer: o.resultBuffer,
		Strict:       o.strict,
		Resources:    rc,
		Logger:       o.logger.Logger,
		Observer:     taskObserver{mc: o.metricsCollector},
	})

	cat, err := db.catalogs.Load(ctx)
	switch {
	case err == nil:
		db.cat.Store(cat)
	case errors.Is(err, catalog.ErrNotFound):
		o.logger.InfoContext(ctx, "no catalog found, shards will be listed from the store")
	default:
		pool.Close()
		return nil, loadError(err)
	}
	return db, nil
}

func loadError(err error) error {
	if errors.Is(err, catalog.ErrCorrupt) || errors.Is(err, catalog.ErrNotFound) {
		return translateError(err)
	}
	return fmt.Errorf("%w: load catalog: %w", ErrIO, err)
}

// Search runs req and returns the sorted matches with run statistics.
//
// Pattern, geometry and catalog problems fail before any shard is opened.
// A shard that cannot be read fails only its own task; see
// Response.Stats.Failures. When ctx is canceled, shards already being read
// are finished, the rest are skipped, and the partial response is returned
// together with ctx.Err().
func (db *DB) Search(ctx context.Context, req SearchRequest) (*Response, error) {
	start := time.Now()
	resp, err := db.search(ctx, req)
	if err != nil && resp == nil {
		db.opts.metricsCollector.RecordSearch(req.Mode.String(), 0, 0, time.Since(start), err)
		db.opts.logger.LogSearch(ctx, req.Mode.String(), RunStats{Duration: time.Since(start)}, err)
		return nil, err
	}

	for i := range resp.Tasks {
		tr := &resp.Tasks[i]
		tr.Err = translateError(tr.Err)
		if tr.Status == engine.TaskSkipped {
			db.opts.metricsCollector.RecordTask(tr.Status.String(), 0, 0, 0)
		}
	}
	db.opts.metricsCollector.RecordSearch(req.Mode.String(), resp.Stats.Planned, len(resp.Results), resp.Stats.Duration, err)
	db.opts.logger.LogSearch(ctx, req.Mode.String(), resp.Stats, err)
	return resp, err
}

func (db *DB) search(ctx context.Context, req SearchRequest) (*Response, error) {
	ereq, plan, err := db.plan(ctx, req)
	if err != nil {
		return nil, err
	}
	return db.coord.Run(ctx, plan, ereq)
}

// Plan resolves req into its task list without opening any shard. It is
// the dry-run form of Search.
func (db *DB) Plan(ctx context.Context, req SearchRequest) (*Plan, error) {
	_, plan, err := db.plan(ctx, req)
	return plan, err
}

func (db *DB) plan(ctx context.Context, req SearchRequest) (engine.Request, *Plan, error) {
	if db.closed.Load() {
		return engine.Request{}, nil, ErrClosed
	}
	ereq := engine.Request{
		Mode:    req.Mode,
		Pattern: req.Pattern,
		Shards:  req.Shards,
		Regions: req.Regions,
	}
	if req.Corridor != nil {
		c, err := spatial.NewCorridor(req.Corridor.Start, req.Corridor.End, req.Corridor.Radius)
		if err != nil {
			return ereq, nil, translateError(err)
		}
		ereq.Corridor = c
	}

	plan, err := db.planner.Plan(ctx, ereq, db.cat.Load())
	if err != nil {
		return ereq, nil, translateError(err)
	}
	db.opts.logger.LogPlan(ctx, plan)
	return ereq, plan, nil
}

// Reload loads the currently published catalog and swaps it in. Searches
// already running keep the catalog they started with. On error the current
// catalog stays in place.
func (db *DB) Reload(ctx context.Context) error {
	if db.closed.Load() {
		return ErrClosed
	}
	cat, err := db.catalogs.Load(ctx)
	if err != nil {
		err = loadError(err)
		db.opts.logger.LogReload(ctx, 0, err)
		return err
	}
	db.cat.Store(cat)
	db.opts.logger.LogReload(ctx, len(cat.Sectors), nil)
	return nil
}

// CatalogInfo summarises the loaded catalog.
type CatalogInfo struct {
	Loaded  bool
	Shards  int
	Regions int
	Systems int64
}

// Catalog describes the catalog currently in use.
func (db *DB) Catalog() CatalogInfo {
	cat := db.cat.Load()
	if cat == nil {
		return CatalogInfo{}
	}
	return CatalogInfo{
		Loaded:  true,
		Shards:  len(cat.Sectors),
		Regions: len(cat.Subsectors),
		Systems: cat.TotalSystems(),
	}
}

// Close stops the worker pool after running searches finish their tasks.
// It is idempotent.
func (db *DB) Close() error {
	if !db.closed.CompareAndSwap(false, true) {
		return nil
	}
	db.pool.Close()
	return nil
}
