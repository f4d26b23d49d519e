package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/starscan/blobstore"
	"github.com/hupe1980/starscan/internal/matcher"
	"github.com/hupe1980/starscan/internal/region"
	"github.com/hupe1980/starscan/internal/resource"
	"github.com/hupe1980/starscan/internal/spatial"
	"github.com/hupe1980/starscan/internal/stream"
	"github.com/hupe1980/starscan/model"
	"github.com/hupe1980/starscan/pattern"
)

// DefaultResultBuffer is the capacity of the result channel.
const DefaultResultBuffer = 256

// Observer receives the outcome of every task as it finishes.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveTask(TaskResult)
}

// Config configures a Coordinator.
type Config struct {
	// ResultBuffer is the capacity of the bounded result channel.
	ResultBuffer int
	// Strict fails a task on its first malformed line.
	Strict    bool
	Resources *resource.Controller
	Logger    *slog.Logger
	Observer  Observer
}

// Coordinator executes plans on a shared worker pool.
type Coordinator struct {
	store blobstore.BlobStore
	pool  *WorkerPool
	cfg   Config
}

// NewCoordinator creates a coordinator reading shards from store.
func NewCoordinator(store blobstore.BlobStore, pool *WorkerPool, cfg Config) *Coordinator {
	if cfg.ResultBuffer <= 0 {
		cfg.ResultBuffer = DefaultResultBuffer
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Coordinator{store: store, pool: pool, cfg: cfg}
}

// Run executes every task of plan and returns the sorted matches.
//
// When ctx is canceled no further task starts; tasks already running
// finish on a detached context and their matches are kept. The response is
// returned together with ctx.Err() in that case. Failed tasks never abort
// their siblings; they are reported in the response.
func (c *Coordinator) Run(ctx context.Context, plan *Plan, req Request) (*Response, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := c.cfg.Logger.With(slog.String("run_id", runID), slog.String("mode", plan.Mode.String()))

	tree := req.Pattern
	if tree == nil {
		tree = pattern.MatchAll()
	}
	m := matcher.Compile(tree)

	results := make(chan Match, c.cfg.ResultBuffer)
	outcomes := make([]TaskResult, len(plan.Tasks))

	go func() {
		defer close(results)
		var wg sync.WaitGroup
		for i, task := range plan.Tasks {
			outcomes[i] = TaskResult{Task: task, Status: TaskSkipped}
			if ctx.Err() != nil {
				continue
			}
			wg.Add(1)
			err := c.pool.Submit(ctx, func() {
				defer wg.Done()
				c.runTask(ctx, task, m, req.Corridor, results, &outcomes[i])
			})
			if err != nil {
				wg.Done()
				if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
					outcomes[i] = TaskResult{Task: task, Status: TaskFailed, Err: &TaskError{Shard: task.Shard, File: task.File, Err: err}}
				}
			}
		}
		wg.Wait()
	}()

	var matches []Match
	for match := range results {
		matches = append(matches, match)
	}
	SortMatches(matches)

	resp := &Response{
		Plan:    plan,
		Results: matches,
		Tasks:   outcomes,
	}
	resp.Stats = summarize(runID, plan, outcomes, len(matches))
	resp.Stats.Duration = time.Since(start)
	resp.Stats.Canceled = ctx.Err() != nil

	log.Info("search finished",
		slog.Int("planned", resp.Stats.Planned),
		slog.Int("completed", resp.Stats.Completed),
		slog.Int("failed", resp.Stats.Failed),
		slog.Int("skipped", resp.Stats.Skipped),
		slog.Int64("matches", resp.Stats.Matches),
		slog.Duration("duration", resp.Stats.Duration),
	)

	if err := ctx.Err(); err != nil {
		return resp, err
	}
	return resp, nil
}

// runTask scans one shard. It writes only to *out and the results channel.
func (c *Coordinator) runTask(ctx context.Context, task Task, m *matcher.Matcher, corridor *spatial.Corridor, results chan<- Match, out *TaskResult) {
	if ctx.Err() != nil {
		// Queued before cancellation but not started.
		return
	}

	start := time.Now()
	res := TaskResult{Task: task, Status: TaskCompleted}
	defer func() {
		if r := recover(); r != nil {
			res.Status = TaskFailed
			res.Err = &TaskError{Shard: task.Shard, File: task.File, Err: &PanicError{Value: r, Stack: debug.Stack()}}
		}
		res.Duration = time.Since(start)
		*out = res
		c.logTask(res)
		if c.cfg.Observer != nil {
			c.cfg.Observer.ObserveTask(res)
		}
	}()

	// Running tasks finish even when the search is canceled.
	work := context.WithoutCancel(ctx)
	if err := c.scan(work, task, m, corridor, results, &res); err != nil {
		res.Status = TaskFailed
		res.Err = &TaskError{Shard: task.Shard, File: task.File, Err: err}
	}
}

func (c *Coordinator) scan(ctx context.Context, task Task, m *matcher.Matcher, corridor *spatial.Corridor, results chan<- Match, res *TaskResult) error {
	r, err := stream.OpenStore(ctx, c.store, task.File,
		stream.Strict(c.cfg.Strict),
		stream.WithResourceController(c.cfg.Resources),
		stream.WithLogger(c.cfg.Logger),
	)
	if err != nil {
		return err
	}
	defer func() {
		st := r.Stats()
		res.Systems = st.Systems
		res.DecodeErrors = st.DecodeErrors
		res.BytesRead = st.CompressedBytes
		_ = r.Close()
	}()

	shard := task.Shard
	for {
		sys, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		code := region.Code(shard, sys.Name)
		if len(task.Regions) > 0 && !slices.Contains(task.Regions, code) {
			continue
		}

		var dist *float64
		if corridor != nil {
			d := corridor.Distance(sys.Coords)
			if d > corridor.Radius {
				continue
			}
			dist = &d
		}

		eval := m.Evaluate(sys)
		if !eval.Matched {
			continue
		}

		results <- newMatch(sys, shard, code, eval, dist)
		res.Matches++
	}
}

func newMatch(sys *model.System, shard, code string, eval matcher.Result, dist *float64) Match {
	idx := eval.BodyIndices()
	bodies := make([]model.Body, len(idx))
	for i, bi := range idx {
		bodies[i] = sys.Bodies[bi]
	}
	return Match{
		Name:        sys.Name,
		ID64:        sys.ID64,
		Coords:      sys.Coords,
		Shard:       shard,
		Region:      code,
		Bodies:      bodies,
		BodyIndices: idx,
		Clauses:     eval.Clauses,
		Distance:    dist,
	}
}

func (c *Coordinator) logTask(res TaskResult) {
	attrs := []any{
		slog.Int("task", res.Task.ID),
		slog.String("shard", res.Task.Shard),
		slog.String("status", res.Status.String()),
		slog.Int64("systems", res.Systems),
		slog.Int64("matches", res.Matches),
		slog.Duration("duration", res.Duration),
	}
	if res.Err != nil {
		c.cfg.Logger.Warn("search task failed", append(attrs, slog.String("error", res.Err.Error()))...)
		return
	}
	c.cfg.Logger.Debug("search task completed", attrs...)
}
