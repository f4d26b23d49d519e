package starscan

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with starscan-specific helpers so that build
// and search logs use consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that writes JSON to w at level.
// A nil w writes to stderr.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{
		Logger: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})),
	}
}

// NewTextLogger creates a Logger that writes human-readable text to w.
// A nil w writes to stderr.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithRunID adds a run_id field to the logger.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id),
	}
}

// LogSearch logs the end of a search.
func (l *Logger) LogSearch(ctx context.Context, mode string, stats RunStats, err error) {
	attrs := []any{
		"run_id", stats.RunID,
		"mode", mode,
		"planned", stats.Planned,
		"completed", stats.Completed,
		"failed", stats.Failed,
		"skipped", stats.Skipped,
		"systems", stats.SystemsScanned,
		"matches", stats.Matches,
		"duration", stats.Duration,
	}
	switch {
	case err != nil:
		l.ErrorContext(ctx, "search failed", append(attrs, "error", err)...)
	case stats.Failed > 0:
		l.WarnContext(ctx, "search completed with failed tasks", attrs...)
	default:
		l.InfoContext(ctx, "search completed", attrs...)
	}
}

// LogPlan logs a resolved task list.
func (l *Logger) LogPlan(ctx context.Context, plan *Plan) {
	l.DebugContext(ctx, "search planned",
		"mode", plan.Mode.String(),
		"tasks", len(plan.Tasks),
		"unknown_regions", plan.UnknownRegions,
		"unknown_shards", plan.UnknownShards,
		"from_catalog", plan.FromCatalog,
	)
}

// LogBuild logs the end of a catalog build.
func (l *Logger) LogBuild(ctx context.Context, stats BuildStats, err error) {
	if err != nil {
		l.ErrorContext(ctx, "catalog build failed",
			"shards", stats.Shards,
			"systems", stats.Systems,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "catalog build completed",
		"shards", stats.Shards,
		"resumed_shards", stats.ResumedShards,
		"regions", stats.Regions,
		"systems", stats.Systems,
		"decode_errors", stats.DecodeErrors,
		"batches", stats.Batches,
		"duration", stats.Duration,
	)
}

// LogShardIndexed logs one indexed shard.
func (l *Logger) LogShardIndexed(ctx context.Context, shard string, systems, decodeErrors int64, d time.Duration) {
	l.DebugContext(ctx, "shard indexed",
		"shard", shard,
		"systems", systems,
		"decode_errors", decodeErrors,
		"duration", d,
	)
}

// LogReload logs a catalog reload.
func (l *Logger) LogReload(ctx context.Context, shards int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "catalog reload failed", "error", err)
		return
	}
	l.InfoContext(ctx, "catalog reloaded", "shards", shards)
}
