package starscan

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// observability package ships a Prometheus implementation.
type MetricsCollector interface {
	// RecordSearch is called after each search with the number of planned
	// tasks and matches. err is nil if the search succeeded.
	RecordSearch(mode string, tasks, matches int, duration time.Duration, err error)

	// RecordTask is called after each search task. status is one of
	// "completed", "failed" or "skipped".
	RecordTask(status string, systems, decodeErrors int64, duration time.Duration)

	// RecordShardIndexed is called after each shard indexed by a build.
	RecordShardIndexed(systems, decodeErrors int64, duration time.Duration)

	// RecordBuild is called after each build.
	RecordBuild(shards int, systems int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSearch(string, int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordTask(string, int64, int64, time.Duration)      {}
func (NoopMetricsCollector) RecordShardIndexed(int64, int64, time.Duration)      {}
func (NoopMetricsCollector) RecordBuild(int, int64, time.Duration, error)        {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SearchCount      atomic.Int64
	SearchErrors     atomic.Int64
	SearchTotalNanos atomic.Int64
	SearchMatches    atomic.Int64
	TaskCount        atomic.Int64
	TaskFailed       atomic.Int64
	TaskSkipped      atomic.Int64
	SystemsScanned   atomic.Int64
	DecodeErrors     atomic.Int64
	ShardsIndexed    atomic.Int64
	SystemsIndexed   atomic.Int64
	BuildCount       atomic.Int64
	BuildErrors      atomic.Int64
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(_ string, _, matches int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	b.SearchMatches.Add(int64(matches))
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// RecordTask implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTask(status string, systems, decodeErrors int64, _ time.Duration) {
	b.TaskCount.Add(1)
	switch status {
	case "failed":
		b.TaskFailed.Add(1)
	case "skipped":
		b.TaskSkipped.Add(1)
	}
	b.SystemsScanned.Add(systems)
	b.DecodeErrors.Add(decodeErrors)
}

// RecordShardIndexed implements MetricsCollector.
func (b *BasicMetricsCollector) RecordShardIndexed(systems, decodeErrors int64, _ time.Duration) {
	b.ShardsIndexed.Add(1)
	b.SystemsIndexed.Add(systems)
	b.DecodeErrors.Add(decodeErrors)
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(_ int, _ int64, _ time.Duration, err error) {
	b.BuildCount.Add(1)
	if err != nil {
		b.BuildErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SearchCount:    b.SearchCount.Load(),
		SearchErrors:   b.SearchErrors.Load(),
		SearchAvgNanos: b.getAvgSearchNanos(),
		SearchMatches:  b.SearchMatches.Load(),
		TaskCount:      b.TaskCount.Load(),
		TaskFailed:     b.TaskFailed.Load(),
		TaskSkipped:    b.TaskSkipped.Load(),
		SystemsScanned: b.SystemsScanned.Load(),
		DecodeErrors:   b.DecodeErrors.Load(),
		ShardsIndexed:  b.ShardsIndexed.Load(),
		SystemsIndexed: b.SystemsIndexed.Load(),
		BuildCount:     b.BuildCount.Load(),
		BuildErrors:    b.BuildErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgSearchNanos() int64 {
	count := b.SearchCount.Load()
	if count == 0 {
		return 0
	}
	return b.SearchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SearchCount    int64
	SearchErrors   int64
	SearchAvgNanos int64
	SearchMatches  int64
	TaskCount      int64
	TaskFailed     int64
	TaskSkipped    int64
	SystemsScanned int64
	DecodeErrors   int64
	ShardsIndexed  int64
	SystemsIndexed int64
	BuildCount     int64
	BuildErrors    int64
}

// taskObserver forwards engine task results to a MetricsCollector.
type taskObserver struct {
	mc MetricsCollector
}

func (o taskObserver) ObserveTask(tr TaskResult) {
	o.mc.RecordTask(tr.Status.String(), tr.Systems, tr.DecodeErrors, tr.Duration)
}
