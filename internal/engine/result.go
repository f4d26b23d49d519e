package engine

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/hupe1980/starscan/model"
)

// Match is one system that satisfied the search.
type Match struct {
	Name   string           `json:"name"`
	ID64   uint64           `json:"id64,omitempty"`
	Coords model.Coordinate `json:"coords"`
	Shard  string           `json:"shard"`
	Region string           `json:"region"`
	// Bodies are copies of the matched bodies in index order.
	Bodies      []model.Body `json:"bodies"`
	BodyIndices []int        `json:"bodyIndices"`
	Clauses     []int        `json:"clauses,omitempty"`
	// Distance to the corridor segment, set in corridor searches.
	Distance *float64 `json:"distance,omitempty"`
}

// compareMatches orders by name, then shard, then coordinates.
func compareMatches(a, b Match) int {
	return cmp.Or(
		strings.Compare(a.Name, b.Name),
		strings.Compare(a.Shard, b.Shard),
		cmp.Compare(a.Coords.X, b.Coords.X),
		cmp.Compare(a.Coords.Y, b.Coords.Y),
		cmp.Compare(a.Coords.Z, b.Coords.Z),
	)
}

// SortMatches sorts matches into their canonical output order.
func SortMatches(ms []Match) {
	slices.SortStableFunc(ms, compareMatches)
}

// TaskStatus is the final state of a task.
type TaskStatus int

const (
	TaskCompleted TaskStatus = iota
	TaskFailed
	TaskSkipped
)

func (s TaskStatus) String() string {
	switch s {
	case TaskCompleted:
		return "completed"
	case TaskFailed:
		return "failed"
	case TaskSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// TaskResult reports how one task ended.
type TaskResult struct {
	Task         Task
	Status       TaskStatus
	Err          error
	Systems      int64
	DecodeErrors int64
	Matches      int64
	BytesRead    int64
	Duration     time.Duration
}

// TaskFailure is the summary entry of a failed task.
type TaskFailure struct {
	Shard string `json:"shard"`
	File  string `json:"file"`
	Error string `json:"error"`
}

// RunStats summarises one search run. It is always complete, also for
// canceled runs.
type RunStats struct {
	RunID          string        `json:"runId"`
	Mode           string        `json:"mode"`
	Planned        int           `json:"planned"`
	Completed      int           `json:"completed"`
	Failed         int           `json:"failed"`
	Skipped        int           `json:"skipped"`
	SystemsScanned int64         `json:"systemsScanned"`
	DecodeErrors   int64         `json:"decodeErrors"`
	Matches        int64         `json:"matches"`
	BytesRead      int64         `json:"bytesRead"`
	Failures       []TaskFailure `json:"failures,omitempty"`
	Canceled       bool          `json:"canceled"`
	Duration       time.Duration `json:"duration"`
}

// Response is the outcome of a search.
type Response struct {
	Plan    *Plan
	Results []Match
	Tasks   []TaskResult
	Stats   RunStats
}

func summarize(runID string, plan *Plan, tasks []TaskResult, matches int) RunStats {
	st := RunStats{
		RunID:   runID,
		Mode:    plan.Mode.String(),
		Planned: len(plan.Tasks),
		Matches: int64(matches),
	}
	for _, tr := range tasks {
		switch tr.Status {
		case TaskCompleted:
			st.Completed++
		case TaskFailed:
			st.Failed++
			msg := ""
			if tr.Err != nil {
				msg = tr.Err.Error()
			}
			st.Failures = append(st.Failures, TaskFailure{Shard: tr.Task.Shard, File: tr.Task.File, Error: msg})
		case TaskSkipped:
			st.Skipped++
		}
		st.SystemsScanned += tr.Systems
		st.DecodeErrors += tr.DecodeErrors
		st.BytesRead += tr.BytesRead
	}
	return st
}
