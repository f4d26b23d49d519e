package starscan

import (
	"github.com/hupe1980/starscan/internal/catalog"
	"github.com/hupe1980/starscan/internal/engine"
	"github.com/hupe1980/starscan/internal/spatial"
	"github.com/hupe1980/starscan/model"
	"github.com/hupe1980/starscan/pattern"
)

// Mode selects how shards are chosen for a search.
type Mode = engine.Mode

const (
	// ModeGalaxy searches every shard.
	ModeGalaxy = engine.ModeGalaxy
	// ModeNamedShards searches exactly the listed shards.
	ModeNamedShards = engine.ModeNamedShards
	// ModeNamedRegions searches the shards owning the listed regions and
	// keeps only systems of those regions.
	ModeNamedRegions = engine.ModeNamedRegions
	// ModeCorridor searches the shards near a segment and keeps systems
	// within the corridor radius.
	ModeCorridor = engine.ModeCorridor
	// ModePattern searches every shard; the pattern is required.
	ModePattern = engine.ModePattern
)

// ParseMode parses a mode name such as "galaxy" or "named-regions".
func ParseMode(s string) (Mode, error) {
	m, err := engine.ParseMode(s)
	return m, translateError(err)
}

type (
	// Plan is the resolved task list of a search.
	Plan = engine.Plan
	// Task is one shard selected for a search, with the reason it was selected.
	Task = engine.Task
	// Match is one system that satisfied a search.
	Match = engine.Match
	// RunStats summarises a search run.
	RunStats = engine.RunStats
	// TaskResult reports how one search task ended.
	TaskResult = engine.TaskResult
	// Response is the outcome of a search.
	Response = engine.Response
	// BuildStats summarises a catalog build.
	BuildStats = catalog.BuildStats
)

// Corridor describes a corridor search: every point within Radius light
// years of the segment Start-End.
type Corridor struct {
	Start  model.Coordinate
	End    model.Coordinate
	Radius float64
}

// SearchRequest describes one search.
type SearchRequest struct {
	Mode Mode
	// Pattern is a validated pattern tree. Nil matches every system except
	// in ModePattern, where it is required.
	Pattern *pattern.Tree
	// Shards names the shards of a ModeNamedShards search.
	Shards []string
	// Regions names region codes ("Col_285_Sector_AB-C") or bare mass codes
	// ("AB-C") for ModeNamedRegions.
	Regions []string
	// Corridor is required for ModeCorridor.
	Corridor *Corridor
}

// ParsePattern validates a pattern document.
func ParsePattern(raw []byte) (*pattern.Tree, error) {
	tree, err := pattern.Validate(raw)
	return tree, translateError(err)
}

// LoadPattern reads and validates the pattern document at path.
func LoadPattern(path string) (*pattern.Tree, error) {
	tree, err := pattern.LoadFile(path)
	return tree, translateError(err)
}

type (
	// Grid tiles space into cubes; corridor searches open the shards named
	// after the cells the corridor touches.
	Grid = spatial.Grid
	// Cell is the integer index of a grid cell.
	Cell = spatial.Cell
	// FormatNamer names cells with a printf format taking three integers.
	FormatNamer = spatial.FormatNamer
	// TableNamer maps explicit cells to shard names.
	TableNamer = spatial.TableNamer
)

// DefaultGrid returns the grid with origin (0,0,0), 1000 ly cells and
// sector_+000_+000_+000 style shard names.
func DefaultGrid() Grid {
	return spatial.DefaultGrid()
}

// NewTableNamer builds a TableNamer from a cell-to-name table.
func NewTableNamer(table map[Cell]string) *TableNamer {
	return spatial.NewTableNamer(table)
}
