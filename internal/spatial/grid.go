package spatial

import (
	"fmt"
	"math"
	"regexp"
	"slices"

	"github.com/hupe1980/starscan/model"
)

const (
	// DefaultCellSize is the edge length of a grid cell in light years.
	DefaultCellSize = 1000.0

	// DefaultCellFormat names a cell by its integer indices.
	DefaultCellFormat = "sector_%+04d_%+04d_%+04d"

	// MaxEnumeratedCells bounds how many cells CandidateShards enumerates
	// before it falls back to scanning the present shard names.
	MaxEnumeratedCells = 1 << 20

	// maxCellIndex saturates cell indices so that far-out coordinates
	// convert to int on every platform.
	maxCellIndex = 1 << 30
)

// Cell is the integer index of a grid cell.
type Cell struct {
	X, Y, Z int
}

// Namer maps grid cells to shard names.
type Namer interface {
	CellName(c Cell) (string, bool)
}

// CellParser is implemented by namers that can map a shard name back to
// its cell.
type CellParser interface {
	CellOf(name string) (Cell, bool)
}

// FormatNamer names cells with a printf format taking three integers.
type FormatNamer struct {
	Format string
}

// CellName implements Namer.
func (n FormatNamer) CellName(c Cell) (string, bool) {
	return fmt.Sprintf(n.format(), c.X, c.Y, c.Z), true
}

// intVerb matches a %d verb with flags and width, which fmt's scanner
// does not accept.
var intVerb = regexp.MustCompile(`%[-+# 0]*[0-9]*d`)

// CellOf implements CellParser. Only names that format back to themselves
// are accepted.
func (n FormatNamer) CellOf(name string) (Cell, bool) {
	var c Cell
	scan := intVerb.ReplaceAllString(n.format(), "%d")
	if _, err := fmt.Sscanf(name, scan, &c.X, &c.Y, &c.Z); err != nil {
		return Cell{}, false
	}
	if back, _ := n.CellName(c); back != name {
		return Cell{}, false
	}
	return c, true
}

func (n FormatNamer) format() string {
	if n.Format == "" {
		return DefaultCellFormat
	}
	return n.Format
}

// TableNamer maps explicit cells to names, for corpora whose shards carry
// arbitrary names. Cells missing from the table have no shard.
type TableNamer struct {
	names map[Cell]string
	cells map[string]Cell
}

// NewTableNamer builds a TableNamer from a cell-to-name table.
func NewTableNamer(table map[Cell]string) *TableNamer {
	t := &TableNamer{
		names: make(map[Cell]string, len(table)),
		cells: make(map[string]Cell, len(table)),
	}
	for c, name := range table {
		t.names[c] = name
		t.cells[name] = c
	}
	return t
}

// CellName implements Namer.
func (t *TableNamer) CellName(c Cell) (string, bool) {
	name, ok := t.names[c]
	return name, ok
}

// CellOf implements CellParser.
func (t *TableNamer) CellOf(name string) (Cell, bool) {
	c, ok := t.cells[name]
	return c, ok
}

// Grid tiles space into cubes of CellSize starting at Origin.
type Grid struct {
	Origin   model.Coordinate
	CellSize float64
	Namer    Namer
}

// DefaultGrid returns the grid with origin (0,0,0), 1000 ly cells and
// sector_+000_+000_+000 style names.
func DefaultGrid() Grid {
	return Grid{CellSize: DefaultCellSize, Namer: FormatNamer{Format: DefaultCellFormat}}
}

// Validate checks the grid parameters.
func (g Grid) Validate() error {
	if !g.Origin.IsFinite() {
		return geometryErrorf("grid origin %v is not finite", g.Origin)
	}
	if math.IsNaN(g.CellSize) || math.IsInf(g.CellSize, 0) || g.CellSize <= 0 {
		return geometryErrorf("grid cell size must be a positive finite number, got %g", g.CellSize)
	}
	return nil
}

// CellOf returns the cell containing p.
func (g Grid) CellOf(p model.Coordinate) Cell {
	return Cell{
		X: g.index(p.X, g.Origin.X),
		Y: g.index(p.Y, g.Origin.Y),
		Z: g.index(p.Z, g.Origin.Z),
	}
}

// index is monotonic in v, so saturating it keeps every cell range a
// superset of the true one.
func (g Grid) index(v, origin float64) int {
	f := math.Floor((v - origin) / g.CellSize)
	switch {
	case math.IsNaN(f):
		return 0
	case f > maxCellIndex:
		return maxCellIndex
	case f < -maxCellIndex:
		return -maxCellIndex
	}
	return int(f)
}

// CellRange returns the inclusive range of cells intersecting box.
func (g Grid) CellRange(b Box) (lo, hi Cell) {
	return g.CellOf(b.Min), g.CellOf(b.Max)
}

// CellCount returns the number of cells in the inclusive range.
func CellCount(lo, hi Cell) float64 {
	return float64(hi.X-lo.X+1) * float64(hi.Y-lo.Y+1) * float64(hi.Z-lo.Z+1)
}

func (g Grid) namer() Namer {
	if g.Namer == nil {
		return FormatNamer{}
	}
	return g.Namer
}

// CandidateShards returns, sorted, the shards of present whose grid cell
// intersects the bounding box of the corridor. The result is a superset of
// the shards holding points inside the corridor.
func (g Grid) CandidateShards(c *Corridor, present []string) ([]string, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	lo, hi := g.CellRange(c.Bounds())
	namer := g.namer()

	have := make(map[string]struct{}, len(present))
	for _, name := range present {
		have[name] = struct{}{}
	}

	var out []string
	if CellCount(lo, hi) <= MaxEnumeratedCells {
		for x := lo.X; x <= hi.X; x++ {
			for y := lo.Y; y <= hi.Y; y++ {
				for z := lo.Z; z <= hi.Z; z++ {
					name, ok := namer.CellName(Cell{X: x, Y: y, Z: z})
					if !ok {
						continue
					}
					if _, ok := have[name]; ok {
						out = append(out, name)
					}
				}
			}
		}
	} else {
		parser, ok := namer.(CellParser)
		if !ok {
			return nil, geometryErrorf("corridor spans %.0f grid cells", CellCount(lo, hi))
		}
		for name := range have {
			cell, ok := parser.CellOf(name)
			if ok && within(cell, lo, hi) {
				out = append(out, name)
			}
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

func within(c, lo, hi Cell) bool {
	return c.X >= lo.X && c.X <= hi.X &&
		c.Y >= lo.Y && c.Y <= hi.Y &&
		c.Z >= lo.Z && c.Z <= hi.Z
}
