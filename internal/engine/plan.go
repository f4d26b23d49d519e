package engine

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/hupe1980/starscan/blobstore"
	"github.com/hupe1980/starscan/internal/catalog"
	"github.com/hupe1980/starscan/internal/region"
	"github.com/hupe1980/starscan/internal/spatial"
	"github.com/hupe1980/starscan/pattern"
)

// Mode selects how shards are chosen for a search.
type Mode int

const (
	ModeGalaxy Mode = iota
	ModeNamedShards
	ModeNamedRegions
	ModeCorridor
	ModePattern
)

var modeNames = [...]string{
	ModeGalaxy:       "galaxy",
	ModeNamedShards:  "named-shards",
	ModeNamedRegions: "named-regions",
	ModeCorridor:     "corridor",
	ModePattern:      "pattern",
}

func (m Mode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler via ParseMode.
func (m *Mode) UnmarshalText(text []byte) error {
	v, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseMode parses a mode name. "sectors" and "subsectors" are accepted as
// aliases of named-shards and named-regions.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "galaxy", "":
		return ModeGalaxy, nil
	case "named-shards", "shards", "sectors":
		return ModeNamedShards, nil
	case "named-regions", "regions", "subsectors":
		return ModeNamedRegions, nil
	case "corridor":
		return ModeCorridor, nil
	case "pattern":
		return ModePattern, nil
	default:
		return 0, invalidf("unknown mode %q", s)
	}
}

// Selection reasons recorded on tasks.
const (
	ReasonAllShards    = "all-shards"
	ReasonListed       = "listed"
	ReasonRegionPrefix = "region:"
	ReasonCorridorCell = "corridor-cell"
)

// Request describes one search.
type Request struct {
	Mode Mode
	// Pattern is the validated pattern tree. Nil matches every system,
	// except in ModePattern where it is required.
	Pattern *pattern.Tree
	// Shards lists shard or file names for ModeNamedShards.
	Shards []string
	// Regions lists region codes or bare mass codes for ModeNamedRegions.
	Regions []string
	// Corridor is required for ModeCorridor.
	Corridor *spatial.Corridor
}

// Task is one unit of search work: a single shard.
type Task struct {
	ID     int    `json:"id"`
	Shard  string `json:"shard"`
	File   string `json:"file"`
	Reason string `json:"reason"`
	// Regions restricts matches to these region codes when non-empty.
	Regions []string `json:"regions,omitempty"`
	// Cataloged is false for listed shards the catalog does not know.
	Cataloged bool `json:"cataloged"`
}

// Plan is the resolved task list of a request.
type Plan struct {
	Mode  Mode   `json:"mode"`
	Tasks []Task `json:"tasks"`
	// UnknownRegions lists requested regions absent from the catalog.
	UnknownRegions []string `json:"unknown_regions,omitempty"`
	// UnknownShards lists requested shards absent from the catalog or store.
	UnknownShards []string `json:"unknown_shards,omitempty"`
	// FromCatalog is false when shards were found by listing the store.
	FromCatalog bool `json:"from_catalog"`
}

// Shards returns the shard names of the plan in task order.
func (p *Plan) Shards() []string {
	out := make([]string, len(p.Tasks))
	for i, t := range p.Tasks {
		out[i] = t.Shard
	}
	return out
}

// Planner turns requests into plans. It only reads the catalog and, when
// there is none, lists the store.
type Planner struct {
	Store  blobstore.BlobStore
	Prefix string
	Grid   spatial.Grid
}

// Plan resolves req against cat. cat may be nil; galaxy, pattern and
// named-shards searches then list the store, while corridor and
// named-regions searches fail with catalog.ErrNotFound.
func (p *Planner) Plan(ctx context.Context, req Request, cat *catalog.Catalog) (*Plan, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var (
		plan *Plan
		err  error
	)
	switch req.Mode {
	case ModeGalaxy, ModePattern:
		plan, err = p.planAll(ctx, cat)
	case ModeNamedShards:
		plan, err = p.planShards(ctx, req.Shards, cat)
	case ModeNamedRegions:
		plan, err = p.planRegions(req.Regions, cat)
	case ModeCorridor:
		plan, err = p.planCorridor(req.Corridor, cat)
	}
	if err != nil {
		return nil, err
	}
	plan.Mode = req.Mode

	slices.SortFunc(plan.Tasks, func(a, b Task) int {
		return strings.Compare(a.Shard, b.Shard)
	})
	for i := range plan.Tasks {
		plan.Tasks[i].ID = i
	}
	return plan, nil
}

func validateRequest(req Request) error {
	switch req.Mode {
	case ModeGalaxy:
	case ModePattern:
		if req.Pattern == nil {
			return invalidf("pattern mode requires a pattern")
		}
	case ModeNamedShards:
		if len(req.Shards) == 0 {
			return invalidf("named-shards mode requires at least one shard")
		}
	case ModeNamedRegions:
		if len(req.Regions) == 0 {
			return invalidf("named-regions mode requires at least one region")
		}
	case ModeCorridor:
		if req.Corridor == nil {
			return invalidf("corridor mode requires a corridor")
		}
	default:
		return invalidf("unknown mode %v", req.Mode)
	}
	if req.Corridor != nil && req.Mode != ModeCorridor {
		return invalidf("%v mode takes no corridor", req.Mode)
	}
	return nil
}

// shardFiles maps shard names to blob names, from the catalog when present
// and from a store listing otherwise.
func (p *Planner) shardFiles(ctx context.Context, cat *catalog.Catalog) (map[string]string, bool, error) {
	if cat != nil {
		files := make(map[string]string, len(cat.Sectors))
		for name, e := range cat.Sectors {
			files[name] = e.File
		}
		return files, true, nil
	}
	names, err := catalog.ListShards(ctx, p.Store, p.Prefix)
	if err != nil {
		return nil, false, fmt.Errorf("list shards: %w", err)
	}
	files := make(map[string]string, len(names))
	for _, name := range names {
		files[region.ShardName(name)] = name
	}
	return files, false, nil
}

func (p *Planner) planAll(ctx context.Context, cat *catalog.Catalog) (*Plan, error) {
	files, fromCatalog, err := p.shardFiles(ctx, cat)
	if err != nil {
		return nil, err
	}
	plan := &Plan{FromCatalog: fromCatalog}
	for shard, file := range files {
		plan.Tasks = append(plan.Tasks, Task{Shard: shard, File: file, Reason: ReasonAllShards, Cataloged: fromCatalog})
	}
	return plan, nil
}

func (p *Planner) planShards(ctx context.Context, names []string, cat *catalog.Catalog) (*Plan, error) {
	files, fromCatalog, err := p.shardFiles(ctx, cat)
	if err != nil {
		return nil, err
	}
	plan := &Plan{FromCatalog: fromCatalog}
	seen := make(map[string]bool, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		shard := region.ShardName(name)
		file, ok := files[shard]
		if !ok {
			// "Col 285 Sector" names the shard Col_285_Sector.
			if alt := region.Sanitize(shard); alt != shard {
				if f, found := files[alt]; found {
					shard, file, ok = alt, f, true
				}
			}
		}
		if seen[shard] {
			continue
		}
		seen[shard] = true

		if !ok {
			// Still planned: opening it fails and is reported per task.
			plan.UnknownShards = append(plan.UnknownShards, shard)
			file = name
		}
		plan.Tasks = append(plan.Tasks, Task{
			Shard:     shard,
			File:      file,
			Reason:    ReasonListed,
			Cataloged: ok && fromCatalog,
		})
	}
	if len(plan.Tasks) == 0 {
		return nil, invalidf("named-shards mode requires at least one shard")
	}
	slices.Sort(plan.UnknownShards)
	return plan, nil
}

func (p *Planner) planRegions(codes []string, cat *catalog.Catalog) (*Plan, error) {
	if cat == nil {
		return nil, fmt.Errorf("named-regions search: %w", catalog.ErrNotFound)
	}
	plan := &Plan{FromCatalog: true}
	byShard := make(map[string][]string)
	seen := make(map[string]bool)
	add := func(code string) {
		if seen[code] {
			return
		}
		seen[code] = true
		e, _ := cat.Region(code)
		byShard[e.Shard] = append(byShard[e.Shard], code)
	}

	for _, raw := range codes {
		code := strings.TrimSpace(raw)
		if code == "" {
			continue
		}
		if region.IsMassCode(code) {
			matches := cat.RegionsWithMassCode(code)
			if len(matches) == 0 {
				plan.UnknownRegions = append(plan.UnknownRegions, code)
			}
			for _, m := range matches {
				add(m)
			}
			continue
		}
		matches := cat.RegionsFor(code)
		if len(matches) == 0 {
			// "Col 285 Sector AB-C" spelled with spaces.
			matches = cat.RegionsFor(strings.Join(strings.Fields(code), "_"))
		}
		if len(matches) == 0 {
			plan.UnknownRegions = append(plan.UnknownRegions, code)
			continue
		}
		for _, m := range matches {
			add(m)
		}
	}

	for shard, regions := range byShard {
		slices.Sort(regions)
		file := shard
		if e, ok := cat.Shard(shard); ok {
			file = e.File
		}
		plan.Tasks = append(plan.Tasks, Task{
			Shard:     shard,
			File:      file,
			Reason:    ReasonRegionPrefix + strings.Join(regions, ","),
			Regions:   regions,
			Cataloged: true,
		})
	}
	slices.Sort(plan.UnknownRegions)
	return plan, nil
}

func (p *Planner) planCorridor(c *spatial.Corridor, cat *catalog.Catalog) (*Plan, error) {
	if cat == nil {
		return nil, fmt.Errorf("corridor search: %w", catalog.ErrNotFound)
	}
	shards, err := p.Grid.CandidateShards(c, cat.Shards())
	if err != nil {
		return nil, err
	}
	plan := &Plan{FromCatalog: true}
	for _, shard := range shards {
		e, _ := cat.Shard(shard)
		plan.Tasks = append(plan.Tasks, Task{Shard: shard, File: e.File, Reason: ReasonCorridorCell, Cataloged: true})
	}
	return plan, nil
}
