package catalog

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/hupe1980/starscan/internal/hash"
	"github.com/hupe1980/starscan/internal/region"
)

const (
	// IndexName is the blob name of the published catalog.
	IndexName = "sector_index.json"
	// CheckpointName is the blob name of the in-progress build checkpoint.
	CheckpointName = "sector_index.checkpoint.json"
)

// ShardEntry describes one shard.
type ShardEntry struct {
	File    string   `json:"file"`
	Regions []string `json:"subsectors"`
	Systems int64    `json:"system_count"`
}

// RegionEntry describes one region.
type RegionEntry struct {
	Shard   string `json:"sector_file"`
	Systems int64  `json:"system_count"`
}

// Catalog maps shards to regions and back.
// A published catalog is treated as immutable.
type Catalog struct {
	Sectors    map[string]ShardEntry  `json:"sectors"`
	Subsectors map[string]RegionEntry `json:"subsectors"`
	// Checksum is the CRC32C of the document encoded without it. Catalogs
	// written by other tools may omit it.
	Checksum string `json:"checksum,omitempty"`
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		Sectors:    make(map[string]ShardEntry),
		Subsectors: make(map[string]RegionEntry),
	}
}

// Clone returns a deep copy.
func (c *Catalog) Clone() *Catalog {
	out := &Catalog{
		Sectors:    make(map[string]ShardEntry, len(c.Sectors)),
		Subsectors: maps.Clone(c.Subsectors),
	}
	if out.Subsectors == nil {
		out.Subsectors = make(map[string]RegionEntry)
	}
	for name, e := range c.Sectors {
		e.Regions = slices.Clone(e.Regions)
		out.Sectors[name] = e
	}
	return out
}

// Shards returns all shard names, sorted.
func (c *Catalog) Shards() []string {
	return slices.Sorted(maps.Keys(c.Sectors))
}

// Shard looks up a shard entry.
func (c *Catalog) Shard(name string) (ShardEntry, bool) {
	e, ok := c.Sectors[name]
	return e, ok
}

// Region looks up a region entry.
func (c *Catalog) Region(code string) (RegionEntry, bool) {
	e, ok := c.Subsectors[code]
	return e, ok
}

// RegionsWithMassCode returns every region whose code ends in "_"+mass,
// sorted. It lets a bare mass code like "AB-C" select that cube in every sector.
func (c *Catalog) RegionsWithMassCode(mass string) []string {
	var out []string
	for code := range c.Subsectors {
		if m, ok := region.MassCodeOf(code); ok && m == mass {
			out = append(out, code)
		}
	}
	slices.Sort(out)
	return out
}

// RegionsFor resolves a region code to the catalog regions it names, sorted:
// the code itself when present, plus its shard-qualified forms
// "<shard>_<code>" from shards that hold a slice of the sector.
func (c *Catalog) RegionsFor(code string) []string {
	var out []string
	if _, ok := c.Subsectors[code]; ok {
		out = append(out, code)
	}
	for qualified, e := range c.Subsectors {
		if qualified == e.Shard+"_"+code {
			out = append(out, qualified)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// TotalSystems returns the sum of all shard counts.
func (c *Catalog) TotalSystems() int64 {
	var n int64
	for _, e := range c.Sectors {
		n += e.Systems
	}
	return n
}

// Merge adds a shard fragment. A shard that is already present, or a region
// owned by another shard, is a CorruptError and leaves c unchanged.
func (c *Catalog) Merge(f *Fragment) error {
	if _, dup := c.Sectors[f.Shard]; dup {
		return corruptf("shard %q merged twice (file %s)", f.Shard, f.File)
	}
	for code := range f.Regions {
		if owner, taken := c.Subsectors[code]; taken {
			return corruptf("region %q claimed by shards %q and %q", code, owner.Shard, f.Shard)
		}
	}

	codes := slices.Sorted(maps.Keys(f.Regions))
	if codes == nil {
		codes = []string{}
	}
	c.Sectors[f.Shard] = ShardEntry{File: f.File, Regions: codes, Systems: f.Systems}
	for _, code := range codes {
		c.Subsectors[code] = RegionEntry{Shard: f.Shard, Systems: f.Regions[code]}
	}
	return nil
}

// Validate checks referential symmetry and count consistency.
func (c *Catalog) Validate() error {
	if c.Sectors == nil || c.Subsectors == nil {
		return corruptf("missing sectors or subsectors table")
	}

	for name, e := range c.Sectors {
		if name == "" {
			return corruptf("empty shard name")
		}
		if e.Systems < 0 {
			return corruptf("shard %q has negative count %d", name, e.Systems)
		}
		if !slices.IsSorted(e.Regions) {
			return corruptf("shard %q region list not sorted", name)
		}
		var sum int64
		for i, code := range e.Regions {
			if i > 0 && e.Regions[i-1] == code {
				return corruptf("shard %q lists region %q twice", name, code)
			}
			r, ok := c.Subsectors[code]
			if !ok {
				return corruptf("shard %q lists unknown region %q", name, code)
			}
			if r.Shard != name {
				return corruptf("region %q listed by %q but owned by %q", code, name, r.Shard)
			}
			sum += r.Systems
		}
		if sum > e.Systems {
			return corruptf("shard %q region counts %d exceed shard count %d", name, sum, e.Systems)
		}
	}

	for code, r := range c.Subsectors {
		if r.Systems < 0 {
			return corruptf("region %q has negative count %d", code, r.Systems)
		}
		s, ok := c.Sectors[r.Shard]
		if !ok {
			return corruptf("region %q points to unknown shard %q", code, r.Shard)
		}
		if _, found := slices.BinarySearch(s.Regions, code); !found {
			return corruptf("region %q missing from shard %q", code, r.Shard)
		}
	}
	return nil
}

// Marshal encodes the catalog deterministically and stamps its checksum.
func (c *Catalog) Marshal() ([]byte, error) {
	sum, err := c.checksum()
	if err != nil {
		return nil, err
	}
	stamped := *c
	stamped.Checksum = sum
	data, err := json.MarshalIndent(&stamped, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (c *Catalog) checksum() (string, error) {
	bare := *c
	bare.Checksum = ""
	data, err := json.Marshal(&bare)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%08x", hash.CRC32C(data)), nil
}

// Parse decodes and validates a catalog document. It never returns a
// partially populated catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, &CorruptError{Reason: "decode", Err: err}
	}
	if c.Checksum != "" {
		sum, err := c.checksum()
		if err != nil {
			return nil, &CorruptError{Reason: "checksum", Err: err}
		}
		if sum != c.Checksum {
			return nil, corruptf("checksum mismatch: stored %s, computed %s", c.Checksum, sum)
		}
		c.Checksum = ""
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
