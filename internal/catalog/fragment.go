package catalog

import "github.com/hupe1980/starscan/internal/region"

// Fragment is the partial catalog produced by indexing one shard.
type Fragment struct {
	Shard        string
	File         string
	Regions      map[string]int64
	Systems      int64
	DecodeErrors int64
	Bytes        int64 // compressed bytes read
}

// NewFragment returns an empty fragment for file.
func NewFragment(file string) *Fragment {
	return &Fragment{
		Shard:   region.ShardName(file),
		File:    file,
		Regions: make(map[string]int64),
	}
}

// Add counts one system by name.
func (f *Fragment) Add(systemName string) {
	f.Regions[region.Code(f.Shard, systemName)]++
	f.Systems++
}

// SizeBytes is a rough in-memory footprint used for memory accounting.
func (f *Fragment) SizeBytes() int64 {
	n := int64(64 + len(f.Shard) + len(f.File))
	for code := range f.Regions {
		n += int64(len(code)) + 48
	}
	return n
}
