// Package region derives canonical region codes from system names and shard
// names from blob names.
//
// A procedurally generated name such as "Alpha AB-C d1-23" read from shard
// "Alpha" belongs to region "Alpha_AB-C": the sector words with spaces
// replaced by underscores, then the mass code. When the shard is not the
// sector's own file (coordinate-grid shards hold slices of many sectors) the
// code is qualified with the shard: "sector_+000_+000_+000_Alpha_AB-C".
// Hand-named systems fall into the catch-all region "<shard>_NAMED" of the
// shard they were read from.
package region

import (
	"path"
	"regexp"
	"strings"
	"unicode"
)

// NamedSuffix marks the per-shard catch-all region.
const NamedSuffix = "_NAMED"

var (
	procGenName = regexp.MustCompile(`^([A-Za-z0-9\s_]+?)\s+([A-Z]{2}-[A-Z])\s+([a-z])(\d*)(-\d+)?$`)
	massCode    = regexp.MustCompile(`^[A-Z]{2}-[A-Z]$`)
)

// Parse splits a procedurally generated system name into sector and mass code.
func Parse(systemName string) (sector, mass string, ok bool) {
	m := procGenName.FindStringSubmatch(strings.TrimSpace(systemName))
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), m[2], true
}

// Code returns the canonical region code of a system read from shard.
func Code(shard, systemName string) string {
	sector, mass, ok := Parse(systemName)
	if !ok {
		return shard + NamedSuffix
	}
	local := strings.Join(strings.Fields(sector), "_") + "_" + mass
	if shard == "" || OwnsSector(shard, sector) {
		return local
	}
	return shard + "_" + local
}

// OwnsSector reports whether shard is the file of sector, either with spaces
// replaced by underscores or sanitized.
func OwnsSector(shard, sector string) bool {
	return shard == strings.Join(strings.Fields(sector), "_") || shard == Sanitize(sector)
}

// IsMassCode reports whether s is a bare mass code like "AB-C".
func IsMassCode(s string) bool {
	return massCode.MatchString(s)
}

// MassCodeOf returns the mass code suffix of a region code, if any.
func MassCodeOf(code string) (string, bool) {
	i := strings.LastIndexByte(code, '_')
	if i < 0 {
		return "", false
	}
	m := code[i+1:]
	return m, IsMassCode(m)
}

var shardExts = []string{".gz", ".zst", ".lz4"}

// ShardName returns the shard name for a blob: the base name with the
// codec suffix and the .jsonl/.json extension removed.
func ShardName(blobName string) string {
	name := path.Base(blobName)
	for _, ext := range shardExts {
		if strings.HasSuffix(name, ext) {
			name = strings.TrimSuffix(name, ext)
			break
		}
	}
	for _, ext := range []string{".jsonl", ".json"} {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}

// IsShardFile reports whether a blob name looks like a shard file.
func IsShardFile(blobName string) bool {
	name := path.Base(blobName)
	for _, ext := range shardExts {
		name = strings.TrimSuffix(name, ext)
	}
	if strings.HasPrefix(name, ".") {
		return false
	}
	return strings.HasSuffix(name, ".jsonl") || strings.HasSuffix(name, ".json")
}

// Sanitize maps an arbitrary sector name to a file-safe shard name.
func Sanitize(sector string) string {
	var b strings.Builder
	for _, r := range sector {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := b.String()
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return strings.Trim(s, "_")
}
