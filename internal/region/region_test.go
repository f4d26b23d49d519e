package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	tests := []struct {
		shard string
		name  string
		want  string
	}{
		{"Alpha", "Alpha AB-C d1-23", "Alpha_AB-C"},
		{"Alpha", "Alpha AB-C d1", "Alpha_AB-C"},
		{"Alpha", "Alpha AB-C d", "Alpha_AB-C"},
		{"Eol_Prou", "Eol Prou RS-T d3-94", "Eol_Prou_RS-T"},
		{"Alpha", "Sol", "Alpha_NAMED"},
		{"Alpha", "Alpha ab-c d1-23", "Alpha_NAMED"},
		{"Alpha", "HIP 12345", "Alpha_NAMED"},
		{"Alpha", "Alpha AB-C D1-23", "Alpha_NAMED"},
		{"Col_285_Sector", "Col 285 Sector AB-C d14-3", "Col_285_Sector_AB-C"},
		{"NGC_7822_Sector", "NGC 7822 Sector BQ-Y d12", "NGC_7822_Sector_BQ-Y"},
		{"sector_+000_+000_+000", "Synuefe AB-C d1-4", "sector_+000_+000_+000_Synuefe_AB-C"},
		{"sector_+001_+000_+000", "Col 285 Sector AB-C d1", "sector_+001_+000_+000_Col_285_Sector_AB-C"},
		{"sector_+000_+000_+000", "Sol", "sector_+000_+000_+000_NAMED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Code(tt.shard, tt.name))
		})
	}
}

func TestParseDigitSector(t *testing.T) {
	sector, mass, ok := Parse("Col 285 Sector AB-C d14-3")
	assert.True(t, ok)
	assert.Equal(t, "Col 285 Sector", sector)
	assert.Equal(t, "AB-C", mass)

	assert.True(t, OwnsSector("Col_285_Sector", "Col 285 Sector"))
	assert.False(t, OwnsSector("sector_+000_+000_+000", "Col 285 Sector"))
}

func TestShardName(t *testing.T) {
	assert.Equal(t, "Alpha", ShardName("sectors/Alpha.jsonl.gz"))
	assert.Equal(t, "Alpha", ShardName("Alpha.jsonl"))
	assert.Equal(t, "Beta", ShardName("x/y/Beta.json.zst"))
	assert.Equal(t, "Gamma", ShardName("Gamma.jsonl.lz4"))
	assert.Equal(t, "raw", ShardName("raw"))
}

func TestIsShardFile(t *testing.T) {
	assert.True(t, IsShardFile("sectors/Alpha.jsonl.gz"))
	assert.True(t, IsShardFile("Alpha.json"))
	assert.True(t, IsShardFile("Alpha.jsonl.zst"))
	assert.False(t, IsShardFile("README.md"))
	assert.False(t, IsShardFile(".hidden.jsonl"))
	assert.False(t, IsShardFile("Alpha.csv.gz"))
}

func TestMassCode(t *testing.T) {
	assert.True(t, IsMassCode("AB-C"))
	assert.False(t, IsMassCode("ab-c"))
	assert.False(t, IsMassCode("Alpha_AB-C"))

	m, ok := MassCodeOf("Eol_Prou_RS-T")
	assert.True(t, ok)
	assert.Equal(t, "RS-T", m)

	m, ok = MassCodeOf("sector_+000_+000_+000_Synuefe_AB-C")
	assert.True(t, ok)
	assert.Equal(t, "AB-C", m)

	_, ok = MassCodeOf("Alpha_NAMED")
	assert.False(t, ok)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "Eol_Prou", Sanitize("Eol Prou"))
	assert.Equal(t, "Col_285_Sector", Sanitize("Col 285 Sector"))
	assert.Equal(t, "Wregoe", Sanitize("  Wregoe!! "))
	assert.Equal(t, "a-b_c", Sanitize("a-b c"))
}
