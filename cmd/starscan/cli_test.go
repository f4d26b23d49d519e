package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/starscan/blobstore"
	"github.com/hupe1980/starscan/model"
	"github.com/hupe1980/starscan/testutil"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	viper.Reset()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func galaxyDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	store := blobstore.NewLocalStore(dir)
	star := testutil.Body("Star", "F (White) Star", model.NoParent)
	rocky := testutil.Body("Planet", "Rocky body", 0)
	water := testutil.Body("Planet", "Water world", 1)

	testutil.PutShard(t, store, "sector_+000_+000_+000.jsonl.gz",
		testutil.System("Alpha AB-C d5", 100, 0, 0, star, rocky, water),
		testutil.System("Alpha AB-C d6", 900, 0, 0, star),
	)
	testutil.PutShard(t, store, "sector_+003_+000_+000.jsonl.zst",
		testutil.System("Beta AB-C b1", 3500, 0, 0, star, rocky, water),
	)
	return dir
}

func TestBuildAndSearch(t *testing.T) {
	dir := galaxyDir(t)

	out, _, err := execute(t, "build", "--store", dir, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "indexed 2 shards")

	patternFile := filepath.Join(t.TempDir(), "water.json")
	require.NoError(t, os.WriteFile(patternFile, []byte(`{"bodies": [{"subType": "Water world"}]}`), 0o600))

	out, stderr, err := execute(t, "search", "--store", dir, "--pattern", patternFile, "--log-level", "error")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "Alpha AB-C d5", first["name"])
	assert.Contains(t, stderr, "2/2 shards completed")
}

func TestSearchCorridorDryRun(t *testing.T) {
	dir := galaxyDir(t)
	_, _, err := execute(t, "build", "--store", dir, "--log-level", "error")
	require.NoError(t, err)

	out, _, err := execute(t, "search", "--store", dir, "--log-level", "error",
		"--mode", "corridor", "--start", "0,0,0", "--end", "1000,0,0", "--radius", "500", "--dry-run")
	require.NoError(t, err)

	var plan struct {
		Mode  string `json:"mode"`
		Tasks []struct {
			Shard  string `json:"shard"`
			Reason string `json:"reason"`
		} `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Equal(t, "corridor", plan.Mode)
	require.Len(t, plan.Tasks, 1)
	assert.Equal(t, "sector_+000_+000_+000", plan.Tasks[0].Shard)
}

func TestSearchBadArguments(t *testing.T) {
	dir := galaxyDir(t)

	_, _, err := execute(t, "search", "--store", dir, "--mode", "sideways")
	assert.Error(t, err)

	_, _, err = execute(t, "search", "--store", dir, "--mode", "corridor", "--start", "0,0", "--end", "1,0,0", "--radius", "1")
	assert.ErrorContains(t, err, "--start needs three values")

	_, _, err = execute(t, "search", "--store", dir, "--mode", "galaxy", "--start", "0,0,0", "--end", "1,0,0", "--radius", "1")
	assert.ErrorContains(t, err, "takes no corridor")

	_, _, err = execute(t, "search", "--store", "ftp://host/x")
	assert.ErrorContains(t, err, "unsupported scheme")
}

func TestParseStoreURL(t *testing.T) {
	tests := []struct {
		raw  string
		want storeLocation
		err  bool
	}{
		{"./galaxy", storeLocation{Dir: "./galaxy"}, false},
		{"file:///data/galaxy", storeLocation{Dir: "/data/galaxy"}, false},
		{"s3://edsm-dumps/galaxy", storeLocation{Scheme: "s3", Bucket: "edsm-dumps", Prefix: "galaxy/"}, false},
		{"minio://dumps", storeLocation{Scheme: "minio", Bucket: "dumps"}, false},
		{"s3:///nobucket", storeLocation{}, true},
		{"gs://bucket", storeLocation{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseStoreURL(tt.raw)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
