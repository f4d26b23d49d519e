package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/starscan"
	"github.com/hupe1980/starscan/blobstore"
	"github.com/hupe1980/starscan/model"
	shards "github.com/hupe1980/starscan/testutil"
)

func TestPrometheusCollectorRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollector(reg)

	c.RecordSearch("galaxy", 2, 3, 50*time.Millisecond, nil)
	c.RecordSearch("corridor", 0, 0, time.Millisecond, errors.New("boom"))
	c.RecordTask("completed", 10, 1, time.Millisecond)
	c.RecordTask("skipped", 0, 0, 0)
	c.RecordShardIndexed(5, 2, time.Millisecond)
	c.RecordBuild(4, 20, time.Second, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.searches.WithLabelValues("galaxy", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.searches.WithLabelValues("corridor", "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.searchMatches))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.tasks.WithLabelValues("skipped")))
	assert.Equal(t, 10.0, testutil.ToFloat64(c.systemsScanned))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.decodeErrors.WithLabelValues("search")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.decodeErrors.WithLabelValues("build")))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.systemsIndexed))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.catalogShards))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Positive(t, n)
}

func TestPrometheusCollectorWithDB(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	star := shards.Body("Star", "M (Red dwarf) Star", model.NoParent)
	shards.PutShard(t, store, "Alpha.jsonl",
		shards.System("Alpha AB-C d1", 0, 0, 0, star),
		shards.System("Alpha AB-C d2", 1, 0, 0, star),
	)

	c := NewPrometheusCollector(prometheus.NewRegistry())
	_, err := starscan.Build(ctx, starscan.Remote(store), starscan.WithMetricsCollector(c))
	require.NoError(t, err)

	db, err := starscan.Open(ctx, starscan.Remote(store), starscan.WithMetricsCollector(c))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Search(ctx, starscan.SearchRequest{Mode: starscan.ModeGalaxy})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.builds.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.shardsIndexed))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.tasks.WithLabelValues("completed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.searchMatches))
}
