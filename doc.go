// Package starscan searches a sharded, optionally compressed corpus of
// star-system records for structural patterns of bodies.
//
// A corpus is a set of shard files, one JSON object per line and system,
// each optionally compressed with gzip, zstd or lz4. A small catalog maps
// every shard to the regions it contains so that searches restricted to
// regions or to a corridor in space open only the shards that can match.
//
// # Quick Start
//
// Build the catalog once, then search:
//
//	ctx := context.Background()
//	if _, err := starscan.Build(ctx, starscan.Local("./galaxy")); err != nil {
//	    log.Fatal(err)
//	}
//
//	db, _ := starscan.Open(ctx, starscan.Local("./galaxy"))
//	defer db.Close()
//
//	tree, _ := starscan.ParsePattern([]byte(`{
//	    "bodies": [{"subType": "Water world", "parents": [{"subType": "Rocky body"}]}]
//	}`))
//	resp, _ := db.Search(ctx, starscan.SearchRequest{Mode: starscan.ModeGalaxy, Pattern: tree})
//	for _, m := range resp.Results {
//	    fmt.Println(m.Name, m.Region, m.BodyIndices)
//	}
//
// Cloud mode:
//
//	store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("galaxy/"))
//	db, _ := starscan.Open(ctx, starscan.Remote(store))
//
// # Search Modes
//
//   - ModeGalaxy and ModePattern scan every shard
//   - ModeNamedShards scans the listed shards
//   - ModeNamedRegions scans the shards owning the listed regions and drops
//     systems of other regions
//   - ModeCorridor scans the shards whose grid cell touches the corridor
//     and drops systems farther than the radius from the segment
//
// DB.Plan returns the task list of a request without reading any shard.
//
// # Regions
//
// A procedurally generated name such as "Col 285 Sector AB-C d14-3" belongs
// to region "Col_285_Sector_AB-C" when its shard is the sector's own file
// (Col_285_Sector.jsonl.gz). Shards named by grid cell qualify the code with
// the shard, "sector_+000_+000_+000_Col_285_Sector_AB-C", and a named-regions
// search for "Col_285_Sector_AB-C" selects every such slice. Every other
// system belongs to the catch-all region "<shard>_NAMED" of its shard.
//
// # Errors
//
// Errors match one of ErrDecode, ErrSchema, ErrIndexCorrupt, ErrIO,
// ErrGeometry, ErrCatalogNotFound, ErrInvalidArgument or ErrClosed via
// errors.Is. Shard-level failures do not fail a search; they are reported
// per task in the response.
package starscan
