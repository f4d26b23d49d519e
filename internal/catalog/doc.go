// Package catalog implements the subsector catalog: which shard holds which
// regions and how many systems each contains, plus the parallel Builder that
// derives it from a shard corpus.
//
// # Document Format
//
// The catalog is one JSON document:
//
//	{
//	  "sectors": {
//	    "Alpha": {"file": "sectors/Alpha.jsonl.gz", "subsectors": ["Alpha_AB-C", "Alpha_NAMED"], "system_count": 3}
//	  },
//	  "subsectors": {
//	    "Alpha_AB-C":  {"sector_file": "Alpha", "system_count": 2},
//	    "Alpha_NAMED": {"sector_file": "Alpha", "system_count": 1}
//	  }
//	}
//
// Map keys are written in lexicographic order and region lists are sorted,
// so the same corpus always produces the same bytes.
//
// # Atomic Publication
//
// Store.Save writes the whole document with a single blobstore Put. On local
// disks that is temp file + fsync + rename; on S3 and MinIO a single PUT.
// A reader therefore sees either the previous catalog or the new one.
//
// # Checkpoints
//
// While building, the merged-so-far catalog is written to
// sector_index.checkpoint.json after every batch. A build started with
// Resume skips the shards already recorded there.
package catalog
