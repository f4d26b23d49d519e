// Package stream reads star-system records from a shard blob, one JSON
// object per line, transparently decompressing gzip, zstd and lz4 shards.
//
// Lines are read through a fixed-size buffer; a line longer than the
// configured maximum is reported as a DecodeError and skipped without being
// held in memory. Malformed lines are skipped and counted by default; with
// Strict the first malformed line terminates the stream.
//
//	r, err := stream.Open(ctx, blob, "sectors/Alpha.jsonl.gz")
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	for sys, err := range r.All() {
//	    if err != nil {
//	        return err
//	    }
//	    ...
//	}
package stream
