package main

import (
	"bufio"
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"github.com/hupe1980/starscan"
)

// writeMatches writes one JSON object per match.
func writeMatches(w io.Writer, matches []starscan.Match) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for i := range matches {
		if err := enc.Encode(&matches[i]); err != nil {
			return fmt.Errorf("encoding match: %w", err)
		}
	}
	return bw.Flush()
}

// writePlan encodes the task plan as indented JSON.
func writePlan(w io.Writer, plan *starscan.Plan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(plan); err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	return nil
}

func writeSummary(w io.Writer, st starscan.RunStats) {
	fmt.Fprintf(w, "run %s: %d/%d shards completed, %d failed, %d skipped, %d systems scanned, %d matches, %d decode errors in %s\n",
		st.RunID, st.Completed, st.Planned, st.Failed, st.Skipped, st.SystemsScanned, st.Matches, st.DecodeErrors, st.Duration)
	for _, f := range st.Failures {
		fmt.Fprintf(w, "  %s: %s\n", f.Shard, f.Error)
	}
}
