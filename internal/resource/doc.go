// Package resource implements the Controller that governs the resources
// shared by catalog builds and searches.
//
// The Controller manages three resource types:
//
//   - Memory: bounds bytes held by in-flight build fragments (blocking or try)
//   - Concurrency: limits how many shard streams are open at once
//   - IO: token-bucket throttle for compressed bytes read from the store
//
// # Memory
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 256 << 20,
//	})
//
//	if err := rc.AcquireMemory(ctx, n); err != nil {
//	    return err
//	}
//	defer rc.ReleaseMemory(n)
//
// A request larger than the limit is clamped to the limit so a single
// oversized shard can still proceed alone.
//
// # IO Rate Limiting
//
//	reader := resource.NewRateLimitedReader(ctx, blobReader, rc)
//
// # Nil Safety
//
// All methods handle nil Controller gracefully - they become no-ops.
package resource
