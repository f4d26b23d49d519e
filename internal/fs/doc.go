// Package fs provides the file-system seam used by the local blob store.
//
//   - [LocalFS]: production implementation on top of package os
//   - [FaultyFS]: test wrapper that injects write, sync, close and rename
//     failures so the atomic catalog publication path can be exercised
//
// The package intentionally has no context.Context parameters; local file
// operations are not interruptible at the syscall level.
package fs
