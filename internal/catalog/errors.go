package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrCorrupt is returned when a catalog fails to parse or validate.
	ErrCorrupt = errors.New("catalog corrupt")

	// ErrNotFound is returned when no catalog has been published.
	ErrNotFound = errors.New("catalog not found")

	// ErrCountMismatch is returned when shard totals disagree with the
	// number of systems scanned.
	ErrCountMismatch = errors.New("catalog count mismatch")
)

// CorruptError describes an inconsistency in a catalog document.
type CorruptError struct {
	Reason string
	Err    error
}

func (e *CorruptError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog corrupt: %s: %v", e.Reason, e.Err)
	}
	return "catalog corrupt: " + e.Reason
}

func (e *CorruptError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrCorrupt, e.Err}
	}
	return []error{ErrCorrupt}
}

func corruptf(format string, args ...any) error {
	return &CorruptError{Reason: fmt.Sprintf(format, args...)}
}
