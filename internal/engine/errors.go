package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned when a request is missing the inputs its mode needs.
	ErrInvalidRequest = errors.New("invalid search request")

	// ErrPoolClosed is returned when work is submitted to a closed pool.
	ErrPoolClosed = errors.New("worker pool closed")

	// ErrTaskPanic is wrapped by the error of a task that panicked.
	ErrTaskPanic = errors.New("search task panicked")
)

// TaskError is the failure of a single search task.
type TaskError struct {
	Shard string
	File  string
	Err   error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("shard %s (%s): %v", e.Shard, e.File, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

// PanicError carries a recovered panic value.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func (e *PanicError) Unwrap() error { return ErrTaskPanic }

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
