package stream

import (
	"errors"
	"fmt"
)

var (
	// ErrLineTooLong is wrapped by a DecodeError for lines over the size cap.
	ErrLineTooLong = errors.New("line exceeds maximum length")
	// ErrClosed is returned when reading from a closed Reader.
	ErrClosed = errors.New("stream: reader closed")
)

// DecodeError describes a malformed shard line.
type DecodeError struct {
	Shard  string
	Line   int64 // 1-based
	Offset int64 // byte offset of the line start in the decompressed stream
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s line %d (offset %d): %v", e.Shard, e.Line, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ReadError is a failure of the underlying blob or decompressor.
type ReadError struct {
	Shard  string
	Offset int64
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s at offset %d: %v", e.Shard, e.Offset, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
