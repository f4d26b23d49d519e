package stream

import (
	"log/slog"

	"github.com/hupe1980/starscan/internal/resource"
)

const (
	// DefaultBufferSize is the fixed read buffer size.
	DefaultBufferSize = 64 * 1024
	// DefaultMaxLineBytes caps a single record line.
	DefaultMaxLineBytes = 16 * 1024 * 1024
	// DefaultMaxWindowBytes caps the zstd window a frame may request. It
	// admits frames written with zstd --long (window log 27).
	DefaultMaxWindowBytes = 1 << 27
)

type options struct {
	bufferSize   int
	maxLineBytes int
	maxWindow    uint64
	strict       bool
	rc           *resource.Controller
	logger       *slog.Logger
	onError      func(*DecodeError)
}

// Option configures a Reader.
type Option func(*options)

// WithBufferSize sets the read buffer size.
func WithBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}

// WithMaxLineBytes sets the maximum accepted line length.
func WithMaxLineBytes(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxLineBytes = n
		}
	}
}

// WithMaxWindowBytes caps the zstd window size. Frames asking for more
// fail with a ReadError. Values below 1 KiB are ignored.
func WithMaxWindowBytes(n uint64) Option {
	return func(o *options) {
		if n >= 1024 {
			o.maxWindow = n
		}
	}
}

// Strict makes the first malformed line terminate the stream.
func Strict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithResourceController throttles compressed reads through rc.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithLogger sets the logger used for skipped lines.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithErrorHandler registers a callback for every skipped line.
func WithErrorHandler(fn func(*DecodeError)) Option {
	return func(o *options) {
		o.onError = fn
	}
}

func defaultOptions() options {
	return options{
		bufferSize:   DefaultBufferSize,
		maxLineBytes: DefaultMaxLineBytes,
		maxWindow:    DefaultMaxWindowBytes,
		logger:       slog.New(slog.DiscardHandler),
	}
}
