package resource

import (
	"context"
	"io"
)

// RateLimitedReader charges every read against the controller's IO budget.
type RateLimitedReader struct {
	ctx context.Context
	r   io.Reader
	rc  *Controller
}

// NewRateLimitedReader wraps r. With a nil or unlimited controller reads pass through.
func NewRateLimitedReader(ctx context.Context, r io.Reader, rc *Controller) *RateLimitedReader {
	return &RateLimitedReader{ctx: ctx, r: r, rc: rc}
}

func (l *RateLimitedReader) Read(p []byte) (int, error) {
	if err := l.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := l.r.Read(p)
	if n > 0 {
		if werr := l.rc.AcquireIO(l.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}

// Close closes the underlying reader if it is an io.Closer.
func (l *RateLimitedReader) Close() error {
	if c, ok := l.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
