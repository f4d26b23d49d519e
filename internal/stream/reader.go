package stream

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"

	"github.com/hupe1980/starscan/blobstore"
	"github.com/hupe1980/starscan/internal/region"
	"github.com/hupe1980/starscan/internal/resource"
	"github.com/hupe1980/starscan/model"
)

// Stats counts what a Reader has consumed so far.
type Stats struct {
	Lines           int64 // non-blank lines
	BlankLines      int64
	Systems         int64
	DecodeErrors    int64
	Bytes           int64 // decompressed bytes
	CompressedBytes int64
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Reader yields the systems of one shard in file order.
type Reader struct {
	name  string
	shard string
	opts  options

	blob    blobstore.Blob // closed by Close when owned
	raw     io.ReadCloser
	counter *countingReader
	dec     *decompressor
	br      *bufio.Reader

	buf    []byte
	line   int64
	offset int64
	stats  Stats
	err    error // sticky
	closed bool
}

// Open starts streaming blob. name selects the codec and the shard name.
// The caller keeps ownership of blob.
func Open(ctx context.Context, blob blobstore.Blob, name string, opts ...Option) (*Reader, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	raw, err := blobstore.NewReader(ctx, blob)
	if err != nil {
		return nil, &ReadError{Shard: region.ShardName(name), Err: err}
	}

	var src io.Reader = raw
	if o.rc.IOLimited() {
		src = resource.NewRateLimitedReader(ctx, raw, o.rc)
	}
	counter := &countingReader{r: src}

	codec := DetectCodec(name)
	if blob.Size() == 0 {
		codec = CodecPlain
	}
	dec, err := newDecompressor(codec, counter, o.maxWindow)
	if err != nil {
		_ = raw.Close()
		return nil, &ReadError{Shard: region.ShardName(name), Err: err}
	}

	return &Reader{
		name:    name,
		shard:   region.ShardName(name),
		opts:    o,
		raw:     raw,
		counter: counter,
		dec:     dec,
		br:      bufio.NewReaderSize(dec, o.bufferSize),
	}, nil
}

// OpenStore opens name in store and streams it. Close releases the blob.
func OpenStore(ctx context.Context, store blobstore.BlobStore, name string, opts ...Option) (*Reader, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, &ReadError{Shard: region.ShardName(name), Err: err}
	}
	r, err := Open(ctx, blob, name, opts...)
	if err != nil {
		_ = blob.Close()
		return nil, err
	}
	r.blob = blob
	return r, nil
}

// Shard returns the shard name.
func (r *Reader) Shard() string {
	return r.shard
}

// Codec returns the detected codec.
func (r *Reader) Codec() Codec {
	return DetectCodec(r.name)
}

// Stats returns a snapshot of the reader counters.
func (r *Reader) Stats() Stats {
	s := r.stats
	s.Bytes = r.offset
	s.CompressedBytes = r.counter.n
	return s
}

// Next returns the next well-formed system, or io.EOF when the shard is
// exhausted. In strict mode a malformed line is returned as *DecodeError
// and every later call returns the same error.
func (r *Reader) Next() (*model.System, error) {
	if r.closed {
		return nil, ErrClosed
	}
	for {
		if r.err != nil {
			return nil, r.err
		}

		line, start, tooLong, err := r.readLine()
		if err != nil {
			r.err = err
			continue
		}

		r.line++
		if !tooLong {
			line = bytes.TrimSpace(line)
			if len(line) == 0 {
				r.stats.BlankLines++
				continue
			}
		}
		r.stats.Lines++

		if tooLong {
			if de := r.skip(start, ErrLineTooLong); de != nil {
				return nil, de
			}
			continue
		}

		sys, derr := model.DecodeSystem(line)
		if derr != nil {
			if de := r.skip(start, derr); de != nil {
				return nil, de
			}
			continue
		}

		r.stats.Systems++
		return sys, nil
	}
}

// skip records a malformed line and returns a non-nil error in strict mode.
func (r *Reader) skip(start int64, cause error) error {
	de := &DecodeError{Shard: r.shard, Line: r.line, Offset: start, Err: cause}
	r.stats.DecodeErrors++
	if r.opts.onError != nil {
		r.opts.onError(de)
	}
	if r.opts.strict {
		r.err = de
		return de
	}
	r.opts.logger.Debug("skipping malformed line",
		slog.String("shard", de.Shard),
		slog.Int64("line", de.Line),
		slog.Int64("offset", de.Offset),
		slog.String("error", cause.Error()),
	)
	return nil
}

// readLine reads one line into r.buf using the fixed buffer. Content past
// maxLineBytes is discarded and reported via tooLong.
func (r *Reader) readLine() (line []byte, start int64, tooLong bool, err error) {
	r.buf = r.buf[:0]
	start = r.offset
	var consumed int64

	for {
		frag, rerr := r.br.ReadSlice('\n')
		consumed += int64(len(frag))
		if !tooLong {
			if len(r.buf)+len(frag) > r.opts.maxLineBytes+1 {
				tooLong = true
				r.buf = r.buf[:0]
			} else {
				r.buf = append(r.buf, frag...)
			}
		}
		if errors.Is(rerr, bufio.ErrBufferFull) {
			continue
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				if consumed == 0 {
					return nil, start, false, io.EOF
				}
				break // final line without newline
			}
			return nil, start, false, &ReadError{Shard: r.shard, Offset: r.offset + consumed, Err: rerr}
		}
		break
	}

	r.offset += consumed
	if tooLong {
		return nil, start, true, nil
	}
	return r.buf, start, false, nil
}

// All iterates over the remaining systems. Iteration stops after the
// first yielded error; io.EOF is not yielded.
func (r *Reader) All() iter.Seq2[*model.System, error] {
	return func(yield func(*model.System, error) bool) {
		for {
			sys, err := r.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(sys, nil) {
				return
			}
		}
	}
}

// Close releases the decompressor, the blob reader and an owned blob.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	err := r.dec.close()
	if cerr := r.raw.Close(); err == nil {
		err = cerr
	}
	if r.blob != nil {
		if cerr := r.blob.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
