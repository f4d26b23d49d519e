package stream

import (
	"errors"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec identifies the compression of a shard.
type Codec uint8

const (
	// CodecPlain is uncompressed JSONL.
	CodecPlain Codec = iota
	// CodecGzip is gzip, including concatenated multi-member files.
	CodecGzip
	// CodecZstd is a zstd frame stream.
	CodecZstd
	// CodecLZ4 is an lz4 frame stream.
	CodecLZ4
)

func (c Codec) String() string {
	switch c {
	case CodecGzip:
		return "gzip"
	case CodecZstd:
		return "zstd"
	case CodecLZ4:
		return "lz4"
	default:
		return "plain"
	}
}

// DetectCodec selects the codec from the blob name suffix.
// Unknown suffixes are read as plain text.
func DetectCodec(name string) Codec {
	switch {
	case strings.HasSuffix(name, ".gz"):
		return CodecGzip
	case strings.HasSuffix(name, ".zst"):
		return CodecZstd
	case strings.HasSuffix(name, ".lz4"):
		return CodecLZ4
	default:
		return CodecPlain
	}
}

type decompressor struct {
	io.Reader
	close func() error
}

// newDecompressor wraps r. The returned close does not close r. maxWindow
// bounds the zstd decoder's history buffer.
func newDecompressor(c Codec, r io.Reader, maxWindow uint64) (*decompressor, error) {
	switch c {
	case CodecGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				// Zero-byte shard.
				return &decompressor{Reader: strings.NewReader(""), close: func() error { return nil }}, nil
			}
			return nil, err
		}
		return &decompressor{Reader: zr, close: zr.Close}, nil
	case CodecZstd:
		zr, err := zstd.NewReader(r,
			zstd.WithDecoderLowmem(true),
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderMaxWindow(maxWindow),
		)
		if err != nil {
			return nil, err
		}
		return &decompressor{Reader: zr, close: func() error { zr.Close(); return nil }}, nil
	case CodecLZ4:
		return &decompressor{Reader: lz4.NewReader(r), close: func() error { return nil }}, nil
	default:
		return &decompressor{Reader: r, close: func() error { return nil }}, nil
	}
}
