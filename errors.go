package starscan

import (
	"errors"
	"fmt"

	"github.com/hupe1980/starscan/blobstore"
	"github.com/hupe1980/starscan/internal/catalog"
	"github.com/hupe1980/starscan/internal/engine"
	"github.com/hupe1980/starscan/internal/spatial"
	"github.com/hupe1980/starscan/internal/stream"
	"github.com/hupe1980/starscan/pattern"
)

var (
	// ErrDecode marks a malformed shard line. Skipped and counted unless
	// strict decoding is enabled.
	ErrDecode = errors.New("decode error")

	// ErrSchema marks an invalid pattern. No task runs.
	ErrSchema = errors.New("schema error")

	// ErrIndexCorrupt marks an unparseable or inconsistent catalog.
	ErrIndexCorrupt = errors.New("index corrupt")

	// ErrIO marks a missing or unreadable shard or store.
	ErrIO = errors.New("io error")

	// ErrGeometry marks degenerate or invalid corridor parameters.
	ErrGeometry = errors.New("geometry error")

	// ErrCatalogNotFound is returned when a mode that needs the catalog
	// runs before one was built.
	ErrCatalogNotFound = errors.New("catalog not found")

	// ErrInvalidArgument is returned for requests missing required inputs.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrClosed is returned by a closed DB.
	ErrClosed = errors.New("db closed")
)

// SchemaError describes one problem in a pattern document.
type SchemaError = pattern.SchemaError

// SchemaErrors lists every problem of an invalid pattern document.
type SchemaErrors = pattern.SchemaErrors

// DecodeError describes a malformed shard line.
type DecodeError = stream.DecodeError

// GeometryError describes invalid corridor parameters.
type GeometryError = spatial.GeometryError

// translateError maps internal errors onto the public taxonomy while
// keeping the original chain reachable through errors.Is and errors.As.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var de *stream.DecodeError
	switch {
	case errors.As(err, &de):
		return fmt.Errorf("%w: %w", ErrDecode, err)
	case errors.Is(err, pattern.ErrSchema):
		return fmt.Errorf("%w: %w", ErrSchema, err)
	case errors.Is(err, catalog.ErrCorrupt), errors.Is(err, catalog.ErrCountMismatch):
		return fmt.Errorf("%w: %w", ErrIndexCorrupt, err)
	case errors.Is(err, catalog.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrCatalogNotFound, err)
	case errors.Is(err, spatial.ErrGeometry):
		return fmt.Errorf("%w: %w", ErrGeometry, err)
	case errors.Is(err, engine.ErrInvalidRequest):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	case errors.Is(err, engine.ErrPoolClosed):
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}

	var re *stream.ReadError
	if errors.As(err, &re) || errors.Is(err, blobstore.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return err
}
