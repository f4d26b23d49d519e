package starscan

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/starscan/blobstore"
	"github.com/hupe1980/starscan/internal/catalog"
	"github.com/hupe1980/starscan/internal/engine"
	"github.com/hupe1980/starscan/internal/spatial"
	"github.com/hupe1980/starscan/internal/stream"
	"github.com/hupe1980/starscan/pattern"
)

func TestTranslateError(t *testing.T) {
	decodeErr := &stream.DecodeError{Line: 3, Err: errors.New("unexpected EOF")}

	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"decode", fmt.Errorf("shard Alpha: %w", decodeErr), ErrDecode},
		{"schema", pattern.SchemaErrors{{Path: "/bodies", Message: "must not be empty"}}, ErrSchema},
		{"corrupt catalog", fmt.Errorf("load: %w", catalog.ErrCorrupt), ErrIndexCorrupt},
		{"count mismatch", catalog.ErrCountMismatch, ErrIndexCorrupt},
		{"catalog not found", catalog.ErrNotFound, ErrCatalogNotFound},
		{"geometry", &spatial.GeometryError{Reason: "radius must be positive"}, ErrGeometry},
		{"invalid request", engine.ErrInvalidRequest, ErrInvalidArgument},
		{"pool closed", engine.ErrPoolClosed, ErrClosed},
		{"missing blob", &engine.TaskError{Shard: "Ghost", Err: blobstore.ErrNotFound}, ErrIO},
		{"read error", &stream.ReadError{Err: errors.New("connection reset")}, ErrIO},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err)
			assert.ErrorIs(t, got, tt.target)
			assert.ErrorIs(t, got, tt.err, "original chain is preserved")
		})
	}
}

func TestTranslateErrorPassthrough(t *testing.T) {
	assert.NoError(t, translateError(nil))
	assert.Equal(t, context.Canceled, translateError(context.Canceled))
}
