package catalog

import (
	"context"
	"errors"

	"github.com/hupe1980/starscan/blobstore"
)

// Store persists catalogs in a blob store.
type Store struct {
	bs blobstore.BlobStore
}

// NewStore creates a new catalog store.
func NewStore(bs blobstore.BlobStore) *Store {
	return &Store{bs: bs}
}

// Load reads and validates the published catalog.
func (s *Store) Load(ctx context.Context) (*Catalog, error) {
	return s.load(ctx, IndexName)
}

// Save validates c and publishes it atomically.
func (s *Store) Save(ctx context.Context, c *Catalog) error {
	return s.save(ctx, IndexName, c)
}

// LoadCheckpoint reads the in-progress build checkpoint.
func (s *Store) LoadCheckpoint(ctx context.Context) (*Catalog, error) {
	return s.load(ctx, CheckpointName)
}

// SaveCheckpoint writes the in-progress build checkpoint.
func (s *Store) SaveCheckpoint(ctx context.Context, c *Catalog) error {
	return s.save(ctx, CheckpointName, c)
}

// DeleteCheckpoint removes the checkpoint.
func (s *Store) DeleteCheckpoint(ctx context.Context) error {
	return s.bs.Delete(ctx, CheckpointName)
}

func (s *Store) load(ctx context.Context, name string) (*Catalog, error) {
	data, err := blobstore.ReadAll(ctx, s.bs, name)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return Parse(data)
}

func (s *Store) save(ctx context.Context, name string, c *Catalog) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	return s.bs.Put(ctx, name, data)
}
