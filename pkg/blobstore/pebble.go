package blobstore

import (
	"context"
	"errors"

	"github.com/cockroachdb/pebble"
)

// PebbleStore keeps blobs in a local pebble database. Writes are synced.
type PebbleStore struct {
	db   *pebble.DB
	path string
}

// OpenPebbleStore opens (or creates) the database at path. Use a Manager
// when several components share one path.
func OpenPebbleStore(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &PebbleStore{db: db, path: path}, nil
}

func (s *PebbleStore) Path() string {
	return s.path
}

func (s *PebbleStore) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Set([]byte(key), data, pebble.Sync)
}

// Get returns a copy of the stored value; pebble owns the buffer it returns.
func (s *PebbleStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	value, closer, err := s.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer closer.Close()

	data := make([]byte, len(value))
	copy(data, value)
	return data, nil
}

func (s *PebbleStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.Get(ctx, key); err != nil {
		return err
	}
	return s.db.Delete([]byte(key), pebble.Sync)
}

func (s *PebbleStore) Close() error {
	return s.db.Close()
}

//
// end of file
//
