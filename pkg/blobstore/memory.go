package blobstore

import (
	"context"
	"sync"
)

// MemoryStore is a Store held in a map, for tests and dry runs.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	blob := make([]byte, len(data))
	copy(blob, data)
	s.mu.Lock()
	s.blobs[key] = blob
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, found := s.blobs[key]
	if !found {
		return nil, ErrNotFound
	}
	data := make([]byte, len(blob))
	copy(data, blob)
	return data, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.blobs[key]; !found {
		return ErrNotFound
	}
	delete(s.blobs, key)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// Len reports the number of stored blobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

//
// end of file
//
