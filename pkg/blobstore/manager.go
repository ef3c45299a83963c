package blobstore

import (
	"fmt"
	"path/filepath"
	"sync"
)

// Manager shares one PebbleStore per database path between any number of
// users. The store is closed when the last user releases it.
type Manager struct {
	mu     sync.Mutex
	stores map[string]*managedStore
}

type managedStore struct {
	store *PebbleStore
	refs  int
}

func NewManager() *Manager {
	return &Manager{stores: make(map[string]*managedStore)}
}

// Acquire opens the store at path, or hands out the already open one.
func (m *Manager) Acquire(path string) (*PebbleStore, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if ms, found := m.stores[key]; found {
		ms.refs++
		return ms.store, nil
	}

	store, err := OpenPebbleStore(path)
	if err != nil {
		return nil, err
	}
	m.stores[key] = &managedStore{store: store, refs: 1}
	return store, nil
}

// Release drops one reference and closes the store on the last one.
func (m *Manager) Release(store *PebbleStore) error {
	key, err := filepath.Abs(store.Path())
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ms, found := m.stores[key]
	if !found || ms.store != store {
		return fmt.Errorf("store %s is not managed", store.Path())
	}
	ms.refs--
	if ms.refs > 0 {
		return nil
	}
	delete(m.stores, key)
	return store.Close()
}

// Refs reports the number of outstanding references to the store at path.
func (m *Manager) Refs(path string) int {
	key, err := filepath.Abs(path)
	if err != nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if ms, found := m.stores[key]; found {
		return ms.refs
	}
	return 0
}

//
// end of file
//
