package versionstore

import (
	"context"
	"sort"
	"sync"

	"github.com/temirov/migrix/internal/targets"
)

// MemoryStore keeps installed migrations in process memory.
type MemoryStore struct {
	mutex     sync.Mutex
	installed map[string]map[string]struct{}
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{installed: make(map[string]map[string]struct{})}
}

// Installed implements Store.
func (store *MemoryStore) Installed(_ context.Context, target targets.Descriptor) ([]string, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	identifiers := make([]string, 0, len(store.installed[target.Key()]))
	for identifier := range store.installed[target.Key()] {
		identifiers = append(identifiers, identifier)
	}
	sort.Strings(identifiers)
	return identifiers, nil
}

// Record implements Store.
func (store *MemoryStore) Record(_ context.Context, target targets.Descriptor, migrationIdentifier string) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	targetMigrations, exists := store.installed[target.Key()]
	if !exists {
		targetMigrations = make(map[string]struct{})
		store.installed[target.Key()] = targetMigrations
	}
	targetMigrations[migrationIdentifier] = struct{}{}
	return nil
}

// Remove implements Store.
func (store *MemoryStore) Remove(_ context.Context, target targets.Descriptor, migrationIdentifier string) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	delete(store.installed[target.Key()], migrationIdentifier)
	return nil
}
