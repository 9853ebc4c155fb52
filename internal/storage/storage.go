// internal/storage/storage.go
package storage

import "sync"

// Keys for the persisted collections. These mirror the documents the
// browser build kept in local storage, one JSON value per key.
const (
	KeyWardrobe    = "wardrobe"
	KeyCategories  = "categories"
	KeyOutfits     = "outfits"
	KeyThemeSlider = "theme_slider"
)

// Store is the persistence port. Services write through it on every
// mutation and never touch the backing medium directly, which keeps the
// state logic testable without a real disk.
type Store interface {
	// Get returns the stored value for key, and whether the key exists.
	Get(key string) ([]byte, bool, error)
	// Set persists the value for key, replacing any previous value.
	Set(key string, value []byte) error
	// Delete removes the key. Deleting a missing key is not an error.
	Delete(key string) error
}

// MemoryStore keeps values in a map. Used in tests and as a fallback when
// no data directory is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (s *MemoryStore) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemoryStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}
