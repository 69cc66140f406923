// Package storage persists generated artifacts such as printed resume PDFs
// and resume preview images.
package storage

import (
	"context"
	"fmt"
	"sync"
)

// Object is a stored artifact.
type Object struct {
	Key         string
	ContentType string
	Body        []byte
}

// Storage abstracts the object store holding printed PDFs and previews.
type Storage interface {
	// Upload writes the object and returns its public URL.
	Upload(ctx context.Context, obj Object) (string, error)

	// Delete removes the object at the given key. Deleting a missing
	// object is not an error.
	Delete(ctx context.Context, key string) error

	// URL returns the public URL for the given key without touching the
	// backing store.
	URL(key string) string

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
}

// MemoryStorage is an in-process Storage used in development and tests.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]Object
	baseURL string
}

// NewMemoryStorage creates an empty in-memory store. Returned URLs are
// rooted at baseURL.
func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{
		objects: make(map[string]Object),
		baseURL: baseURL,
	}
}

// Upload stores the object in memory.
func (m *MemoryStorage) Upload(_ context.Context, obj Object) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[obj.Key] = obj
	return m.URL(obj.Key), nil
}

// Delete removes the object.
func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// URL returns the public URL for the key.
func (m *MemoryStorage) URL(key string) string {
	return fmt.Sprintf("%s/%s", m.baseURL, key)
}

// Ping always succeeds for the in-memory store.
func (m *MemoryStorage) Ping(_ context.Context) error {
	return nil
}

// Get returns a stored object. Test helper.
func (m *MemoryStorage) Get(key string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj, ok
}
