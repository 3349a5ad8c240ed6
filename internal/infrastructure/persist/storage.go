package persist

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Get when a key has never been written
var ErrNotFound = errors.New("key not found")

// Storage is the key-value store behind persisted preferences. It plays the
// role the browser's localStorage plays for a client-only desktop.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// MemoryStorage keeps values for the lifetime of the process
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryStorage creates an empty in-memory store
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string][]byte)}
}

// Get implements Storage
func (m *MemoryStorage) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set implements Storage
func (m *MemoryStorage) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	m.values[key] = append([]byte(nil), value...)
	m.mu.Unlock()
	return nil
}

// Delete implements Storage
func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
	return nil
}

// SessionFlags are booleans scoped to the running process, the equivalent of
// sessionStorage: they survive a page reload served by the same backend but
// never reach persistent storage.
type SessionFlags struct {
	mu    sync.RWMutex
	flags map[string]bool
}

// NewSessionFlags creates an empty flag set
func NewSessionFlags() *SessionFlags {
	return &SessionFlags{flags: make(map[string]bool)}
}

// Get returns the flag value; unset flags are false
func (s *SessionFlags) Get(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags[key]
}

// Set raises a flag
func (s *SessionFlags) Set(key string) {
	s.mu.Lock()
	s.flags[key] = true
	s.mu.Unlock()
}

// Clear lowers a flag
func (s *SessionFlags) Clear(key string) {
	s.mu.Lock()
	delete(s.flags, key)
	s.mu.Unlock()
}
