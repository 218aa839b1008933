// Package store persists the three session slots (access token, refresh
// token, selected organization id) across client runs. It mirrors the web
// client's localStorage contract: an opaque key-value store where writes are
// immediately visible to subsequent reads.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Well-known session keys.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyOrgID        = "orgId"
)

// Store is a durable key-to-string mapping for session state.
//
// The store never holds the authoritative session; the session controller
// does. It is a serialized mirror read back at bootstrap.
type Store interface {
	// Set stores value under key. An empty value removes the key.
	Set(key, value string) error

	// Get returns the stored value and whether it was present.
	Get(key string) (string, bool)

	// Clear removes all keys. Session teardown clears the three slots as a
	// unit; clearing them independently is not a valid transition.
	Clear() error
}

// FileStore persists keys to a JSON file, created with mode 0600 since it
// holds credentials.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath returns the session file location, ~/.flux/session.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".flux", "session.json"), nil
}

func (f *FileStore) load() map[string]string {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return map[string]string{}
	}
	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return map[string]string{}
	}
	return values
}

func (f *FileStore) save(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o600)
}

// Set stores value under key, removing the key when value is empty.
func (f *FileStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values := f.load()
	if value == "" {
		delete(values, key)
	} else {
		values[key] = value
	}
	return f.save(values)
}

// Get returns the stored value for key.
func (f *FileStore) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	value, ok := f.load()[key]
	return value, ok
}

// Clear removes the session file entirely.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// MemoryStore is an in-memory Store for tests and --no-persist runs.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

// Set stores value under key, removing the key when value is empty.
func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if value == "" {
		delete(m.values, key)
	} else {
		m.values[key] = value
	}
	return nil
}

// Get returns the stored value for key.
func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.values[key]
	return value, ok
}

// Clear removes all keys.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values = map[string]string{}
	return nil
}
