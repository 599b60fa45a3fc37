package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps counters in one JSON document per user profile. Every
// Increment reads, mutates and rewrites the whole document. Safe for
// concurrent use within one process; independent processes writing the same
// file are last-writer-wins.
type FileStore struct {
	mu   sync.Mutex
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a file-backed usage store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath returns the per-user counter file location for a profile.
func DefaultPath(profile string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "omnisearch", fmt.Sprintf("usage-%s.json", profile)), nil
}

// Get returns the counter value, 0 if the key is absent.
func (s *FileStore) Get(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()[key], nil
}

// Increment adds one to the counter and returns the new value.
func (s *FileStore) Increment(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counters := s.load()
	counters[key]++
	if err := s.save(counters); err != nil {
		return 0, err
	}
	return counters[key], nil
}

// All returns a copy of every tracked counter.
func (s *FileStore) All(_ context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counters := s.load()
	out := make(map[string]int64, len(counters))
	for k, v := range counters {
		out[k] = v
	}
	return out, nil
}

// Ping verifies the counter directory is usable.
func (s *FileStore) Ping(_ context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("usage dir: %w", err)
	}
	return nil
}

// load reads the counter document. A missing or corrupt file is an empty
// mapping, never an error.
func (s *FileStore) load() map[string]int64 {
	counters := make(map[string]int64)

	data, err := os.ReadFile(s.path)
	if err != nil {
		return counters
	}
	if err := json.Unmarshal(data, &counters); err != nil {
		return make(map[string]int64)
	}
	return counters
}

// save rewrites the whole document via temp file + rename.
func (s *FileStore) save(counters map[string]int64) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("usage dir: %w", err)
	}

	data, err := json.MarshalIndent(counters, "", "  ")
	if err != nil {
		return fmt.Errorf("encode usage counters: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write usage counters: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace usage counters: %w", err)
	}
	return nil
}
