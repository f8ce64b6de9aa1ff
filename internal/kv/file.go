package kv

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File is a Store backed by one JSON file per key inside a data directory.
// Writes go through a temp file and rename so a crash never leaves a
// half-written entry behind.
type File struct {
	dir string
	mu  sync.Mutex
}

// entry is the on-disk shape. The original key is kept alongside the value
// so the files stay inspectable even though their names are hashes.
type entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// NewFile creates a file-backed store rooted at dir, creating it if needed.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("kv: create data dir %q: %w", dir, err)
	}
	return &File{dir: dir}, nil
}

// Get implements Store.
func (f *File) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv: read %q: %w", key, err)
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return "", false, fmt.Errorf("kv: decode %q: %w", key, err)
	}
	return e.Value, true, nil
}

// Set implements Store.
func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(entry{Key: key, Value: value})
	if err != nil {
		return fmt.Errorf("kv: encode %q: %w", key, err)
	}

	path := f.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("kv: write %q: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("kv: rename %q: %w", key, err)
	}
	return nil
}

// Delete implements Store.
func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("kv: delete %q: %w", key, err)
	}
	return nil
}

// path maps an arbitrary key to a filename. Keys contain separators and
// user text, so the name is a hash of the key.
func (f *File) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(f.dir, hex.EncodeToString(sum[:12])+".json")
}

var _ Store = (*File)(nil)
