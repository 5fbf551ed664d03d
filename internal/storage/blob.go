package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Blob is a single named slot of persistent key-value storage. Load returns
// nil data (and no error) when the slot has never been written.
type Blob interface {
	Load() ([]byte, error)
	Store(data []byte) error
}

// FileBlob keeps the serialized collection in one file on disk, the local
// analog of a browser storage slot under a fixed key.
type FileBlob struct {
	path string
}

func NewFileBlob(path string) *FileBlob {
	return &FileBlob{path: path}
}

func (b *FileBlob) Load() ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read blob file: %w", err)
	}
	return data, nil
}

// Store writes via a temp file and rename so a failed write never leaves a
// truncated blob behind.
func (b *FileBlob) Store(data []byte) error {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create blob directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp blob: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), b.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace blob file: %w", err)
	}
	return nil
}

// MemoryBlob is an in-memory slot for tests.
type MemoryBlob struct {
	mu   sync.Mutex
	data []byte

	// FailStore makes every Store call fail, for exercising write-error
	// paths in tests.
	FailStore bool
}

func NewMemoryBlob() *MemoryBlob {
	return &MemoryBlob{}
}

func (b *MemoryBlob) Load() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		return nil, nil
	}
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out, nil
}

func (b *MemoryBlob) Store(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailStore {
		return fmt.Errorf("memory blob: store disabled")
	}
	b.data = make([]byte, len(data))
	copy(b.data, data)
	return nil
}

// Seed sets the raw blob contents directly, bypassing FailStore.
func (b *MemoryBlob) Seed(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append([]byte(nil), data...)
}
