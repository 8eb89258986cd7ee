package storage

import (
	"context"
	"strings"
	"sync"
)

// MemoryDisk keeps files in a map. Used by tests and the "memory" driver.
type MemoryDisk struct {
	mu      sync.RWMutex
	files   map[string][]byte
	baseURL string
}

func NewMemoryDisk(baseURL string) *MemoryDisk {
	return &MemoryDisk{files: make(map[string][]byte), baseURL: strings.TrimRight(baseURL, "/")}
}

func (d *MemoryDisk) Put(_ context.Context, path string, content []byte, _ string) error {
	cp := append([]byte(nil), content...)
	d.mu.Lock()
	d.files[path] = cp
	d.mu.Unlock()
	return nil
}

func (d *MemoryDisk) Get(_ context.Context, path string) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	data, ok := d.files[path]
	if !ok {
		return nil, ErrNotExist
	}
	return append([]byte(nil), data...), nil
}

func (d *MemoryDisk) Exists(_ context.Context, path string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.files[path]
	return ok, nil
}

func (d *MemoryDisk) Delete(_ context.Context, path string) error {
	d.mu.Lock()
	delete(d.files, path)
	d.mu.Unlock()
	return nil
}

func (d *MemoryDisk) URL(path string) string {
	return d.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Len reports how many files are stored.
func (d *MemoryDisk) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.files)
}
