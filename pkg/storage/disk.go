// Package storage keeps product image blobs on a local directory, an
// S3-compatible bucket or in memory, behind one Disk interface.
//
//	disk, err := storage.Open(ctx, config.StorageDefault())
//	blobs := storage.NewBlobStore(disk)
//	path, err := blobs.Put(ctx, "products", data)
//	url := blobs.URL(path)
package storage

import (
	"context"
	"errors"
)

// ErrNotExist is returned by Get for a missing path.
var ErrNotExist = errors.New("storage: file does not exist")

// Disk is the driver interface. Paths are slash-separated and relative to
// the disk root.
type Disk interface {
	Put(ctx context.Context, path string, content []byte, contentType string) error
	Get(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for path.
	URL(path string) string
}
