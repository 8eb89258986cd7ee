package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/shashiranjanraj/bazaar/pkg/metrics"
)

// ErrNotImage is returned when uploaded bytes are not a recognised image.
var ErrNotImage = errors.New("storage: content is not an image")

// BlobStore writes uploads under random names and resolves public URLs.
type BlobStore struct {
	disk Disk
}

func NewBlobStore(disk Disk) *BlobStore {
	return &BlobStore{disk: disk}
}

// DetectImage sniffs data and returns its MIME type and file extension.
func DetectImage(data []byte) (mime, ext string, err error) {
	m := mimetype.Detect(data)
	if !strings.HasPrefix(m.String(), "image/") {
		return "", "", ErrNotImage
	}
	return m.String(), m.Extension(), nil
}

// Put stores an image under dir with a fresh uuid name and returns its path.
func (b *BlobStore) Put(ctx context.Context, dir string, data []byte) (string, error) {
	mime, ext, err := DetectImage(data)
	if err != nil {
		return "", err
	}
	p := path.Join(dir, uuid.NewString()+ext)
	if err := b.disk.Put(ctx, p, data, mime); err != nil {
		return "", fmt.Errorf("storage: put blob: %w", err)
	}
	metrics.BlobBytes.Add(float64(len(data)))
	return p, nil
}

func (b *BlobStore) Delete(ctx context.Context, p string) error {
	return b.disk.Delete(ctx, p)
}

func (b *BlobStore) URL(p string) string {
	return b.disk.URL(p)
}

func (b *BlobStore) Disk() Disk { return b.disk }
