package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestBlobStorePutNamesByUUID(t *testing.T) {
	disk := NewMemoryDisk("http://cdn.test/storage")
	blobs := NewBlobStore(disk)
	ctx := context.Background()

	p1, err := blobs.Put(ctx, "products", pngHeader)
	require.NoError(t, err)
	p2, err := blobs.Put(ctx, "products", pngHeader)
	require.NoError(t, err)

	assert.NotEqual(t, p1, p2)
	assert.True(t, strings.HasPrefix(p1, "products/"))
	assert.True(t, strings.HasSuffix(p1, ".png"))
	assert.Equal(t, "http://cdn.test/storage/"+p1, blobs.URL(p1))
	assert.Equal(t, 2, disk.Len())

	require.NoError(t, blobs.Delete(ctx, p1))
	ok, _ := disk.Exists(ctx, p1)
	assert.False(t, ok)
}

func TestBlobStoreRejectsNonImage(t *testing.T) {
	blobs := NewBlobStore(NewMemoryDisk(""))
	_, err := blobs.Put(context.Background(), "products", []byte("just some text"))
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestLocalDiskRoundTrip(t *testing.T) {
	disk := NewLocalDisk(t.TempDir(), "http://localhost:8080/storage/")
	ctx := context.Background()

	require.NoError(t, disk.Put(ctx, "products/a.png", pngHeader, "image/png"))
	got, err := disk.Get(ctx, "products/a.png")
	require.NoError(t, err)
	assert.Equal(t, pngHeader, got)
	assert.Equal(t, "http://localhost:8080/storage/products/a.png", disk.URL("products/a.png"))

	require.NoError(t, disk.Delete(ctx, "products/a.png"))
	require.NoError(t, disk.Delete(ctx, "products/a.png"), "deleting a missing file is not an error")

	_, err = disk.Get(ctx, "products/a.png")
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestLocalDiskStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	disk := NewLocalDisk(root, "")
	assert.True(t, strings.HasPrefix(disk.abs("../../etc/passwd"), root))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "ftp")
	assert.Error(t, err)
}
