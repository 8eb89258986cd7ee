package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySetGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "user:1", map[string]string{"name": "Ada"}, 0))

	var got map[string]string
	hit, err := m.Get(ctx, "user:1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "Ada", got["name"])

	hit, err = m.Get(ctx, "user:2", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "jti", true, time.Minute))
	ok, _ := m.Exists(ctx, "jti")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	ok, _ = m.Exists(ctx, "jti")
	assert.False(t, ok)
}

func TestMemoryDel(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "a", 1, 0))
	require.NoError(t, m.Set(ctx, "b", 2, 0))

	require.NoError(t, m.Del(ctx, "a", "b", "missing"))

	ok, _ := m.Exists(ctx, "a")
	assert.False(t, ok)
	ok, _ = m.Exists(ctx, "b")
	assert.False(t, ok)
}
