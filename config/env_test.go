package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(`
# comment
export APP_ENV=production
MUTABLE_ROLES="admin,shop_owner"
BROKEN
`), 0o644))

	out := defaultValues()
	require.NoError(t, mergeDotEnv(path, out))

	assert.Equal(t, "production", out["APP_ENV"])
	assert.Equal(t, "admin,shop_owner", out["MUTABLE_ROLES"])
	assert.NotContains(t, out, "BROKEN")
}

func TestMergeJSONConfigNumbers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"product_page_size": 20, "app_env": "staging"}`), 0o644))

	out := defaultValues()
	require.NoError(t, mergeJSONConfig(path, out))

	assert.Equal(t, "20", out["PRODUCT_PAGE_SIZE"])
	assert.Equal(t, "staging", out["APP_ENV"])
}

func TestEnvironmentOverridesFiles(t *testing.T) {
	t.Setenv("MUTABLE_ROLES", " admin , shop_owner ,")
	assert.Equal(t, []string{"admin", "shop_owner"}, MutableRoles())
}

func TestTypedAccessorsFallBack(t *testing.T) {
	t.Setenv("JWT_TTL", "not-a-duration")
	t.Setenv("PRODUCT_PAGE_SIZE", "abc")

	assert.Equal(t, 24*time.Hour, JWTTTL())
	assert.Equal(t, 12, ProductPageSize())
}
