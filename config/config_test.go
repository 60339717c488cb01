package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bencen/site-progress/config"
)

func TestLoad_FileValuesWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
addr: ":9090"
cors:
  allowed_origins:
    - "http://localhost:5173"
auth:
  role_cache_ttl: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", c.Addr)
	assert.Equal(t, "site-progress.db", c.DB, "unset fields keep defaults")
	assert.Equal(t, []string{"http://localhost:5173"}, c.CORS.AllowedOrigins)
	assert.Equal(t, config.Duration(30*time.Second), c.Auth.RoleCacheTTL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	c := config.Default()
	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, config.Duration(5*time.Minute), c.Auth.RoleCacheTTL)
}
