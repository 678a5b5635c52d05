package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PROPERTYEDGE_CONFIG", "")
	t.Setenv("COMP_MONTHS", "")
	t.Setenv("HTTP_ADDR", "")

	cfg := Load()
	assert.Equal(t, 18, cfg.CompMonths)
	assert.Equal(t, 12, cfg.CompLimit)
	assert.Equal(t, ":5050", cfg.HTTPAddr)
	assert.Equal(t, 20*time.Second, cfg.FetchTimeout())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PROPERTYEDGE_CONFIG", "")
	t.Setenv("COMP_MONTHS", "24")
	t.Setenv("COMP_LIMIT", "not-a-number")
	t.Setenv("POSTGRES_HOST", "db.internal")

	cfg := Load()
	assert.Equal(t, 24, cfg.CompMonths)
	assert.Equal(t, 12, cfg.CompLimit, "unparsable ints fall back to the default")
	assert.Contains(t, cfg.DSN(), "host=db.internal ")
}

func TestLoadYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "propertyedge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"ppd_database_url: postgres://ppd@localhost/ppd\ncomp_limit: 20\nfetch_mode: browser\n"), 0o644))

	t.Setenv("PROPERTYEDGE_CONFIG", path)
	t.Setenv("COMP_LIMIT", "8")
	t.Setenv("RATE_LIMIT_MS", "250")

	cfg := Load()
	assert.Equal(t, "postgres://ppd@localhost/ppd", cfg.PPDDatabaseURL)
	assert.Equal(t, 20, cfg.CompLimit, "file values win over env")
	assert.Equal(t, "browser", cfg.FetchMode)
	assert.Equal(t, 250, cfg.RateLimitMs, "zero file values leave env values alone")
}

func TestLoadIgnoresMissingOverlay(t *testing.T) {
	t.Setenv("PROPERTYEDGE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("COMP_LIMIT", "")
	cfg := Load()
	assert.Equal(t, 12, cfg.CompLimit)
}
