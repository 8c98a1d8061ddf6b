package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitchain/internal/constants"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir, "")
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, constants.BackendSQLite, cfg.Backend)
	assert.Equal(t, constants.IntegrityChecksum, cfg.IntegrityMode)
	assert.Equal(t, constants.DefaultChainCreateMax, cfg.RateLimits.ChainCreate.Max)
	assert.Equal(t, constants.DefaultDataImportWindow, cfg.RateLimits.DataImport.Window)
	assert.True(t, cfg.Lock)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	content := `
backend: badger
entry_max_age: 720h
poll_interval: 5s
rate_limits:
  chain_create:
    max: 2
    window: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(dir, path)
	require.NoError(t, err)

	assert.Equal(t, constants.BackendBadger, cfg.Backend)
	assert.Equal(t, 720*time.Hour, cfg.EntryMaxAge)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, RateLimit{Max: 2, Window: 30 * time.Second}, cfg.RateLimits.ChainCreate)
	// untouched sections keep their defaults
	assert.Equal(t, constants.DefaultChainUpdateMax, cfg.RateLimits.ChainUpdate.Max)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HABITCHAIN_BACKEND", "memory")
	t.Setenv("HABITCHAIN_INTEGRITY_MODE", "keyed")
	t.Setenv("HABITCHAIN_LOCK", "false")

	cfg, err := Load(dir, "")
	require.NoError(t, err)

	assert.Equal(t, constants.BackendMemory, cfg.Backend)
	assert.Equal(t, constants.IntegrityKeyed, cfg.IntegrityMode)
	assert.False(t, cfg.Lock)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown backend", content: "backend: postgres\n"},
		{name: "unknown integrity mode", content: "integrity_mode: sha1\n"},
		{name: "zero rate limit", content: "rate_limits:\n  data_import:\n    max: 0\n    window: 1m\n"},
		{name: "negative max age", content: "entry_max_age: -1h\n"},
		{name: "malformed yaml", content: "backend: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

			_, err := Load(dir, path)
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsBadEnvDuration(t *testing.T) {
	t.Setenv("HABITCHAIN_POLL_INTERVAL", "soon")

	_, err := Load(t.TempDir(), "")
	assert.Error(t, err)
}
