package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bokfor.yaml")

	cfg := Default(filepath.Join(dir, "bokfor.db"))
	cfg.Policy.ClosingCorrections = true
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Database.Path, loaded.Database.Path)
	assert.Equal(t, "SEK", loaded.Ledger.BaseCurrency)
	assert.Equal(t, "2099", loaded.Ledger.ResultAccount)
	assert.True(t, loaded.Policy.ClosingCorrections)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
