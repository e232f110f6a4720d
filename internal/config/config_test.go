package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.GreaterOrEqual(t, cfg.Workers, 1)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, []string{".rst", ".txt"}, cfg.SourceExtensions)
	assert.True(t, cfg.AddContractNames)
	assert.Empty(t, cfg.DBPath)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default().BatchSize, cfg.BatchSize)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
workers: 2
batch_size: 10
source_extensions: [".rst"]
db_path: /tmp/custom.db
add_contract_names: false
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName), content, 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, []string{".rst"}, cfg.SourceExtensions)
	assert.Equal(t, "/tmp/custom.db", cfg.DBPath)
	assert.False(t, cfg.AddContractNames)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName),
		[]byte("workers: 3\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, []string{".rst", ".txt"}, cfg.SourceExtensions)
}

func TestLoadEnvOverridesDBPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName),
		[]byte("db_path: /tmp/from-file.db\n"), 0o644))
	t.Setenv(EnvDBPath, "/tmp/from-env.db")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-env.db", cfg.DBPath)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName),
		[]byte("workers: [not a number\n"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName),
		[]byte("workers: 0\n"), 0o644))

	_, err := Load(dir)
	assert.ErrorContains(t, err, "workers")

	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName),
		[]byte("source_extensions: []\n"), 0o644))
	_, err = Load(dir)
	assert.ErrorContains(t, err, "source_extensions")
}

func TestDatabasePathExplicit(t *testing.T) {
	cfg := Default()
	cfg.DBPath = "/tmp/explicit.db"

	path, err := cfg.DatabasePath("/docs/token")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/explicit.db", path)
}

func TestDatabasePathDerived(t *testing.T) {
	cfg := Default()

	path, err := cfg.DatabasePath("/docs/token")
	require.NoError(t, err)
	assert.Equal(t, "token.db", filepath.Base(path))
	assert.Contains(t, path, "vydoc")
}
