package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("TAG_PALETTE", "")

	cfg := Load()

	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, "dev_", cfg.TablePrefix)
	assert.True(t, cfg.Debug)
	assert.Empty(t, cfg.TagPalette)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("DB_DRIVER", "POSTGRES")
	t.Setenv("TAG_PALETTE", "#111111, ,#222222")

	cfg := Load()

	assert.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	assert.False(t, cfg.Debug)
	assert.Equal(t, []string{"#111111", "#222222"}, cfg.TagPalette)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList(""))
	assert.Equal(t, []string{"a", "b"}, SplitList(" a ,, b "))
}

func TestPruneLogs(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"winwork-2026-01-01T00-00-00.000.log",
		"winwork-2026-01-02T00-00-00.000.log",
		"winwork-2026-01-03T00-00-00.000.log",
		"other.log",
	}
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o644))
	}

	require.NoError(t, pruneLogs(dir, 2))

	left, err := filepath.Glob(filepath.Join(dir, "*.log"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "other.log"),
		filepath.Join(dir, "winwork-2026-01-02T00-00-00.000.log"),
		filepath.Join(dir, "winwork-2026-01-03T00-00-00.000.log"),
	}, left)
}

func TestNewLogger_TeesIntoLogDir(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer

	logger, closeFn, err := NewLogger(&Config{LogDir: dir, MaxLogFiles: 3}, &buf)
	require.NoError(t, err)
	logger.Info("hello", "k", "v")
	logger.Debug("hidden")
	require.NoError(t, closeFn())

	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.NotContains(t, buf.String(), "hidden")

	files, err := filepath.Glob(filepath.Join(dir, logFilePattern))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"k":"v"`)
}
