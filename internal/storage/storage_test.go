package storage

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelogn/WinWork-sub000/internal/config"
	models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"
	hierSvc "github.com/codelogn/WinWork-sub000/internal/domain/services/hierarchy"
)

func TestOpen_SQLiteReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		DatabaseDriver: config.DriverSQLite,
		SQLitePath:     filepath.Join(t.TempDir(), "nested", "winwork.db"),
		TablePrefix:    "test_",
	}

	backend, err := Open(ctx, cfg, logger)
	require.NoError(t, err)
	_, err = backend.Services.Items.CreateItem(ctx, &hierSvc.CreateItemRequest{Name: "Work", ItemType: models.ItemTypeFolder})
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	backend, err = Open(ctx, cfg, logger)
	require.NoError(t, err)
	defer backend.Close()

	roots, err := backend.Services.Items.GetRootItems(ctx)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, "Work", roots[0].Name)
}

func TestOpen_Errors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := Open(context.Background(), &config.Config{DatabaseDriver: "oracle"}, logger)
	assert.Error(t, err)

	_, err = Open(context.Background(), &config.Config{DatabaseDriver: config.DriverPostgres}, logger)
	assert.Error(t, err)
}
