package hierarchy

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"
	"github.com/codelogn/WinWork-sub000/internal/repository/postgres"
)

func TestLikePattern(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "docs", want: "%docs%"},
		{name: "percent escaped", input: "50%", want: `%50\%%`},
		{name: "underscore escaped", input: "a_b", want: `%a\_b%`},
		{name: "backslash escaped", input: `c:\`, want: `%c:\\%`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, likePattern(tt.input))
		})
	}
}

// Runs against a real database only when TEST_DATABASE_URL is set.
func TestItemRepository_Postgres(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, url)
	require.NoError(t, err)
	defer pool.Close()

	tables := postgres.NewTableNames("test_")
	require.NoError(t, postgres.Migrate(ctx, pool, tables))
	_, err = pool.Exec(ctx, "TRUNCATE "+tables.ItemTags+", "+tables.Tags+", "+tables.Items)
	require.NoError(t, err)

	cfg := &postgres.RepositoryConfig{Pool: pool, Tables: tables, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	items := NewItemRepository(cfg)
	tags := NewTagRepository(cfg)

	now := time.Now().UTC().Truncate(time.Millisecond)
	folder := &models.Item{Name: "Work", ItemType: models.ItemTypeFolder, SortOrder: 1, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, items.Create(ctx, folder))

	a := &models.Item{Name: "A", ItemType: models.ItemTypeWebURL, URL: "https://a.example", ParentID: &folder.ID, SortOrder: 1, CreatedAt: now, UpdatedAt: now}
	b := &models.Item{Name: "B", ItemType: models.ItemTypeWebURL, URL: "https://b.example", ParentID: &folder.ID, SortOrder: 2, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, items.Create(ctx, a))
	require.NoError(t, items.Create(ctx, b))

	require.NoError(t, items.UpdateSortOrders(ctx, &folder.ID, map[string]int{a.ID: 2, b.ID: 1}))
	children, err := items.ListChildren(ctx, &folder.ID)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "B", children[0].Name)

	tag := &models.Tag{Name: "Work", Color: "#3B82F6", CreatedAt: now}
	require.NoError(t, tags.Create(ctx, tag))
	require.NoError(t, tags.AddToItem(ctx, a.ID, tag.ID))
	require.NoError(t, tags.AddToItem(ctx, a.ID, tag.ID))

	found, err := items.Search(ctx, "work", 10)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	n, err := tags.CountItems(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
