package hierarchy

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codelogn/WinWork-sub000/internal/catalog"
	models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"
	hierRepo "github.com/codelogn/WinWork-sub000/internal/domain/repositories/hierarchy"
	hierSvc "github.com/codelogn/WinWork-sub000/internal/domain/services/hierarchy"
	"github.com/codelogn/WinWork-sub000/internal/repository/sqlite"
	sqliteHier "github.com/codelogn/WinWork-sub000/internal/repository/sqlite/hierarchy"
)

// testEnv is a fresh store on disk with every service wired
type testEnv struct {
	*Services
	items hierRepo.ItemRepository
	tags  hierRepo.TagRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, nil)
}

// newTestEnvWith lets a test intercept the item repository the services see.
// env.items stays the unwrapped repository.
func newTestEnvWith(t *testing.T, wrap func(hierRepo.ItemRepository) hierRepo.ItemRepository) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := discardLogger()

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "winwork.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tables := sqlite.NewTableNames("test_")
	require.NoError(t, sqlite.Migrate(ctx, db, tables))

	registry, err := catalog.NewRegistry()
	require.NoError(t, err)

	repoConfig := &sqlite.RepositoryConfig{DB: db, Tables: tables, Logger: logger}
	itemRepo := sqliteHier.NewItemRepository(repoConfig)
	tagRepo := sqliteHier.NewTagRepository(repoConfig)

	var serviceItems hierRepo.ItemRepository = itemRepo
	if wrap != nil {
		serviceItems = wrap(itemRepo)
	}

	services := NewServices(Dependencies{
		ItemRepo:  serviceItems,
		TagRepo:   tagRepo,
		TxManager: sqlite.NewTransactionManager(db, logger),
		Catalog:   registry,
		Logger:    logger,
	})
	return &testEnv{Services: services, items: itemRepo, tags: tagRepo}
}

func (e *testEnv) folder(t *testing.T, name string, parentID *string) *models.Item {
	t.Helper()
	item, err := e.Items.CreateItem(context.Background(), &hierSvc.CreateItemRequest{
		Name:     name,
		ItemType: models.ItemTypeFolder,
		ParentID: parentID,
	})
	require.NoError(t, err)
	return item
}

func (e *testEnv) link(t *testing.T, name string, parentID *string) *models.Item {
	t.Helper()
	item, err := e.Items.CreateItem(context.Background(), &hierSvc.CreateItemRequest{
		Name:     name,
		ItemType: models.ItemTypeWebURL,
		URL:      "https://" + name + ".example",
		ParentID: parentID,
	})
	require.NoError(t, err)
	return item
}

// requireInvariants checks acyclicity and sibling sort order uniqueness over the whole store
func (e *testEnv) requireInvariants(t *testing.T) {
	t.Helper()
	all, err := e.items.ListAll(context.Background())
	require.NoError(t, err)

	byID := make(map[string]models.Item, len(all))
	for _, it := range all {
		byID[it.ID] = it
	}

	orders := map[string]map[int]string{}
	for _, it := range all {
		key := ""
		if it.ParentID != nil {
			key = *it.ParentID
		}
		if orders[key] == nil {
			orders[key] = map[int]string{}
		}
		other, dup := orders[key][it.SortOrder]
		require.False(t, dup, "items %s and %s share sort order %d", other, it.ID, it.SortOrder)
		orders[key][it.SortOrder] = it.ID

		// Walking up must reach a root within len(all) steps
		steps := 0
		for cur := it; cur.ParentID != nil; steps++ {
			require.Less(t, steps, len(all), "cycle through %s", it.ID)
			parent, ok := byID[*cur.ParentID]
			require.True(t, ok, "item %s has dangling parent %s", cur.ID, *cur.ParentID)
			cur = parent
		}
	}
}

func names(items []models.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }
