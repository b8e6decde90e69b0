package hierarchy

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/codelogn/WinWork-sub000/internal/domain"
	models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"
	hierRepo "github.com/codelogn/WinWork-sub000/internal/domain/repositories/hierarchy"
	"github.com/codelogn/WinWork-sub000/internal/repository/sqlite"

	"github.com/google/uuid"
)

// SQLiteItemRepository implements the ItemRepository interface
type SQLiteItemRepository struct {
	db     *sql.DB
	tables *sqlite.TableNames
	logger *slog.Logger
}

// NewItemRepository creates a new item repository
func NewItemRepository(config *sqlite.RepositoryConfig) hierRepo.ItemRepository {
	return &SQLiteItemRepository{
		db:     config.DB,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts an item and assigns its ID
func (r *SQLiteItemRepository) Create(ctx context.Context, item *models.Item) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, item_type, url, command, terminal_type, description, notes,
			parent_id, sort_order, created_at_unixms, updated_at_unixms, last_accessed_at_unixms, access_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.tables.Items)

	executor := sqlite.GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		item.ID,
		item.Name,
		string(item.ItemType),
		item.URL,
		item.Command,
		nullableTerminal(item.TerminalType),
		item.Description,
		item.Notes,
		nullableString(item.ParentID),
		item.SortOrder,
		toUnixMS(item.CreatedAt),
		toUnixMS(item.UpdatedAt),
		nullableUnixMS(item.LastAccessedAt),
		item.AccessCount,
	)
	if err != nil {
		if sqlite.IsUniqueViolation(err) {
			return fmt.Errorf("item %q sort order %d: %w", item.Name, item.SortOrder, domain.ErrConflict)
		}
		if sqlite.IsForeignKeyViolation(err) {
			return fmt.Errorf("parent of item %q: %w", item.Name, domain.ErrNotFound)
		}
		return fmt.Errorf("create item: %w", err)
	}

	return nil
}

// GetByID retrieves an item by ID
func (r *SQLiteItemRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, itemColumns, r.tables.Items)

	executor := sqlite.GetExecutor(ctx, r.db)
	item, err := scanItem(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if sqlite.IsNoRows(err) {
			return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get item: %w", err)
	}

	return item, nil
}

// Update writes every mutable column of an item
func (r *SQLiteItemRepository) Update(ctx context.Context, item *models.Item) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = ?, item_type = ?, url = ?, command = ?, terminal_type = ?, description = ?,
			notes = ?, parent_id = ?, sort_order = ?, updated_at_unixms = ?,
			last_accessed_at_unixms = ?, access_count = ?
		WHERE id = ?
	`, r.tables.Items)

	executor := sqlite.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		item.Name,
		string(item.ItemType),
		item.URL,
		item.Command,
		nullableTerminal(item.TerminalType),
		item.Description,
		item.Notes,
		nullableString(item.ParentID),
		item.SortOrder,
		toUnixMS(item.UpdatedAt),
		nullableUnixMS(item.LastAccessedAt),
		item.AccessCount,
		item.ID,
	)
	if err != nil {
		if sqlite.IsUniqueViolation(err) {
			return fmt.Errorf("item %q sort order %d: %w", item.Name, item.SortOrder, domain.ErrConflict)
		}
		return fmt.Errorf("update item: %w", err)
	}

	return requireAffected(result, "item", item.ID)
}

// Delete removes an item and its tag associations
func (r *SQLiteItemRepository) Delete(ctx context.Context, id string) (bool, error) {
	executor := sqlite.GetExecutor(ctx, r.db)

	if _, err := executor.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE item_id = ?`, r.tables.ItemTags), id); err != nil {
		return false, fmt.Errorf("delete item tags: %w", err)
	}

	result, err := executor.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, r.tables.Items), id)
	if err != nil {
		if sqlite.IsForeignKeyViolation(err) {
			return false, fmt.Errorf("cannot delete item with children: %w", domain.ErrFolderNotEmpty)
		}
		return false, fmt.Errorf("delete item: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	return n > 0, nil
}

// ListChildren lists direct children ordered by sort order
func (r *SQLiteItemRepository) ListChildren(ctx context.Context, parentID *string) ([]models.Item, error) {
	var query string
	var args []any

	if parentID == nil {
		query = fmt.Sprintf(`SELECT %s FROM %s WHERE parent_id IS NULL ORDER BY sort_order ASC`,
			itemColumns, r.tables.Items)
	} else {
		query = fmt.Sprintf(`SELECT %s FROM %s WHERE parent_id = ? ORDER BY sort_order ASC`,
			itemColumns, r.tables.Items)
		args = append(args, *parentID)
	}

	return r.queryItems(ctx, "list item children", query, args...)
}

// ListAll lists every item ordered by parent then sort order
func (r *SQLiteItemRepository) ListAll(ctx context.Context) ([]models.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY COALESCE(parent_id, ''), sort_order ASC`,
		itemColumns, r.tables.Items)
	return r.queryItems(ctx, "list items", query)
}

// FindChildByName finds a direct child by case-insensitive name
func (r *SQLiteItemRepository) FindChildByName(ctx context.Context, parentID *string, name string) (*models.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE COALESCE(parent_id, '') = COALESCE(?, '') AND %s(name) = ?
		ORDER BY sort_order ASC LIMIT 1`, itemColumns, r.tables.Items, sqlite.FoldFunc)

	executor := sqlite.GetExecutor(ctx, r.db)
	item, err := scanItem(executor.QueryRowContext(ctx, query, nullableString(parentID), sqlite.Fold(name)))
	if err != nil {
		if sqlite.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find item by name: %w", err)
	}
	return item, nil
}

// MaxSortOrder returns the highest sort order among children of parentID
func (r *SQLiteItemRepository) MaxSortOrder(ctx context.Context, parentID *string) (int, error) {
	query := fmt.Sprintf(`SELECT COALESCE(MAX(sort_order), 0) FROM %s WHERE COALESCE(parent_id, '') = COALESCE(?, '')`,
		r.tables.Items)

	var max int
	executor := sqlite.GetExecutor(ctx, r.db)
	if err := executor.QueryRowContext(ctx, query, nullableString(parentID)).Scan(&max); err != nil {
		return 0, fmt.Errorf("max sort order: %w", err)
	}
	return max, nil
}

// UpdatePlacement sets parent and sort order of one item in a single write
func (r *SQLiteItemRepository) UpdatePlacement(ctx context.Context, id string, parentID *string, sortOrder int, updatedAt time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET parent_id = ?, sort_order = ?, updated_at_unixms = ? WHERE id = ?`,
		r.tables.Items)

	executor := sqlite.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, nullableString(parentID), sortOrder, toUnixMS(updatedAt), id)
	if err != nil {
		if sqlite.IsUniqueViolation(err) {
			return fmt.Errorf("item %s sort order %d: %w", id, sortOrder, domain.ErrConflict)
		}
		if sqlite.IsForeignKeyViolation(err) {
			return fmt.Errorf("parent of item %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("update item placement: %w", err)
	}
	return requireAffected(result, "item", id)
}

// UpdateSortOrders rewrites sibling sort orders in two phases so that no
// intermediate state violates the unique sibling index.
func (r *SQLiteItemRepository) UpdateSortOrders(ctx context.Context, parentID *string, orders map[string]int) error {
	if len(orders) == 0 {
		return nil
	}
	executor := sqlite.GetExecutor(ctx, r.db)

	// Phase 1: move to negative slots, which are never used by committed rows.
	park := fmt.Sprintf(`UPDATE %s SET sort_order = ? WHERE id = ? AND COALESCE(parent_id, '') = COALESCE(?, '')`,
		r.tables.Items)
	for id, order := range orders {
		result, err := executor.ExecContext(ctx, park, -order, id, nullableString(parentID))
		if err != nil {
			return fmt.Errorf("park sort order: %w", err)
		}
		if err := requireAffected(result, "item", id); err != nil {
			return err
		}
	}

	// Phase 2: flip to the final values.
	flip := fmt.Sprintf(`UPDATE %s SET sort_order = -sort_order WHERE id = ?`, r.tables.Items)
	for id := range orders {
		if _, err := executor.ExecContext(ctx, flip, id); err != nil {
			if sqlite.IsUniqueViolation(err) {
				return fmt.Errorf("item %s sort order: %w", id, domain.ErrConflict)
			}
			return fmt.Errorf("apply sort order: %w", err)
		}
	}
	return nil
}

// Search matches term against item fields and tag names
func (r *SQLiteItemRepository) Search(ctx context.Context, term string, limit int) ([]models.Item, error) {
	query := fmt.Sprintf(`
		SELECT %[1]s FROM %[2]s i
		WHERE %[5]s(i.name) LIKE ? ESCAPE '\'
			OR %[5]s(i.description) LIKE ? ESCAPE '\'
			OR %[5]s(i.url) LIKE ? ESCAPE '\'
			OR %[5]s(i.notes) LIKE ? ESCAPE '\'
			OR EXISTS (
				SELECT 1 FROM %[3]s it JOIN %[4]s t ON t.id = it.tag_id
				WHERE it.item_id = i.id AND %[5]s(t.name) LIKE ? ESCAPE '\'
			)
		ORDER BY i.access_count DESC, i.last_accessed_at_unixms DESC NULLS LAST, i.name ASC
		LIMIT ?
	`, prefixed("i", itemColumns), r.tables.Items, r.tables.ItemTags, r.tables.Tags, sqlite.FoldFunc)

	pattern := likePattern(term)
	return r.queryItems(ctx, "search items", query, pattern, pattern, pattern, pattern, pattern, limit)
}

// ListMostAccessed lists accessed items by descending access count
func (r *SQLiteItemRepository) ListMostAccessed(ctx context.Context, limit int) ([]models.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE access_count > 0
		ORDER BY access_count DESC, last_accessed_at_unixms DESC NULLS LAST LIMIT ?`,
		itemColumns, r.tables.Items)
	return r.queryItems(ctx, "list most accessed", query, limit)
}

// ListRecentlyAccessed lists accessed items by descending access time
func (r *SQLiteItemRepository) ListRecentlyAccessed(ctx context.Context, limit int) ([]models.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE last_accessed_at_unixms IS NOT NULL
		ORDER BY last_accessed_at_unixms DESC, access_count DESC LIMIT ?`,
		itemColumns, r.tables.Items)
	return r.queryItems(ctx, "list recently accessed", query, limit)
}

// RecordAccess increments the access counter and stamps the access time
func (r *SQLiteItemRepository) RecordAccess(ctx context.Context, id string, at time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET access_count = access_count + 1, last_accessed_at_unixms = ? WHERE id = ?`,
		r.tables.Items)

	executor := sqlite.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, toUnixMS(at), id)
	if err != nil {
		return fmt.Errorf("record access: %w", err)
	}
	return requireAffected(result, "item", id)
}

func (r *SQLiteItemRepository) queryItems(ctx context.Context, op, query string, args ...any) ([]models.Item, error) {
	executor := sqlite.GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	items, err := scanItems(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

func requireAffected(result sql.Result, kind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}
