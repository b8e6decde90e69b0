package hierarchy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codelogn/WinWork-sub000/internal/domain"
	models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"
	hierRepo "github.com/codelogn/WinWork-sub000/internal/domain/repositories/hierarchy"
	"github.com/codelogn/WinWork-sub000/internal/repository/postgres"
)

const itemColumns = `id, name, item_type, url, command, terminal_type, description, notes,
	parent_id, sort_order, created_at, updated_at, last_accessed_at, access_count`

// PostgresItemRepository implements the ItemRepository interface
type PostgresItemRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewItemRepository creates a new item repository
func NewItemRepository(config *postgres.RepositoryConfig) hierRepo.ItemRepository {
	return &PostgresItemRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanItem(row pgx.Row) (*models.Item, error) {
	var (
		item         models.Item
		itemType     string
		terminalType *string
	)
	err := row.Scan(
		&item.ID,
		&item.Name,
		&itemType,
		&item.URL,
		&item.Command,
		&terminalType,
		&item.Description,
		&item.Notes,
		&item.ParentID,
		&item.SortOrder,
		&item.CreatedAt,
		&item.UpdatedAt,
		&item.LastAccessedAt,
		&item.AccessCount,
	)
	if err != nil {
		return nil, err
	}
	item.ItemType = models.ItemType(itemType)
	if terminalType != nil && *terminalType != "" {
		tt := models.TerminalType(*terminalType)
		item.TerminalType = &tt
	}
	return &item, nil
}

func terminalArg(tt *models.TerminalType) *string {
	if tt == nil {
		return nil
	}
	s := string(*tt)
	return &s
}

// Create inserts an item and assigns its ID
func (r *PostgresItemRepository) Create(ctx context.Context, item *models.Item) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, item_type, url, command, terminal_type, description, notes,
			parent_id, sort_order, created_at, updated_at, last_accessed_at, access_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, r.tables.Items)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		item.ID,
		item.Name,
		string(item.ItemType),
		item.URL,
		item.Command,
		terminalArg(item.TerminalType),
		item.Description,
		item.Notes,
		item.ParentID,
		item.SortOrder,
		item.CreatedAt,
		item.UpdatedAt,
		item.LastAccessedAt,
		item.AccessCount,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("item %q sort order %d: %w", item.Name, item.SortOrder, domain.ErrConflict)
		}
		if postgres.IsForeignKeyViolation(err) {
			return fmt.Errorf("parent of item %q: %w", item.Name, domain.ErrNotFound)
		}
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

// GetByID retrieves an item by ID
func (r *PostgresItemRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, itemColumns, r.tables.Items)

	executor := postgres.GetExecutor(ctx, r.pool)
	item, err := scanItem(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// Update writes every mutable column of an item
func (r *PostgresItemRepository) Update(ctx context.Context, item *models.Item) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, item_type = $2, url = $3, command = $4, terminal_type = $5, description = $6,
			notes = $7, parent_id = $8, sort_order = $9, updated_at = $10,
			last_accessed_at = $11, access_count = $12
		WHERE id = $13
	`, r.tables.Items)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		item.Name,
		string(item.ItemType),
		item.URL,
		item.Command,
		terminalArg(item.TerminalType),
		item.Description,
		item.Notes,
		item.ParentID,
		item.SortOrder,
		item.UpdatedAt,
		item.LastAccessedAt,
		item.AccessCount,
		item.ID,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("item %q sort order %d: %w", item.Name, item.SortOrder, domain.ErrConflict)
		}
		return fmt.Errorf("update item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("item %s: %w", item.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes an item and its tag associations
func (r *PostgresItemRepository) Delete(ctx context.Context, id string) (bool, error) {
	executor := postgres.GetExecutor(ctx, r.pool)

	if _, err := executor.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE item_id = $1`, r.tables.ItemTags), id); err != nil {
		return false, fmt.Errorf("delete item tags: %w", err)
	}

	result, err := executor.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Items), id)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return false, fmt.Errorf("cannot delete item with children: %w", domain.ErrFolderNotEmpty)
		}
		return false, fmt.Errorf("delete item: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// ListChildren lists direct children ordered by sort order
func (r *PostgresItemRepository) ListChildren(ctx context.Context, parentID *string) ([]models.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE parent_id IS NOT DISTINCT FROM $1 ORDER BY sort_order ASC`,
		itemColumns, r.tables.Items)
	return r.queryItems(ctx, "list item children", query, parentID)
}

// ListAll lists every item ordered by parent then sort order
func (r *PostgresItemRepository) ListAll(ctx context.Context) ([]models.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY COALESCE(parent_id, ''), sort_order ASC`,
		itemColumns, r.tables.Items)
	return r.queryItems(ctx, "list items", query)
}

// FindChildByName finds a direct child by case-insensitive name
func (r *PostgresItemRepository) FindChildByName(ctx context.Context, parentID *string, name string) (*models.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE parent_id IS NOT DISTINCT FROM $1 AND lower(name) = lower($2)
		ORDER BY sort_order ASC LIMIT 1`, itemColumns, r.tables.Items)

	executor := postgres.GetExecutor(ctx, r.pool)
	item, err := scanItem(executor.QueryRow(ctx, query, parentID, name))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find item by name: %w", err)
	}
	return item, nil
}

// MaxSortOrder returns the highest sort order among children of parentID
func (r *PostgresItemRepository) MaxSortOrder(ctx context.Context, parentID *string) (int, error) {
	query := fmt.Sprintf(`SELECT COALESCE(MAX(sort_order), 0) FROM %s WHERE parent_id IS NOT DISTINCT FROM $1`,
		r.tables.Items)

	var max int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, parentID).Scan(&max); err != nil {
		return 0, fmt.Errorf("max sort order: %w", err)
	}
	return max, nil
}

// UpdatePlacement sets parent and sort order of one item in a single write
func (r *PostgresItemRepository) UpdatePlacement(ctx context.Context, id string, parentID *string, sortOrder int, updatedAt time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET parent_id = $1, sort_order = $2, updated_at = $3 WHERE id = $4`,
		r.tables.Items)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, parentID, sortOrder, updatedAt, id)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("item %s sort order %d: %w", id, sortOrder, domain.ErrConflict)
		}
		if postgres.IsForeignKeyViolation(err) {
			return fmt.Errorf("parent of item %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("update item placement: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// UpdateSortOrders rewrites sibling sort orders in one statement.
// Postgres checks unique indexes per row, so values are first parked negative.
func (r *PostgresItemRepository) UpdateSortOrders(ctx context.Context, parentID *string, orders map[string]int) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, 0, len(orders))
	values := make([]int32, 0, len(orders))
	for id, order := range orders {
		ids = append(ids, id)
		values = append(values, int32(order))
	}

	executor := postgres.GetExecutor(ctx, r.pool)

	park := fmt.Sprintf(`
		UPDATE %s AS i SET sort_order = -v.sort_order
		FROM unnest($1::text[], $2::int[]) AS v(id, sort_order)
		WHERE i.id = v.id AND i.parent_id IS NOT DISTINCT FROM $3
	`, r.tables.Items)
	result, err := executor.Exec(ctx, park, ids, values, parentID)
	if err != nil {
		return fmt.Errorf("park sort order: %w", err)
	}
	if int(result.RowsAffected()) != len(orders) {
		return fmt.Errorf("sort order siblings of %v: %w", parentID, domain.ErrNotFound)
	}

	flip := fmt.Sprintf(`UPDATE %s SET sort_order = -sort_order WHERE id = ANY($1)`, r.tables.Items)
	if _, err := executor.Exec(ctx, flip, ids); err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("sort order: %w", domain.ErrConflict)
		}
		return fmt.Errorf("apply sort order: %w", err)
	}
	return nil
}

// Search matches term against item fields and tag names
func (r *PostgresItemRepository) Search(ctx context.Context, term string, limit int) ([]models.Item, error) {
	query := fmt.Sprintf(`
		SELECT %[1]s FROM %[2]s i
		WHERE i.name ILIKE $1 OR i.description ILIKE $1 OR i.url ILIKE $1 OR i.notes ILIKE $1
			OR EXISTS (
				SELECT 1 FROM %[3]s it JOIN %[4]s t ON t.id = it.tag_id
				WHERE it.item_id = i.id AND t.name ILIKE $1
			)
		ORDER BY i.access_count DESC, i.last_accessed_at DESC NULLS LAST, i.name ASC
		LIMIT $2
	`, prefixed("i", itemColumns), r.tables.Items, r.tables.ItemTags, r.tables.Tags)

	return r.queryItems(ctx, "search items", query, likePattern(term), limit)
}

// ListMostAccessed lists accessed items by descending access count
func (r *PostgresItemRepository) ListMostAccessed(ctx context.Context, limit int) ([]models.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE access_count > 0
		ORDER BY access_count DESC, last_accessed_at DESC NULLS LAST LIMIT $1`,
		itemColumns, r.tables.Items)
	return r.queryItems(ctx, "list most accessed", query, limit)
}

// ListRecentlyAccessed lists accessed items by descending access time
func (r *PostgresItemRepository) ListRecentlyAccessed(ctx context.Context, limit int) ([]models.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE last_accessed_at IS NOT NULL
		ORDER BY last_accessed_at DESC, access_count DESC LIMIT $1`,
		itemColumns, r.tables.Items)
	return r.queryItems(ctx, "list recently accessed", query, limit)
}

// RecordAccess increments the access counter and stamps the access time
func (r *PostgresItemRepository) RecordAccess(ctx context.Context, id string, at time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET access_count = access_count + 1, last_accessed_at = $1 WHERE id = $2`,
		r.tables.Items)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("record access: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *PostgresItemRepository) queryItems(ctx context.Context, op, query string, args ...any) ([]models.Item, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
