package hierarchy

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/codelogn/WinWork-sub000/internal/domain"
	models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"
	hierRepo "github.com/codelogn/WinWork-sub000/internal/domain/repositories/hierarchy"
	"github.com/codelogn/WinWork-sub000/internal/repository/sqlite"

	"github.com/google/uuid"
)

// SQLiteTagRepository implements the TagRepository interface
type SQLiteTagRepository struct {
	db     *sql.DB
	tables *sqlite.TableNames
	logger *slog.Logger
}

// NewTagRepository creates a new tag repository
func NewTagRepository(config *sqlite.RepositoryConfig) hierRepo.TagRepository {
	return &SQLiteTagRepository{
		db:     config.DB,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanTag(row rowScanner) (*models.Tag, error) {
	var tag models.Tag
	var createdAt int64
	if err := row.Scan(&tag.ID, &tag.Name, &tag.Color, &createdAt); err != nil {
		return nil, err
	}
	tag.CreatedAt = fromUnixMS(createdAt)
	return &tag, nil
}

// Create inserts a tag and assigns its ID
func (r *SQLiteTagRepository) Create(ctx context.Context, tag *models.Tag) error {
	if tag.ID == "" {
		tag.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, name, color, created_at_unixms) VALUES (?, ?, ?, ?)`, r.tables.Tags)

	executor := sqlite.GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query, tag.ID, tag.Name, tag.Color, toUnixMS(tag.CreatedAt)); err != nil {
		if sqlite.IsUniqueViolation(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("tag %q already exists", tag.Name),
				ResourceType: "tag",
			}
		}
		return fmt.Errorf("create tag: %w", err)
	}
	return nil
}

// GetByID retrieves a tag by ID
func (r *SQLiteTagRepository) GetByID(ctx context.Context, id string) (*models.Tag, error) {
	query := fmt.Sprintf(`SELECT id, name, color, created_at_unixms FROM %s WHERE id = ?`, r.tables.Tags)

	executor := sqlite.GetExecutor(ctx, r.db)
	tag, err := scanTag(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if sqlite.IsNoRows(err) {
			return nil, domain.NewNotFound("tag", id)
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return tag, nil
}

// GetByName retrieves a tag by case-insensitive name
func (r *SQLiteTagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	query := fmt.Sprintf(`SELECT id, name, color, created_at_unixms FROM %s WHERE %s(name) = ?`, r.tables.Tags, sqlite.FoldFunc)

	executor := sqlite.GetExecutor(ctx, r.db)
	tag, err := scanTag(executor.QueryRowContext(ctx, query, sqlite.Fold(name)))
	if err != nil {
		if sqlite.IsNoRows(err) {
			return nil, domain.NewNotFound("tag", name)
		}
		return nil, fmt.Errorf("get tag by name: %w", err)
	}
	return tag, nil
}

// List lists all tags ordered by name
func (r *SQLiteTagRepository) List(ctx context.Context) ([]models.Tag, error) {
	query := fmt.Sprintf(`SELECT id, name, color, created_at_unixms FROM %s ORDER BY name COLLATE NOCASE ASC`, r.tables.Tags)
	return r.queryTags(ctx, "list tags", query)
}

// Update writes name and color
func (r *SQLiteTagRepository) Update(ctx context.Context, tag *models.Tag) error {
	query := fmt.Sprintf(`UPDATE %s SET name = ?, color = ? WHERE id = ?`, r.tables.Tags)

	executor := sqlite.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, tag.Name, tag.Color, tag.ID)
	if err != nil {
		if sqlite.IsUniqueViolation(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("tag %q already exists", tag.Name),
				ResourceType: "tag",
			}
		}
		return fmt.Errorf("update tag: %w", err)
	}
	return requireAffected(result, "tag", tag.ID)
}

// Delete removes a tag
func (r *SQLiteTagRepository) Delete(ctx context.Context, id string) error {
	executor := sqlite.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, r.tables.Tags), id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return requireAffected(result, "tag", id)
}

// ListForItem lists the tags attached to an item
func (r *SQLiteTagRepository) ListForItem(ctx context.Context, itemID string) ([]models.Tag, error) {
	query := fmt.Sprintf(`
		SELECT t.id, t.name, t.color, t.created_at_unixms
		FROM %s t JOIN %s it ON it.tag_id = t.id
		WHERE it.item_id = ?
		ORDER BY t.name COLLATE NOCASE ASC
	`, r.tables.Tags, r.tables.ItemTags)
	return r.queryTags(ctx, "list item tags", query, itemID)
}

// ListAssociations lists every item/tag pair
func (r *SQLiteTagRepository) ListAssociations(ctx context.Context) ([]models.ItemTag, error) {
	query := fmt.Sprintf(`SELECT item_id, tag_id FROM %s ORDER BY item_id, tag_id`, r.tables.ItemTags)

	executor := sqlite.GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tag associations: %w", err)
	}
	defer rows.Close()

	pairs := []models.ItemTag{}
	for rows.Next() {
		var p models.ItemTag
		if err := rows.Scan(&p.ItemID, &p.TagID); err != nil {
			return nil, fmt.Errorf("scan tag association: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tag associations: %w", err)
	}
	return pairs, nil
}

// AddToItem attaches a tag to an item; attaching twice is a no-op
func (r *SQLiteTagRepository) AddToItem(ctx context.Context, itemID, tagID string) error {
	query := fmt.Sprintf(`INSERT INTO %s (item_id, tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING`, r.tables.ItemTags)

	executor := sqlite.GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query, itemID, tagID); err != nil {
		if sqlite.IsForeignKeyViolation(err) {
			return fmt.Errorf("item %s or tag %s: %w", itemID, tagID, domain.ErrNotFound)
		}
		return fmt.Errorf("add tag to item: %w", err)
	}
	return nil
}

// RemoveFromItem detaches a tag from an item
func (r *SQLiteTagRepository) RemoveFromItem(ctx context.Context, itemID, tagID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE item_id = ? AND tag_id = ?`, r.tables.ItemTags)

	executor := sqlite.GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query, itemID, tagID); err != nil {
		return fmt.Errorf("remove tag from item: %w", err)
	}
	return nil
}

// RemoveAllForTag detaches a tag from every item
func (r *SQLiteTagRepository) RemoveAllForTag(ctx context.Context, tagID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE tag_id = ?`, r.tables.ItemTags)

	executor := sqlite.GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query, tagID); err != nil {
		return fmt.Errorf("remove tag associations: %w", err)
	}
	return nil
}

// CountItems counts items carrying the tag
func (r *SQLiteTagRepository) CountItems(ctx context.Context, tagID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE tag_id = ?`, r.tables.ItemTags)

	var n int
	executor := sqlite.GetExecutor(ctx, r.db)
	if err := executor.QueryRowContext(ctx, query, tagID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tagged items: %w", err)
	}
	return n, nil
}

func (r *SQLiteTagRepository) queryTags(ctx context.Context, op, query string, args ...any) ([]models.Tag, error) {
	executor := sqlite.GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		tags = append(tags, *tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tags, nil
}
