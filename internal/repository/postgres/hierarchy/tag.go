package hierarchy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codelogn/WinWork-sub000/internal/domain"
	models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"
	hierRepo "github.com/codelogn/WinWork-sub000/internal/domain/repositories/hierarchy"
	"github.com/codelogn/WinWork-sub000/internal/repository/postgres"
)

// PostgresTagRepository implements the TagRepository interface
type PostgresTagRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewTagRepository creates a new tag repository
func NewTagRepository(config *postgres.RepositoryConfig) hierRepo.TagRepository {
	return &PostgresTagRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanTag(row pgx.Row) (*models.Tag, error) {
	var tag models.Tag
	if err := row.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.CreatedAt); err != nil {
		return nil, err
	}
	return &tag, nil
}

// Create inserts a tag and assigns its ID
func (r *PostgresTagRepository) Create(ctx context.Context, tag *models.Tag) error {
	if tag.ID == "" {
		tag.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, name, color, created_at) VALUES ($1, $2, $3, $4)`, r.tables.Tags)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, tag.ID, tag.Name, tag.Color, tag.CreatedAt); err != nil {
		if postgres.IsUniqueViolation(err) {
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
func (r *PostgresTagRepository) GetByID(ctx context.Context, id string) (*models.Tag, error) {
	query := fmt.Sprintf(`SELECT id, name, color, created_at FROM %s WHERE id = $1`, r.tables.Tags)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := scanTag(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, domain.NewNotFound("tag", id)
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return tag, nil
}

// GetByName retrieves a tag by case-insensitive name
func (r *PostgresTagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	query := fmt.Sprintf(`SELECT id, name, color, created_at FROM %s WHERE lower(name) = lower($1)`, r.tables.Tags)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := scanTag(executor.QueryRow(ctx, query, name))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, domain.NewNotFound("tag", name)
		}
		return nil, fmt.Errorf("get tag by name: %w", err)
	}
	return tag, nil
}

// List lists all tags ordered by name
func (r *PostgresTagRepository) List(ctx context.Context) ([]models.Tag, error) {
	query := fmt.Sprintf(`SELECT id, name, color, created_at FROM %s ORDER BY lower(name) ASC`, r.tables.Tags)
	return r.queryTags(ctx, "list tags", query)
}

// Update writes name and color
func (r *PostgresTagRepository) Update(ctx context.Context, tag *models.Tag) error {
	query := fmt.Sprintf(`UPDATE %s SET name = $1, color = $2 WHERE id = $3`, r.tables.Tags)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, tag.Name, tag.Color, tag.ID)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("tag %q already exists", tag.Name),
				ResourceType: "tag",
			}
		}
		return fmt.Errorf("update tag: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NewNotFound("tag", tag.ID)
	}
	return nil
}

// Delete removes a tag
func (r *PostgresTagRepository) Delete(ctx context.Context, id string) error {
	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Tags), id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NewNotFound("tag", id)
	}
	return nil
}

// ListForItem lists the tags attached to an item
func (r *PostgresTagRepository) ListForItem(ctx context.Context, itemID string) ([]models.Tag, error) {
	query := fmt.Sprintf(`
		SELECT t.id, t.name, t.color, t.created_at
		FROM %s t JOIN %s it ON it.tag_id = t.id
		WHERE it.item_id = $1
		ORDER BY lower(t.name) ASC
	`, r.tables.Tags, r.tables.ItemTags)
	return r.queryTags(ctx, "list item tags", query, itemID)
}

// ListAssociations lists every item/tag pair
func (r *PostgresTagRepository) ListAssociations(ctx context.Context) ([]models.ItemTag, error) {
	query := fmt.Sprintf(`SELECT item_id, tag_id FROM %s ORDER BY item_id, tag_id`, r.tables.ItemTags)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
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
func (r *PostgresTagRepository) AddToItem(ctx context.Context, itemID, tagID string) error {
	query := fmt.Sprintf(`INSERT INTO %s (item_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, r.tables.ItemTags)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, itemID, tagID); err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return fmt.Errorf("item %s or tag %s: %w", itemID, tagID, domain.ErrNotFound)
		}
		return fmt.Errorf("add tag to item: %w", err)
	}
	return nil
}

// RemoveFromItem detaches a tag from an item
func (r *PostgresTagRepository) RemoveFromItem(ctx context.Context, itemID, tagID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE item_id = $1 AND tag_id = $2`, r.tables.ItemTags)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, itemID, tagID); err != nil {
		return fmt.Errorf("remove tag from item: %w", err)
	}
	return nil
}

// RemoveAllForTag detaches a tag from every item
func (r *PostgresTagRepository) RemoveAllForTag(ctx context.Context, tagID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE tag_id = $1`, r.tables.ItemTags)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, tagID); err != nil {
		return fmt.Errorf("remove tag associations: %w", err)
	}
	return nil
}

// CountItems counts items carrying the tag
func (r *PostgresTagRepository) CountItems(ctx context.Context, tagID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE tag_id = $1`, r.tables.ItemTags)

	var n int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, tagID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tagged items: %w", err)
	}
	return n, nil
}

func (r *PostgresTagRepository) queryTags(ctx context.Context, op, query string, args ...any) ([]models.Tag, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
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
