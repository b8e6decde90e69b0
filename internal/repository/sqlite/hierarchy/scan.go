package hierarchy

import (
	"database/sql"
	"strings"
	"time"

	models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"
	"github.com/codelogn/WinWork-sub000/internal/repository/sqlite"
)

const itemColumns = `id, name, item_type, url, command, terminal_type, description, notes,
	parent_id, sort_order, created_at_unixms, updated_at_unixms, last_accessed_at_unixms, access_count`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var (
		item         models.Item
		itemType     string
		terminalType sql.NullString
		parentID     sql.NullString
		createdAt    int64
		updatedAt    int64
		lastAccessed sql.NullInt64
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
		&parentID,
		&item.SortOrder,
		&createdAt,
		&updatedAt,
		&lastAccessed,
		&item.AccessCount,
	)
	if err != nil {
		return nil, err
	}

	item.ItemType = models.ItemType(itemType)
	if terminalType.Valid && terminalType.String != "" {
		tt := models.TerminalType(terminalType.String)
		item.TerminalType = &tt
	}
	if parentID.Valid {
		id := parentID.String
		item.ParentID = &id
	}
	item.CreatedAt = fromUnixMS(createdAt)
	item.UpdatedAt = fromUnixMS(updatedAt)
	if lastAccessed.Valid {
		t := fromUnixMS(lastAccessed.Int64)
		item.LastAccessedAt = &t
	}
	return &item, nil
}

func scanItems(rows *sql.Rows) ([]models.Item, error) {
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func toUnixMS(t time.Time) int64 { return t.UnixMilli() }

func fromUnixMS(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func nullableUnixMS(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableTerminal(tt *models.TerminalType) any {
	if tt == nil {
		return nil
	}
	return string(*tt)
}

// likePattern escapes LIKE wildcards in term and wraps it for substring
// matching against sqlite.FoldFunc(column)
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + sqlite.Fold(r.Replace(term)) + "%"
}

// prefixed qualifies each column in a comma separated list with alias
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
