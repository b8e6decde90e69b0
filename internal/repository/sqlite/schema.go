package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates the schema if it does not exist yet
func Migrate(ctx context.Context, db *sql.DB, tables *TableNames) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			item_type TEXT NOT NULL,
			url TEXT NOT NULL DEFAULT '',
			command TEXT NOT NULL DEFAULT '',
			terminal_type TEXT,
			description TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			parent_id TEXT REFERENCES %[1]s(id),
			sort_order INTEGER NOT NULL,
			created_at_unixms INTEGER NOT NULL,
			updated_at_unixms INTEGER NOT NULL,
			last_accessed_at_unixms INTEGER,
			access_count INTEGER NOT NULL DEFAULT 0
		);`, tables.Items),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS idx_%[1]s_sibling_order ON %[1]s(COALESCE(parent_id, ''), sort_order);`, tables.Items),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_parent ON %[1]s(parent_id);`, tables.Items),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_access ON %[1]s(access_count DESC, last_accessed_at_unixms DESC);`, tables.Items),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			color TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL
		);`, tables.Tags),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS idx_%[1]s_name ON %[1]s(name COLLATE NOCASE);`, tables.Tags),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			item_id TEXT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			tag_id TEXT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			PRIMARY KEY (item_id, tag_id)
		);`, tables.ItemTags, tables.Items, tables.Tags),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_tag ON %[1]s(tag_id);`, tables.ItemTags),
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}
