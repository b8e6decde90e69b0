package hierarchy

import (
	"context"

	models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"
	"github.com/codelogn/WinWork-sub000/internal/httputil"
)

// ItemService handles item business logic
type ItemService interface {
	// CreateItem validates and inserts an item, placing it among its siblings
	CreateItem(ctx context.Context, req *CreateItemRequest) (*models.Item, error)

	// GetItem retrieves an item with its tags
	GetItem(ctx context.Context, id string) (*models.Item, error)

	// UpdateItem edits fields; a parent change is routed through the move engine
	UpdateItem(ctx context.Context, id string, req *UpdateItemRequest) (*models.Item, error)

	// GetRootItems lists root-level items ordered by sort order
	GetRootItems(ctx context.Context) ([]models.Item, error)

	// GetChildren lists direct children ordered by sort order
	GetChildren(ctx context.Context, parentID string) ([]models.Item, error)

	// SearchItems matches name, description, url, notes and tag names
	SearchItems(ctx context.Context, term string) ([]models.Item, error)

	// GetMostAccessed lists up to n items by descending access count
	GetMostAccessed(ctx context.Context, n int) ([]models.Item, error)

	// GetRecentlyAccessed lists up to n items by descending last access time
	GetRecentlyAccessed(ctx context.Context, n int) ([]models.Item, error)

	// RecordAccess is reported by the caller after it successfully opened an item
	RecordAccess(ctx context.Context, id string) (*models.Item, error)
}

// CreateItemRequest represents an item creation request
type CreateItemRequest struct {
	Name         string               `json:"name"`
	ItemType     models.ItemType      `json:"itemType"`
	URL          string               `json:"url,omitempty"`
	Command      string               `json:"command,omitempty"`
	TerminalType *models.TerminalType `json:"terminalType,omitempty"`
	Description  string               `json:"description,omitempty"`
	Notes        string               `json:"notes,omitempty"`
	ParentID     *string              `json:"parentId,omitempty"` // nil = root level
	SortOrder    *int                 `json:"sortOrder,omitempty"` // nil = append after last sibling
	Tags         []string             `json:"tags,omitempty"`      // free-text labels
}

// UpdateItemRequest represents a partial item update. Nil fields are left unchanged.
type UpdateItemRequest struct {
	Name         *string                 `json:"name,omitempty"`
	ItemType     *models.ItemType        `json:"itemType,omitempty"`
	URL          *string                 `json:"url,omitempty"`
	Command      *string                 `json:"command,omitempty"`
	TerminalType *models.TerminalType    `json:"terminalType,omitempty"`
	Description  *string                 `json:"description,omitempty"`
	Notes        *string                 `json:"notes,omitempty"`
	ParentID     httputil.OptionalString `json:"parentId,omitzero"`
	SortOrder    *int                    `json:"sortOrder,omitempty"`
	Tags         *[]string               `json:"tags,omitempty"`
}
