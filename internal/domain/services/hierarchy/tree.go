package hierarchy

import (
	"context"

	models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"
)

// TreeService is the move/delete engine. Every operation keeps the hierarchy acyclic
// and sibling sort orders unique, and runs as a single transaction.
type TreeService interface {
	// MoveItem reparents and/or reorders an item. newSortOrder <= 0 appends.
	MoveItem(ctx context.Context, id string, newParentID *string, newSortOrder int) (*models.Item, error)

	// DeleteItem removes an item without children (domain.FolderNotEmptyError otherwise)
	DeleteItem(ctx context.Context, id string) error

	// DeleteItemRecursive removes an item with all descendants and reports what was removed
	DeleteItemRecursive(ctx context.Context, id string) ([]models.ItemSummary, error)

	// GetTree returns every root with its descendants nested
	GetTree(ctx context.Context) ([]*models.ItemTreeNode, error)

	// GetAncestors returns the chain from the root down to the item's parent
	GetAncestors(ctx context.Context, id string) ([]models.ItemSummary, error)
}

// MoveItemRequest represents a move request
type MoveItemRequest struct {
	ParentID  *string `json:"parentId"`            // nil = root level
	SortOrder int     `json:"sortOrder,omitempty"` // 1-based target position; <= 0 appends
}
