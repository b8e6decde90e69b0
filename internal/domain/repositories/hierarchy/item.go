package hierarchy

import (
	"context"
	"time"

	models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"
)

// ItemRepository defines data access operations for items.
// It performs no cross-entity validation; the hierarchy services own the invariants.
type ItemRepository interface {
	// Create inserts an item and assigns its ID
	Create(ctx context.Context, item *models.Item) error

	// GetByID retrieves an item, returning domain.ErrNotFound when absent
	GetByID(ctx context.Context, id string) (*models.Item, error)

	// Update writes every mutable column of an item
	Update(ctx context.Context, item *models.Item) error

	// Delete removes an item and its tag associations; false when no row existed
	Delete(ctx context.Context, id string) (bool, error)

	// ListChildren lists direct children ordered by sort order (nil parent = roots)
	ListChildren(ctx context.Context, parentID *string) ([]models.Item, error)

	// ListAll lists every item ordered by parent then sort order
	ListAll(ctx context.Context) ([]models.Item, error)

	// FindChildByName finds a direct child by case-insensitive name; nil when absent
	FindChildByName(ctx context.Context, parentID *string, name string) (*models.Item, error)

	// MaxSortOrder returns the highest sort order among children of parentID (0 when none)
	MaxSortOrder(ctx context.Context, parentID *string) (int, error)

	// UpdatePlacement sets parent and sort order of one item in a single write
	UpdatePlacement(ctx context.Context, id string, parentID *string, sortOrder int, updatedAt time.Time) error

	// UpdateSortOrders rewrites sort orders of siblings; ids must share parentID
	UpdateSortOrders(ctx context.Context, parentID *string, orders map[string]int) error

	// Search matches term case-insensitively against name, description, url, notes and tag names
	Search(ctx context.Context, term string, limit int) ([]models.Item, error)

	// ListMostAccessed lists items with at least one access, most accessed first
	ListMostAccessed(ctx context.Context, limit int) ([]models.Item, error)

	// ListRecentlyAccessed lists accessed items, most recent first
	ListRecentlyAccessed(ctx context.Context, limit int) ([]models.Item, error)

	// RecordAccess increments the access counter and stamps the access time
	RecordAccess(ctx context.Context, id string, at time.Time) error
}
