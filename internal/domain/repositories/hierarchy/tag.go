package hierarchy

import (
	"context"

	models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"
)

// TagRepository defines data access operations for tags and item/tag associations
type TagRepository interface {
	// Create inserts a tag and assigns its ID
	Create(ctx context.Context, tag *models.Tag) error

	// GetByID retrieves a tag, returning domain.ErrNotFound when absent
	GetByID(ctx context.Context, id string) (*models.Tag, error)

	// GetByName looks a tag up by case-insensitive name, returning domain.ErrNotFound when absent
	GetByName(ctx context.Context, name string) (*models.Tag, error)

	// List lists all tags ordered by name
	List(ctx context.Context) ([]models.Tag, error)

	// Update writes name and color
	Update(ctx context.Context, tag *models.Tag) error

	// Delete removes a tag; associations must be removed first
	Delete(ctx context.Context, id string) error

	// ListForItem lists the tags attached to an item ordered by name
	ListForItem(ctx context.Context, itemID string) ([]models.Tag, error)

	// ListAssociations lists every item/tag pair
	ListAssociations(ctx context.Context) ([]models.ItemTag, error)

	// AddToItem attaches a tag to an item; attaching twice is a no-op
	AddToItem(ctx context.Context, itemID, tagID string) error

	// RemoveFromItem detaches a tag from an item
	RemoveFromItem(ctx context.Context, itemID, tagID string) error

	// RemoveAllForTag detaches a tag from every item
	RemoveAllForTag(ctx context.Context, tagID string) error

	// CountItems counts items carrying the tag
	CountItems(ctx context.Context, tagID string) (int, error)
}
