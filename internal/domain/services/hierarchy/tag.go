package hierarchy

import (
	"context"

	models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"
)

// TagService manages tags and reconciles item tag sets
type TagService interface {
	// SetTagsForItem makes the item's tags exactly the normalized label set,
	// creating missing tags on demand
	SetTagsForItem(ctx context.Context, itemID string, labels []string) ([]models.Tag, error)

	// GetTagsForItem lists an item's tags
	GetTagsForItem(ctx context.Context, itemID string) ([]models.Tag, error)

	// ListTags lists every tag
	ListTags(ctx context.Context) ([]models.Tag, error)

	// CreateTag creates a tag explicitly
	CreateTag(ctx context.Context, req *CreateTagRequest) (*models.Tag, error)

	// UpdateTag renames or recolors a tag
	UpdateTag(ctx context.Context, id string, req *UpdateTagRequest) (*models.Tag, error)

	// DeleteTag deletes a tag; in-use tags need force
	DeleteTag(ctx context.Context, id string, force bool) error
}

// CreateTagRequest represents a tag creation request
type CreateTagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"` // empty = next palette color
}

// UpdateTagRequest represents a tag update request
type UpdateTagRequest struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}
