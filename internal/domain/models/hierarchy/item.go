package hierarchy

import "time"

// Item is a node in the hierarchy. ParentID is a plain value; nil means root level.
type Item struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	ItemType       ItemType      `json:"itemType"`
	URL            string        `json:"url,omitempty"`
	Command        string        `json:"command,omitempty"`
	TerminalType   *TerminalType `json:"terminalType,omitempty"`
	Description    string        `json:"description,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	ParentID       *string       `json:"parentId"`
	SortOrder      int           `json:"sortOrder"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
	LastAccessedAt *time.Time    `json:"lastAccessedAt,omitempty"`
	AccessCount    int           `json:"accessCount"`

	// Tags is populated by services on read paths; it is not stored on the item row.
	Tags []Tag `json:"tags,omitempty"`
}

// Summary returns the reporting projection of the item.
func (i *Item) Summary() ItemSummary {
	return ItemSummary{ID: i.ID, Name: i.Name, ItemType: i.ItemType, ParentID: i.ParentID}
}

// IsRoot reports whether the item sits at root level.
func (i *Item) IsRoot() bool { return i.ParentID == nil }

// ItemSummary is the minimal description of an item returned by cascading operations.
type ItemSummary struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	ItemType ItemType `json:"itemType"`
	ParentID *string  `json:"parentId,omitempty"`
}

// SameParent compares two optional parent references.
func SameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
