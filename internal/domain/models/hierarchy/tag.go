package hierarchy

import "time"

// Tag is a label that can be attached to any number of items.
// Name is unique case-insensitively.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}

// ItemTag associates an item with a tag.
type ItemTag struct {
	ItemID string `json:"itemId"`
	TagID  string `json:"tagId"`
}
