package catalog

import models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"

// ItemTypeEntry describes one item type as loaded from the catalog file
type ItemTypeEntry struct {
	Type    models.ItemType `yaml:"type" json:"type"`
	Label   string          `yaml:"label" json:"label"`
	Aliases []string        `yaml:"aliases" json:"aliases"`
}

// File is the on-disk shape of the catalog
type File struct {
	ItemTypes []ItemTypeEntry `yaml:"item_types"`
	Palette   []string        `yaml:"palette"`
}
