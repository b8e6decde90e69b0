package catalog

import (
	"embed"
	"fmt"
	"regexp"
	"strings"
	"sync"

	models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// IsHexColor reports whether s is a #rgb or #rrggbb color
func IsHexColor(s string) bool {
	return hexColor.MatchString(strings.TrimSpace(s))
}

// Registry resolves item type names and aliases and holds the default tag palette
type Registry struct {
	entries map[models.ItemType]ItemTypeEntry
	aliases map[string]models.ItemType
	palette []string
	mu      sync.RWMutex
}

// NewRegistry creates a registry from the embedded catalog file
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/catalog.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse builds a registry from catalog YAML
func Parse(data []byte) (*Registry, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}

	r := &Registry{
		entries: make(map[models.ItemType]ItemTypeEntry),
		aliases: make(map[string]models.ItemType),
	}
	for _, entry := range file.ItemTypes {
		if !entry.Type.IsValid() {
			return nil, fmt.Errorf("catalog: unknown item type %q", entry.Type)
		}
		r.entries[entry.Type] = entry
		r.aliases[aliasKey(string(entry.Type))] = entry.Type
		for _, alias := range entry.Aliases {
			r.aliases[aliasKey(alias)] = entry.Type
		}
	}
	for _, t := range models.AllItemTypes {
		if _, ok := r.entries[t]; !ok {
			return nil, fmt.Errorf("catalog: item type %q missing", t)
		}
	}
	for _, color := range file.Palette {
		if !IsHexColor(color) {
			return nil, fmt.Errorf("catalog: invalid palette color %q", color)
		}
	}
	if len(file.Palette) == 0 {
		return nil, fmt.Errorf("catalog: palette is empty")
	}
	r.palette = file.Palette
	return r, nil
}

func aliasKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}

// ResolveType maps a canonical name or alias to an item type
func (r *Registry) ResolveType(name string) (models.ItemType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.aliases[aliasKey(name)]
	return t, ok
}

// Label returns the display label for an item type
func (r *Registry) Label(t models.ItemType) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.entries[t]; ok && entry.Label != "" {
		return entry.Label
	}
	return string(t)
}

// Entries returns item types in canonical order
func (r *Registry) Entries() []ItemTypeEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ItemTypeEntry, 0, len(models.AllItemTypes))
	for _, t := range models.AllItemTypes {
		out = append(out, r.entries[t])
	}
	return out
}

// Palette returns a copy of the default tag palette
func (r *Registry) Palette() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.palette...)
}
