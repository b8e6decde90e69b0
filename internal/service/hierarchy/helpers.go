package hierarchy

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"
	hierRepo "github.com/codelogn/WinWork-sub000/internal/domain/repositories/hierarchy"

	"golang.org/x/text/cases"
)

// foldKey is the case-insensitive identity of a label
func foldKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// loadTagsByItem returns every item's tags keyed by item ID, each list ordered by name
func loadTagsByItem(ctx context.Context, tagRepo hierRepo.TagRepository) (map[string][]models.Tag, error) {
	tags, err := tagRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	pairs, err := tagRepo.ListAssociations(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Tag, len(tags))
	for _, t := range tags {
		byID[t.ID] = t
	}

	result := make(map[string][]models.Tag)
	for _, p := range pairs {
		if t, ok := byID[p.TagID]; ok {
			result[p.ItemID] = append(result[p.ItemID], t)
		}
	}
	for id := range result {
		sortTags(result[id])
	}
	return result, nil
}

func sortTags(tags []models.Tag) {
	slices.SortFunc(tags, func(a, b models.Tag) int {
		return cmp.Compare(foldKey(a.Name), foldKey(b.Name))
	})
}

func sortNodes(nodes []*models.ItemTreeNode) {
	slices.SortStableFunc(nodes, func(a, b *models.ItemTreeNode) int {
		return cmp.Compare(a.SortOrder, b.SortOrder)
	})
}

// attachTags fills Tags on each item
func attachTags(ctx context.Context, tagRepo hierRepo.TagRepository, items []models.Item) error {
	if len(items) == 0 {
		return nil
	}
	tagsByItem, err := loadTagsByItem(ctx, tagRepo)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].Tags = tagsByItem[items[i].ID]
	}
	return nil
}
