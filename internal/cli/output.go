package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *App) writeItem(cmd *cobra.Command, item *models.Item) error {
	if a.format() == "json" {
		return writeJSON(a.out(cmd), item)
	}
	writeItemDetail(a.out(cmd), item)
	return nil
}

func (a *App) writeItems(cmd *cobra.Command, items []models.Item) error {
	if a.format() == "json" {
		return writeJSON(a.out(cmd), items)
	}
	tw := tabwriter.NewWriter(a.out(cmd), 0, 4, 2, ' ', 0)
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", item.ID, item.SortOrder, item.ItemType, item.Name, target(&item))
	}
	return tw.Flush()
}

func (a *App) writeTags(cmd *cobra.Command, tags []models.Tag) error {
	if a.format() == "json" {
		return writeJSON(a.out(cmd), tags)
	}
	tw := tabwriter.NewWriter(a.out(cmd), 0, 4, 2, ' ', 0)
	for _, tag := range tags {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", tag.ID, tag.Color, tag.Name)
	}
	return tw.Flush()
}

func writeItemDetail(w io.Writer, item *models.Item) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "id:\t%s\n", item.ID)
	fmt.Fprintf(tw, "name:\t%s\n", item.Name)
	fmt.Fprintf(tw, "type:\t%s\n", item.ItemType)
	if t := target(item); t != "" {
		fmt.Fprintf(tw, "target:\t%s\n", t)
	}
	if item.Description != "" {
		fmt.Fprintf(tw, "description:\t%s\n", item.Description)
	}
	if item.ParentID != nil {
		fmt.Fprintf(tw, "parent:\t%s\n", *item.ParentID)
	}
	fmt.Fprintf(tw, "position:\t%d\n", item.SortOrder)
	if len(item.Tags) > 0 {
		names := make([]string, 0, len(item.Tags))
		for _, t := range item.Tags {
			names = append(names, t.Name)
		}
		fmt.Fprintf(tw, "tags:\t%s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(tw, "opened:\t%d times\n", item.AccessCount)
	_ = tw.Flush()
}

func writeTree(w io.Writer, roots []*models.ItemTreeNode) {
	for _, root := range roots {
		root.Walk(func(node *models.ItemTreeNode, depth int) {
			fmt.Fprintf(w, "%s%s  [%s] %s\n", strings.Repeat("  ", depth), node.Name, node.ItemType, node.ID)
		})
	}
}

// target is what opening the item would launch
func target(item *models.Item) string {
	if item.ItemType == models.ItemTypeTerminal {
		if item.TerminalType != nil {
			return fmt.Sprintf("%s: %s", *item.TerminalType, item.Command)
		}
		return item.Command
	}
	return item.URL
}
