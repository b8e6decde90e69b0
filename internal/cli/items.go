package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codelogn/WinWork-sub000/internal/config"
	models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"
	hierSvc "github.com/codelogn/WinWork-sub000/internal/domain/services/hierarchy"
	"github.com/codelogn/WinWork-sub000/internal/service/hierarchy"
)

func newItemsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Item commands",
	}

	cmd.AddCommand(newItemsAddCmd(app))
	cmd.AddCommand(newItemsShowCmd(app))
	cmd.AddCommand(newItemsListCmd(app))
	cmd.AddCommand(newItemsEditCmd(app))
	cmd.AddCommand(newItemsMoveCmd(app))
	cmd.AddCommand(newItemsRemoveCmd(app))
	cmd.AddCommand(newItemsSearchCmd(app))
	cmd.AddCommand(newItemsTopCmd(app))
	cmd.AddCommand(newItemsRecentCmd(app))
	cmd.AddCommand(newItemsOpenRecordCmd(app))
	cmd.AddCommand(newItemsTreeCmd(app))

	return cmd
}

// itemFields are the flags shared by add and edit
type itemFields struct {
	itemType     string
	url          string
	command      string
	terminalType string
	description  string
	notes        string
	tags         string
}

func (f *itemFields) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.itemType, "type", "t", "", "item type (Folder, WebUrl, FilePath, FolderPath, Application, WindowsStoreApp, SystemLocation, Notes, Terminal)")
	cmd.Flags().StringVar(&f.url, "url", "", "url, path or application target")
	cmd.Flags().StringVar(&f.command, "command", "", "command line (Terminal items)")
	cmd.Flags().StringVar(&f.terminalType, "terminal", "", "terminal shell (Cmd, PowerShell, Pwsh, GitBash, WSL)")
	cmd.Flags().StringVar(&f.description, "description", "", "description")
	cmd.Flags().StringVar(&f.notes, "notes", "", "notes")
	cmd.Flags().StringVar(&f.tags, "tags", "", "comma-separated tags")
}

func parseTerminal(s string) (*models.TerminalType, error) {
	for _, tt := range models.AllTerminalTypes {
		if strings.EqualFold(string(tt), strings.TrimSpace(s)) {
			return &tt, nil
		}
	}
	return nil, fmt.Errorf("unknown terminal type %q", s)
}

func newItemsAddCmd(app *App) *cobra.Command {
	var fields itemFields
	var parentID string
	var position int

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create an item",
		Args:  cobra.ExactArgs(1),
		RunE: app.withServices(func(cmd *cobra.Command, args []string, svc *hierarchy.Services) error {
			itemType := models.ItemTypeFolder
			if fields.itemType != "" {
				t, err := models.ParseItemType(fields.itemType)
				if err != nil {
					return err
				}
				itemType = t
			} else if fields.url != "" {
				itemType = models.ItemTypeWebURL
			}

			req := &hierSvc.CreateItemRequest{
				Name:        args[0],
				ItemType:    itemType,
				URL:         fields.url,
				Command:     fields.command,
				Description: fields.description,
				Notes:       fields.notes,
			}
			if fields.terminalType != "" {
				tt, err := parseTerminal(fields.terminalType)
				if err != nil {
					return err
				}
				req.TerminalType = tt
			}
			if parentID != "" {
				req.ParentID = &parentID
			}
			if position > 0 {
				req.SortOrder = &position
			}
			if fields.tags != "" {
				req.Tags = []string{fields.tags}
			}

			item, err := svc.Items.CreateItem(cmd.Context(), req)
			if err != nil {
				return err
			}
			return app.writeItem(cmd, item)
		}),
	}

	fields.register(cmd)
	cmd.Flags().StringVarP(&parentID, "parent", "p", "", "parent item id (default: root)")
	cmd.Flags().IntVar(&position, "position", 0, "1-based position among siblings (default: append)")
	return cmd
}

func newItemsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one item with its breadcrumb path",
		Args:  cobra.ExactArgs(1),
		RunE: app.withServices(func(cmd *cobra.Command, args []string, svc *hierarchy.Services) error {
			item, err := svc.Items.GetItem(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			path, err := svc.Tree.GetAncestors(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if app.format() == "json" {
				return writeJSON(app.out(cmd), map[string]interface{}{"item": item, "path": path})
			}
			names := make([]string, 0, len(path)+1)
			for _, p := range path {
				names = append(names, p.Name)
			}
			names = append(names, item.Name)
			fmt.Fprintln(app.out(cmd), strings.Join(names, " / "))
			writeItemDetail(app.out(cmd), item)
			return nil
		}),
	}
}

func newItemsListCmd(app *App) *cobra.Command {
	var parentID string

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List root items, or the children of --parent",
		Args:  cobra.NoArgs,
		RunE: app.withServices(func(cmd *cobra.Command, args []string, svc *hierarchy.Services) error {
			var items []models.Item
			var err error
			if parentID != "" {
				items, err = svc.Items.GetChildren(cmd.Context(), parentID)
			} else {
				items, err = svc.Items.GetRootItems(cmd.Context())
			}
			if err != nil {
				return err
			}
			return app.writeItems(cmd, items)
		}),
	}

	cmd.Flags().StringVarP(&parentID, "parent", "p", "", "parent item id")
	return cmd
}

func newItemsEditCmd(app *App) *cobra.Command {
	var fields itemFields
	var name string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change item fields; only the given flags are applied",
		Args:  cobra.ExactArgs(1),
		RunE: app.withServices(func(cmd *cobra.Command, args []string, svc *hierarchy.Services) error {
			req := &hierSvc.UpdateItemRequest{}
			changed := cmd.Flags().Changed

			if changed("name") {
				req.Name = &name
			}
			if changed("type") {
				t, err := models.ParseItemType(fields.itemType)
				if err != nil {
					return err
				}
				req.ItemType = &t
			}
			if changed("url") {
				req.URL = &fields.url
			}
			if changed("command") {
				req.Command = &fields.command
			}
			if changed("terminal") {
				tt, err := parseTerminal(fields.terminalType)
				if err != nil {
					return err
				}
				req.TerminalType = tt
			}
			if changed("description") {
				req.Description = &fields.description
			}
			if changed("notes") {
				req.Notes = &fields.notes
			}
			if changed("tags") {
				labels := []string{fields.tags}
				req.Tags = &labels
			}

			item, err := svc.Items.UpdateItem(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return app.writeItem(cmd, item)
		}),
	}

	fields.register(cmd)
	cmd.Flags().StringVar(&name, "name", "", "new name")
	return cmd
}

func newItemsMoveCmd(app *App) *cobra.Command {
	var parentID string
	var toRoot bool
	var position int

	cmd := &cobra.Command{
		Use:   "mv <id>",
		Short: "Move an item under --parent (or --root) at --position",
		Args:  cobra.ExactArgs(1),
		RunE: app.withServices(func(cmd *cobra.Command, args []string, svc *hierarchy.Services) error {
			if toRoot && parentID != "" {
				return fmt.Errorf("--root and --parent are mutually exclusive")
			}

			var target *string
			switch {
			case parentID != "":
				target = &parentID
			case !toRoot:
				current, err := svc.Items.GetItem(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				target = current.ParentID
			}

			item, err := svc.Tree.MoveItem(cmd.Context(), args[0], target, position)
			if err != nil {
				return err
			}
			return app.writeItem(cmd, item)
		}),
	}

	cmd.Flags().StringVarP(&parentID, "parent", "p", "", "new parent id (default: keep current parent)")
	cmd.Flags().BoolVar(&toRoot, "root", false, "move to root level")
	cmd.Flags().IntVar(&position, "position", 0, "1-based position among siblings (default: append)")
	return cmd
}

func newItemsRemoveCmd(app *App) *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an item (--recursive deletes its whole subtree)",
		Args:  cobra.ExactArgs(1),
		RunE: app.withServices(func(cmd *cobra.Command, args []string, svc *hierarchy.Services) error {
			if !recursive {
				if err := svc.Tree.DeleteItem(cmd.Context(), args[0]); err != nil {
					return err
				}
				if app.format() == "json" {
					return writeJSON(app.out(cmd), map[string]interface{}{"deleted": []string{args[0]}})
				}
				fmt.Fprintf(app.out(cmd), "deleted %s\n", args[0])
				return nil
			}

			removed, err := svc.Tree.DeleteItemRecursive(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if app.format() == "json" {
				return writeJSON(app.out(cmd), map[string]interface{}{"deleted": removed})
			}
			for _, r := range removed {
				fmt.Fprintf(app.out(cmd), "deleted %s  %s (%s)\n", r.ID, r.Name, r.ItemType)
			}
			return nil
		}),
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "delete descendants too")
	return cmd
}

func newItemsSearchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Search names, descriptions, urls, notes and tags",
		Args:  cobra.MinimumNArgs(1),
		RunE: app.withServices(func(cmd *cobra.Command, args []string, svc *hierarchy.Services) error {
			items, err := svc.Items.SearchItems(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return app.writeItems(cmd, items)
		}),
	}
}

func newItemsTopCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "List the most opened items",
		Args:  cobra.NoArgs,
		RunE: app.withServices(func(cmd *cobra.Command, args []string, svc *hierarchy.Services) error {
			items, err := svc.Items.GetMostAccessed(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return app.writeItems(cmd, items)
		}),
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", config.DefaultListLimit, "number of items")
	return cmd
}

func newItemsRecentCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recently opened items",
		Args:  cobra.NoArgs,
		RunE: app.withServices(func(cmd *cobra.Command, args []string, svc *hierarchy.Services) error {
			items, err := svc.Items.GetRecentlyAccessed(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return app.writeItems(cmd, items)
		}),
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", config.DefaultListLimit, "number of items")
	return cmd
}

func newItemsOpenRecordCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "open-record <id>",
		Short: "Record that an item was opened (updates access statistics)",
		Args:  cobra.ExactArgs(1),
		RunE: app.withServices(func(cmd *cobra.Command, args []string, svc *hierarchy.Services) error {
			item, err := svc.Items.RecordAccess(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return app.writeItem(cmd, item)
		}),
	}
}

func newItemsTreeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the whole hierarchy",
		Args:  cobra.NoArgs,
		RunE: app.withServices(func(cmd *cobra.Command, args []string, svc *hierarchy.Services) error {
			roots, err := svc.Tree.GetTree(cmd.Context())
			if err != nil {
				return err
			}
			if app.format() == "json" {
				return writeJSON(app.out(cmd), roots)
			}
			writeTree(app.out(cmd), roots)
			return nil
		}),
	}
}
