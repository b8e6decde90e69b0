package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codelogn/WinWork-sub000/internal/service/hierarchy"
)

func newTagsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Tag commands",
	}

	cmd.AddCommand(newTagsSetCmd(app))
	cmd.AddCommand(newTagsListCmd(app))
	cmd.AddCommand(newTagsRemoveCmd(app))

	return cmd
}

func newTagsSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <item-id> [labels...]",
		Short: "Replace an item's tags (labels may be comma-separated; none clears)",
		Args:  cobra.MinimumNArgs(1),
		RunE: app.withServices(func(cmd *cobra.Command, args []string, svc *hierarchy.Services) error {
			tags, err := svc.Tags.SetTagsForItem(cmd.Context(), args[0], args[1:])
			if err != nil {
				return err
			}
			return app.writeTags(cmd, tags)
		}),
	}
}

func newTagsListCmd(app *App) *cobra.Command {
	var itemID string

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List all tags, or the tags of --item",
		Args:  cobra.NoArgs,
		RunE: app.withServices(func(cmd *cobra.Command, args []string, svc *hierarchy.Services) error {
			if itemID != "" {
				tags, err := svc.Tags.GetTagsForItem(cmd.Context(), itemID)
				if err != nil {
					return err
				}
				return app.writeTags(cmd, tags)
			}
			tags, err := svc.Tags.ListTags(cmd.Context())
			if err != nil {
				return err
			}
			return app.writeTags(cmd, tags)
		}),
	}

	cmd.Flags().StringVar(&itemID, "item", "", "item id")
	return cmd
}

func newTagsRemoveCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "rm <tag-id>",
		Short: "Delete a tag (--force detaches it from its items first)",
		Args:  cobra.ExactArgs(1),
		RunE: app.withServices(func(cmd *cobra.Command, args []string, svc *hierarchy.Services) error {
			if err := svc.Tags.DeleteTag(cmd.Context(), args[0], force); err != nil {
				return err
			}
			if app.format() == "json" {
				return writeJSON(app.out(cmd), map[string]string{"deleted": args[0]})
			}
			fmt.Fprintf(app.out(cmd), "deleted tag %s\n", args[0])
			return nil
		}),
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "delete even while items use it")
	return cmd
}
