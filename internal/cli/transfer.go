package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codelogn/WinWork-sub000/internal/config"
	models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"
	"github.com/codelogn/WinWork-sub000/internal/service/hierarchy"
)

func newImportCmd(app *App) *cobra.Command {
	var opts models.ImportOptions
	var policy string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Merge a WinWork JSON document into the store",
		Args:  cobra.ExactArgs(1),
		RunE: app.withServices(func(cmd *cobra.Command, args []string, svc *hierarchy.Services) error {
			p, err := models.ParseDuplicatePolicy(policy)
			if err != nil {
				return err
			}
			opts.DuplicatePolicy = p

			info, err := os.Stat(args[0])
			if err != nil {
				return err
			}
			if info.Size() > config.MaxImportBytes {
				return fmt.Errorf("%s is larger than %d bytes", args[0], config.MaxImportBytes)
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			summary, err := svc.Import.ImportDocument(cmd.Context(), data, opts)
			if err != nil {
				return err
			}

			if app.format() == "json" {
				return writeJSON(app.out(cmd), summary)
			}
			w := app.out(cmd)
			fmt.Fprintf(w, "items: %d created, %d updated, %d skipped, %d failed\n",
				summary.ItemsCreated, summary.ItemsUpdated, summary.ItemsSkipped, summary.ItemsFailed)
			fmt.Fprintf(w, "tags:  %d created, %d updated, %d skipped\n",
				summary.TagsCreated, summary.TagsUpdated, summary.TagsSkipped)
			if summary.ContainerID != nil {
				fmt.Fprintf(w, "container: %s\n", *summary.ContainerID)
			}
			for _, orphan := range summary.Orphans {
				fmt.Fprintf(w, "orphan: %s (parent not in document)\n", orphan)
			}
			for _, problem := range summary.Errors {
				fmt.Fprintf(w, "error: record %d %s: %s\n", problem.Index, problem.OriginalID, problem.Error)
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&opts.CreateContainer, "container", false, "put top-level records under a new folder")
	cmd.Flags().StringVar(&opts.ContainerName, "container-name", "", "name of that folder (default: dated)")
	cmd.Flags().StringVar(&policy, "policy", "skip", "duplicate policy (skip|rename|update)")
	cmd.Flags().BoolVar(&opts.MatchItemsByName, "match-names", false, "apply the policy to same-named siblings")
	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the whole store as a JSON document (stdout when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: app.withServices(func(cmd *cobra.Command, args []string, svc *hierarchy.Services) error {
			data, err := svc.Export.ExportDocument(cmd.Context())
			if err != nil {
				return err
			}
			if len(args) == 0 {
				_, err = app.out(cmd).Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported to %s\n", args[0])
			return nil
		}),
	}
}
