package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/codelogn/WinWork-sub000/internal/config"
	"github.com/codelogn/WinWork-sub000/internal/service/hierarchy"
	"github.com/codelogn/WinWork-sub000/internal/storage"
)

// App carries global flags and the merged settings
type App struct {
	cfgFile string
	verbose bool
	v       *viper.Viper
	logger  *slog.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{v: viper.New()}

	cmd := &cobra.Command{
		Use:          "winwork",
		Short:        "Manage the WinWork launcher hierarchy from the command line",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Create a folder and a link inside it
  winwork items add Work --type Folder
  winwork items add "Go docs" --type WebUrl --url https://go.dev/doc --parent <folder-id> --tags dev,reference

  # Show the whole tree
  winwork items tree

  # Move an item to the top of the root level
  winwork items mv <id> --root --position 1
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.initConfig(cmd)
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&app.cfgFile, "config", "", "config file (default is $HOME/.config/winwork/config.yaml)")
	flags.String("db", "", "SQLite database path")
	flags.String("driver", config.DriverSQLite, "storage driver (sqlite|postgres)")
	flags.String("database-url", "", "postgres connection string")
	flags.String("table-prefix", "", "table name prefix")
	flags.String("format", "text", "output format (text|json)")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "debug logging on stderr")

	_ = app.v.BindPFlag("db", flags.Lookup("db"))
	_ = app.v.BindPFlag("driver", flags.Lookup("driver"))
	_ = app.v.BindPFlag("database_url", flags.Lookup("database-url"))
	_ = app.v.BindPFlag("table_prefix", flags.Lookup("table-prefix"))
	_ = app.v.BindPFlag("format", flags.Lookup("format"))

	cmd.AddCommand(newItemsCmd(app))
	cmd.AddCommand(newTagsCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newExportCmd(app))

	return cmd
}

// initConfig layers flags over WINWORK_* env vars over the config file
func (a *App) initConfig(cmd *cobra.Command) error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		a.v.AddConfigPath(filepath.Join(home, ".config", "winwork"))
		a.v.SetConfigType("yaml")
		a.v.SetConfigName("config")
	}

	a.v.SetEnvPrefix("WINWORK")
	a.v.AutomaticEnv()
	a.v.SetDefault("db", config.DefaultSQLitePath())
	a.v.SetDefault("driver", config.DriverSQLite)
	a.v.SetDefault("format", "text")

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	switch a.format() {
	case "text", "json":
	default:
		return fmt.Errorf("unknown format %q (want text or json)", a.format())
	}
	return nil
}

// Config builds the storage configuration from the merged settings
func (a *App) Config() *config.Config {
	return &config.Config{
		DatabaseDriver: strings.ToLower(a.v.GetString("driver")),
		DatabaseURL:    a.v.GetString("database_url"),
		SQLitePath:     a.v.GetString("db"),
		TablePrefix:    a.v.GetString("table_prefix"),
		TagPalette:     a.palette(),
	}
}

// palette accepts a YAML list or a comma-separated string
func (a *App) palette() []string {
	colors := a.v.GetStringSlice("tag_palette")
	if len(colors) == 1 {
		return config.SplitList(colors[0])
	}
	return colors
}

// withServices opens the backend for one command run and closes it afterwards
func (a *App) withServices(fn func(cmd *cobra.Command, args []string, svc *hierarchy.Services) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
			cmd.SetContext(ctx)
		}
		backend, err := storage.Open(ctx, a.Config(), a.logger)
		if err != nil {
			return err
		}
		defer backend.Close()
		return fn(cmd, args, backend.Services)
	}
}

func (a *App) format() string {
	return strings.ToLower(a.v.GetString("format"))
}

func (a *App) out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
