package main

import (
	"context"
	_ "embed"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/codelogn/WinWork-sub000/internal/config"
	models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"
	"github.com/codelogn/WinWork-sub000/internal/service/hierarchy"
	"github.com/codelogn/WinWork-sub000/internal/storage"
)

//go:embed demo.json
var demoDocument []byte

func main() {
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed items")
	clearData := flag.Bool("clear-data", false, "Delete all items and tags (keep schema)")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *clearData {
		log.Fatalf("🚫 BLOCKED: Cannot run --clear-data in production environment")
	}

	logger, closeLog, err := config.NewLogger(cfg, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	switch {
	case *clearData:
		log.Printf("🧹 Clearing data only (environment: %s, driver: %s, prefix: %s)", cfg.Environment, cfg.DatabaseDriver, cfg.TablePrefix)
	case *schemaOnly:
		log.Printf("🏗️  Setting up schema only (environment: %s, driver: %s, prefix: %s)", cfg.Environment, cfg.DatabaseDriver, cfg.TablePrefix)
	default:
		log.Printf("🌱 Seeding database (environment: %s, driver: %s, prefix: %s)", cfg.Environment, cfg.DatabaseDriver, cfg.TablePrefix)
	}

	// Opening the backend runs the schema migration
	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer backend.Close()
	log.Println("✅ Schema ready")

	if *schemaOnly {
		return
	}

	log.Println("⚠️  Clearing existing items and tags...")
	if err := clearAll(ctx, backend.Services); err != nil {
		log.Fatalf("Failed to clear data: %v", err)
	}
	if *clearData {
		log.Println("✅ Data cleared successfully")
		return
	}

	log.Println("📝 Importing demo tree...")
	summary, err := backend.Services.Import.ImportDocument(ctx, demoDocument, models.ImportOptions{
		DuplicatePolicy: models.DuplicateSkip,
	})
	if err != nil {
		log.Fatalf("Failed to import demo tree: %v", err)
	}
	for _, problem := range summary.Errors {
		log.Printf("❌ Record %d (%s): %s", problem.Index, problem.OriginalID, problem.Error)
	}

	log.Printf("🎉 Seeding complete! %d items, %d tags", summary.ItemsCreated, summary.TagsCreated)
}

// clearAll removes every root subtree and every tag
func clearAll(ctx context.Context, services *hierarchy.Services) error {
	roots, err := services.Items.GetRootItems(ctx)
	if err != nil {
		return err
	}
	for _, root := range roots {
		removed, err := services.Tree.DeleteItemRecursive(ctx, root.ID)
		if err != nil {
			return err
		}
		log.Printf("🗑️  Removed %q (%d items)", root.Name, len(removed))
	}

	tags, err := services.Tags.ListTags(ctx)
	if err != nil {
		return err
	}
	for _, tag := range tags {
		if err := services.Tags.DeleteTag(ctx, tag.ID, true); err != nil {
			return err
		}
	}
	return nil
}
