package hierarchy

import (
	"log/slog"

	"github.com/codelogn/WinWork-sub000/internal/catalog"
	"github.com/codelogn/WinWork-sub000/internal/domain/repositories"
	hierRepo "github.com/codelogn/WinWork-sub000/internal/domain/repositories/hierarchy"
	hierSvc "github.com/codelogn/WinWork-sub000/internal/domain/services/hierarchy"
)

// Dependencies are the collaborators shared by every hierarchy service
type Dependencies struct {
	ItemRepo  hierRepo.ItemRepository
	TagRepo   hierRepo.TagRepository
	TxManager repositories.TransactionManager
	Catalog   *catalog.Registry
	// Palette overrides the catalog palette when non-empty
	Palette []string
	Logger  *slog.Logger
}

// Services groups the hierarchy services
type Services struct {
	Items  hierSvc.ItemService
	Tree   hierSvc.TreeService
	Tags   hierSvc.TagService
	Import hierSvc.ImportService
	Export hierSvc.ExportService
}

// NewServices wires the hierarchy services together
func NewServices(deps Dependencies) *Services {
	palette := deps.Palette
	if len(palette) == 0 && deps.Catalog != nil {
		palette = deps.Catalog.Palette()
	}

	sortOrder := NewSortOrderManager(deps.ItemRepo, deps.Logger)
	tree := NewTreeService(deps.ItemRepo, deps.TagRepo, sortOrder, deps.TxManager, deps.Logger)
	tags := NewTagService(deps.TagRepo, deps.ItemRepo, deps.TxManager, palette, deps.Logger)
	items := NewItemService(deps.ItemRepo, deps.TagRepo, sortOrder, tree, tags, deps.TxManager, deps.Logger)

	return &Services{
		Items:  items,
		Tree:   tree,
		Tags:   tags,
		Import: NewImportService(deps.ItemRepo, deps.TagRepo, items, tree, tags, deps.TxManager, deps.Catalog, deps.Logger),
		Export: NewExportService(deps.TagRepo, tree, deps.Logger),
	}
}
