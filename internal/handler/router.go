package handler

import (
	"log/slog"
	"net/http"

	"github.com/codelogn/WinWork-sub000/internal/service/hierarchy"
)

// NewRouter registers every API route on a new mux (Go 1.22+ patterns)
func NewRouter(services *hierarchy.Services, logger *slog.Logger) *http.ServeMux {
	items := NewItemHandler(services.Items, services.Tree, services.Tags, logger)
	tags := NewTagHandler(services.Tags, logger)
	tree := NewTreeHandler(services.Tree, logger)
	transfer := NewTransferHandler(services.Import, services.Export, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", HealthCheck)

	// Item routes (fixed segments take precedence over {id})
	mux.HandleFunc("GET /api/items", items.ListItems)
	mux.HandleFunc("POST /api/items", items.CreateItem)
	mux.HandleFunc("GET /api/items/search", items.SearchItems)
	mux.HandleFunc("GET /api/items/most-accessed", items.MostAccessed)
	mux.HandleFunc("GET /api/items/recent", items.RecentlyAccessed)
	mux.HandleFunc("GET /api/items/{id}", items.GetItem)
	mux.HandleFunc("PATCH /api/items/{id}", items.UpdateItem)
	mux.HandleFunc("DELETE /api/items/{id}", items.DeleteItem)
	mux.HandleFunc("POST /api/items/{id}/move", items.MoveItem)
	mux.HandleFunc("GET /api/items/{id}/children", items.ListChildren)
	mux.HandleFunc("GET /api/items/{id}/ancestors", items.GetAncestors)
	mux.HandleFunc("GET /api/items/{id}/tags", items.GetTags)
	mux.HandleFunc("PUT /api/items/{id}/tags", items.SetTags)
	mux.HandleFunc("POST /api/items/{id}/access", items.RecordAccess)

	mux.HandleFunc("GET /api/tree", tree.GetTree)

	// Tag routes
	mux.HandleFunc("GET /api/tags", tags.ListTags)
	mux.HandleFunc("POST /api/tags", tags.CreateTag)
	mux.HandleFunc("PATCH /api/tags/{id}", tags.UpdateTag)
	mux.HandleFunc("DELETE /api/tags/{id}", tags.DeleteTag)

	// Document transfer
	mux.HandleFunc("POST /api/import", transfer.Import)
	mux.HandleFunc("GET /api/export", transfer.Export)

	return mux
}
