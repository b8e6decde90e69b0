package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/codelogn/WinWork-sub000/internal/config"
	models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"
	hierSvc "github.com/codelogn/WinWork-sub000/internal/domain/services/hierarchy"
	"github.com/codelogn/WinWork-sub000/internal/httputil"
)

// TransferHandler handles document import and export.
type TransferHandler struct {
	importService hierSvc.ImportService
	exportService hierSvc.ExportService
	logger        *slog.Logger
}

// NewTransferHandler creates a new import/export handler
func NewTransferHandler(importService hierSvc.ImportService, exportService hierSvc.ExportService, logger *slog.Logger) *TransferHandler {
	return &TransferHandler{
		importService: importService,
		exportService: exportService,
		logger:        logger,
	}
}

// ImportResponse wraps the import summary
type ImportResponse struct {
	Success bool                  `json:"success"`
	Summary *models.ImportSummary `json:"summary"`
}

// Import merges a JSON document (request body) into the store.
// POST /api/import
//
// Query parameters:
//   - create_container: wrap top-level records in a new folder
//   - container_name: name for that folder
//   - duplicate_policy: Skip (default), Rename or UpdateExisting
//   - match_items_by_name: apply the policy to same-named siblings
func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	opts, err := importOptionsFromQuery(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := httputil.ReadBody(w, r, config.MaxImportBytes)
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("starting import",
		"bytes", len(data),
		"duplicate_policy", opts.DuplicatePolicy,
		"create_container", opts.CreateContainer,
	)

	summary, err := h.importService.ImportDocument(r.Context(), data, opts)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, ImportResponse{
		Success: summary.ItemsFailed == 0 && len(summary.Errors) == 0,
		Summary: summary,
	})
}

// Export downloads the whole store as a document
// GET /api/export
func (h *TransferHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.exportService.ExportDocument(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	filename := fmt.Sprintf("winwork-export-%s.json", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func importOptionsFromQuery(r *http.Request) (models.ImportOptions, error) {
	var opts models.ImportOptions
	var err error

	if opts.CreateContainer, err = httputil.QueryBool(r, "create_container"); err != nil {
		return opts, err
	}
	if opts.MatchItemsByName, err = httputil.QueryBool(r, "match_items_by_name"); err != nil {
		return opts, err
	}
	if opts.DuplicatePolicy, err = models.ParseDuplicatePolicy(r.URL.Query().Get("duplicate_policy")); err != nil {
		return opts, err
	}
	opts.ContainerName = r.URL.Query().Get("container_name")
	return opts, nil
}
