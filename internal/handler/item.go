package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/codelogn/WinWork-sub000/internal/config"
	hierSvc "github.com/codelogn/WinWork-sub000/internal/domain/services/hierarchy"
	"github.com/codelogn/WinWork-sub000/internal/httputil"
)

// ItemHandler handles item HTTP requests
type ItemHandler struct {
	itemService hierSvc.ItemService
	treeService hierSvc.TreeService
	tagService  hierSvc.TagService
	logger      *slog.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(itemService hierSvc.ItemService, treeService hierSvc.TreeService, tagService hierSvc.TagService, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{
		itemService: itemService,
		treeService: treeService,
		tagService:  tagService,
		logger:      logger,
	}
}

// setTagsRequest replaces an item's tag set
type setTagsRequest struct {
	Tags []string `json:"tags"`
}

// ListItems lists root items, or the children of ?parent_id=
// GET /api/items
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	if parentID := strings.TrimSpace(r.URL.Query().Get("parent_id")); parentID != "" {
		items, err := h.itemService.GetChildren(r.Context(), parentID)
		if err != nil {
			handleError(w, err)
			return
		}
		httputil.RespondJSON(w, http.StatusOK, items)
		return
	}

	items, err := h.itemService.GetRootItems(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, items)
}

// CreateItem creates a new item
// POST /api/items
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req hierSvc.CreateItemRequest
	if !parseBody(w, r, &req) {
		return
	}

	item, err := h.itemService.CreateItem(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, item)
}

// GetItem retrieves an item with its tags
// GET /api/items/{id}
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Item")
	if !ok {
		return
	}

	item, err := h.itemService.GetItem(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, item)
}

// UpdateItem applies a partial update
// PATCH /api/items/{id}
func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Item")
	if !ok {
		return
	}

	var req hierSvc.UpdateItemRequest
	if !parseBody(w, r, &req) {
		return
	}

	item, err := h.itemService.UpdateItem(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, item)
}

// DeleteItem deletes a leaf item, or a whole subtree with ?recursive=true
// DELETE /api/items/{id}
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Item")
	if !ok {
		return
	}

	recursive, err := httputil.QueryBool(r, "recursive")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !recursive {
		if err := h.treeService.DeleteItem(r.Context(), id); err != nil {
			handleError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	removed, err := h.treeService.DeleteItemRecursive(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"deleted": removed})
}

// MoveItem reparents and/or reorders an item
// POST /api/items/{id}/move
func (h *ItemHandler) MoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Item")
	if !ok {
		return
	}

	var req hierSvc.MoveItemRequest
	if !parseBody(w, r, &req) {
		return
	}

	item, err := h.treeService.MoveItem(r.Context(), id, req.ParentID, req.SortOrder)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, item)
}

// ListChildren lists the direct children of an item
// GET /api/items/{id}/children
func (h *ItemHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Item")
	if !ok {
		return
	}

	items, err := h.itemService.GetChildren(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, items)
}

// GetAncestors returns the breadcrumb path from the root down to the item's parent
// GET /api/items/{id}/ancestors
func (h *ItemHandler) GetAncestors(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Item")
	if !ok {
		return
	}

	path, err := h.treeService.GetAncestors(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, path)
}

// GetTags lists an item's tags
// GET /api/items/{id}/tags
func (h *ItemHandler) GetTags(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Item")
	if !ok {
		return
	}

	tags, err := h.tagService.GetTagsForItem(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tags)
}

// SetTags makes the item's tags exactly the given labels
// PUT /api/items/{id}/tags
func (h *ItemHandler) SetTags(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Item")
	if !ok {
		return
	}

	var req setTagsRequest
	if !parseBody(w, r, &req) {
		return
	}

	tags, err := h.tagService.SetTagsForItem(r.Context(), id, req.Tags)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tags)
}

// RecordAccess is called by the client after it successfully opened an item
// POST /api/items/{id}/access
func (h *ItemHandler) RecordAccess(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Item")
	if !ok {
		return
	}

	item, err := h.itemService.RecordAccess(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, item)
}

// SearchItems matches the q parameter against names, text fields and tags
// GET /api/items/search?q=
func (h *ItemHandler) SearchItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.itemService.SearchItems(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, items)
}

// MostAccessed lists the most opened items
// GET /api/items/most-accessed?limit=
func (h *ItemHandler) MostAccessed(w http.ResponseWriter, r *http.Request) {
	limit, err := httputil.QueryInt(r, "limit", config.DefaultListLimit)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.itemService.GetMostAccessed(r.Context(), limit)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, items)
}

// RecentlyAccessed lists the most recently opened items
// GET /api/items/recent?limit=
func (h *ItemHandler) RecentlyAccessed(w http.ResponseWriter, r *http.Request) {
	limit, err := httputil.QueryInt(r, "limit", config.DefaultListLimit)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.itemService.GetRecentlyAccessed(r.Context(), limit)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, items)
}
