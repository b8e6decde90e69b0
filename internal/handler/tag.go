package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"
	hierSvc "github.com/codelogn/WinWork-sub000/internal/domain/services/hierarchy"
	"github.com/codelogn/WinWork-sub000/internal/httputil"
)

// TagHandler handles tag HTTP requests
type TagHandler struct {
	tagService hierSvc.TagService
	logger     *slog.Logger
}

// NewTagHandler creates a new tag handler
func NewTagHandler(tagService hierSvc.TagService, logger *slog.Logger) *TagHandler {
	return &TagHandler{
		tagService: tagService,
		logger:     logger,
	}
}

// ListTags lists every tag
// GET /api/tags
func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tagService.ListTags(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tags)
}

// CreateTag creates a tag
// POST /api/tags
// Returns 201 if created, 409 with the existing tag if the name is taken
func (h *TagHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req hierSvc.CreateTagRequest
	if !parseBody(w, r, &req) {
		return
	}

	tag, err := h.tagService.CreateTag(r.Context(), &req)
	if err != nil {
		HandleCreateConflict(w, err, func(id string) (*models.Tag, error) {
			return h.findTag(r, id)
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, tag)
}

// UpdateTag renames or recolors a tag
// PATCH /api/tags/{id}
func (h *TagHandler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Tag")
	if !ok {
		return
	}

	var req hierSvc.UpdateTagRequest
	if !parseBody(w, r, &req) {
		return
	}

	tag, err := h.tagService.UpdateTag(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tag)
}

// DeleteTag deletes a tag; ?force=true also detaches it from its items
// DELETE /api/tags/{id}
func (h *TagHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Tag")
	if !ok {
		return
	}

	force, err := httputil.QueryBool(r, "force")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.tagService.DeleteTag(r.Context(), id, force); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TagHandler) findTag(r *http.Request, id string) (*models.Tag, error) {
	tags, err := h.tagService.ListTags(r.Context())
	if err != nil {
		return nil, err
	}
	for i := range tags {
		if tags[i].ID == id {
			return &tags[i], nil
		}
	}
	return nil, fmt.Errorf("tag %s vanished during conflict lookup", id)
}
