package handler

import (
	"errors"
	"net/http"

	"github.com/codelogn/WinWork-sub000/internal/domain"
	"github.com/codelogn/WinWork-sub000/internal/httputil"
)

// handleError converts domain errors to RFC 7807 responses
func handleError(w http.ResponseWriter, err error) {
	var (
		notEmptyErr *domain.FolderNotEmptyError
		cycleErr    *domain.CircularReferenceError
		conflictErr *domain.ConflictError
		formatErr   *domain.ImportFormatError
	)

	switch {
	case errors.As(err, &notEmptyErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, notEmptyErr.Error(), map[string]interface{}{
			"item_id":  notEmptyErr.ItemID,
			"children": notEmptyErr.Children,
		})
	case errors.As(err, &cycleErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, cycleErr.Error(), map[string]interface{}{
			"item_id":          cycleErr.ItemID,
			"target_parent_id": cycleErr.TargetParentID,
			"ancestor_id":      cycleErr.AncestorID,
		})
	case errors.As(err, &formatErr):
		extras := map[string]interface{}{}
		if formatErr.Field != "" {
			extras["field"] = formatErr.Field
		}
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, formatErr.Error(), extras)
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), map[string]interface{}{
			"resource_type": conflictErr.ResourceType,
			"resource_id":   conflictErr.ResourceID,
		})
	case errors.Is(err, httputil.ErrBodyTooLarge):
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
