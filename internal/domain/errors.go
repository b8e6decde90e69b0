package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Is implementations so typed errors match their sentinels
func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("already exists")
	ErrValidation        = errors.New("validation failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrFolderNotEmpty    = errors.New("folder not empty")
	ErrCircularReference = errors.New("circular reference")
	ErrImportFormat      = errors.New("invalid import document")
)

// NewNotFound builds a NotFoundError for a resource kind and id.
func NewNotFound(kind, id string) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf("%s %s not found", kind, id)}
}

// NewValidation builds a ValidationError with a formatted message.
func NewValidation(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (item, tag)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// BlockingChild identifies a direct child that prevents a simple delete.
type BlockingChild struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FolderNotEmptyError is returned when a simple delete targets an item with children.
type FolderNotEmptyError struct {
	ItemID   string
	Name     string
	Children []BlockingChild
}

func (e *FolderNotEmptyError) Error() string {
	names := make([]string, 0, len(e.Children))
	for _, c := range e.Children {
		names = append(names, c.Name)
	}
	return fmt.Sprintf("item %q has %d child item(s): %s", e.Name, len(e.Children), strings.Join(names, ", "))
}

func (e *FolderNotEmptyError) StatusCode() int { return http.StatusConflict }

func (e *FolderNotEmptyError) Is(target error) bool { return target == ErrFolderNotEmpty }

// CircularReferenceError is returned when a move would make an item its own ancestor.
// AncestorID is the item found on the target's ancestor chain (the moved item itself).
type CircularReferenceError struct {
	ItemID         string
	TargetParentID string
	AncestorID     string
}

func (e *CircularReferenceError) Error() string {
	if e.ItemID == e.TargetParentID {
		return fmt.Sprintf("cannot move item %s into itself", e.ItemID)
	}
	return fmt.Sprintf("cannot move item %s under its own descendant %s", e.ItemID, e.TargetParentID)
}

func (e *CircularReferenceError) StatusCode() int { return http.StatusConflict }

func (e *CircularReferenceError) Is(target error) bool { return target == ErrCircularReference }

// ImportFormatError is returned when an import document is missing required structure.
type ImportFormatError struct {
	Field   string
	Message string
}

func (e *ImportFormatError) Error() string {
	if e.Field == "" {
		return "invalid import document: " + e.Message
	}
	return fmt.Sprintf("invalid import document: %s: %s", e.Field, e.Message)
}

func (e *ImportFormatError) StatusCode() int { return http.StatusBadRequest }

func (e *ImportFormatError) Is(target error) bool { return target == ErrImportFormat }
