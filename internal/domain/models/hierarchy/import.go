package hierarchy

import (
	"fmt"
	"strings"
)

// DuplicatePolicy decides what happens when an imported name collides with an existing one.
type DuplicatePolicy string

const (
	DuplicateSkip           DuplicatePolicy = "Skip"
	DuplicateRename         DuplicatePolicy = "Rename"
	DuplicateUpdateExisting DuplicatePolicy = "UpdateExisting"
)

// ParseDuplicatePolicy resolves a policy name (case-insensitive); empty means Skip.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip":
		return DuplicateSkip, nil
	case "rename":
		return DuplicateRename, nil
	case "updateexisting", "update-existing", "update":
		return DuplicateUpdateExisting, nil
	}
	return "", fmt.Errorf("unknown duplicate policy %q", s)
}

// ImportOptions controls how a document is merged into the store.
type ImportOptions struct {
	// CreateContainer wraps every top-level imported item under one new Folder.
	CreateContainer bool `json:"createContainer"`
	// ContainerName names the synthetic folder; a dated default is used when empty.
	ContainerName   string          `json:"containerName,omitempty"`
	DuplicatePolicy DuplicatePolicy `json:"duplicatePolicy"`
	// MatchItemsByName applies DuplicatePolicy to items whose name collides with a
	// sibling under the same live parent.
	MatchItemsByName bool `json:"matchItemsByName"`
}

// Import actions recorded per item.
const (
	ImportActionCreated = "created"
	ImportActionUpdated = "updated"
	ImportActionSkipped = "skipped"
	ImportActionRenamed = "renamed"
)

// ImportSummary reports the outcome of an import.
type ImportSummary struct {
	ItemsCreated int `json:"itemsCreated"`
	ItemsUpdated int `json:"itemsUpdated"`
	ItemsSkipped int `json:"itemsSkipped"`
	ItemsFailed  int `json:"itemsFailed"`
	TagsCreated  int `json:"tagsCreated"`
	TagsUpdated  int `json:"tagsUpdated"`
	TagsSkipped  int `json:"tagsSkipped"`

	ContainerID *string `json:"containerId,omitempty"`
	// IDMapping maps original ids to live ids.
	IDMapping map[string]string `json:"idMapping"`
	// Orphans lists original ids whose declared parent was not found in the document.
	Orphans []string        `json:"orphans,omitempty"`
	Items   []ImportedItem  `json:"items"`
	Errors  []ImportProblem `json:"errors"`
}

// ImportedItem describes what happened to one input record.
type ImportedItem struct {
	OriginalID string `json:"originalId,omitempty"`
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	Action     string `json:"action"`
}

// ImportProblem records a per-record failure that did not abort the import.
type ImportProblem struct {
	Index      int    `json:"index"`
	OriginalID string `json:"originalId,omitempty"`
	Error      string `json:"error"`
}
