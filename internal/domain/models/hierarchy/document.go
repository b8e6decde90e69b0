package hierarchy

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// CurrentDocumentVersion is written into every exported document.
const CurrentDocumentVersion = "1.0"

// Document is the versioned interchange format for export and import.
type Document struct {
	Version    string         `json:"version"`
	ExportedAt time.Time      `json:"exportedAt"`
	Tags       []DocumentTag  `json:"tags"`
	Items      []DocumentItem `json:"items"`
}

// DocumentTag is a tag record in a document. A bare JSON string is accepted as a name-only tag.
type DocumentTag struct {
	ID    ForeignID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color,omitempty"`
}

// UnmarshalJSON accepts either a tag object or a plain tag name.
func (t *DocumentTag) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var name string
		if err := json.Unmarshal(trimmed, &name); err != nil {
			return err
		}
		*t = DocumentTag{Name: name}
		return nil
	}
	type plain DocumentTag
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*t = DocumentTag(p)
	return nil
}

// DocumentItem is an item record in a document. IDs are foreign: they only relate
// records within the same document.
type DocumentItem struct {
	ID             ForeignID   `json:"id"`
	Name           string      `json:"name"`
	URL            string      `json:"url"`
	Type           string      `json:"type"`
	Command        string      `json:"command,omitempty"`
	TerminalType   string      `json:"terminalType,omitempty"`
	ParentID       *ForeignID  `json:"parentId"`
	Description    string      `json:"description"`
	Notes          string      `json:"notes"`
	SortOrder      int         `json:"sortOrder"`
	CreatedAt      *time.Time  `json:"createdAt"`
	UpdatedAt      *time.Time  `json:"updatedAt"`
	LastAccessedAt *time.Time  `json:"lastAccessedAt"`
	AccessCount    int         `json:"accessCount"`
	TagIDs         []ForeignID `json:"tagIds"`

	// Loose-shape fields accepted on import only.
	Title    string   `json:"title,omitempty"`
	LinkType string   `json:"linkType,omitempty"`
	TagNames []string `json:"tags,omitempty"`
}

// DisplayName returns name, falling back to title.
func (d *DocumentItem) DisplayName() string {
	if name := strings.TrimSpace(d.Name); name != "" {
		return name
	}
	return strings.TrimSpace(d.Title)
}

// ParentRef returns the declared original parent id, or "" when absent or null.
func (d *DocumentItem) ParentRef() string {
	if d.ParentID == nil {
		return ""
	}
	return d.ParentID.String()
}

// ForeignID is an identifier from another id space. Documents may carry ids as
// JSON strings or numbers; both decode to the same textual form.
type ForeignID string

// UnmarshalJSON accepts strings, numbers and null.
func (f *ForeignID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = ForeignID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*f = ForeignID(strconv.FormatInt(i, 10))
		return nil
	}
	*f = ForeignID(n.String())
	return nil
}

func (f ForeignID) String() string { return string(f) }

// IsZero reports whether no id was declared.
func (f ForeignID) IsZero() bool { return strings.TrimSpace(string(f)) == "" }
