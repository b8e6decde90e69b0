package hierarchy

import (
	"context"

	models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"
)

// ImportService merges an external document into the store
type ImportService interface {
	// ImportDocument parses data (strict or loose shape) and merges it in one transaction
	ImportDocument(ctx context.Context, data []byte, opts models.ImportOptions) (*models.ImportSummary, error)
}

// ExportService projects the store into the interchange document
type ExportService interface {
	// BuildDocument collects every tag and item into a document value
	BuildDocument(ctx context.Context) (*models.Document, error)

	// ExportDocument returns the document encoded as indented JSON
	ExportDocument(ctx context.Context) ([]byte, error)
}
