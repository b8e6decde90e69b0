package hierarchy

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"
	hierRepo "github.com/codelogn/WinWork-sub000/internal/domain/repositories/hierarchy"
	hierSvc "github.com/codelogn/WinWork-sub000/internal/domain/services/hierarchy"
)

// exportService implements the ExportService interface
type exportService struct {
	tagRepo     hierRepo.TagRepository
	treeService hierSvc.TreeService
	logger      *slog.Logger
}

// NewExportService creates a new export service
func NewExportService(
	tagRepo hierRepo.TagRepository,
	treeService hierSvc.TreeService,
	logger *slog.Logger,
) hierSvc.ExportService {
	return &exportService{
		tagRepo:     tagRepo,
		treeService: treeService,
		logger:      logger,
	}
}

// BuildDocument projects every tag and item into a document. Items are listed
// depth-first so parents always precede their children.
func (s *exportService) BuildDocument(ctx context.Context) (*models.Document, error) {
	tags, err := s.tagRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	sortTags(tags)

	roots, err := s.treeService.GetTree(ctx)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		Version:    models.CurrentDocumentVersion,
		ExportedAt: time.Now().UTC(),
		Tags:       make([]models.DocumentTag, 0, len(tags)),
		Items:      []models.DocumentItem{},
	}
	for _, t := range tags {
		doc.Tags = append(doc.Tags, models.DocumentTag{
			ID:    models.ForeignID(t.ID),
			Name:  t.Name,
			Color: t.Color,
		})
	}

	for _, root := range roots {
		root.Walk(func(node *models.ItemTreeNode, _ int) {
			doc.Items = append(doc.Items, documentItem(&node.Item))
		})
	}

	s.logger.Info("document exported", "items", len(doc.Items), "tags", len(doc.Tags))
	return doc, nil
}

// ExportDocument returns the document as indented JSON
func (s *exportService) ExportDocument(ctx context.Context) ([]byte, error) {
	doc, err := s.BuildDocument(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

func documentItem(item *models.Item) models.DocumentItem {
	createdAt := item.CreatedAt
	updatedAt := item.UpdatedAt
	di := models.DocumentItem{
		ID:             models.ForeignID(item.ID),
		Name:           item.Name,
		URL:            item.URL,
		Type:           string(item.ItemType),
		Command:        item.Command,
		Description:    item.Description,
		Notes:          item.Notes,
		SortOrder:      item.SortOrder,
		CreatedAt:      &createdAt,
		UpdatedAt:      &updatedAt,
		LastAccessedAt: item.LastAccessedAt,
		AccessCount:    item.AccessCount,
		TagIDs:         make([]models.ForeignID, 0, len(item.Tags)),
	}
	if item.TerminalType != nil {
		di.TerminalType = string(*item.TerminalType)
	}
	if item.ParentID != nil {
		parent := models.ForeignID(*item.ParentID)
		di.ParentID = &parent
	}
	for _, t := range item.Tags {
		di.TagIDs = append(di.TagIDs, models.ForeignID(t.ID))
	}
	return di
}
