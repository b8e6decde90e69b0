package hierarchy

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/codelogn/WinWork-sub000/internal/catalog"
	"github.com/codelogn/WinWork-sub000/internal/config"
	"github.com/codelogn/WinWork-sub000/internal/domain"
	models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"
	"github.com/codelogn/WinWork-sub000/internal/domain/repositories"
	hierRepo "github.com/codelogn/WinWork-sub000/internal/domain/repositories/hierarchy"
	hierSvc "github.com/codelogn/WinWork-sub000/internal/domain/services/hierarchy"
)

// importService implements the ImportService interface
type importService struct {
	itemRepo    hierRepo.ItemRepository
	tagRepo     hierRepo.TagRepository
	itemService hierSvc.ItemService
	treeService hierSvc.TreeService
	tagService  hierSvc.TagService
	txManager   repositories.TransactionManager
	catalog     *catalog.Registry
	logger      *slog.Logger
}

// NewImportService creates a new import service
func NewImportService(
	itemRepo hierRepo.ItemRepository,
	tagRepo hierRepo.TagRepository,
	itemService hierSvc.ItemService,
	treeService hierSvc.TreeService,
	tagService hierSvc.TagService,
	txManager repositories.TransactionManager,
	registry *catalog.Registry,
	logger *slog.Logger,
) hierSvc.ImportService {
	return &importService{
		itemRepo:    itemRepo,
		tagRepo:     tagRepo,
		itemService: itemService,
		treeService: treeService,
		tagService:  tagService,
		txManager:   txManager,
		catalog:     registry,
		logger:      logger,
	}
}

// importRecord tracks one input item through both passes
type importRecord struct {
	index     int
	source    models.DocumentItem
	name      string
	origID    string
	parentRef string
	depth     int

	liveID  string
	action  string
	created bool // the live item was created by this import
}

// importRun holds the state of one ImportDocument call
type importRun struct {
	opts       models.ImportOptions
	summary    *models.ImportSummary
	tagNames   map[string]string // foreign tag id -> live tag name
	tagKeys    map[string]string // folded tag name -> live tag name
	createdIDs map[string]bool
	container  *string
}

// ImportDocument parses data and merges it into the store in one transaction.
// Records failing validation are reported and skipped; any other failure rolls
// the whole import back.
func (s *importService) ImportDocument(ctx context.Context, data []byte, opts models.ImportOptions) (*models.ImportSummary, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}
	if opts.DuplicatePolicy == "" {
		opts.DuplicatePolicy = models.DuplicateSkip
	}

	run := &importRun{
		opts: opts,
		summary: &models.ImportSummary{
			IDMapping: map[string]string{},
			Items:     []models.ImportedItem{},
			Errors:    []models.ImportProblem{},
		},
		tagNames:   map[string]string{},
		tagKeys:    map[string]string{},
		createdIDs: map[string]bool{},
	}

	s.logger.Info("import started",
		"version", doc.Version,
		"items", len(doc.Items),
		"tags", len(doc.Tags),
		"create_container", opts.CreateContainer,
		"duplicate_policy", opts.DuplicatePolicy,
		"match_items_by_name", opts.MatchItemsByName,
	)

	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.importTags(ctx, run, tagSources(doc)); err != nil {
			return err
		}

		if opts.CreateContainer {
			if err := s.createContainer(ctx, run); err != nil {
				return err
			}
		}

		records := s.buildRecords(doc.Items)
		for _, rec := range records {
			if err := s.materialize(ctx, run, rec); err != nil {
				return err
			}
		}
		return s.rewire(ctx, run, records)
	})
	if err != nil {
		s.logger.Warn("import rolled back", "error", err)
		return nil, err
	}

	s.logger.Info("import completed",
		"items_created", run.summary.ItemsCreated,
		"items_updated", run.summary.ItemsUpdated,
		"items_skipped", run.summary.ItemsSkipped,
		"items_failed", run.summary.ItemsFailed,
		"tags_created", run.summary.TagsCreated,
		"orphans", len(run.summary.Orphans),
	)
	return run.summary, nil
}

// ParseDocument decodes the strict or loose document shape. The only required
// top-level field is an items array.
func ParseDocument(data []byte) (*models.Document, error) {
	if len(data) > config.MaxImportBytes {
		return nil, &domain.ImportFormatError{Message: fmt.Sprintf("document exceeds %d bytes", config.MaxImportBytes)}
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &domain.ImportFormatError{Message: "document is empty"}
	}
	if trimmed[0] != '{' {
		return nil, &domain.ImportFormatError{Message: "document must be a JSON object"}
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &top); err != nil {
		return nil, &domain.ImportFormatError{Message: err.Error()}
	}
	raw, ok := top["items"]
	if !ok {
		return nil, &domain.ImportFormatError{Field: "items", Message: "is required"}
	}
	if r := bytes.TrimSpace(raw); len(r) == 0 || r[0] != '[' {
		return nil, &domain.ImportFormatError{Field: "items", Message: "must be an array"}
	}

	var doc models.Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, &domain.ImportFormatError{Message: err.Error()}
	}

	if doc.Version != "" {
		major, _, _ := strings.Cut(doc.Version, ".")
		current, _, _ := strings.Cut(models.CurrentDocumentVersion, ".")
		if major != current {
			return nil, &domain.ImportFormatError{Field: "version", Message: fmt.Sprintf("unsupported version %q", doc.Version)}
		}
	}
	return &doc, nil
}

// tagSource is a tag to resolve: a document tag, or a name listed on a loose-shape item
type tagSource struct {
	index  int
	origID string
	tag    models.DocumentTag
}

// tagSources lists the document tags followed by item tag names not already listed
func tagSources(doc *models.Document) []tagSource {
	sources := make([]tagSource, 0, len(doc.Tags))
	listed := map[string]bool{}
	for i, dt := range doc.Tags {
		sources = append(sources, tagSource{index: i, origID: dt.ID.String(), tag: dt})
		if name := strings.TrimSpace(dt.Name); name != "" {
			listed[foldKey(name)] = true
		}
	}
	for i, it := range doc.Items {
		for _, name := range ParseLabels(it.TagNames) {
			if key := foldKey(name); !listed[key] {
				listed[key] = true
				sources = append(sources, tagSource{index: i, origID: it.ID.String(), tag: models.DocumentTag{Name: name}})
			}
		}
	}
	return sources
}

// importTags resolves tags against existing ones by folded name
func (s *importService) importTags(ctx context.Context, run *importRun, sources []tagSource) error {
	existing, err := s.tagService.ListTags(ctx)
	if err != nil {
		return err
	}
	byKey := make(map[string]models.Tag, len(existing))
	for _, t := range existing {
		byKey[foldKey(t.Name)] = t
	}

	for _, src := range sources {
		dt := src.tag
		name := strings.TrimSpace(dt.Name)
		if name == "" {
			run.problem(src.index, src.origID, errors.New("tag name is empty"))
			continue
		}
		color := strings.TrimSpace(dt.Color)
		if !catalog.IsHexColor(color) {
			color = ""
		}
		key := foldKey(name)

		if liveName, ok := run.tagKeys[key]; ok {
			run.mapTag(dt.ID, liveName)
			run.summary.TagsSkipped++
			continue
		}

		if tag, ok := byKey[key]; ok {
			switch run.opts.DuplicatePolicy {
			case models.DuplicateUpdateExisting:
				if color != "" && !strings.EqualFold(color, tag.Color) {
					if _, err := s.tagService.UpdateTag(ctx, tag.ID, &hierSvc.UpdateTagRequest{Color: &color}); err != nil {
						return err
					}
				}
				run.summary.TagsUpdated++
			case models.DuplicateRename:
				renamed, err := s.tagService.CreateTag(ctx, &hierSvc.CreateTagRequest{
					Name:  uniqueName(name, tagNameSet(byKey)),
					Color: color,
				})
				if err != nil {
					return err
				}
				byKey[foldKey(renamed.Name)] = *renamed
				tag = *renamed
				run.summary.TagsCreated++
			default:
				run.summary.TagsSkipped++
			}
			run.tagKeys[key] = tag.Name
			run.mapTag(dt.ID, tag.Name)
			continue
		}

		created, err := s.tagService.CreateTag(ctx, &hierSvc.CreateTagRequest{Name: name, Color: color})
		if err != nil {
			var verr *domain.ValidationError
			if errors.As(err, &verr) || errors.Is(err, domain.ErrValidation) {
				run.problem(src.index, src.origID, fmt.Errorf("tag %q: %w", name, err))
				continue
			}
			return err
		}
		byKey[key] = *created
		run.tagKeys[key] = created.Name
		run.mapTag(dt.ID, created.Name)
		run.summary.TagsCreated++
	}
	return nil
}

// createContainer adds the synthetic folder that holds parentless records
func (s *importService) createContainer(ctx context.Context, run *importRun) error {
	name := strings.TrimSpace(run.opts.ContainerName)
	if name == "" {
		name = "Imported " + time.Now().Format("2006-01-02 15:04")
	}
	folder, err := s.itemService.CreateItem(ctx, &hierSvc.CreateItemRequest{
		Name:     name,
		ItemType: models.ItemTypeFolder,
	})
	if err != nil {
		return fmt.Errorf("create import container: %w", err)
	}
	run.container = &folder.ID
	run.createdIDs[folder.ID] = true
	run.summary.ContainerID = &folder.ID
	return nil
}

// buildRecords wraps input items and computes each record's depth in the
// document's own tree. Cyclic references get a depth past every real chain.
func (s *importService) buildRecords(items []models.DocumentItem) []*importRecord {
	records := make([]*importRecord, 0, len(items))
	byOrig := map[string]*importRecord{}
	for i, it := range items {
		rec := &importRecord{
			index:     i,
			source:    it,
			name:      it.DisplayName(),
			origID:    it.ID.String(),
			parentRef: it.ParentRef(),
			depth:     -1,
		}
		records = append(records, rec)
		if rec.origID != "" {
			if _, dup := byOrig[rec.origID]; dup {
				s.logger.Warn("duplicate original id in import document, last one wins", "original_id", rec.origID)
			}
			byOrig[rec.origID] = rec
		}
	}

	var depthOf func(rec *importRecord, visiting map[*importRecord]bool) int
	depthOf = func(rec *importRecord, visiting map[*importRecord]bool) int {
		if rec.depth >= 0 {
			return rec.depth
		}
		parent, ok := byOrig[rec.parentRef]
		if rec.parentRef == "" || !ok {
			rec.depth = 0
			return 0
		}
		if visiting[rec] {
			return len(records)
		}
		visiting[rec] = true
		rec.depth = depthOf(parent, visiting) + 1
		return rec.depth
	}
	for _, rec := range records {
		depthOf(rec, map[*importRecord]bool{})
	}
	return records
}

// materialize is pass 1: create every record, parentless ones directly under
// the container (or root) and the rest at root until rewire places them
func (s *importService) materialize(ctx context.Context, run *importRun, rec *importRecord) error {
	if rec.name == "" {
		run.fail(rec, errors.New("name is required"))
		return nil
	}

	req := s.createRequest(run, rec)
	if rec.parentRef == "" {
		req.ParentID = run.container

		if run.opts.MatchItemsByName {
			existing, err := s.findExistingSibling(ctx, run, run.container, rec.name)
			if err != nil {
				return err
			}
			if existing != nil {
				handled, err := s.resolveDuplicate(ctx, run, rec, req, existing)
				if err != nil || handled {
					return err
				}
			}
		}
	}

	item, err := s.itemService.CreateItem(ctx, req)
	if err != nil {
		if isRecordError(err) {
			run.fail(rec, err)
			return nil
		}
		return fmt.Errorf("import record %d: %w", rec.index, err)
	}
	if err := s.restoreHistory(ctx, item, rec.source); err != nil {
		return err
	}

	rec.liveID = item.ID
	rec.created = true
	if rec.action == "" {
		rec.action = models.ImportActionCreated
	}
	run.createdIDs[item.ID] = true
	run.record(rec)

	s.logger.Debug("import record materialized", "index", rec.index, "original_id", rec.origID, "id", item.ID)
	return nil
}

// rewire is pass 2: attach children to their mapped live parents, parents first
func (s *importService) rewire(ctx context.Context, run *importRun, records []*importRecord) error {
	pending := make([]*importRecord, 0, len(records))
	for _, rec := range records {
		if rec.created && rec.parentRef != "" {
			pending = append(pending, rec)
		}
	}
	slices.SortStableFunc(pending, func(a, b *importRecord) int {
		if c := cmp.Compare(a.depth, b.depth); c != 0 {
			return c
		}
		if c := cmp.Compare(a.source.SortOrder, b.source.SortOrder); c != 0 {
			return c
		}
		return cmp.Compare(a.index, b.index)
	})

	for _, rec := range pending {
		parentID, ok := run.summary.IDMapping[rec.parentRef]
		if !ok {
			run.summary.Orphans = append(run.summary.Orphans, rec.origID)
			s.logger.Warn("import record parent not found", "index", rec.index, "original_id", rec.origID, "parent_ref", rec.parentRef)
			if run.container != nil {
				if _, err := s.treeService.MoveItem(ctx, rec.liveID, run.container, 0); err != nil {
					return err
				}
			}
			continue
		}

		if run.opts.MatchItemsByName {
			existing, err := s.findExistingSibling(ctx, run, &parentID, rec.name)
			if err != nil {
				return err
			}
			if existing != nil {
				if err := s.resolveLateDuplicate(ctx, run, rec, existing, parentID); err != nil {
					return err
				}
				continue
			}
		}

		if _, err := s.treeService.MoveItem(ctx, rec.liveID, &parentID, 0); err != nil {
			return fmt.Errorf("rewire record %d: %w", rec.index, err)
		}
	}
	return nil
}

// resolveDuplicate applies the duplicate policy before an item is created.
// It reports true when the record was fully handled without creating an item.
func (s *importService) resolveDuplicate(ctx context.Context, run *importRun, rec *importRecord, req *hierSvc.CreateItemRequest, existing *models.Item) (bool, error) {
	switch run.opts.DuplicatePolicy {
	case models.DuplicateRename:
		names, err := s.siblingNames(ctx, req.ParentID)
		if err != nil {
			return false, err
		}
		req.Name = uniqueName(rec.name, names)
		rec.action = models.ImportActionRenamed
		return false, nil

	case models.DuplicateUpdateExisting:
		if err := s.overwrite(ctx, run, rec, existing.ID); err != nil {
			return true, err
		}
		return true, nil

	default:
		rec.liveID = existing.ID
		rec.action = models.ImportActionSkipped
		run.record(rec)
		return true, nil
	}
}

// resolveLateDuplicate applies the duplicate policy to a record created in
// pass 1 whose live parent already holds a same-named item
func (s *importService) resolveLateDuplicate(ctx context.Context, run *importRun, rec *importRecord, existing *models.Item, parentID string) error {
	switch run.opts.DuplicatePolicy {
	case models.DuplicateRename:
		names, err := s.siblingNames(ctx, &parentID)
		if err != nil {
			return err
		}
		newName := uniqueName(rec.name, names)
		if _, err := s.itemService.UpdateItem(ctx, rec.liveID, &hierSvc.UpdateItemRequest{Name: &newName}); err != nil {
			return err
		}
		run.retag(rec, models.ImportActionRenamed)
		_, err = s.treeService.MoveItem(ctx, rec.liveID, &parentID, 0)
		return err

	case models.DuplicateUpdateExisting:
		if err := s.treeService.DeleteItem(ctx, rec.liveID); err != nil {
			return err
		}
		delete(run.createdIDs, rec.liveID)
		run.unrecord(rec)
		return s.overwrite(ctx, run, rec, existing.ID)

	default:
		if err := s.treeService.DeleteItem(ctx, rec.liveID); err != nil {
			return err
		}
		delete(run.createdIDs, rec.liveID)
		run.unrecord(rec)
		rec.liveID = existing.ID
		rec.action = models.ImportActionSkipped
		run.record(rec)
		return nil
	}
}

// overwrite copies the record's fields onto an existing item
func (s *importService) overwrite(ctx context.Context, run *importRun, rec *importRecord, existingID string) error {
	req := s.createRequest(run, rec)
	update := &hierSvc.UpdateItemRequest{
		ItemType:    &req.ItemType,
		URL:         &req.URL,
		Command:     &req.Command,
		Description: &req.Description,
		Notes:       &req.Notes,
	}
	if req.TerminalType != nil {
		update.TerminalType = req.TerminalType
	}
	if len(req.Tags) > 0 {
		update.Tags = &req.Tags
	}

	if _, err := s.itemService.UpdateItem(ctx, existingID, update); err != nil {
		if isRecordError(err) {
			run.fail(rec, err)
			return nil
		}
		return err
	}

	rec.liveID = existingID
	rec.action = models.ImportActionUpdated
	run.record(rec)
	return nil
}

// createRequest converts a record into an item creation request
func (s *importService) createRequest(run *importRun, rec *importRecord) *hierSvc.CreateItemRequest {
	src := rec.source
	req := &hierSvc.CreateItemRequest{
		Name:        rec.name,
		ItemType:    s.resolveType(src),
		URL:         strings.TrimSpace(src.URL),
		Command:     strings.TrimSpace(src.Command),
		Description: src.Description,
		Notes:       src.Notes,
	}
	if src.TerminalType != "" {
		tt := models.TerminalType(src.TerminalType)
		for _, known := range models.AllTerminalTypes {
			if strings.EqualFold(string(known), src.TerminalType) {
				tt = known
			}
		}
		req.TerminalType = &tt
	}

	labels := make([]string, 0, len(src.TagIDs)+len(src.TagNames))
	for _, id := range src.TagIDs {
		if name, ok := run.tagNames[id.String()]; ok {
			labels = append(labels, name)
		} else {
			s.logger.Warn("import record references unknown tag", "index", rec.index, "tag_id", id.String())
		}
	}
	for _, name := range ParseLabels(src.TagNames) {
		if live, ok := run.tagKeys[foldKey(name)]; ok {
			labels = append(labels, live)
		} else {
			s.logger.Warn("import record lists rejected tag", "index", rec.index, "tag", name)
		}
	}
	req.Tags = ParseLabels(labels)
	return req
}

// resolveType maps type or linkType through the catalog. Unknown or missing
// types fall back to WebUrl when a url is present and Folder otherwise.
func (s *importService) resolveType(src models.DocumentItem) models.ItemType {
	for _, name := range []string{src.Type, src.LinkType} {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if t, ok := s.catalog.ResolveType(name); ok {
			return t
		}
		s.logger.Debug("unknown import item type", "type", name)
	}
	if strings.TrimSpace(src.URL) != "" {
		return models.ItemTypeWebURL
	}
	return models.ItemTypeFolder
}

// restoreHistory carries access statistics over from the document
func (s *importService) restoreHistory(ctx context.Context, item *models.Item, src models.DocumentItem) error {
	if src.AccessCount <= 0 && src.LastAccessedAt == nil {
		return nil
	}
	if src.AccessCount > 0 {
		item.AccessCount = src.AccessCount
	}
	item.LastAccessedAt = src.LastAccessedAt
	return s.itemRepo.Update(ctx, item)
}

// findExistingSibling finds a same-named child of parentID that predates this import
func (s *importService) findExistingSibling(ctx context.Context, run *importRun, parentID *string, name string) (*models.Item, error) {
	siblings, err := s.itemRepo.ListChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}
	key := foldKey(name)
	for i := range siblings {
		if run.createdIDs[siblings[i].ID] {
			continue
		}
		if foldKey(siblings[i].Name) == key {
			return &siblings[i], nil
		}
	}
	return nil, nil
}

func (s *importService) siblingNames(ctx context.Context, parentID *string) (map[string]bool, error) {
	siblings, err := s.itemRepo.ListChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(siblings))
	for _, sib := range siblings {
		names[foldKey(sib.Name)] = true
	}
	return names, nil
}

// uniqueName appends " (n)" to name until it is not in taken (folded keys)
func uniqueName(name string, taken map[string]bool) string {
	if !taken[foldKey(name)] {
		return name
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", name, n)
		if !taken[foldKey(candidate)] {
			return candidate
		}
	}
}

func tagNameSet(byKey map[string]models.Tag) map[string]bool {
	set := make(map[string]bool, len(byKey))
	for key := range byKey {
		set[key] = true
	}
	return set
}

// isRecordError reports failures that only invalidate a single record
func isRecordError(err error) bool {
	return errors.Is(err, domain.ErrValidation)
}

func (r *importRun) mapTag(id models.ForeignID, liveName string) {
	if !id.IsZero() {
		r.tagNames[id.String()] = liveName
	}
}

func (r *importRun) problem(index int, origID string, err error) {
	r.summary.Errors = append(r.summary.Errors, models.ImportProblem{
		Index:      index,
		OriginalID: origID,
		Error:      err.Error(),
	})
}

func (r *importRun) fail(rec *importRecord, err error) {
	r.summary.ItemsFailed++
	r.problem(rec.index, rec.origID, err)
}

// record adds the record's outcome to the summary and id mapping
func (r *importRun) record(rec *importRecord) {
	switch rec.action {
	case models.ImportActionCreated, models.ImportActionRenamed:
		r.summary.ItemsCreated++
	case models.ImportActionUpdated:
		r.summary.ItemsUpdated++
	case models.ImportActionSkipped:
		r.summary.ItemsSkipped++
	}
	if rec.origID != "" {
		r.summary.IDMapping[rec.origID] = rec.liveID
	}
	r.summary.Items = append(r.summary.Items, models.ImportedItem{
		OriginalID: rec.origID,
		ID:         rec.liveID,
		Name:       rec.name,
		Action:     rec.action,
	})
}

// unrecord reverses record for an item that is being replaced
func (r *importRun) unrecord(rec *importRecord) {
	switch rec.action {
	case models.ImportActionCreated, models.ImportActionRenamed:
		r.summary.ItemsCreated--
	case models.ImportActionUpdated:
		r.summary.ItemsUpdated--
	case models.ImportActionSkipped:
		r.summary.ItemsSkipped--
	}
	if rec.origID != "" {
		delete(r.summary.IDMapping, rec.origID)
	}
	for i := range r.summary.Items {
		if r.summary.Items[i].ID == rec.liveID && r.summary.Items[i].OriginalID == rec.origID {
			r.summary.Items = append(r.summary.Items[:i], r.summary.Items[i+1:]...)
			break
		}
	}
}

// retag changes the recorded action of a record that stays in place
func (r *importRun) retag(rec *importRecord, action string) {
	rec.action = action
	for i := range r.summary.Items {
		if r.summary.Items[i].ID == rec.liveID {
			r.summary.Items[i].Action = action
		}
	}
}
