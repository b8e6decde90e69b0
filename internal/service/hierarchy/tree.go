package hierarchy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/codelogn/WinWork-sub000/internal/domain"
	models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"
	"github.com/codelogn/WinWork-sub000/internal/domain/repositories"
	hierRepo "github.com/codelogn/WinWork-sub000/internal/domain/repositories/hierarchy"
	hierSvc "github.com/codelogn/WinWork-sub000/internal/domain/services/hierarchy"
)

// treeService implements the TreeService interface
type treeService struct {
	itemRepo  hierRepo.ItemRepository
	tagRepo   hierRepo.TagRepository
	sortOrder *SortOrderManager
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(
	itemRepo hierRepo.ItemRepository,
	tagRepo hierRepo.TagRepository,
	sortOrder *SortOrderManager,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) hierSvc.TreeService {
	return &treeService{
		itemRepo:  itemRepo,
		tagRepo:   tagRepo,
		sortOrder: sortOrder,
		txManager: txManager,
		logger:    logger,
	}
}

// MoveItem reparents and/or reorders an item
func (s *treeService) MoveItem(ctx context.Context, id string, newParentID *string, newSortOrder int) (*models.Item, error) {
	if newParentID != nil && *newParentID == "" {
		newParentID = nil
	}

	var moved *models.Item
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		item, err := s.itemRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if newParentID != nil {
			if _, err := s.itemRepo.GetByID(ctx, *newParentID); err != nil {
				return fmt.Errorf("target parent: %w", err)
			}
			if err := s.validateNoCircularReference(ctx, id, *newParentID); err != nil {
				return err
			}
		}

		// Appending within the same parent keeps the current slot.
		if newSortOrder <= 0 && models.SameParent(item.ParentID, newParentID) {
			moved = item
			return nil
		}

		now := time.Now()
		slot, err := s.sortOrder.Place(ctx, id, newParentID, newSortOrder, now)
		if err != nil {
			return err
		}

		s.logger.Info("item moved",
			"id", id,
			"from_parent_id", item.ParentID,
			"parent_id", newParentID,
			"sort_order", slot,
		)

		item.ParentID = newParentID
		item.SortOrder = slot
		item.UpdatedAt = now
		moved = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	return moved, nil
}

// validateNoCircularReference walks the ancestors of newParentID looking for id.
// The walk is bounded by a visited set so corrupt data cannot loop forever.
func (s *treeService) validateNoCircularReference(ctx context.Context, id, newParentID string) error {
	if id == newParentID {
		return &domain.CircularReferenceError{ItemID: id, TargetParentID: newParentID, AncestorID: id}
	}

	visited := map[string]bool{}
	currentID := newParentID
	for {
		if visited[currentID] {
			return fmt.Errorf("ancestor chain of %s loops at %s: %w", newParentID, currentID, domain.ErrCircularReference)
		}
		visited[currentID] = true

		current, err := s.itemRepo.GetByID(ctx, currentID)
		if err != nil {
			return err
		}
		if current.ParentID == nil {
			return nil
		}
		if *current.ParentID == id {
			return &domain.CircularReferenceError{ItemID: id, TargetParentID: newParentID, AncestorID: id}
		}
		currentID = *current.ParentID
	}
}

// DeleteItem removes an item that has no children
func (s *treeService) DeleteItem(ctx context.Context, id string) error {
	return s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		item, err := s.itemRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		children, err := s.itemRepo.ListChildren(ctx, &id)
		if err != nil {
			return fmt.Errorf("list children: %w", err)
		}
		if len(children) > 0 {
			blocking := make([]domain.BlockingChild, 0, len(children))
			for _, c := range children {
				blocking = append(blocking, domain.BlockingChild{ID: c.ID, Name: c.Name})
			}
			return &domain.FolderNotEmptyError{ItemID: id, Name: item.Name, Children: blocking}
		}

		deleted, err := s.itemRepo.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.NewNotFound("item", id)
		}

		s.logger.Info("item deleted", "id", id, "name", item.Name)
		return nil
	})
}

// DeleteItemRecursive removes an item and every descendant in one transaction.
// Summaries are reported parent first; rows are deleted children first.
func (s *treeService) DeleteItemRecursive(ctx context.Context, id string) ([]models.ItemSummary, error) {
	var removed []models.ItemSummary
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		item, err := s.itemRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		removed = []models.ItemSummary{item.Summary()}
		if err := s.deleteDescendants(ctx, item.ID, &removed); err != nil {
			return err
		}

		if _, err := s.itemRepo.Delete(ctx, item.ID); err != nil {
			return fmt.Errorf("delete item %q: %w", item.Name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("item deleted recursively", "id", id, "removed", len(removed))
	return removed, nil
}

// deleteDescendants deletes the subtree below parentID depth-first
func (s *treeService) deleteDescendants(ctx context.Context, parentID string, removed *[]models.ItemSummary) error {
	children, err := s.itemRepo.ListChildren(ctx, &parentID)
	if err != nil {
		return fmt.Errorf("list children: %w", err)
	}

	for _, child := range children {
		*removed = append(*removed, child.Summary())
		if err := s.deleteDescendants(ctx, child.ID, removed); err != nil {
			return err
		}
		if _, err := s.itemRepo.Delete(ctx, child.ID); err != nil {
			return fmt.Errorf("delete child %q: %w", child.Name, err)
		}
		s.logger.Debug("deleted child item", "id", child.ID, "name", child.Name)
	}
	return nil
}

// GetTree builds the nested tree of every item
func (s *treeService) GetTree(ctx context.Context) ([]*models.ItemTreeNode, error) {
	allItems, err := s.itemRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	tagsByItem, err := loadTagsByItem(ctx, s.tagRepo)
	if err != nil {
		return nil, err
	}

	// First pass: create all nodes
	nodes := make(map[string]*models.ItemTreeNode, len(allItems))
	for _, item := range allItems {
		item.Tags = tagsByItem[item.ID]
		nodes[item.ID] = &models.ItemTreeNode{Item: item, Children: []*models.ItemTreeNode{}}
	}

	// Second pass: attach children in sort order
	roots := make([]*models.ItemTreeNode, 0)
	for _, item := range allItems {
		node := nodes[item.ID]
		if item.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*item.ParentID]
		if !ok {
			s.logger.Warn("item parent missing, listing at root", "id", item.ID, "parent_id", *item.ParentID)
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	// Third pass: ListAll orders by parent then position, roots can interleave with orphans
	sortNodes(roots)

	s.logger.Debug("item tree built", "item_count", len(allItems), "root_count", len(roots))
	return roots, nil
}

// GetAncestors returns the chain from the root down to the item's parent
func (s *treeService) GetAncestors(ctx context.Context, id string) ([]models.ItemSummary, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	chain := []models.ItemSummary{}
	visited := map[string]bool{id: true}
	for parentID := item.ParentID; parentID != nil; {
		if visited[*parentID] {
			return nil, fmt.Errorf("ancestor chain of %s loops at %s: %w", id, *parentID, domain.ErrCircularReference)
		}
		visited[*parentID] = true

		parent, err := s.itemRepo.GetByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		chain = append(chain, parent.Summary())
		parentID = parent.ParentID
	}

	// Reverse so the root comes first
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}
