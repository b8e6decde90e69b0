package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/codelogn/WinWork-sub000/internal/config"
	"github.com/codelogn/WinWork-sub000/internal/domain"
	models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"
	"github.com/codelogn/WinWork-sub000/internal/domain/repositories"
	hierRepo "github.com/codelogn/WinWork-sub000/internal/domain/repositories/hierarchy"
	hierSvc "github.com/codelogn/WinWork-sub000/internal/domain/services/hierarchy"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// itemService implements the ItemService interface
type itemService struct {
	itemRepo    hierRepo.ItemRepository
	tagRepo     hierRepo.TagRepository
	sortOrder   *SortOrderManager
	treeService hierSvc.TreeService // parent changes go through the move engine
	tagService  hierSvc.TagService
	txManager   repositories.TransactionManager
	logger      *slog.Logger
}

// NewItemService creates a new item service
func NewItemService(
	itemRepo hierRepo.ItemRepository,
	tagRepo hierRepo.TagRepository,
	sortOrder *SortOrderManager,
	treeService hierSvc.TreeService,
	tagService hierSvc.TagService,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) hierSvc.ItemService {
	return &itemService{
		itemRepo:    itemRepo,
		tagRepo:     tagRepo,
		sortOrder:   sortOrder,
		treeService: treeService,
		tagService:  tagService,
		txManager:   txManager,
		logger:      logger,
	}
}

// CreateItem validates and inserts an item
func (s *itemService) CreateItem(ctx context.Context, req *hierSvc.CreateItemRequest) (*models.Item, error) {
	// Normalize empty string to nil for root-level items
	if req.ParentID != nil && strings.TrimSpace(*req.ParentID) == "" {
		req.ParentID = nil
	}

	now := time.Now()
	item := &models.Item{
		Name:         strings.TrimSpace(req.Name),
		ItemType:     req.ItemType,
		URL:          strings.TrimSpace(req.URL),
		Command:      strings.TrimSpace(req.Command),
		TerminalType: req.TerminalType,
		Description:  req.Description,
		Notes:        req.Notes,
		ParentID:     req.ParentID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	normalizeTypeFields(item)
	if err := ValidateItem(item); err != nil {
		return nil, err
	}
	if err := validateLabels(ParseLabels(req.Tags)); err != nil {
		return nil, err
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if item.ParentID != nil {
			if _, err := s.itemRepo.GetByID(ctx, *item.ParentID); err != nil {
				return fmt.Errorf("parent: %w", err)
			}
		}

		target := 0
		if req.SortOrder != nil {
			target = *req.SortOrder
		}

		if target <= 0 {
			next, err := s.sortOrder.NextSortOrder(ctx, item.ParentID)
			if err != nil {
				return err
			}
			item.SortOrder = next
			if err := s.itemRepo.Create(ctx, item); err != nil {
				return err
			}
		} else {
			item.SortOrder = parkedSortOrder
			if err := s.itemRepo.Create(ctx, item); err != nil {
				return err
			}
			slot, err := s.sortOrder.Place(ctx, item.ID, item.ParentID, target, now)
			if err != nil {
				return err
			}
			item.SortOrder = slot
		}

		if len(req.Tags) > 0 {
			tags, err := s.tagService.SetTagsForItem(ctx, item.ID, req.Tags)
			if err != nil {
				return err
			}
			item.Tags = tags
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("item created",
		"id", item.ID,
		"name", item.Name,
		"item_type", item.ItemType,
		"parent_id", item.ParentID,
		"sort_order", item.SortOrder,
	)

	return item, nil
}

// GetItem retrieves an item with its tags
func (s *itemService) GetItem(ctx context.Context, id string) (*models.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tags, err := s.tagRepo.ListForItem(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Tags = tags
	return item, nil
}

// UpdateItem applies a partial update. Parent and position changes are
// delegated to the move engine in the same transaction.
func (s *itemService) UpdateItem(ctx context.Context, id string, req *hierSvc.UpdateItemRequest) (*models.Item, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if req.Tags != nil {
		if err := validateLabels(ParseLabels(*req.Tags)); err != nil {
			return nil, err
		}
	}

	var item *models.Item
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		existing, err := s.itemRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		// Tri-state: only relocate if the field was present in the request
		newParentID := existing.ParentID
		if req.ParentID.Present {
			newParentID = req.ParentID.Value
			if newParentID != nil && strings.TrimSpace(*newParentID) == "" {
				newParentID = nil
			}
		}
		parentChanged := !models.SameParent(existing.ParentID, newParentID)
		orderChanged := req.SortOrder != nil && *req.SortOrder != existing.SortOrder

		if parentChanged || orderChanged {
			target := 0
			if req.SortOrder != nil {
				target = *req.SortOrder
			}
			if _, err := s.treeService.MoveItem(ctx, id, newParentID, target); err != nil {
				return err
			}
			// Re-read to pick up the placement written by the move
			if existing, err = s.itemRepo.GetByID(ctx, id); err != nil {
				return err
			}
		}

		applyUpdate(existing, req)
		normalizeTypeFields(existing)
		if err := ValidateItem(existing); err != nil {
			return err
		}
		existing.UpdatedAt = time.Now()

		if err := s.itemRepo.Update(ctx, existing); err != nil {
			return err
		}

		if req.Tags != nil {
			if _, err := s.tagService.SetTagsForItem(ctx, id, *req.Tags); err != nil {
				return err
			}
		}

		item = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	tags, err := s.tagRepo.ListForItem(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Tags = tags

	s.logger.Info("item updated",
		"id", item.ID,
		"name", item.Name,
		"parent_id", item.ParentID,
		"sort_order", item.SortOrder,
	)

	return item, nil
}

// GetRootItems lists root-level items
func (s *itemService) GetRootItems(ctx context.Context) ([]models.Item, error) {
	items, err := s.itemRepo.ListChildren(ctx, nil)
	if err != nil {
		return nil, err
	}
	if err := attachTags(ctx, s.tagRepo, items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetChildren lists the direct children of an existing item
func (s *itemService) GetChildren(ctx context.Context, parentID string) ([]models.Item, error) {
	if _, err := s.itemRepo.GetByID(ctx, parentID); err != nil {
		return nil, err
	}

	items, err := s.itemRepo.ListChildren(ctx, &parentID)
	if err != nil {
		return nil, err
	}
	if err := attachTags(ctx, s.tagRepo, items); err != nil {
		return nil, err
	}
	return items, nil
}

// SearchItems performs a case-insensitive substring search. A blank term matches nothing.
func (s *itemService) SearchItems(ctx context.Context, term string) ([]models.Item, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []models.Item{}, nil
	}

	items, err := s.itemRepo.Search(ctx, term, config.DefaultSearchLimit)
	if err != nil {
		return nil, err
	}
	if err := attachTags(ctx, s.tagRepo, items); err != nil {
		return nil, err
	}

	s.logger.Debug("items searched", "term", term, "results", len(items))
	return items, nil
}

// GetMostAccessed lists up to n items by descending access count
func (s *itemService) GetMostAccessed(ctx context.Context, n int) ([]models.Item, error) {
	items, err := s.itemRepo.ListMostAccessed(ctx, listLimit(n))
	if err != nil {
		return nil, err
	}
	if err := attachTags(ctx, s.tagRepo, items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetRecentlyAccessed lists up to n items by descending access time
func (s *itemService) GetRecentlyAccessed(ctx context.Context, n int) ([]models.Item, error) {
	items, err := s.itemRepo.ListRecentlyAccessed(ctx, listLimit(n))
	if err != nil {
		return nil, err
	}
	if err := attachTags(ctx, s.tagRepo, items); err != nil {
		return nil, err
	}
	return items, nil
}

// RecordAccess bumps the access counter after the caller opened the item
func (s *itemService) RecordAccess(ctx context.Context, id string) (*models.Item, error) {
	if err := s.itemRepo.RecordAccess(ctx, id, time.Now()); err != nil {
		return nil, err
	}
	s.logger.Debug("item access recorded", "id", id)
	return s.GetItem(ctx, id)
}

func listLimit(n int) int {
	if n <= 0 {
		return config.DefaultListLimit
	}
	return n
}

// applyUpdate copies present fields from req onto item
func applyUpdate(item *models.Item, req *hierSvc.UpdateItemRequest) {
	if req.Name != nil {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.ItemType != nil {
		item.ItemType = *req.ItemType
	}
	if req.URL != nil {
		item.URL = strings.TrimSpace(*req.URL)
	}
	if req.Command != nil {
		item.Command = strings.TrimSpace(*req.Command)
	}
	if req.TerminalType != nil {
		tt := *req.TerminalType
		item.TerminalType = &tt
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}
}

// normalizeTypeFields clears fields the item type does not carry
func normalizeTypeFields(item *models.Item) {
	if !item.ItemType.UsesCommand() {
		item.Command = ""
		item.TerminalType = nil
	}
}

// ValidateItem checks the required-field rules for the item's type
func ValidateItem(item *models.Item) error {
	err := validation.ValidateStruct(item,
		validation.Field(&item.Name, validation.Required, validation.RuneLength(1, config.MaxItemNameLength)),
		validation.Field(&item.ItemType, validation.Required, validation.By(func(value interface{}) error {
			if t, ok := value.(models.ItemType); ok && !t.IsValid() {
				return fmt.Errorf("unknown item type %q", string(t))
			}
			return nil
		})),
		validation.Field(&item.URL,
			validation.When(item.ItemType.RequiresURL(), validation.Required.Error("is required for "+string(item.ItemType)+" items")),
			validation.RuneLength(0, config.MaxURLLength),
		),
		validation.Field(&item.Command,
			validation.When(item.ItemType.UsesCommand(), validation.Required.Error("is required for Terminal items")),
			validation.RuneLength(0, config.MaxURLLength),
		),
		validation.Field(&item.TerminalType,
			validation.When(item.ItemType.UsesCommand(), validation.Required.Error("is required for Terminal items")),
			validation.By(func(value interface{}) error {
				if tt, ok := value.(*models.TerminalType); ok && tt != nil && !tt.IsValid() {
					return fmt.Errorf("unknown terminal type %q", string(*tt))
				}
				return nil
			}),
		),
		validation.Field(&item.Description, validation.RuneLength(0, config.MaxNotesLength)),
		validation.Field(&item.Notes, validation.RuneLength(0, config.MaxNotesLength)),
	)
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	return nil
}

// validateUpdateRequest validates an item update request
func (s *itemService) validateUpdateRequest(req *hierSvc.UpdateItemRequest) error {
	if req.Name == nil && req.ItemType == nil && req.URL == nil && req.Command == nil &&
		req.TerminalType == nil && req.Description == nil && req.Notes == nil &&
		!req.ParentID.Present && req.SortOrder == nil && req.Tags == nil {
		return errors.New("at least one field must be provided")
	}
	return nil
}
