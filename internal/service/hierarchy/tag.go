package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/codelogn/WinWork-sub000/internal/catalog"
	"github.com/codelogn/WinWork-sub000/internal/config"
	"github.com/codelogn/WinWork-sub000/internal/domain"
	models "github.com/codelogn/WinWork-sub000/internal/domain/models/hierarchy"
	"github.com/codelogn/WinWork-sub000/internal/domain/repositories"
	hierRepo "github.com/codelogn/WinWork-sub000/internal/domain/repositories/hierarchy"
	hierSvc "github.com/codelogn/WinWork-sub000/internal/domain/services/hierarchy"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// fallbackTagColor is used when no palette is configured
const fallbackTagColor = "#6B7280"

// tagService implements the TagService interface
type tagService struct {
	tagRepo   hierRepo.TagRepository
	itemRepo  hierRepo.ItemRepository
	txManager repositories.TransactionManager
	palette   []string
	logger    *slog.Logger
}

// NewTagService creates a new tag service. palette supplies colors for tags
// created without one.
func NewTagService(
	tagRepo hierRepo.TagRepository,
	itemRepo hierRepo.ItemRepository,
	txManager repositories.TransactionManager,
	palette []string,
	logger *slog.Logger,
) hierSvc.TagService {
	return &tagService{
		tagRepo:   tagRepo,
		itemRepo:  itemRepo,
		txManager: txManager,
		palette:   append([]string(nil), palette...),
		logger:    logger,
	}
}

// ParseLabels normalizes free-text labels: entries are split on commas,
// trimmed, emptied entries dropped and case-insensitive duplicates removed.
// The first spelling of each label wins.
func ParseLabels(input []string) []string {
	seen := map[string]bool{}
	labels := []string{}
	for _, entry := range input {
		for _, part := range strings.Split(entry, ",") {
			label := strings.TrimSpace(part)
			if label == "" {
				continue
			}
			key := foldKey(label)
			if seen[key] {
				continue
			}
			seen[key] = true
			labels = append(labels, label)
		}
	}
	return labels
}

// SetTagsForItem makes the item's tag set exactly the normalized labels
func (s *tagService) SetTagsForItem(ctx context.Context, itemID string, labels []string) ([]models.Tag, error) {
	normalized := ParseLabels(labels)
	if err := validateLabels(normalized); err != nil {
		return nil, err
	}

	var result []models.Tag
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if _, err := s.itemRepo.GetByID(ctx, itemID); err != nil {
			return err
		}

		byKey, count, err := s.tagsByKey(ctx)
		if err != nil {
			return err
		}

		// Resolve every label to a tag, creating missing ones
		desired := map[string]bool{}
		for _, label := range normalized {
			tag, ok := byKey[foldKey(label)]
			if !ok {
				tag = &models.Tag{
					Name:      label,
					Color:     s.paletteColor(count),
					CreatedAt: time.Now(),
				}
				if err := s.tagRepo.Create(ctx, tag); err != nil {
					return err
				}
				count++
				byKey[foldKey(label)] = tag
				s.logger.Info("tag created", "id", tag.ID, "name", tag.Name, "color", tag.Color)
			}
			desired[tag.ID] = true
		}

		current, err := s.tagRepo.ListForItem(ctx, itemID)
		if err != nil {
			return err
		}
		currentSet := map[string]bool{}
		for _, t := range current {
			currentSet[t.ID] = true
		}

		var added, removed int
		for id := range currentSet {
			if !desired[id] {
				if err := s.tagRepo.RemoveFromItem(ctx, itemID, id); err != nil {
					return err
				}
				removed++
			}
		}
		for id := range desired {
			if !currentSet[id] {
				if err := s.tagRepo.AddToItem(ctx, itemID, id); err != nil {
					return err
				}
				added++
			}
		}

		if added > 0 || removed > 0 {
			s.logger.Info("item tags updated", "item_id", itemID, "added", added, "removed", removed)
		}

		result, err = s.tagRepo.ListForItem(ctx, itemID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetTagsForItem lists an item's tags
func (s *tagService) GetTagsForItem(ctx context.Context, itemID string) ([]models.Tag, error) {
	if _, err := s.itemRepo.GetByID(ctx, itemID); err != nil {
		return nil, err
	}
	return s.tagRepo.ListForItem(ctx, itemID)
}

// ListTags lists every tag
func (s *tagService) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags, err := s.tagRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	sortTags(tags)
	return tags, nil
}

// CreateTag creates a tag explicitly
func (s *tagService) CreateTag(ctx context.Context, req *hierSvc.CreateTagRequest) (*models.Tag, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Color = strings.TrimSpace(req.Color)
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var tag *models.Tag
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		byKey, count, err := s.tagsByKey(ctx)
		if err != nil {
			return err
		}
		if existing, ok := byKey[foldKey(req.Name)]; ok {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a tag named %q already exists", existing.Name),
				ResourceType: "tag",
				ResourceID:   existing.ID,
			}
		}

		color := req.Color
		if color == "" {
			color = s.paletteColor(count)
		}
		tag = &models.Tag{Name: req.Name, Color: color, CreatedAt: time.Now()}
		return s.tagRepo.Create(ctx, tag)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tag created", "id", tag.ID, "name", tag.Name, "color", tag.Color)
	return tag, nil
}

// UpdateTag renames or recolors a tag
func (s *tagService) UpdateTag(ctx context.Context, id string, req *hierSvc.UpdateTagRequest) (*models.Tag, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var tag *models.Tag
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		tag, err = s.tagRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			byKey, _, err := s.tagsByKey(ctx)
			if err != nil {
				return err
			}
			if other, ok := byKey[foldKey(name)]; ok && other.ID != id {
				return &domain.ConflictError{
					Message:      fmt.Sprintf("a tag named %q already exists", other.Name),
					ResourceType: "tag",
					ResourceID:   other.ID,
				}
			}
			tag.Name = name
		}
		if req.Color != nil {
			tag.Color = strings.TrimSpace(*req.Color)
		}

		return s.tagRepo.Update(ctx, tag)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tag updated", "id", tag.ID, "name", tag.Name, "color", tag.Color)
	return tag, nil
}

// DeleteTag deletes a tag. A tag still attached to items is only deleted with force,
// which detaches it first.
func (s *tagService) DeleteTag(ctx context.Context, id string, force bool) error {
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		tag, err := s.tagRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		inUse, err := s.tagRepo.CountItems(ctx, id)
		if err != nil {
			return err
		}
		if inUse > 0 && !force {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("tag %q is attached to %d item(s)", tag.Name, inUse),
				ResourceType: "tag",
				ResourceID:   id,
			}
		}
		if inUse > 0 {
			if err := s.tagRepo.RemoveAllForTag(ctx, id); err != nil {
				return err
			}
		}

		return s.tagRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("tag deleted", "id", id, "force", force)
	return nil
}

// tagsByKey indexes all tags by folded name and returns the tag count
func (s *tagService) tagsByKey(ctx context.Context) (map[string]*models.Tag, int, error) {
	tags, err := s.tagRepo.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	byKey := make(map[string]*models.Tag, len(tags))
	for i := range tags {
		byKey[foldKey(tags[i].Name)] = &tags[i]
	}
	return byKey, len(tags), nil
}

// paletteColor cycles through the palette by tag count
func (s *tagService) paletteColor(n int) string {
	if len(s.palette) == 0 {
		return fallbackTagColor
	}
	return s.palette[n%len(s.palette)]
}

// validateLabels rejects labels longer than the tag name limit
func validateLabels(labels []string) error {
	for _, label := range labels {
		if err := validateTagName(label); err != nil {
			return err
		}
	}
	return nil
}

func validateTagName(name string) error {
	if len([]rune(name)) > config.MaxTagNameLength {
		return domain.NewValidation("tag %q exceeds %d characters", name, config.MaxTagNameLength)
	}
	return nil
}

var hexColorRule = validation.By(func(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	}
	if s != "" && !catalog.IsHexColor(s) {
		return errors.New("must be a hex color such as #3B82F6")
	}
	return nil
})

// validateCreateRequest validates a tag creation request
func (s *tagService) validateCreateRequest(req *hierSvc.CreateTagRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.RuneLength(1, config.MaxTagNameLength)),
		validation.Field(&req.Color, hexColorRule),
	)
}

// validateUpdateRequest validates a tag update request
func (s *tagService) validateUpdateRequest(req *hierSvc.UpdateTagRequest) error {
	if req.Name == nil && req.Color == nil {
		return fmt.Errorf("at least one field must be provided")
	}

	rules := []*validation.FieldRules{
		validation.Field(&req.Color, hexColorRule),
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
		rules = append(rules,
			validation.Field(&req.Name, validation.Required, validation.RuneLength(1, config.MaxTagNameLength)),
		)
	}
	return validation.ValidateStruct(req, rules...)
}
