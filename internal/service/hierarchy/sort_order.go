package hierarchy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	hierRepo "github.com/codelogn/WinWork-sub000/internal/domain/repositories/hierarchy"
)

// parkedSortOrder is the slot an item occupies while its siblings are renumbered.
// Committed rows always use positions >= 1.
const parkedSortOrder = 0

// SortOrderManager computes sibling positions. Positions are contiguous from 1
// after a renumber and may have gaps after deletes or appends.
type SortOrderManager struct {
	items  hierRepo.ItemRepository
	logger *slog.Logger
}

// NewSortOrderManager creates a new sort order manager
func NewSortOrderManager(items hierRepo.ItemRepository, logger *slog.Logger) *SortOrderManager {
	return &SortOrderManager{items: items, logger: logger}
}

// NextSortOrder returns one past the highest sibling position, or 1 when there are no siblings
func (m *SortOrderManager) NextSortOrder(ctx context.Context, parentID *string) (int, error) {
	max, err := m.items.MaxSortOrder(ctx, parentID)
	if err != nil {
		return 0, err
	}
	if max < 0 {
		max = 0
	}
	return max + 1, nil
}

// RenumberForInsertAt assigns positions 1..n to the siblings under parentID,
// excluding excludingID, leaving the slot at target free. target is clamped to
// [1, n+1]; the effective slot is returned with the assignment.
func (m *SortOrderManager) RenumberForInsertAt(ctx context.Context, parentID *string, target int, excludingID string) (map[string]int, int, error) {
	siblings, err := m.items.ListChildren(ctx, parentID)
	if err != nil {
		return nil, 0, fmt.Errorf("list siblings: %w", err)
	}

	ordered := make([]string, 0, len(siblings))
	for _, s := range siblings {
		if s.ID == excludingID {
			continue
		}
		ordered = append(ordered, s.ID)
	}

	if target < 1 {
		target = 1
	}
	if target > len(ordered)+1 {
		target = len(ordered) + 1
	}

	assignment := make(map[string]int, len(ordered))
	pos := 1
	for _, id := range ordered {
		if pos == target {
			pos++
		}
		assignment[id] = pos
		pos++
	}

	return assignment, target, nil
}

// Apply writes an assignment, skipping siblings whose position is unchanged
func (m *SortOrderManager) Apply(ctx context.Context, parentID *string, assignment map[string]int) error {
	if len(assignment) == 0 {
		return nil
	}

	siblings, err := m.items.ListChildren(ctx, parentID)
	if err != nil {
		return fmt.Errorf("list siblings: %w", err)
	}

	changed := make(map[string]int, len(assignment))
	for _, s := range siblings {
		if order, ok := assignment[s.ID]; ok && order != s.SortOrder {
			changed[s.ID] = order
		}
	}
	if len(changed) == 0 {
		return nil
	}

	m.logger.Debug("renumbering siblings",
		"parent_id", parentID,
		"changed", len(changed),
	)
	return m.items.UpdateSortOrders(ctx, parentID, changed)
}

// Place puts item id under parentID at position target, renumbering siblings when
// needed. target <= 0 appends. Callers run it inside a transaction.
func (m *SortOrderManager) Place(ctx context.Context, id string, parentID *string, target int, now time.Time) (int, error) {
	if target <= 0 {
		next, err := m.NextSortOrder(ctx, parentID)
		if err != nil {
			return 0, err
		}
		if err := m.items.UpdatePlacement(ctx, id, parentID, next, now); err != nil {
			return 0, err
		}
		return next, nil
	}

	if err := m.items.UpdatePlacement(ctx, id, parentID, parkedSortOrder, now); err != nil {
		return 0, err
	}

	assignment, slot, err := m.RenumberForInsertAt(ctx, parentID, target, id)
	if err != nil {
		return 0, err
	}
	if err := m.Apply(ctx, parentID, assignment); err != nil {
		return 0, err
	}

	if err := m.items.UpdatePlacement(ctx, id, parentID, slot, now); err != nil {
		return 0, err
	}
	return slot, nil
}
