package service

import (
	"context"
	"fmt"

	"arbor/internal/domain"
	"arbor/internal/domain/models"
	"arbor/internal/domain/services"
	"arbor/internal/events"
	"arbor/internal/itempath"
	"arbor/internal/orderkey"
)

// Reorder repositions one item among its current siblings. Only the order
// key changes; path and descendants are untouched.
func (s *itemService) Reorder(ctx context.Context, accountID, itemID string, req *services.ReorderRequest) (*models.Item, error) {
	target, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if target.IsRecycled() {
		return nil, fmt.Errorf("%w: cannot reorder a recycled item", domain.ErrValidation)
	}
	parentPath, ok := itempath.Parent(target.Path)
	if !ok {
		return nil, fmt.Errorf("%w: root items have no sibling order", domain.ErrValidation)
	}
	if err := s.gate.Require(ctx, accountID, target.Path, models.PermissionWrite); err != nil {
		return nil, err
	}

	siblings, err := s.itemRepo.GetChildren(ctx, parentPath, false)
	if err != nil {
		return nil, err
	}

	key, err := reorderKey(siblings, itemID, req.PreviousSiblingID)
	if err != nil {
		return nil, err
	}
	if err := s.itemRepo.UpdateOrderKey(ctx, itemID, key); err != nil {
		return nil, err
	}

	target.OrderKey = key
	s.maybeRescale(parentPath, key)
	s.publisher.Publish(ctx, events.Event{Operation: events.OpReorder, TargetID: target.ID, Item: target})
	return target, nil
}

// reorderKey computes the target's new key among siblings: after the named
// previous sibling, or at the front when none is named. The target itself is
// skipped when scanning neighbors.
func reorderKey(siblings []models.Item, targetID string, previousSiblingID *string) (string, error) {
	others := make([]models.Item, 0, len(siblings))
	for _, sib := range siblings {
		if sib.ID != targetID {
			others = append(others, sib)
		}
	}

	if previousSiblingID == nil {
		next := ""
		if len(others) > 0 {
			next = others[0].OrderKey
		}
		return orderkey.Between("", next)
	}
	if *previousSiblingID == targetID {
		return "", fmt.Errorf("%w: item cannot follow itself", domain.ErrValidation)
	}

	for i, sib := range others {
		if sib.ID == *previousSiblingID {
			next := ""
			if i+1 < len(others) {
				next = others[i+1].OrderKey
			}
			return orderkey.Between(sib.OrderKey, next)
		}
	}
	return "", fmt.Errorf("%w: previous sibling %s is not a sibling of the item", domain.ErrValidation, *previousSiblingID)
}
