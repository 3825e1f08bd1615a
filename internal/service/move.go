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

// MoveMany re-parents each target subtree independently. Membership and
// visibility rows survive untouched: they are keyed by path and the prefix
// rewrite re-roots their scope in the same statement.
func (s *itemService) MoveMany(ctx context.Context, accountID string, req *services.MoveRequest) (*models.BatchResult, error) {
	return s.runBatch(ctx, events.OpMove, req.ItemIDs, func(ctx context.Context, itemID string) (*models.Item, error) {
		return s.moveOne(ctx, accountID, itemID, req.NewParentID, req.PreviousSiblingID)
	})
}

func (s *itemService) moveOne(ctx context.Context, accountID, itemID string, newParentID, previousSiblingID *string) (*models.Item, error) {
	if _, _, err := s.validateMove(ctx, accountID, itemID, newParentID); err != nil {
		return nil, err
	}

	var moved *models.Item
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		// Re-validate inside the transaction so a concurrent move cannot
		// slip a cycle past a stale pre-check.
		fresh, parentPath, err := s.validateMove(ctx, accountID, itemID, newParentID)
		if err != nil {
			return err
		}

		newPath, err := itempath.Append(parentPath, fresh.ID)
		if err != nil {
			return err
		}
		// A move to the current parent without a position hint is a no-op;
		// with a hint it still repositions the item among its siblings.
		if newPath == fresh.Path && previousSiblingID == nil {
			moved = fresh
			return nil
		}

		if newPath != fresh.Path {
			if _, err := s.itemRepo.RewritePrefix(ctx, fresh.Path, newPath); err != nil {
				return err
			}
		}

		key, err := s.allocateMoveKey(ctx, parentPath, fresh.ID, previousSiblingID)
		if err != nil {
			return err
		}
		if err := s.itemRepo.UpdateOrderKey(ctx, fresh.ID, key); err != nil {
			return err
		}

		fresh.Path = newPath
		fresh.OrderKey = key
		moved = fresh
		s.maybeRescale(parentPath, key)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("item moved", "id", moved.ID, "path", moved.Path)
	return moved, nil
}

// validateMove loads the target, resolves the destination parent path and
// checks permissions and the cycle invariant. It runs once before and once
// inside the transaction.
func (s *itemService) validateMove(ctx context.Context, accountID, itemID string, newParentID *string) (*models.Item, string, error) {
	target, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, "", err
	}
	if target.IsRecycled() {
		return nil, "", fmt.Errorf("%w: cannot move a recycled item", domain.ErrValidation)
	}
	if err := s.gate.Require(ctx, accountID, target.Path, models.PermissionAdmin); err != nil {
		return nil, "", err
	}

	newParentPath := ""
	if newParentID != nil && *newParentID != "" {
		parent, err := s.itemRepo.GetByID(ctx, *newParentID)
		if err != nil {
			return nil, "", fmt.Errorf("destination parent not found: %w", err)
		}
		if parent.IsRecycled() {
			return nil, "", fmt.Errorf("%w: destination parent is recycled", domain.ErrValidation)
		}
		if !s.types.AllowsChildren(parent.Type) {
			return nil, "", fmt.Errorf("%w: items of type %s cannot contain children", domain.ErrValidation, parent.Type)
		}
		if itempath.IsDescendant(parent.Path, target.Path) {
			return nil, "", &domain.CyclicMoveError{ItemID: target.ID, DestinationID: parent.ID}
		}
		if err := s.gate.Require(ctx, accountID, parent.Path, models.PermissionWrite); err != nil {
			return nil, "", err
		}
		newParentPath = parent.Path
	}
	return target, newParentPath, nil
}

// allocateMoveKey places the moved item among the destination's children:
// after previousSiblingID when given, at the end otherwise.
func (s *itemService) allocateMoveKey(ctx context.Context, parentPath, movedID string, previousSiblingID *string) (string, error) {
	if parentPath == "" {
		return orderkey.Between("", "")
	}
	siblings, err := s.itemRepo.GetChildren(ctx, parentPath, false)
	if err != nil {
		return "", err
	}
	// The target may already appear among the children when the rewrite
	// has happened; it is not its own neighbor.
	live := siblings[:0]
	for _, sib := range siblings {
		if sib.ID != movedID {
			live = append(live, sib)
		}
	}

	if previousSiblingID == nil {
		last := ""
		if len(live) > 0 {
			last = live[len(live)-1].OrderKey
		}
		return orderkey.Between(last, "")
	}

	for i, sib := range live {
		if sib.ID == *previousSiblingID {
			next := ""
			if i+1 < len(live) {
				next = live[i+1].OrderKey
			}
			return orderkey.Between(sib.OrderKey, next)
		}
	}
	return "", fmt.Errorf("%w: previous sibling %s is not a child of the destination", domain.ErrValidation, *previousSiblingID)
}
