package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"arbor/internal/domain"
	"arbor/internal/domain/models"
	"arbor/internal/domain/repositories"
	"arbor/internal/domain/services"
	"arbor/internal/events"
	"arbor/internal/itempath"
)

// CopyMany deep-clones each target subtree under the destination parent. The
// full old-id to new-id map is built before any row is written so internal
// references (shortcut targets) can be rewritten onto the copy. A failure
// anywhere rolls back the whole target: no partial subtree is ever committed.
func (s *itemService) CopyMany(ctx context.Context, accountID string, req *services.CopyRequest) (*models.BatchResult, error) {
	return s.runBatch(ctx, events.OpCopy, req.ItemIDs, func(ctx context.Context, itemID string) (*models.Item, error) {
		return s.copyOne(ctx, accountID, itemID, req.NewParentID)
	})
}

func (s *itemService) copyOne(ctx context.Context, accountID, itemID string, newParentID *string) (*models.Item, error) {
	target, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if target.IsRecycled() {
		return nil, fmt.Errorf("%w: cannot copy a recycled item", domain.ErrValidation)
	}
	if err := s.gate.RequireRead(ctx, accountID, target.Path); err != nil {
		return nil, err
	}

	newParentPath := ""
	if newParentID != nil && *newParentID != "" {
		parent, err := s.itemRepo.GetByID(ctx, *newParentID)
		if err != nil {
			return nil, fmt.Errorf("destination parent not found: %w", err)
		}
		if parent.IsRecycled() {
			return nil, fmt.Errorf("%w: destination parent is recycled", domain.ErrValidation)
		}
		if !s.types.AllowsChildren(parent.Type) {
			return nil, fmt.Errorf("%w: items of type %s cannot contain children", domain.ErrValidation, parent.Type)
		}
		if err := s.gate.Require(ctx, accountID, parent.Path, models.PermissionWrite); err != nil {
			return nil, err
		}
		newParentPath = parent.Path
	}

	descendants, err := s.itemRepo.GetDescendants(ctx, target.Path, repositories.DescendantOptions{Ordered: true})
	if err != nil {
		return nil, err
	}
	subtree := append([]models.Item{*target}, descendants...)

	// Id map first, before any row is written.
	idMap := make(map[string]string, len(subtree))
	for _, item := range subtree {
		idMap[item.ID] = uuid.New().String()
	}

	rootKey, err := s.allocateAppendKey(ctx, newParentPath)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	clones := make([]models.Item, 0, len(subtree))
	for _, item := range subtree {
		clone := item
		clone.ID = idMap[item.ID]
		clone.CreatorID = accountID
		clone.CreatedAt = now
		clone.UpdatedAt = now
		clone.DeletedAt = nil

		clone.Path, err = s.mapPath(item.Path, target.Path, newParentPath, idMap)
		if err != nil {
			return nil, &domain.CopyAbortedError{ItemID: itemID, Err: err}
		}
		if item.ID == target.ID {
			clone.OrderKey = rootKey
		}
		clone.Extra = s.mapExtraRefs(item.Type, item.Extra, idMap)
		clones = append(clones, clone)
	}

	memberships, err := s.membershipRepo.GetBelowPath(ctx, target.Path)
	if err != nil {
		return nil, err
	}
	clonedMemberships := make([]models.ItemMembership, 0, len(memberships))
	for _, m := range memberships {
		newPath, err := s.mapPath(m.ItemPath, target.Path, newParentPath, idMap)
		if err != nil {
			return nil, &domain.CopyAbortedError{ItemID: itemID, Err: err}
		}
		clonedMemberships = append(clonedMemberships, models.ItemMembership{
			ID:         uuid.New().String(),
			AccountID:  m.AccountID,
			ItemPath:   newPath,
			Permission: m.Permission,
			CreatorID:  accountID,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.itemRepo.InsertMany(ctx, clones); err != nil {
			return &domain.CopyAbortedError{ItemID: itemID, Err: err}
		}
		if len(clonedMemberships) > 0 {
			if err := s.membershipRepo.InsertMany(ctx, clonedMemberships); err != nil {
				return &domain.CopyAbortedError{ItemID: itemID, Err: err}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.maybeRescale(newParentPath, rootKey)

	copied := clones[0]
	s.logger.Info("item copied",
		"source_id", target.ID,
		"copy_id", copied.ID,
		"items", len(clones),
		"memberships", len(clonedMemberships),
	)
	return &copied, nil
}

// mapPath rewrites a path at or under the copied root onto the copy: the
// portion above the root is replaced by the destination parent path and every
// segment at or below it is replaced through the id map.
func (s *itemService) mapPath(path, rootPath, newParentPath string, idMap map[string]string) (string, error) {
	if !itempath.IsDescendant(path, rootPath) {
		return "", fmt.Errorf("path %s is outside the copied subtree %s", path, rootPath)
	}

	segments := itempath.Segments(path)
	skip := itempath.Depth(rootPath) - 1
	mapped := newParentPath
	var err error
	for _, seg := range segments[skip:] {
		newID, ok := idMap[seg]
		if !ok {
			return "", fmt.Errorf("no mapping for subtree segment %s", seg)
		}
		mapped, err = itempath.Append(mapped, newID)
		if err != nil {
			return "", err
		}
	}
	return mapped, nil
}

// mapExtraRefs rewrites item id references inside extra when the referenced
// item is part of the copied subtree. References pointing outside it are left
// alone and keep targeting the original.
func (s *itemService) mapExtraRefs(itemType string, extra map[string]interface{}, idMap map[string]string) map[string]interface{} {
	if extra == nil {
		return nil
	}
	clone := make(map[string]interface{}, len(extra))
	for k, v := range extra {
		clone[k] = v
	}
	for _, field := range s.types.RefFields(itemType) {
		ref, ok := clone[field].(string)
		if !ok {
			continue
		}
		if newID, inSubtree := idMap[ref]; inSubtree {
			clone[field] = newID
		}
	}
	return clone
}
