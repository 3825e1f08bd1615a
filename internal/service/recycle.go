package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"arbor/internal/domain"
	"arbor/internal/domain/models"
	"arbor/internal/domain/services"
	"arbor/internal/events"
	"arbor/internal/itempath"
)

// RecycleMany soft-deletes each target subtree. The target becomes a recycle
// root; descendants are covered by the path prefix and never individually
// recorded. Memberships and visibilities stay intact so a restore reproduces
// the exact prior access.
func (s *itemService) RecycleMany(ctx context.Context, accountID string, req *services.RecycleRequest) (*models.BatchResult, error) {
	return s.runBatch(ctx, events.OpRecycle, req.ItemIDs, func(ctx context.Context, itemID string) (*models.Item, error) {
		return s.recycleOne(ctx, accountID, itemID)
	})
}

func (s *itemService) recycleOne(ctx context.Context, accountID, itemID string) (*models.Item, error) {
	target, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	// A set deleted_at covers both "already recycled" and "descendant of a
	// recycled item": recycling marks the whole subtree.
	if target.IsRecycled() {
		return nil, &domain.ConflictError{
			Message:      "item is already recycled",
			ResourceType: "item",
			ResourceID:   itemID,
		}
	}
	if err := s.gate.Require(ctx, accountID, target.Path, models.PermissionAdmin); err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if _, err := s.itemRepo.MarkRecycledByPrefix(ctx, target.Path, now); err != nil {
			return err
		}
		return s.recycledRepo.Insert(ctx, &models.RecycledItemData{
			ID:        uuid.New().String(),
			ItemID:    target.ID,
			CreatorID: accountID,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	target.DeletedAt = &now
	s.logger.Info("item recycled", "id", target.ID, "path", target.Path)
	return target, nil
}

// RestoreMany brings each recycle root and its subtree back. Restoring fails
// for an orphan: the parent must still exist and must not itself be recycled.
func (s *itemService) RestoreMany(ctx context.Context, accountID string, req *services.RecycleRequest) (*models.BatchResult, error) {
	return s.runBatch(ctx, events.OpRestore, req.ItemIDs, func(ctx context.Context, itemID string) (*models.Item, error) {
		return s.restoreOne(ctx, accountID, itemID)
	})
}

func (s *itemService) restoreOne(ctx context.Context, accountID, itemID string) (*models.Item, error) {
	if _, err := s.recycledRepo.GetByItemID(ctx, itemID); err != nil {
		return nil, fmt.Errorf("item is not a recycle root: %w", err)
	}
	target, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.checkRestorable(ctx, target); err != nil {
		return nil, err
	}
	if err := s.gate.Require(ctx, accountID, target.Path, models.PermissionAdmin); err != nil {
		return nil, err
	}

	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		fresh, err := s.itemRepo.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		if err := s.checkRestorable(ctx, fresh); err != nil {
			return err
		}
		if _, err := s.itemRepo.ClearRecycledByPrefix(ctx, fresh.Path); err != nil {
			return err
		}
		// The prefix delete also drops records of recycle roots nested
		// inside the restored subtree: they come back to life here, so a
		// trash entry for them would point at a live item.
		_, err = s.recycledRepo.DeleteByPathPrefix(ctx, fresh.Path)
		return err
	})
	if err != nil {
		return nil, err
	}

	target.DeletedAt = nil
	s.logger.Info("item restored", "id", target.ID, "path", target.Path)
	return target, nil
}

// checkRestorable enforces the orphan rule: a root item always restores, a
// nested one only while its parent is present and live.
func (s *itemService) checkRestorable(ctx context.Context, target *models.Item) error {
	parentPath, ok := itempath.Parent(target.Path)
	if !ok {
		return nil
	}
	parent, err := s.itemRepo.GetByID(ctx, itempath.Last(parentPath))
	if err != nil {
		return &domain.OrphanedRestoreError{ItemID: target.ID}
	}
	if parent.IsRecycled() {
		return &domain.OrphanedRestoreError{ItemID: target.ID}
	}
	return nil
}

// ListTrash returns the account's recycle roots, newest first.
func (s *itemService) ListTrash(ctx context.Context, accountID string) ([]models.TrashEntry, error) {
	records, err := s.recycledRepo.ListByCreator(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []models.TrashEntry{}, nil
	}

	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.ItemID
	}
	items, err := s.itemRepo.GetManyByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	entries := make([]models.TrashEntry, 0, len(records))
	for _, rec := range records {
		item, ok := byID[rec.ItemID]
		if !ok {
			continue
		}
		entries = append(entries, models.TrashEntry{Recycled: rec, Item: item})
	}
	return entries, nil
}
