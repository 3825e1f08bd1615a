package service

import (
	"context"
	"errors"
	"fmt"

	"arbor/internal/domain"
	"arbor/internal/domain/models"
	"arbor/internal/events"
)

// targetFn performs the whole structural change for one target id, including
// its transaction, and returns the resulting item.
type targetFn func(ctx context.Context, itemID string) (*models.Item, error)

// runBatch processes each target independently and partitions the outcome.
// One target's failure never aborts the others. Cancellation is honored
// between targets: already-committed targets stay committed and the partial
// partition is returned alongside the context error.
func (s *itemService) runBatch(ctx context.Context, op events.Operation, itemIDs []string, fn targetFn) (*models.BatchResult, error) {
	if len(itemIDs) == 0 {
		return nil, fmt.Errorf("%w: no target items", domain.ErrValidation)
	}

	result := &models.BatchResult{
		Succeeded: []models.Item{},
		Failed:    []models.TargetError{},
	}

	seen := make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if err := ctx.Err(); err != nil {
			return result, err
		}

		item, err := fn(ctx, id)
		if err != nil {
			result.Failed = append(result.Failed, models.TargetError{
				ItemID: id,
				Kind:   errorKind(err),
				Detail: err.Error(),
			})
			s.publisher.Publish(ctx, events.Event{Operation: op, TargetID: id, Err: err})
			continue
		}
		result.Succeeded = append(result.Succeeded, *item)
		s.publisher.Publish(ctx, events.Event{Operation: op, TargetID: id, Item: item})
	}

	s.logger.Info("batch completed",
		"operation", string(op),
		"succeeded", len(result.Succeeded),
		"failed", len(result.Failed),
	)
	return result, nil
}

// errorKind maps an error to the stable kind string reported per target.
func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrCyclicMove):
		return "cyclic_move"
	case errors.Is(err, domain.ErrOrphanedRestore):
		return "orphaned_restore"
	case errors.Is(err, domain.ErrCopyAborted):
		return "copy_aborted"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrAccessDenied):
		return "access_denied"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	default:
		return "internal"
	}
}
