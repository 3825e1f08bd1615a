package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"arbor/internal/domain"
	"arbor/internal/domain/models"
	"arbor/internal/domain/repositories"
	"arbor/internal/domain/services"
)

type visibilityService struct {
	visibilityRepo repositories.VisibilityRepository
	itemRepo       repositories.ItemRepository
	gate           services.AuthorizationGate
	logger         *slog.Logger
}

// NewVisibilityService creates a new visibility service
func NewVisibilityService(
	visibilityRepo repositories.VisibilityRepository,
	itemRepo repositories.ItemRepository,
	gate services.AuthorizationGate,
	logger *slog.Logger,
) services.VisibilityService {
	return &visibilityService{
		visibilityRepo: visibilityRepo,
		itemRepo:       itemRepo,
		gate:           gate,
		logger:         logger,
	}
}

// Set attaches a visibility flag to the item's subtree. Setting the same flag
// twice at the same level is a conflict.
func (s *visibilityService) Set(ctx context.Context, actorID, itemID string, req *models.SetVisibilityRequest) (*models.ItemVisibility, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown visibility type %s", domain.ErrValidation, req.Type)
	}

	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Require(ctx, actorID, item.Path, models.PermissionAdmin); err != nil {
		return nil, err
	}

	existing, err := s.visibilityRepo.GetByPathAndType(ctx, item.Path, req.Type)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &domain.ConflictError{
			Message:      "visibility already set at this level",
			ResourceType: "visibility",
			ResourceID:   existing.ID,
		}
	}

	visibility := &models.ItemVisibility{
		ID:        uuid.New().String(),
		ItemPath:  item.Path,
		Type:      req.Type,
		CreatorID: actorID,
		CreatedAt: time.Now(),
	}
	if err := s.visibilityRepo.Insert(ctx, visibility); err != nil {
		return nil, err
	}

	s.logger.Info("visibility set", "item_id", itemID, "type", req.Type)
	return visibility, nil
}

// Clear removes the flag at exactly the level that set it. It does not
// un-hide a subtree hidden at a shallower ancestor.
func (s *visibilityService) Clear(ctx context.Context, actorID, itemID string, visType models.VisibilityType) error {
	if !visType.Valid() {
		return fmt.Errorf("%w: unknown visibility type %s", domain.ErrValidation, visType)
	}

	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if err := s.gate.Require(ctx, actorID, item.Path, models.PermissionAdmin); err != nil {
		return err
	}

	if err := s.visibilityRepo.Delete(ctx, item.Path, visType); err != nil {
		return err
	}
	s.logger.Info("visibility cleared", "item_id", itemID, "type", visType)
	return nil
}

// ListBelow returns every visibility flag attached at or under the item.
func (s *visibilityService) ListBelow(ctx context.Context, actorID, itemID string) ([]models.ItemVisibility, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Require(ctx, actorID, item.Path, models.PermissionAdmin); err != nil {
		return nil, err
	}
	return s.visibilityRepo.GetBelowPath(ctx, item.Path)
}
