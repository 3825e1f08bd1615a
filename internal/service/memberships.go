package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"arbor/internal/domain"
	"arbor/internal/domain/models"
	"arbor/internal/domain/repositories"
	"arbor/internal/domain/services"
)

type membershipService struct {
	membershipRepo repositories.MembershipRepository
	itemRepo       repositories.ItemRepository
	gate           services.AuthorizationGate
	logger         *slog.Logger
}

// NewMembershipService creates a new membership service
func NewMembershipService(
	membershipRepo repositories.MembershipRepository,
	itemRepo repositories.ItemRepository,
	gate services.AuthorizationGate,
	logger *slog.Logger,
) services.MembershipService {
	return &membershipService{
		membershipRepo: membershipRepo,
		itemRepo:       itemRepo,
		gate:           gate,
		logger:         logger,
	}
}

// Share grants an account a permission over the item's subtree. At most one
// membership may exist per account and exact item.
func (s *membershipService) Share(ctx context.Context, actorID, itemID string, req *models.ShareItemRequest) (*models.ItemMembership, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.AccountID, validation.Required),
		validation.Field(&req.Permission, validation.Required, validation.By(validPermission)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Require(ctx, actorID, item.Path, models.PermissionAdmin); err != nil {
		return nil, err
	}

	existing, err := s.membershipRepo.GetByAccountAndPath(ctx, req.AccountID, item.Path)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &domain.ConflictError{
			Message:      "account already holds a membership on this item",
			ResourceType: "membership",
			ResourceID:   existing.ID,
		}
	}

	now := time.Now()
	membership := &models.ItemMembership{
		ID:         uuid.New().String(),
		AccountID:  req.AccountID,
		ItemPath:   item.Path,
		Permission: req.Permission,
		CreatorID:  actorID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.membershipRepo.Insert(ctx, membership); err != nil {
		return nil, err
	}

	s.logger.Info("item shared",
		"item_id", itemID,
		"account_id", req.AccountID,
		"permission", req.Permission,
	)
	return membership, nil
}

// ListBelow returns every membership attached at or under the item.
func (s *membershipService) ListBelow(ctx context.Context, actorID, itemID string) ([]models.ItemMembership, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Require(ctx, actorID, item.Path, models.PermissionAdmin); err != nil {
		return nil, err
	}
	return s.membershipRepo.GetBelowPath(ctx, item.Path)
}

func (s *membershipService) Update(ctx context.Context, actorID, membershipID string, req *models.UpdateMembershipRequest) (*models.ItemMembership, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Permission, validation.Required, validation.By(validPermission)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	membership, err := s.membershipRepo.GetByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Require(ctx, actorID, membership.ItemPath, models.PermissionAdmin); err != nil {
		return nil, err
	}

	if err := s.membershipRepo.UpdatePermission(ctx, membershipID, req.Permission); err != nil {
		return nil, err
	}
	membership.Permission = req.Permission
	membership.UpdatedAt = time.Now()
	return membership, nil
}

func (s *membershipService) Delete(ctx context.Context, actorID, membershipID string) error {
	membership, err := s.membershipRepo.GetByID(ctx, membershipID)
	if err != nil {
		return err
	}
	if err := s.gate.Require(ctx, actorID, membership.ItemPath, models.PermissionAdmin); err != nil {
		return err
	}

	if err := s.membershipRepo.Delete(ctx, membershipID); err != nil {
		return err
	}
	s.logger.Info("membership removed",
		"membership_id", membershipID,
		"account_id", membership.AccountID,
		"path", membership.ItemPath,
	)
	return nil
}

func validPermission(value interface{}) error {
	p, _ := value.(models.Permission)
	if !p.Valid() {
		return fmt.Errorf("unknown permission: %s", p)
	}
	return nil
}
