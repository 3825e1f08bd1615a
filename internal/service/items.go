package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"arbor/internal/config"
	"arbor/internal/domain"
	"arbor/internal/domain/models"
	"arbor/internal/domain/repositories"
	"arbor/internal/domain/services"
	"arbor/internal/events"
	"arbor/internal/itempath"
	"arbor/internal/itemtypes"
	"arbor/internal/orderkey"
)

// RescaleQueue accepts parent paths whose children need fresh order keys.
// Submissions never block the foreground request.
type RescaleQueue interface {
	Enqueue(parentPath string)
}

type itemService struct {
	itemRepo       repositories.ItemRepository
	membershipRepo repositories.MembershipRepository
	recycledRepo   repositories.RecycledItemRepository
	txManager      repositories.TransactionManager
	gate           services.AuthorizationGate
	types          *itemtypes.Registry
	publisher      events.Publisher
	rescaleQueue   RescaleQueue
	logger         *slog.Logger
}

// NewItemService creates a new item service
func NewItemService(
	itemRepo repositories.ItemRepository,
	membershipRepo repositories.MembershipRepository,
	recycledRepo repositories.RecycledItemRepository,
	txManager repositories.TransactionManager,
	gate services.AuthorizationGate,
	types *itemtypes.Registry,
	publisher events.Publisher,
	rescaleQueue RescaleQueue,
	logger *slog.Logger,
) services.ItemService {
	return &itemService{
		itemRepo:       itemRepo,
		membershipRepo: membershipRepo,
		recycledRepo:   recycledRepo,
		txManager:      txManager,
		gate:           gate,
		types:          types,
		publisher:      publisher,
		rescaleQueue:   rescaleQueue,
		logger:         logger,
	}
}

// Create inserts a new item under the given parent, or at root level when no
// parent is named. Root creation also grants the creator an admin membership
// on the new item; without it nobody could ever reach the subtree.
func (s *itemService) Create(ctx context.Context, accountID string, req *models.CreateItemRequest) (*models.Item, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Normalize empty string to nil for root-level items
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}

	parentPath := ""
	if req.ParentID != nil {
		parent, err := s.itemRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("parent item not found: %w", err)
		}
		if parent.IsRecycled() {
			return nil, fmt.Errorf("%w: parent is recycled", domain.ErrValidation)
		}
		if !s.types.AllowsChildren(parent.Type) {
			return nil, fmt.Errorf("%w: items of type %s cannot contain children", domain.ErrValidation, parent.Type)
		}
		if itempath.Depth(parent.Path) >= config.MaxPathDepth {
			return nil, fmt.Errorf("%w: maximum tree depth of %d reached", domain.ErrValidation, config.MaxPathDepth)
		}
		if err := s.gate.Require(ctx, accountID, parent.Path, models.PermissionWrite); err != nil {
			return nil, err
		}
		parentPath = parent.Path
	}

	id := uuid.New().String()
	path, err := itempath.Append(parentPath, id)
	if err != nil {
		return nil, err
	}

	key, err := s.allocateAppendKey(ctx, parentPath)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	item := &models.Item{
		ID:        id,
		Name:      req.Name,
		Type:      req.Type,
		Extra:     req.Extra,
		Path:      path,
		OrderKey:  key,
		CreatorID: accountID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.itemRepo.Insert(ctx, item); err != nil {
			return err
		}
		if req.ParentID == nil {
			membership := &models.ItemMembership{
				ID:         uuid.New().String(),
				AccountID:  accountID,
				ItemPath:   item.Path,
				Permission: models.PermissionAdmin,
				CreatorID:  accountID,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			return s.membershipRepo.Insert(ctx, membership)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.maybeRescale(parentPath, key)
	s.publisher.Publish(ctx, events.Event{Operation: events.OpCreate, TargetID: item.ID, Item: item})

	s.logger.Info("item created",
		"id", item.ID,
		"name", item.Name,
		"type", item.Type,
		"path", item.Path,
	)
	return item, nil
}

// Get retrieves a single item after a read check on its path.
func (s *itemService) Get(ctx context.Context, accountID, itemID string) (*models.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.RequireRead(ctx, accountID, item.Path); err != nil {
		return nil, err
	}
	return item, nil
}

// GetChildren lists the item's direct non-recycled children in display order.
func (s *itemService) GetChildren(ctx context.Context, accountID, itemID string) ([]models.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.RequireRead(ctx, accountID, item.Path); err != nil {
		return nil, err
	}
	return s.itemRepo.GetChildren(ctx, item.Path, false)
}

// GetDescendants lists the item's whole live subtree, depth first then
// display order within each parent.
func (s *itemService) GetDescendants(ctx context.Context, accountID, itemID string) ([]models.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.RequireRead(ctx, accountID, item.Path); err != nil {
		return nil, err
	}
	return s.itemRepo.GetDescendants(ctx, item.Path, repositories.DescendantOptions{Ordered: true})
}

// GetAncestors returns the item's chain root first, the item itself last.
// Read access on the item covers the chain: the breadcrumb to something you
// can see is part of seeing it.
func (s *itemService) GetAncestors(ctx context.Context, accountID, itemID string) ([]models.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.RequireRead(ctx, accountID, item.Path); err != nil {
		return nil, err
	}
	return s.itemRepo.GetAncestorChain(ctx, item.Path)
}

// Update applies an in-place property change. Structural changes go through
// the move and reorder operations instead.
func (s *itemService) Update(ctx context.Context, accountID, itemID string, req *models.UpdateItemRequest) (*models.Item, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Require(ctx, accountID, item.Path, models.PermissionWrite); err != nil {
		return nil, err
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Extra != nil {
		item.Extra = req.Extra
	}
	item.UpdatedAt = time.Now()

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.Event{Operation: events.OpUpdate, TargetID: item.ID, Item: item})
	return item, nil
}

func (s *itemService) validateCreateRequest(req *models.CreateItemRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxItemNameLength)),
		validation.Field(&req.Type, validation.Required, validation.By(s.knownType)),
	)
}

func (s *itemService) validateUpdateRequest(req *models.UpdateItemRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.Length(1, config.MaxItemNameLength)),
	)
}

func (s *itemService) knownType(value interface{}) error {
	t, _ := value.(string)
	if !s.types.Known(t) {
		return fmt.Errorf("unknown item type: %s", t)
	}
	return nil
}

// allocateAppendKey returns an order key placing a new child after the
// parent's current last child. A root-level item gets an initial key; root
// siblings have no shared display order.
func (s *itemService) allocateAppendKey(ctx context.Context, parentPath string) (string, error) {
	if parentPath == "" {
		return orderkey.Between("", "")
	}
	siblings, err := s.itemRepo.GetChildren(ctx, parentPath, false)
	if err != nil {
		return "", err
	}
	last := ""
	if len(siblings) > 0 {
		last = siblings[len(siblings)-1].OrderKey
	}
	return orderkey.Between(last, "")
}

// maybeRescale submits the parent for a background rescale when the freshly
// allocated key signals exhausted precision.
func (s *itemService) maybeRescale(parentPath, key string) {
	if parentPath == "" || s.rescaleQueue == nil || !orderkey.NeedsRescale(key) {
		return
	}
	s.rescaleQueue.Enqueue(parentPath)
}
