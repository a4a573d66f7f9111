package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/henrytires/backend/internal/domain/catalog"
	"github.com/henrytires/backend/internal/domain/identity"
	"github.com/henrytires/backend/internal/domain/inventory"
	"github.com/henrytires/backend/internal/domain/shared"
)

// CreateItemRequest creates a catalog item
type CreateItemRequest struct {
	ItemCode       string `json:"itemCode" binding:"required"`
	Description    string `json:"description" binding:"required"`
	Classification string `json:"classification" binding:"required,oneof=Good Service"`
	Notes          string `json:"notes,omitempty"`
}

// CreateBranchRequest creates a branch
type CreateBranchRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// CatalogService manages items and branches. Creating a Good eagerly
// provisions an empty version-0 stock summary at every branch so summary
// listings show the item before its first transaction.
type CatalogService struct {
	itemRepo    catalog.ItemRepository
	branchRepo  catalog.BranchRepository
	summaryRepo inventory.SummaryRepository
	clock       shared.Clock
	logger      *zap.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	itemRepo catalog.ItemRepository,
	branchRepo catalog.BranchRepository,
	summaryRepo inventory.SummaryRepository,
	clock shared.Clock,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		itemRepo:    itemRepo,
		branchRepo:  branchRepo,
		summaryRepo: summaryRepo,
		clock:       clock,
		logger:      logger,
	}
}

// CreateItem creates a catalog item. Only admins manage the catalog.
func (s *CatalogService) CreateItem(ctx context.Context, actor identity.Actor, req CreateItemRequest) (*catalog.Item, error) {
	if !actor.IsAdmin() {
		return nil, shared.NewUnauthorizedError("Only administrators may manage the catalog")
	}
	if existing, err := s.itemRepo.FindByCode(ctx, req.ItemCode); err == nil && existing != nil {
		return nil, shared.NewBusinessError("Item code already exists: " + req.ItemCode)
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	now := s.clock.Now()
	item, err := catalog.NewItem(req.ItemCode, req.Description, catalog.Classification(req.Classification), actor.Username, now)
	if err != nil {
		return nil, err
	}
	if req.Notes != "" {
		item.Notes = req.Notes
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	if item.IsGood() {
		if err := s.provisionSummaries(ctx, item.ItemCode, actor.Username); err != nil {
			return nil, err
		}
	}

	s.logger.Info("catalog item created",
		zap.String("itemCode", item.ItemCode),
		zap.String("classification", string(item.Classification)))
	return item, nil
}

// provisionSummaries creates an empty summary for the item at every branch
// that does not already have one. New summaries start at version 0; the
// first applied transaction moves them to 1.
func (s *CatalogService) provisionSummaries(ctx context.Context, itemCode, createdBy string) error {
	branches, err := s.branchRepo.FindAll(ctx)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	for _, branch := range branches {
		_, err := s.summaryRepo.FindByBranchAndItem(ctx, branch.Code, itemCode)
		if err == nil {
			continue
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		summary, err := inventory.NewInventorySummary(branch.Code, itemCode, createdBy, now)
		if err != nil {
			return err
		}
		if err := s.summaryRepo.Save(ctx, summary); err != nil {
			return err
		}
	}
	return nil
}

// DeleteItem soft-deletes an item; the transaction ledger keeps referencing it
func (s *CatalogService) DeleteItem(ctx context.Context, actor identity.Actor, itemID uuid.UUID) error {
	if !actor.IsAdmin() {
		return shared.NewUnauthorizedError("Only administrators may manage the catalog")
	}

	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return err
	}
	if err := item.SoftDelete(actor.Username, s.clock.Now()); err != nil {
		return err
	}
	return s.itemRepo.Save(ctx, item)
}

// GetItem returns one item by code
func (s *CatalogService) GetItem(ctx context.Context, itemCode string) (*catalog.Item, error) {
	return s.itemRepo.FindByCode(ctx, itemCode)
}

// ListItems returns catalog items, optionally including soft-deleted ones
func (s *CatalogService) ListItems(ctx context.Context, includeDeleted bool) ([]*catalog.Item, error) {
	return s.itemRepo.FindAll(ctx, includeDeleted)
}

// CreateBranch creates a branch and provisions summaries for every existing Good
func (s *CatalogService) CreateBranch(ctx context.Context, actor identity.Actor, req CreateBranchRequest) (*catalog.Branch, error) {
	if !actor.IsAdmin() {
		return nil, shared.NewUnauthorizedError("Only administrators may manage branches")
	}
	if existing, err := s.branchRepo.FindByCode(ctx, req.Code); err == nil && existing != nil {
		return nil, shared.NewBusinessError("Branch code already exists: " + req.Code)
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	now := s.clock.Now()
	branch, err := catalog.NewBranch(req.Code, req.Name, actor.Username, now)
	if err != nil {
		return nil, err
	}
	if err := s.branchRepo.Save(ctx, branch); err != nil {
		return nil, err
	}

	items, err := s.itemRepo.FindAll(ctx, false)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if !item.IsGood() {
			continue
		}
		summary, err := inventory.NewInventorySummary(branch.Code, item.ItemCode, actor.Username, now)
		if err != nil {
			return nil, err
		}
		if err := s.summaryRepo.Save(ctx, summary); err != nil {
			return nil, err
		}
	}

	s.logger.Info("branch created", zap.String("code", branch.Code), zap.String("name", branch.Name))
	return branch, nil
}

// ListBranches returns all branches
func (s *CatalogService) ListBranches(ctx context.Context) ([]*catalog.Branch, error) {
	return s.branchRepo.FindAll(ctx)
}
