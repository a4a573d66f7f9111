package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appinventory "github.com/henrytires/backend/internal/application/inventory"
	"github.com/henrytires/backend/internal/domain/catalog"
	"github.com/henrytires/backend/internal/domain/identity"
	"github.com/henrytires/backend/internal/domain/inventory"
	"github.com/henrytires/backend/internal/domain/sales"
	"github.com/henrytires/backend/internal/domain/shared"
	"github.com/henrytires/backend/internal/domain/shared/valueobject"
)

// SaleService coordinates creation and posting of sales. Posting derives an
// outbound inventory transaction for the goods lines and runs it through the
// transaction service's commit path inside one atomic scope, so a sale and
// its stock debit succeed or fail together.
type SaleService struct {
	saleRepo    sales.SaleRepository
	itemRepo    catalog.ItemRepository
	branchRepo  catalog.BranchRepository
	priceRepo   inventory.ItemPriceRepository
	summaryRepo inventory.SummaryRepository
	txService   *appinventory.TransactionService
	scope       appinventory.TransactionScope
	sequences   appinventory.SequenceGenerator
	clock       shared.Clock
	logger      *zap.Logger
}

// NewSaleService creates a new SaleService
func NewSaleService(
	saleRepo sales.SaleRepository,
	itemRepo catalog.ItemRepository,
	branchRepo catalog.BranchRepository,
	priceRepo inventory.ItemPriceRepository,
	summaryRepo inventory.SummaryRepository,
	txService *appinventory.TransactionService,
	scope appinventory.TransactionScope,
	sequences appinventory.SequenceGenerator,
	clock shared.Clock,
	logger *zap.Logger,
) *SaleService {
	return &SaleService{
		saleRepo:    saleRepo,
		itemRepo:    itemRepo,
		branchRepo:  branchRepo,
		priceRepo:   priceRepo,
		summaryRepo: summaryRepo,
		txService:   txService,
		scope:       scope,
		sequences:   sequences,
		clock:       clock,
		logger:      logger,
	}
}

// SaleSequenceName returns the sequence key for a branch's sale numbers
func SaleSequenceName(branchCode string) string {
	return "sale-" + branchCode
}

// CreateSale creates a draft sale with a freshly generated per-branch sale
// number. Stock is untouched until the sale is posted.
func (s *SaleService) CreateSale(ctx context.Context, actor identity.Actor, req CreateSaleRequest) (*SaleResponse, error) {
	branchCode, err := appinventory.ResolveBranchForWrite(actor, req.BranchCode)
	if err != nil {
		return nil, err
	}
	branch, err := s.branchRepo.FindByCode(ctx, branchCode)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	saleDate := now
	if req.SaleDate != nil {
		saleDate = req.SaleDate.UTC()
	}

	lines, err := s.buildLines(ctx, actor, branchCode, req.Lines)
	if err != nil {
		return nil, err
	}

	counter, err := s.sequences.NextValue(ctx, SaleSequenceName(branchCode))
	if err != nil {
		return nil, err
	}
	saleNumber := fmt.Sprintf("%s-%07d", branchCode, counter)

	sale, err := sales.NewSale(saleNumber, branch.ID, branchCode, saleDate, lines, actor.Username, now)
	if err != nil {
		return nil, err
	}
	sale.CustomerName = req.CustomerName
	sale.CustomerPhone = req.CustomerPhone
	sale.Notes = req.Notes
	sale.PaymentMethod = req.PaymentMethod

	if err := s.saleRepo.Save(ctx, sale); err != nil {
		return nil, err
	}

	s.logger.Info("sale created",
		zap.String("saleNumber", saleNumber),
		zap.String("branchCode", branchCode),
		zap.Int("lines", len(sale.Lines)))

	resp := ToSaleResponse(sale)
	return &resp, nil
}

func (s *SaleService) buildLines(ctx context.Context, actor identity.Actor, branchCode string, reqs []CreateSaleLineRequest) ([]sales.SaleLine, error) {
	lines := make([]sales.SaleLine, 0, len(reqs))
	for _, lr := range reqs {
		if lr.Quantity <= 0 {
			return nil, shared.NewValidationError(fmt.Sprintf("Quantity must be positive, got %d", lr.Quantity))
		}

		item, err := s.itemRepo.FindByCode(ctx, lr.ItemCode)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewNotFoundError("Item not found: " + lr.ItemCode)
			}
			return nil, err
		}
		if item.IsDeleted {
			return nil, shared.NewValidationError("Item has been deleted: " + lr.ItemCode)
		}

		var condition *inventory.Condition
		if lr.Condition != nil {
			parsed, err := inventory.ParseCondition(*lr.Condition)
			if err != nil {
				return nil, err
			}
			condition = &parsed
		}

		reference, err := s.referencePrice(ctx, lr.ItemCode)
		if err != nil {
			return nil, err
		}
		// Selling prices on a sale follow the outbound rule: only Admin
		// and Supervisor may override the reference price.
		resolution, err := inventory.ResolveOutPrice(lr.UnitPrice, reference, actor)
		if err != nil {
			return nil, err
		}

		// Advisory availability gate for goods; the negative-balance guard
		// at posting time remains authoritative.
		if item.IsGood() && condition != nil {
			summary, err := s.summaryRepo.FindByBranchAndItem(ctx, branchCode, item.ItemCode)
			if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return nil, err
			}
			check := inventory.CheckAvailability(summary, *condition, lr.Quantity)
			if !check.Sufficient {
				return nil, shared.NewBusinessError(fmt.Sprintf(
					"Insufficient stock for item %s (%s) at branch %s: available %d, requested %d",
					item.ItemCode, *condition, branchCode, check.Available, check.Requested))
			}
		}

		taxable := true
		if lr.IsTaxable != nil {
			taxable = *lr.IsTaxable
		}

		lines = append(lines, sales.SaleLine{
			ID:             uuid.New(),
			ItemID:         item.ID,
			ItemCode:       item.ItemCode,
			Description:    item.Description,
			Classification: item.Classification,
			Condition:      condition,
			Quantity:       lr.Quantity,
			UnitPrice:      resolution.UnitPrice,
			Currency:       valueobject.DefaultCurrency,
			IsTaxable:      taxable,
			AppliesFee:     taxable,
		})
	}
	return lines, nil
}

func (s *SaleService) referencePrice(ctx context.Context, itemCode string) (*decimal.Decimal, error) {
	price, err := s.priceRepo.FindByItemCode(ctx, itemCode)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &price.LatestPrice, nil
}

// PostSale posts a draft sale inside one atomic scope: the goods lines are
// turned into a committed outbound transaction, each goods line is
// back-linked to it, and the sale is marked Committed. A pure-service sale
// posts with no inventory effect at all. Any failure rolls back the whole
// scope.
func (s *SaleService) PostSale(ctx context.Context, actor identity.Actor, saleID uuid.UUID) (*SaleResponse, error) {
	var posted *sales.Sale

	err := s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		sale, err := repos.SaleRepo().FindByID(ctx, saleID)
		if err != nil {
			return err
		}
		if err := s.authorizeExisting(actor, sale.BranchCode); err != nil {
			return err
		}
		if sale.Status != sales.SaleStatusDraft {
			return shared.NewBusinessError(fmt.Sprintf(
				"Sale %s has already been posted and cannot be posted again", sale.SaleNumber))
		}

		now := s.clock.Now()

		goods := sale.GoodLines()
		if len(goods) > 0 {
			tx, err := s.deriveOutTransaction(sale, goods, actor, now)
			if err != nil {
				return err
			}
			if err := s.txService.CommitInScope(ctx, repos, tx, actor.Username, now); err != nil {
				return err
			}
			sale.LinkInventoryTransaction(tx.ID)
		}

		if err := sale.MarkPosted(actor.Username, now); err != nil {
			return err
		}
		if err := repos.SaleRepo().Save(ctx, sale); err != nil {
			return err
		}

		posted = sale
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sale posted",
		zap.String("saleNumber", posted.SaleNumber),
		zap.String("branchCode", posted.BranchCode),
		zap.String("postedBy", actor.Username),
		zap.Int("goodsLines", len(posted.GoodLines())))

	resp := ToSaleResponse(posted)
	return &resp, nil
}

// deriveOutTransaction synthesizes the outbound inventory transaction for a
// sale's goods lines, one inventory line per goods line
func (s *SaleService) deriveOutTransaction(
	sale *sales.Sale,
	goods []*sales.SaleLine,
	actor identity.Actor,
	now time.Time,
) (*inventory.InventoryTransaction, error) {
	lines := make([]inventory.InventoryTransactionLine, 0, len(goods))
	for _, g := range goods {
		lines = append(lines, inventory.InventoryTransactionLine{
			ID:             uuid.New(),
			ItemID:         g.ItemID,
			ItemCode:       g.ItemCode,
			Condition:      *g.Condition,
			Quantity:       g.Quantity,
			UnitPrice:      g.UnitPrice,
			Currency:       g.Currency,
			IsTaxable:      g.IsTaxable,
			AppliesFee:     g.AppliesFee,
			PriceSource:    inventory.PriceSourceSale,
			PriceSetByRole: string(actor.Role),
			PriceSetByUser: actor.Username,
			LineTotal:      g.LineTotal,
			ExecutedAtUtc:  now,
		})
	}

	tx, err := inventory.NewInventoryTransaction(
		sale.BranchCode, inventory.TransactionTypeOut, sale.SaleDateUtc, lines, actor.Username, now)
	if err != nil {
		return nil, err
	}
	notes := "Sale: " + sale.SaleNumber
	tx.Notes = &notes
	tx.PaymentMethod = sale.PaymentMethod
	return tx, nil
}

func (s *SaleService) authorizeExisting(actor identity.Actor, branchCode string) error {
	if actor.IsAdmin() {
		return nil
	}
	if !actor.HasBranch() {
		return shared.NewUnauthorizedError(fmt.Sprintf("User %s has no branch assignment", actor.Username))
	}
	if *actor.BranchCode != branchCode {
		return shared.NewUnauthorizedError(fmt.Sprintf(
			"User %s is not authorized for branch %s", actor.Username, branchCode))
	}
	return nil
}

// GetByID returns one sale. Non-admins only see sales of their assigned
// branch; anything else reads as not found.
func (s *SaleService) GetByID(ctx context.Context, actor identity.Actor, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		if !actor.HasBranch() || *actor.BranchCode != sale.BranchCode {
			return nil, shared.NewNotFoundError("Sale not found")
		}
	}

	resp := ToSaleResponse(sale)
	return &resp, nil
}

// GetByBranch returns sales filtered by branch and optional status and date
// range. Non-admin callers are silently scoped to their assigned branch.
func (s *SaleService) GetByBranch(ctx context.Context, actor identity.Actor, requestedBranchCode string, filter sales.SaleFilter) ([]SaleResponse, error) {
	branchCode, err := appinventory.ResolveBranchForRead(actor, requestedBranchCode)
	if err != nil {
		return nil, err
	}
	if branchCode != "" {
		filter.BranchCode = &branchCode
	}

	found, err := s.saleRepo.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]SaleResponse, len(found))
	for i, sale := range found {
		responses[i] = ToSaleResponse(sale)
	}
	return responses, nil
}
