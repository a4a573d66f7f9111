package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/henrytires/backend/internal/domain/catalog"
	"github.com/henrytires/backend/internal/domain/identity"
	"github.com/henrytires/backend/internal/domain/inventory"
	"github.com/henrytires/backend/internal/domain/shared"
	"github.com/henrytires/backend/internal/domain/shared/valueobject"
)

// TransactionService coordinates creation, commit, and cancellation of
// inventory transactions. Commit is the only path that mutates stock
// summaries and always runs inside one atomic scope.
type TransactionService struct {
	txRepo      inventory.TransactionRepository
	summaryRepo inventory.SummaryRepository
	priceRepo   inventory.ItemPriceRepository
	itemRepo    catalog.ItemRepository
	branchRepo  catalog.BranchRepository
	scope       TransactionScope
	clock       shared.Clock
	logger      *zap.Logger
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	txRepo inventory.TransactionRepository,
	summaryRepo inventory.SummaryRepository,
	priceRepo inventory.ItemPriceRepository,
	itemRepo catalog.ItemRepository,
	branchRepo catalog.BranchRepository,
	scope TransactionScope,
	clock shared.Clock,
	logger *zap.Logger,
) *TransactionService {
	return &TransactionService{
		txRepo:      txRepo,
		summaryRepo: summaryRepo,
		priceRepo:   priceRepo,
		itemRepo:    itemRepo,
		branchRepo:  branchRepo,
		scope:       scope,
		clock:       clock,
		logger:      logger,
	}
}

// CreateIn creates a draft inbound transaction
func (s *TransactionService) CreateIn(ctx context.Context, actor identity.Actor, req CreateTransactionRequest) (*TransactionResponse, error) {
	return s.createDraft(ctx, actor, inventory.TransactionTypeIn, req)
}

// CreateOut creates a draft outbound transaction. Availability is checked
// for every line before any line is created; the check is advisory and the
// negative-balance guard at commit time is authoritative.
func (s *TransactionService) CreateOut(ctx context.Context, actor identity.Actor, req CreateTransactionRequest) (*TransactionResponse, error) {
	return s.createDraft(ctx, actor, inventory.TransactionTypeOut, req)
}

// CreateAdjust creates a draft adjustment transaction whose line quantities
// are new absolute values
func (s *TransactionService) CreateAdjust(ctx context.Context, actor identity.Actor, req CreateTransactionRequest) (*TransactionResponse, error) {
	return s.createDraft(ctx, actor, inventory.TransactionTypeAdjust, req)
}

func (s *TransactionService) createDraft(ctx context.Context, actor identity.Actor, txType inventory.TransactionType, req CreateTransactionRequest) (*TransactionResponse, error) {
	branchCode, err := ResolveBranchForWrite(actor, req.BranchCode)
	if err != nil {
		return nil, err
	}
	if _, err := s.branchRepo.FindByCode(ctx, branchCode); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	txDate := now
	if req.TransactionDate != nil {
		txDate = req.TransactionDate.UTC()
	}

	lines, err := s.buildLines(ctx, actor, txType, branchCode, req.Lines, now)
	if err != nil {
		return nil, err
	}

	tx, err := inventory.NewInventoryTransaction(branchCode, txType, txDate, lines, actor.Username, now)
	if err != nil {
		return nil, err
	}
	tx.Notes = req.Notes
	tx.PaymentMethod = req.PaymentMethod

	if err := s.txRepo.Save(ctx, tx); err != nil {
		return nil, err
	}

	s.logger.Info("inventory transaction created",
		zap.String("transactionNumber", tx.TransactionNumber),
		zap.String("branchCode", branchCode),
		zap.String("type", txType.String()),
		zap.Int("lines", len(tx.Lines)))

	resp := ToTransactionResponse(tx)
	return &resp, nil
}

func (s *TransactionService) buildLines(
	ctx context.Context,
	actor identity.Actor,
	txType inventory.TransactionType,
	branchCode string,
	reqs []CreateLineRequest,
	now time.Time,
) ([]inventory.InventoryTransactionLine, error) {
	if len(reqs) == 0 {
		return nil, shared.NewValidationError("Transaction must have at least one line")
	}

	lines := make([]inventory.InventoryTransactionLine, 0, len(reqs))
	for _, lr := range reqs {
		condition, err := inventory.ParseCondition(lr.Condition)
		if err != nil {
			return nil, err
		}
		if err := validateQuantity(txType, lr.Quantity); err != nil {
			return nil, err
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
		if !item.IsGood() {
			return nil, shared.NewValidationError(fmt.Sprintf(
				"Item %s is a service and cannot appear on an inventory transaction", lr.ItemCode))
		}

		reference, err := s.referencePrice(ctx, lr.ItemCode)
		if err != nil {
			return nil, err
		}

		resolution, err := s.resolvePrice(txType, lr.UnitPrice, reference, actor)
		if err != nil {
			return nil, err
		}

		if txType == inventory.TransactionTypeOut {
			if err := s.checkAvailabilityForLine(ctx, branchCode, lr.ItemCode, condition, lr.Quantity); err != nil {
				return nil, err
			}
		}

		taxable := true
		if lr.IsTaxable != nil {
			taxable = *lr.IsTaxable
		}

		lines = append(lines, inventory.InventoryTransactionLine{
			ID:             uuid.New(),
			ItemID:         item.ID,
			ItemCode:       item.ItemCode,
			Condition:      condition,
			Quantity:       lr.Quantity,
			UnitPrice:      resolution.UnitPrice,
			Currency:       valueobject.DefaultCurrency,
			IsTaxable:      taxable,
			AppliesFee:     taxable,
			PriceSource:    resolution.Source,
			PriceSetByRole: resolution.SetByRole,
			PriceSetByUser: resolution.SetByUser,
			LineTotal:      inventory.CalculateLineTotal(lr.Quantity, resolution.UnitPrice),
			PriceNotes:     lr.Notes,
			ExecutedAtUtc:  now,
		})
	}

	return lines, nil
}

func validateQuantity(txType inventory.TransactionType, qty int) error {
	if txType == inventory.TransactionTypeAdjust {
		if qty < 0 {
			return shared.NewValidationError(fmt.Sprintf("Adjustment quantity cannot be negative, got %d", qty))
		}
		return nil
	}
	if qty <= 0 {
		return shared.NewValidationError(fmt.Sprintf("Quantity must be positive, got %d", qty))
	}
	return nil
}

func (s *TransactionService) referencePrice(ctx context.Context, itemCode string) (*decimal.Decimal, error) {
	price, err := s.priceRepo.FindByItemCode(ctx, itemCode)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &price.LatestPrice, nil
}

func (s *TransactionService) resolvePrice(
	txType inventory.TransactionType,
	manual *decimal.Decimal,
	reference *decimal.Decimal,
	actor identity.Actor,
) (inventory.PriceResolution, error) {
	switch txType {
	case inventory.TransactionTypeIn:
		return inventory.ResolveInPrice(manual, reference, actor)
	case inventory.TransactionTypeOut:
		return inventory.ResolveOutPrice(manual, reference, actor)
	case inventory.TransactionTypeAdjust:
		return inventory.ResolveAdjustPrice(manual, reference, actor)
	}
	return inventory.PriceResolution{}, shared.NewValidationError("Invalid transaction type: " + string(txType))
}

func (s *TransactionService) checkAvailabilityForLine(ctx context.Context, branchCode, itemCode string, condition inventory.Condition, qty int) error {
	summary, err := s.summaryRepo.FindByBranchAndItem(ctx, branchCode, itemCode)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	check := inventory.CheckAvailability(summary, condition, qty)
	if !check.Sufficient {
		return shared.NewBusinessError(fmt.Sprintf(
			"Insufficient stock for item %s (%s) at branch %s: available %d, requested %d",
			itemCode, condition, branchCode, check.Available, check.Requested))
	}
	return nil
}

// Commit transitions a draft transaction to Committed and applies it to
// every affected summary inside one atomic scope. Each summary write is
// conditioned on the version read within the scope; a losing writer gets a
// concurrency error and the whole scope rolls back.
func (s *TransactionService) Commit(ctx context.Context, actor identity.Actor, transactionID uuid.UUID) (*TransactionResponse, error) {
	var committed *inventory.InventoryTransaction

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		tx, err := repos.TransactionRepo().FindByID(ctx, transactionID)
		if err != nil {
			return err
		}
		if err := s.authorizeExisting(actor, tx.BranchCode); err != nil {
			return err
		}

		if err := s.CommitInScope(ctx, repos, tx, actor.Username, s.clock.Now()); err != nil {
			return err
		}
		committed = tx
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("inventory transaction committed",
		zap.String("transactionNumber", committed.TransactionNumber),
		zap.String("branchCode", committed.BranchCode),
		zap.String("committedBy", actor.Username))

	resp := ToTransactionResponse(committed)
	return &resp, nil
}

// CommitInScope runs the commit sequence against repositories already bound
// to an open atomic scope. Sale posting reuses this path so a synthesized
// sale transaction gets exactly the same consistency guarantees as a direct
// commit.
func (s *TransactionService) CommitInScope(
	ctx context.Context,
	repos TransactionalRepositories,
	tx *inventory.InventoryTransaction,
	committedBy string,
	committedAt time.Time,
) error {
	if err := tx.Commit(committedBy, committedAt); err != nil {
		return err
	}

	for _, itemCode := range tx.ItemCodes() {
		summary, err := repos.SummaryRepo().FindByBranchAndItem(ctx, tx.BranchCode, itemCode)
		if err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				return err
			}
			summary, err = inventory.NewInventorySummary(tx.BranchCode, itemCode, committedBy, committedAt)
			if err != nil {
				return err
			}
		}

		loadedVersion := summary.Version
		if err := summary.ApplyTransaction(tx, committedBy, committedAt); err != nil {
			if shared.CodeOf(err) == shared.CodeInvalidState {
				s.logger.Error("negative balance rejected during commit",
					zap.String("transactionNumber", tx.TransactionNumber),
					zap.String("itemCode", itemCode),
					zap.String("branchCode", tx.BranchCode),
					zap.Error(err))
			}
			return err
		}

		if err := repos.SummaryRepo().SaveWithVersion(ctx, summary, loadedVersion); err != nil {
			if shared.CodeOf(err) == shared.CodeConcurrency {
				s.logger.Warn("summary version conflict during commit",
					zap.String("transactionNumber", tx.TransactionNumber),
					zap.String("itemCode", itemCode),
					zap.Int64("loadedVersion", loadedVersion))
			}
			return err
		}
	}

	return repos.TransactionRepo().Save(ctx, tx)
}

// Cancel transitions a draft transaction to Cancelled. Drafts never touched
// stock, so no summary work is needed and no atomic scope is opened.
func (s *TransactionService) Cancel(ctx context.Context, actor identity.Actor, transactionID uuid.UUID) (*TransactionResponse, error) {
	tx, err := s.txRepo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeExisting(actor, tx.BranchCode); err != nil {
		return nil, err
	}

	if err := tx.Cancel(); err != nil {
		return nil, err
	}
	if err := s.txRepo.Save(ctx, tx); err != nil {
		return nil, err
	}

	s.logger.Info("inventory transaction cancelled",
		zap.String("transactionNumber", tx.TransactionNumber),
		zap.String("cancelledBy", actor.Username))

	resp := ToTransactionResponse(tx)
	return &resp, nil
}

// authorizeExisting gates mutation of an already-persisted transaction. A
// non-admin may only touch transactions of their assigned branch.
func (s *TransactionService) authorizeExisting(actor identity.Actor, branchCode string) error {
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

// GetByID returns one transaction. Non-admins only see transactions of
// their assigned branch; anything else reads as not found.
func (s *TransactionService) GetByID(ctx context.Context, actor identity.Actor, transactionID uuid.UUID) (*TransactionResponse, error) {
	tx, err := s.txRepo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		if !actor.HasBranch() || *actor.BranchCode != tx.BranchCode {
			return nil, shared.NewNotFoundError("Transaction not found")
		}
	}

	resp := ToTransactionResponse(tx)
	return &resp, nil
}

// GetByBranch returns transactions filtered by branch and optional type,
// status, and date range. Non-admin callers are silently scoped to their
// assigned branch.
func (s *TransactionService) GetByBranch(ctx context.Context, actor identity.Actor, requestedBranchCode string, filter inventory.TransactionFilter) ([]TransactionResponse, error) {
	branchCode, err := ResolveBranchForRead(actor, requestedBranchCode)
	if err != nil {
		return nil, err
	}
	if branchCode != "" {
		filter.BranchCode = &branchCode
	}

	txs, err := s.txRepo.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]TransactionResponse, len(txs))
	for i, tx := range txs {
		responses[i] = ToTransactionResponse(tx)
	}
	return responses, nil
}

// GetSummary returns the stock summary for one item at one branch. The
// caller's branch silently replaces the requested one for non-admins.
func (s *TransactionService) GetSummary(ctx context.Context, actor identity.Actor, requestedBranchCode, itemCode string) (*SummaryResponse, error) {
	branchCode, err := ResolveBranchForRead(actor, requestedBranchCode)
	if err != nil {
		return nil, err
	}
	if branchCode == "" {
		return nil, shared.NewValidationError("Branch code is required")
	}

	summary, err := s.summaryRepo.FindByBranchAndItem(ctx, branchCode, itemCode)
	if err != nil {
		return nil, err
	}

	resp := ToSummaryResponse(summary)
	return &resp, nil
}

// GetSummaries lists stock summaries. Admins may list all branches by
// leaving the branch code empty; non-admins always get their own branch.
func (s *TransactionService) GetSummaries(ctx context.Context, actor identity.Actor, requestedBranchCode string) ([]SummaryResponse, error) {
	branchCode, err := ResolveBranchForRead(actor, requestedBranchCode)
	if err != nil {
		return nil, err
	}

	var summaries []*inventory.InventorySummary
	if branchCode == "" {
		summaries, err = s.summaryRepo.FindAll(ctx)
	} else {
		summaries, err = s.summaryRepo.FindByBranch(ctx, branchCode)
	}
	if err != nil {
		return nil, err
	}

	responses := make([]SummaryResponse, len(summaries))
	for i, summary := range summaries {
		responses[i] = ToSummaryResponse(summary)
	}
	return responses, nil
}

// CheckAvailability reports whether requested stock is available, without
// side effects. Non-admin callers are silently scoped to their branch.
func (s *TransactionService) CheckAvailability(ctx context.Context, actor identity.Actor, requestedBranchCode, itemCode, conditionStr string, quantity int) (*AvailabilityResponse, error) {
	branchCode, err := ResolveBranchForRead(actor, requestedBranchCode)
	if err != nil {
		return nil, err
	}
	if branchCode == "" {
		return nil, shared.NewValidationError("Branch code is required")
	}
	condition, err := inventory.ParseCondition(conditionStr)
	if err != nil {
		return nil, err
	}

	summary, err := s.summaryRepo.FindByBranchAndItem(ctx, branchCode, itemCode)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	check := inventory.CheckAvailability(summary, condition, quantity)
	return &AvailabilityResponse{
		BranchCode: branchCode,
		ItemCode:   itemCode,
		Condition:  condition.String(),
		Sufficient: check.Sufficient,
		Available:  check.Available,
		Requested:  check.Requested,
	}, nil
}
