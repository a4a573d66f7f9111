package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/henrytires/backend/internal/application/apptest"
	"github.com/henrytires/backend/internal/domain/catalog"
	"github.com/henrytires/backend/internal/domain/identity"
	"github.com/henrytires/backend/internal/domain/inventory"
	"github.com/henrytires/backend/internal/domain/shared"
)

type serviceFixture struct {
	service     *TransactionService
	txRepo      *apptest.TransactionRepo
	summaryRepo *apptest.SummaryRepo
	priceRepo   *apptest.ItemPriceRepo
	itemRepo    *apptest.ItemRepo
	branchRepo  *apptest.BranchRepo
	now         time.Time
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()
	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

	f := &serviceFixture{
		txRepo:      apptest.NewTransactionRepo(),
		summaryRepo: apptest.NewSummaryRepo(),
		priceRepo:   apptest.NewItemPriceRepo(),
		itemRepo:    apptest.NewItemRepo(),
		branchRepo:  apptest.NewBranchRepo(),
		now:         now,
	}

	scope := NewNoOpTransactionScope(f.txRepo, f.summaryRepo, apptest.NewSaleRepo(), apptest.NewSequences())
	f.service = NewTransactionService(
		f.txRepo, f.summaryRepo, f.priceRepo, f.itemRepo, f.branchRepo,
		scope, shared.FixedClock{Instant: now}, zap.NewNop())

	ctx := context.Background()

	branch, err := catalog.NewBranch("W", "West Warehouse", "seed", now)
	require.NoError(t, err)
	require.NoError(t, f.branchRepo.Save(ctx, branch))

	for _, code := range []string{"TIRE-A", "TIRE-B"} {
		item, err := catalog.NewItem(code, "All-season tire "+code, catalog.ClassificationGood, "seed", now)
		require.NoError(t, err)
		require.NoError(t, f.itemRepo.Save(ctx, item))
	}
	svc, err := catalog.NewItem("SVC-MOUNT", "Tire mounting", catalog.ClassificationService, "seed", now)
	require.NoError(t, err)
	require.NoError(t, f.itemRepo.Save(ctx, svc))

	price, err := inventory.NewItemPrice("TIRE-A", decimal.RequireFromString("120.00"), "seed", now)
	require.NoError(t, err)
	require.NoError(t, f.priceRepo.Save(ctx, price))

	return f
}

func admin() identity.Actor {
	return identity.Actor{Username: "boss", Role: identity.RoleAdmin}
}

func sellerAt(branchCode string) identity.Actor {
	id := uuid.New()
	return identity.Actor{Username: "maria", Role: identity.RoleSeller, BranchID: &id, BranchCode: &branchCode}
}

func inRequest(branchCode, itemCode string, qty int) CreateTransactionRequest {
	return CreateTransactionRequest{
		BranchCode: branchCode,
		Lines:      []CreateLineRequest{{ItemCode: itemCode, Condition: "New", Quantity: qty}},
	}
}

// stockUp commits an IN so later tests have stock to sell
func (f *serviceFixture) stockUp(t *testing.T, itemCode string, qty int) {
	t.Helper()
	ctx := context.Background()
	resp, err := f.service.CreateIn(ctx, admin(), inRequest("W", itemCode, qty))
	require.NoError(t, err)
	_, err = f.service.Commit(ctx, admin(), resp.ID)
	require.NoError(t, err)
}

func TestCreateDraftBranchAccess(t *testing.T) {
	ctx := context.Background()

	t.Run("admin must name a branch", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.CreateIn(ctx, admin(), inRequest("", "TIRE-A", 5))
		require.Error(t, err)
		assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
	})

	t.Run("seller is forced to assigned branch", func(t *testing.T) {
		f := newFixture(t)
		resp, err := f.service.CreateIn(ctx, sellerAt("W"), inRequest("OTHER", "TIRE-A", 5))
		require.NoError(t, err)
		assert.Equal(t, "W", resp.BranchCode, "mismatching request is ignored, not rejected")
	})

	t.Run("seller without branch assignment is rejected", func(t *testing.T) {
		f := newFixture(t)
		noBranch := identity.Actor{Username: "drifter", Role: identity.RoleSeller}
		_, err := f.service.CreateIn(ctx, noBranch, inRequest("W", "TIRE-A", 5))
		require.Error(t, err)
		assert.Equal(t, shared.CodeUnauthorized, shared.CodeOf(err))
	})

	t.Run("unknown branch is rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.CreateIn(ctx, admin(), inRequest("NOPE", "TIRE-A", 5))
		require.Error(t, err)
		assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))
	})
}

func TestCreateDraftLineValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown item", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.CreateIn(ctx, admin(), inRequest("W", "TIRE-X", 5))
		require.Error(t, err)
		assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))
	})

	t.Run("soft-deleted item", func(t *testing.T) {
		f := newFixture(t)
		item, err := f.itemRepo.FindByCode(ctx, "TIRE-B")
		require.NoError(t, err)
		require.NoError(t, item.SoftDelete("admin", f.now))
		require.NoError(t, f.itemRepo.Save(ctx, item))

		_, err = f.service.CreateIn(ctx, admin(), inRequest("W", "TIRE-B", 5))
		require.Error(t, err)
		assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
	})

	t.Run("service item cannot be moved as stock", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.CreateIn(ctx, admin(), inRequest("W", "SVC-MOUNT", 1))
		require.Error(t, err)
		assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
	})

	t.Run("zero quantity rejected for IN", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.CreateIn(ctx, admin(), inRequest("W", "TIRE-A", 0))
		require.Error(t, err)
		assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
	})

	t.Run("zero quantity allowed for Adjust", func(t *testing.T) {
		f := newFixture(t)
		resp, err := f.service.CreateAdjust(ctx, admin(), inRequest("W", "TIRE-A", 0))
		require.NoError(t, err)
		assert.Equal(t, "Adjust", resp.Type)
	})

	t.Run("negative quantity rejected for Adjust", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.CreateAdjust(ctx, admin(), inRequest("W", "TIRE-A", -1))
		require.Error(t, err)
		assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
	})
}

func TestCreateInPriceFallbacks(t *testing.T) {
	ctx := context.Background()

	t.Run("reference price used when no manual price", func(t *testing.T) {
		f := newFixture(t)
		resp, err := f.service.CreateIn(ctx, admin(), inRequest("W", "TIRE-A", 5))
		require.NoError(t, err)
		assert.Equal(t, "ReferencePrice", resp.Lines[0].PriceSource)
		assert.True(t, resp.Lines[0].UnitPrice.Equal(decimal.RequireFromString("120.00")))
	})

	t.Run("system default zero when nothing known", func(t *testing.T) {
		f := newFixture(t)
		resp, err := f.service.CreateIn(ctx, admin(), inRequest("W", "TIRE-B", 5))
		require.NoError(t, err)
		assert.Equal(t, "SystemDefault", resp.Lines[0].PriceSource)
		assert.True(t, resp.Lines[0].UnitPrice.IsZero())
	})
}

func TestCreateOutGuards(t *testing.T) {
	ctx := context.Background()

	t.Run("oversell rejected, nothing persisted", func(t *testing.T) {
		f := newFixture(t)
		f.stockUp(t, "TIRE-A", 5)
		before := f.txRepo.Count()

		_, err := f.service.CreateOut(ctx, admin(), inRequest("W", "TIRE-A", 6))
		require.Error(t, err)
		assert.Equal(t, shared.CodeBusinessRule, shared.CodeOf(err))
		assert.Equal(t, before, f.txRepo.Count(), "no partial transaction may be created")
	})

	t.Run("fail-fast across lines", func(t *testing.T) {
		f := newFixture(t)
		f.stockUp(t, "TIRE-A", 10)
		before := f.txRepo.Count()

		req := CreateTransactionRequest{
			BranchCode: "W",
			Lines: []CreateLineRequest{
				{ItemCode: "TIRE-A", Condition: "New", Quantity: 2},
				{ItemCode: "TIRE-B", Condition: "New", Quantity: 1},
			},
		}
		_, err := f.service.CreateOut(ctx, admin(), req)
		require.Error(t, err, "TIRE-B has no stock and no price")
		assert.Equal(t, before, f.txRepo.Count())
	})

	t.Run("price override by seller unauthorized", func(t *testing.T) {
		f := newFixture(t)
		f.stockUp(t, "TIRE-A", 5)

		override := decimal.RequireFromString("80.00")
		req := CreateTransactionRequest{
			BranchCode: "W",
			Lines:      []CreateLineRequest{{ItemCode: "TIRE-A", Condition: "New", Quantity: 1, UnitPrice: &override}},
		}
		_, err := f.service.CreateOut(ctx, sellerAt("W"), req)
		require.Error(t, err)
		assert.Equal(t, shared.CodeUnauthorized, shared.CodeOf(err))
	})

	t.Run("no reference and no override fails", func(t *testing.T) {
		f := newFixture(t)
		f.stockUp(t, "TIRE-B", 5)

		_, err := f.service.CreateOut(ctx, admin(), inRequest("W", "TIRE-B", 1))
		require.Error(t, err)
		assert.Equal(t, shared.CodeBusinessRule, shared.CodeOf(err))
	})
}

func TestCommitLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("IN then OUT nets correctly", func(t *testing.T) {
		f := newFixture(t)

		in, err := f.service.CreateIn(ctx, admin(), inRequest("W", "TIRE-A", 10))
		require.NoError(t, err)
		_, err = f.service.Commit(ctx, admin(), in.ID)
		require.NoError(t, err)

		summary, err := f.service.GetSummary(ctx, admin(), "W", "TIRE-A")
		require.NoError(t, err)
		assert.Equal(t, 10, summary.NewOnHand)
		assert.Equal(t, int64(1), summary.Version)

		out, err := f.service.CreateOut(ctx, admin(), inRequest("W", "TIRE-A", 4))
		require.NoError(t, err)
		_, err = f.service.Commit(ctx, admin(), out.ID)
		require.NoError(t, err)

		summary, err = f.service.GetSummary(ctx, admin(), "W", "TIRE-A")
		require.NoError(t, err)
		assert.Equal(t, 6, summary.NewOnHand)
		assert.Equal(t, int64(2), summary.Version)
	})

	t.Run("adjust sets the absolute quantity", func(t *testing.T) {
		f := newFixture(t)
		f.stockUp(t, "TIRE-A", 6)

		adj, err := f.service.CreateAdjust(ctx, admin(), inRequest("W", "TIRE-A", 3))
		require.NoError(t, err)
		_, err = f.service.Commit(ctx, admin(), adj.ID)
		require.NoError(t, err)

		summary, err := f.service.GetSummary(ctx, admin(), "W", "TIRE-A")
		require.NoError(t, err)
		assert.Equal(t, 3, summary.NewOnHand)
	})

	t.Run("commit is not idempotent", func(t *testing.T) {
		f := newFixture(t)
		in, err := f.service.CreateIn(ctx, admin(), inRequest("W", "TIRE-A", 10))
		require.NoError(t, err)
		_, err = f.service.Commit(ctx, admin(), in.ID)
		require.NoError(t, err)

		_, err = f.service.Commit(ctx, admin(), in.ID)
		require.Error(t, err)
		assert.Equal(t, shared.CodeInvalidState, shared.CodeOf(err))
	})

	t.Run("stale availability check is caught at commit", func(t *testing.T) {
		f := newFixture(t)
		f.stockUp(t, "TIRE-A", 5)

		// Two drafts both pass the advisory check against onHand=5.
		first, err := f.service.CreateOut(ctx, admin(), inRequest("W", "TIRE-A", 4))
		require.NoError(t, err)
		second, err := f.service.CreateOut(ctx, admin(), inRequest("W", "TIRE-A", 4))
		require.NoError(t, err)

		_, err = f.service.Commit(ctx, admin(), first.ID)
		require.NoError(t, err)

		_, err = f.service.Commit(ctx, admin(), second.ID)
		require.Error(t, err)
		assert.Equal(t, shared.CodeInvalidState, shared.CodeOf(err))

		summary, err := f.service.GetSummary(ctx, admin(), "W", "TIRE-A")
		require.NoError(t, err)
		assert.Equal(t, 1, summary.NewOnHand, "failed commit must not debit stock")
	})

	t.Run("non-admin cannot commit another branch's transaction", func(t *testing.T) {
		f := newFixture(t)
		in, err := f.service.CreateIn(ctx, admin(), inRequest("W", "TIRE-A", 10))
		require.NoError(t, err)

		_, err = f.service.Commit(ctx, sellerAt("EAST"), in.ID)
		require.Error(t, err)
		assert.Equal(t, shared.CodeUnauthorized, shared.CodeOf(err))
	})
}

// staleSummaryRepo simulates a racing writer that advances the stored
// version between this commit's read and its conditional write
type staleSummaryRepo struct {
	*apptest.SummaryRepo
	armed bool
}

func (r *staleSummaryRepo) FindByBranchAndItem(ctx context.Context, branchCode, itemCode string) (*inventory.InventorySummary, error) {
	s, err := r.SummaryRepo.FindByBranchAndItem(ctx, branchCode, itemCode)
	if err != nil || !r.armed {
		return s, err
	}
	r.armed = false

	racer, err := r.SummaryRepo.FindByBranchAndItem(ctx, branchCode, itemCode)
	if err != nil {
		return nil, err
	}
	racer.Version++
	if err := r.SummaryRepo.Save(ctx, racer); err != nil {
		return nil, err
	}
	return s, nil
}

func TestCommitConcurrencyConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.stockUp(t, "TIRE-A", 10)

	stale := &staleSummaryRepo{SummaryRepo: f.summaryRepo}
	scope := NewNoOpTransactionScope(f.txRepo, stale, apptest.NewSaleRepo(), apptest.NewSequences())
	racySvc := NewTransactionService(
		f.txRepo, stale, f.priceRepo, f.itemRepo, f.branchRepo,
		scope, shared.FixedClock{Instant: f.now}, zap.NewNop())

	out, err := racySvc.CreateOut(ctx, admin(), inRequest("W", "TIRE-A", 2))
	require.NoError(t, err)

	stale.armed = true
	_, err = racySvc.Commit(ctx, admin(), out.ID)
	require.Error(t, err)
	assert.Equal(t, shared.CodeConcurrency, shared.CodeOf(err))

	reloaded, err := f.txRepo.FindByID(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, inventory.StatusDraft, reloaded.Status, "losing commit must leave the transaction draft")

	summary, err := f.summaryRepo.FindByBranchAndItem(ctx, "W", "TIRE-A")
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Version, "only the racing writer advanced the version")
}

func TestCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("cancel draft leaves stock untouched", func(t *testing.T) {
		f := newFixture(t)
		in, err := f.service.CreateIn(ctx, admin(), inRequest("W", "TIRE-A", 10))
		require.NoError(t, err)

		resp, err := f.service.Cancel(ctx, admin(), in.ID)
		require.NoError(t, err)
		assert.Equal(t, "Cancelled", resp.Status)

		_, err = f.service.GetSummary(ctx, admin(), "W", "TIRE-A")
		require.Error(t, err)
		assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))
	})

	t.Run("cancel committed fails", func(t *testing.T) {
		f := newFixture(t)
		in, err := f.service.CreateIn(ctx, admin(), inRequest("W", "TIRE-A", 10))
		require.NoError(t, err)
		_, err = f.service.Commit(ctx, admin(), in.ID)
		require.NoError(t, err)

		_, err = f.service.Cancel(ctx, admin(), in.ID)
		require.Error(t, err)
		assert.Equal(t, shared.CodeInvalidState, shared.CodeOf(err))
	})
}

func TestQueryScoping(t *testing.T) {
	ctx := context.Background()

	t.Run("summary query silently substitutes the seller's branch", func(t *testing.T) {
		f := newFixture(t)
		f.stockUp(t, "TIRE-A", 5)

		summary, err := f.service.GetSummary(ctx, sellerAt("W"), "SOMEWHERE-ELSE", "TIRE-A")
		require.NoError(t, err)
		assert.Equal(t, "W", summary.BranchCode)
	})

	t.Run("transaction list is scoped for non-admins", func(t *testing.T) {
		f := newFixture(t)
		f.stockUp(t, "TIRE-A", 5)

		list, err := f.service.GetByBranch(ctx, sellerAt("EAST"), "W", inventory.TransactionFilter{})
		require.NoError(t, err)
		assert.Empty(t, list, "seller at EAST sees no W transactions")
	})

	t.Run("get by id hides other branches", func(t *testing.T) {
		f := newFixture(t)
		in, err := f.service.CreateIn(ctx, admin(), inRequest("W", "TIRE-A", 5))
		require.NoError(t, err)

		_, err = f.service.GetByID(ctx, sellerAt("EAST"), in.ID)
		require.Error(t, err)
		assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))
	})

	t.Run("availability check reports the oversell numbers", func(t *testing.T) {
		f := newFixture(t)
		f.stockUp(t, "TIRE-A", 5)

		resp, err := f.service.CheckAvailability(ctx, admin(), "W", "TIRE-A", "New", 6)
		require.NoError(t, err)
		assert.False(t, resp.Sufficient)
		assert.Equal(t, 5, resp.Available)
		assert.Equal(t, 6, resp.Requested)
	})
}

func TestResolveBranchPolicies(t *testing.T) {
	branch := "W"
	seller := identity.Actor{Username: "maria", Role: identity.RoleSeller, BranchCode: &branch}

	t.Run("write requires explicit branch for admin", func(t *testing.T) {
		_, err := ResolveBranchForWrite(admin(), "")
		assert.Error(t, err)
	})

	t.Run("read allows admin to query all branches", func(t *testing.T) {
		got, err := ResolveBranchForRead(admin(), "")
		require.NoError(t, err)
		assert.Equal(t, "", got)
	})

	t.Run("read substitutes silently, write also substitutes", func(t *testing.T) {
		got, err := ResolveBranchForRead(seller, "OTHER")
		require.NoError(t, err)
		assert.Equal(t, "W", got)

		got, err = ResolveBranchForWrite(seller, "OTHER")
		require.NoError(t, err)
		assert.Equal(t, "W", got)
	})
}
