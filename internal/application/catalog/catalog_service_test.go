package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/henrytires/backend/internal/application/apptest"
	"github.com/henrytires/backend/internal/domain/catalog"
	"github.com/henrytires/backend/internal/domain/identity"
	"github.com/henrytires/backend/internal/domain/shared"
)

type catalogFixture struct {
	service     *CatalogService
	itemRepo    *apptest.ItemRepo
	branchRepo  *apptest.BranchRepo
	summaryRepo *apptest.SummaryRepo
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	now := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)
	f := &catalogFixture{
		itemRepo:    apptest.NewItemRepo(),
		branchRepo:  apptest.NewBranchRepo(),
		summaryRepo: apptest.NewSummaryRepo(),
	}
	f.service = NewCatalogService(
		f.itemRepo, f.branchRepo, f.summaryRepo, shared.FixedClock{Instant: now}, zap.NewNop())

	branch, err := catalog.NewBranch("W", "West Warehouse", "seed", now)
	require.NoError(t, err)
	require.NoError(t, f.branchRepo.Save(context.Background(), branch))
	return f
}

func catalogAdmin() identity.Actor {
	return identity.Actor{Username: "boss", Role: identity.RoleAdmin}
}

func TestCreateItem(t *testing.T) {
	ctx := context.Background()

	t.Run("good gets version-zero summaries at every branch", func(t *testing.T) {
		f := newCatalogFixture(t)
		item, err := f.service.CreateItem(ctx, catalogAdmin(), CreateItemRequest{
			ItemCode: "TIRE-A", Description: "All-season tire", Classification: "Good"})
		require.NoError(t, err)
		assert.True(t, item.IsGood())

		summary, err := f.summaryRepo.FindByBranchAndItem(ctx, "W", "TIRE-A")
		require.NoError(t, err)
		assert.Equal(t, int64(0), summary.Version)
		assert.Equal(t, 0, summary.TotalOnHand)
	})

	t.Run("service gets no summaries", func(t *testing.T) {
		f := newCatalogFixture(t)
		_, err := f.service.CreateItem(ctx, catalogAdmin(), CreateItemRequest{
			ItemCode: "SVC-MOUNT", Description: "Tire mounting", Classification: "Service"})
		require.NoError(t, err)

		_, err = f.summaryRepo.FindByBranchAndItem(ctx, "W", "SVC-MOUNT")
		assert.Error(t, err)
	})

	t.Run("duplicate item code rejected", func(t *testing.T) {
		f := newCatalogFixture(t)
		_, err := f.service.CreateItem(ctx, catalogAdmin(), CreateItemRequest{
			ItemCode: "TIRE-A", Description: "All-season tire", Classification: "Good"})
		require.NoError(t, err)

		_, err = f.service.CreateItem(ctx, catalogAdmin(), CreateItemRequest{
			ItemCode: "TIRE-A", Description: "Another tire", Classification: "Good"})
		require.Error(t, err)
		assert.Equal(t, shared.CodeBusinessRule, shared.CodeOf(err))
	})

	t.Run("non-admin rejected", func(t *testing.T) {
		f := newCatalogFixture(t)
		branch := "W"
		seller := identity.Actor{Username: "maria", Role: identity.RoleSeller, BranchCode: &branch}
		_, err := f.service.CreateItem(ctx, seller, CreateItemRequest{
			ItemCode: "TIRE-A", Description: "All-season tire", Classification: "Good"})
		require.Error(t, err)
		assert.Equal(t, shared.CodeUnauthorized, shared.CodeOf(err))
	})
}

func TestDeleteItemIsSoft(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	item, err := f.service.CreateItem(ctx, catalogAdmin(), CreateItemRequest{
		ItemCode: "TIRE-A", Description: "All-season tire", Classification: "Good"})
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteItem(ctx, catalogAdmin(), item.ID))

	visible, err := f.service.ListItems(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, visible)

	all, err := f.service.ListItems(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsDeleted)
}

func TestCreateBranchProvisionsExistingGoods(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	_, err := f.service.CreateItem(ctx, catalogAdmin(), CreateItemRequest{
		ItemCode: "TIRE-A", Description: "All-season tire", Classification: "Good"})
	require.NoError(t, err)

	_, err = f.service.CreateBranch(ctx, catalogAdmin(), CreateBranchRequest{Code: "E", Name: "East Store"})
	require.NoError(t, err)

	summary, err := f.summaryRepo.FindByBranchAndItem(ctx, "E", "TIRE-A")
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.Version)
}
