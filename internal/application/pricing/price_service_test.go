package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/henrytires/backend/internal/application/apptest"
	"github.com/henrytires/backend/internal/domain/catalog"
	"github.com/henrytires/backend/internal/domain/identity"
	"github.com/henrytires/backend/internal/domain/shared"
)

func newPriceService(t *testing.T) (*PriceService, time.Time) {
	t.Helper()
	now := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	priceRepo := apptest.NewItemPriceRepo()
	itemRepo := apptest.NewItemRepo()

	item, err := catalog.NewItem("TIRE-A", "All-season tire", catalog.ClassificationGood, "seed", now)
	require.NoError(t, err)
	require.NoError(t, itemRepo.Save(context.Background(), item))

	return NewPriceService(priceRepo, itemRepo, shared.FixedClock{Instant: now}, zap.NewNop()), now
}

func priceAdmin() identity.Actor {
	return identity.Actor{Username: "boss", Role: identity.RoleAdmin}
}

func TestUpdatePrice(t *testing.T) {
	ctx := context.Background()

	t.Run("first update creates the record", func(t *testing.T) {
		svc, _ := newPriceService(t)
		resp, err := svc.UpdatePrice(ctx, priceAdmin(), UpdatePriceRequest{
			ItemCode: "TIRE-A", Price: decimal.RequireFromString("120.00")})
		require.NoError(t, err)
		assert.Empty(t, resp.History)
	})

	t.Run("second update snapshots history", func(t *testing.T) {
		svc, _ := newPriceService(t)
		_, err := svc.UpdatePrice(ctx, priceAdmin(), UpdatePriceRequest{
			ItemCode: "TIRE-A", Price: decimal.RequireFromString("120.00")})
		require.NoError(t, err)

		resp, err := svc.UpdatePrice(ctx, priceAdmin(), UpdatePriceRequest{
			ItemCode: "TIRE-A", Price: decimal.RequireFromString("130.00")})
		require.NoError(t, err)
		assert.True(t, resp.LatestPrice.Equal(decimal.RequireFromString("130.00")))
		require.Len(t, resp.History, 1)
		assert.True(t, resp.History[0].Price.Equal(decimal.RequireFromString("120.00")))
	})

	t.Run("non-admin rejected", func(t *testing.T) {
		svc, _ := newPriceService(t)
		branch := "W"
		seller := identity.Actor{Username: "maria", Role: identity.RoleSeller, BranchCode: &branch}
		_, err := svc.UpdatePrice(ctx, seller, UpdatePriceRequest{
			ItemCode: "TIRE-A", Price: decimal.RequireFromString("120.00")})
		require.Error(t, err)
		assert.Equal(t, shared.CodeUnauthorized, shared.CodeOf(err))
	})

	t.Run("unknown item rejected", func(t *testing.T) {
		svc, _ := newPriceService(t)
		_, err := svc.UpdatePrice(ctx, priceAdmin(), UpdatePriceRequest{
			ItemCode: "TIRE-X", Price: decimal.RequireFromString("120.00")})
		require.Error(t, err)
		assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))
	})

	t.Run("zero price rejected", func(t *testing.T) {
		svc, _ := newPriceService(t)
		_, err := svc.UpdatePrice(ctx, priceAdmin(), UpdatePriceRequest{
			ItemCode: "TIRE-A", Price: decimal.Zero})
		require.Error(t, err)
		assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
	})
}

func TestGetPrice(t *testing.T) {
	ctx := context.Background()
	svc, now := newPriceService(t)

	_, err := svc.GetPrice(ctx, "TIRE-A")
	require.Error(t, err, "no price yet")

	_, err = svc.UpdatePrice(ctx, priceAdmin(), UpdatePriceRequest{
		ItemCode: "TIRE-A", Price: decimal.RequireFromString("120.00")})
	require.NoError(t, err)

	resp, err := svc.GetPrice(ctx, "TIRE-A")
	require.NoError(t, err)
	assert.Equal(t, now, resp.PriceDateUtc)

	list, err := svc.ListPrices(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
