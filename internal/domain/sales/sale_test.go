package sales

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henrytires/backend/internal/domain/catalog"
	"github.com/henrytires/backend/internal/domain/inventory"
	"github.com/henrytires/backend/internal/domain/shared"
	"github.com/henrytires/backend/internal/domain/shared/valueobject"
)

func goodLine(itemCode string, condition inventory.Condition, qty int, unitPrice string) SaleLine {
	return SaleLine{
		ItemID:         uuid.New(),
		ItemCode:       itemCode,
		Description:    "All-season tire",
		Classification: catalog.ClassificationGood,
		Condition:      &condition,
		Quantity:       qty,
		UnitPrice:      decimal.RequireFromString(unitPrice),
		Currency:       valueobject.DefaultCurrency,
		IsTaxable:      true,
	}
}

func serviceLine(itemCode string, qty int, unitPrice string) SaleLine {
	return SaleLine{
		ItemID:         uuid.New(),
		ItemCode:       itemCode,
		Description:    "Tire mounting",
		Classification: catalog.ClassificationService,
		Quantity:       qty,
		UnitPrice:      decimal.RequireFromString(unitPrice),
		Currency:       valueobject.DefaultCurrency,
		IsTaxable:      true,
	}
}

func newDraftSale(t *testing.T, lines ...SaleLine) *Sale {
	t.Helper()
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	sale, err := NewSale("W-0000042", uuid.New(), "W", now, lines, "maria", now)
	require.NoError(t, err)
	return sale
}

func TestNewSaleLineInvariants(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	branchID := uuid.New()

	t.Run("good line without condition rejected", func(t *testing.T) {
		line := goodLine("TIRE-A", inventory.ConditionNew, 2, "120.00")
		line.Condition = nil
		_, err := NewSale("W-0000001", branchID, "W", now, []SaleLine{line}, "maria", now)
		require.Error(t, err)
		assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
	})

	t.Run("service line with condition rejected", func(t *testing.T) {
		line := serviceLine("SVC-MOUNT", 1, "15.00")
		cond := inventory.ConditionNew
		line.Condition = &cond
		_, err := NewSale("W-0000001", branchID, "W", now, []SaleLine{line}, "maria", now)
		require.Error(t, err)
		assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
	})

	t.Run("service line with transaction link rejected", func(t *testing.T) {
		line := serviceLine("SVC-MOUNT", 1, "15.00")
		txID := uuid.New()
		line.InventoryTransactionID = &txID
		_, err := NewSale("W-0000001", branchID, "W", now, []SaleLine{line}, "maria", now)
		assert.Error(t, err)
	})

	t.Run("zero quantity rejected", func(t *testing.T) {
		line := goodLine("TIRE-A", inventory.ConditionNew, 0, "120.00")
		_, err := NewSale("W-0000001", branchID, "W", now, []SaleLine{line}, "maria", now)
		assert.Error(t, err)
	})

	t.Run("empty sale rejected", func(t *testing.T) {
		_, err := NewSale("W-0000001", branchID, "W", now, nil, "maria", now)
		assert.Error(t, err)
	})

	t.Run("line totals computed on creation", func(t *testing.T) {
		sale := newDraftSale(t,
			goodLine("TIRE-A", inventory.ConditionNew, 2, "120.00"),
			serviceLine("SVC-MOUNT", 2, "15.00"))
		want := valueobject.NewMoneyUSD(decimal.RequireFromString("270.00"))
		assert.True(t, sale.TotalAmount().Equals(want),
			"got %s", sale.TotalAmount())
	})
}

func TestGoodLinesPartition(t *testing.T) {
	sale := newDraftSale(t,
		goodLine("TIRE-A", inventory.ConditionNew, 2, "120.00"),
		serviceLine("SVC-MOUNT", 2, "15.00"),
		goodLine("TIRE-B", inventory.ConditionUsed, 1, "60.00"))

	goods := sale.GoodLines()
	require.Len(t, goods, 2)
	assert.Equal(t, "TIRE-A", goods[0].ItemCode)
	assert.Equal(t, "TIRE-B", goods[1].ItemCode)
}

func TestMarkPosted(t *testing.T) {
	postedAt := time.Date(2026, 4, 1, 13, 0, 0, 0, time.UTC)

	t.Run("draft sale posts once", func(t *testing.T) {
		sale := newDraftSale(t, serviceLine("SVC-MOUNT", 1, "15.00"))

		require.NoError(t, sale.MarkPosted("maria", postedAt))
		assert.Equal(t, SaleStatusCommitted, sale.Status)
		require.NotNil(t, sale.PostedBy)
		assert.Equal(t, "maria", *sale.PostedBy)
	})

	t.Run("second post fails with business error", func(t *testing.T) {
		sale := newDraftSale(t, serviceLine("SVC-MOUNT", 1, "15.00"))
		require.NoError(t, sale.MarkPosted("maria", postedAt))

		err := sale.MarkPosted("maria", postedAt)
		require.Error(t, err)
		assert.Equal(t, shared.CodeBusinessRule, shared.CodeOf(err))
		assert.Contains(t, err.Error(), sale.SaleNumber)
	})
}

func TestLinkInventoryTransactionSkipsServices(t *testing.T) {
	sale := newDraftSale(t,
		goodLine("TIRE-A", inventory.ConditionNew, 2, "120.00"),
		serviceLine("SVC-MOUNT", 2, "15.00"))

	txID := uuid.New()
	sale.LinkInventoryTransaction(txID)

	for _, line := range sale.Lines {
		if line.IsGood() {
			require.NotNil(t, line.InventoryTransactionID)
			assert.Equal(t, txID, *line.InventoryTransactionID)
		} else {
			assert.Nil(t, line.InventoryTransactionID)
		}
	}
}
