package pricing

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/henrytires/backend/internal/domain/catalog"
	"github.com/henrytires/backend/internal/domain/identity"
	"github.com/henrytires/backend/internal/domain/inventory"
	"github.com/henrytires/backend/internal/domain/shared"
)

// UpdatePriceRequest sets a new reference price for an item
type UpdatePriceRequest struct {
	ItemCode string          `json:"itemCode" binding:"required"`
	Price    decimal.Decimal `json:"price" binding:"required"`
}

// PriceHistoryResponse is one superseded price value
type PriceHistoryResponse struct {
	Price     decimal.Decimal `json:"price"`
	PriceDate time.Time       `json:"priceDate"`
	UpdatedBy string          `json:"updatedBy"`
}

// PriceResponse mirrors one reference price record
type PriceResponse struct {
	ItemCode     string                 `json:"itemCode"`
	Currency     string                 `json:"currency"`
	LatestPrice  decimal.Decimal        `json:"latestPrice"`
	PriceDateUtc time.Time              `json:"priceDateUtc"`
	UpdatedBy    string                 `json:"updatedBy"`
	History      []PriceHistoryResponse `json:"history"`
}

func toPriceResponse(p *inventory.ItemPrice) PriceResponse {
	history := make([]PriceHistoryResponse, len(p.History))
	for i, h := range p.History {
		history[i] = PriceHistoryResponse{Price: h.Price, PriceDate: h.PriceDate, UpdatedBy: h.UpdatedBy}
	}
	return PriceResponse{
		ItemCode:     p.ItemCode,
		Currency:     string(p.Currency),
		LatestPrice:  p.LatestPrice,
		PriceDateUtc: p.PriceDateUtc,
		UpdatedBy:    p.UpdatedBy,
		History:      history,
	}
}

// PriceService manages reference prices. Updates are restricted to Admins;
// everyone may read.
type PriceService struct {
	priceRepo inventory.ItemPriceRepository
	itemRepo  catalog.ItemRepository
	clock     shared.Clock
	logger    *zap.Logger
}

// NewPriceService creates a new PriceService
func NewPriceService(
	priceRepo inventory.ItemPriceRepository,
	itemRepo catalog.ItemRepository,
	clock shared.Clock,
	logger *zap.Logger,
) *PriceService {
	return &PriceService{priceRepo: priceRepo, itemRepo: itemRepo, clock: clock, logger: logger}
}

// GetPrice returns the reference price for one item
func (s *PriceService) GetPrice(ctx context.Context, itemCode string) (*PriceResponse, error) {
	price, err := s.priceRepo.FindByItemCode(ctx, itemCode)
	if err != nil {
		return nil, err
	}
	resp := toPriceResponse(price)
	return &resp, nil
}

// ListPrices returns all reference prices
func (s *PriceService) ListPrices(ctx context.Context) ([]PriceResponse, error) {
	prices, err := s.priceRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]PriceResponse, len(prices))
	for i, p := range prices {
		responses[i] = toPriceResponse(p)
	}
	return responses, nil
}

// UpdatePrice sets a new reference price, creating the record on first use.
// The previous value is preserved in the append-only history.
func (s *PriceService) UpdatePrice(ctx context.Context, actor identity.Actor, req UpdatePriceRequest) (*PriceResponse, error) {
	if !actor.IsAdmin() {
		return nil, shared.NewUnauthorizedError(
			"Only administrators may update reference prices")
	}
	if _, err := s.itemRepo.FindByCode(ctx, req.ItemCode); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Item not found: " + req.ItemCode)
		}
		return nil, err
	}

	now := s.clock.Now()
	price, err := s.priceRepo.FindByItemCode(ctx, req.ItemCode)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		price, err = inventory.NewItemPrice(req.ItemCode, req.Price, actor.Username, now)
		if err != nil {
			return nil, err
		}
	} else if err := price.UpdatePrice(req.Price, actor.Username, now); err != nil {
		return nil, err
	}

	if err := s.priceRepo.Save(ctx, price); err != nil {
		return nil, err
	}

	s.logger.Info("reference price updated",
		zap.String("itemCode", req.ItemCode),
		zap.String("price", req.Price.String()),
		zap.String("updatedBy", actor.Username))

	resp := toPriceResponse(price)
	return &resp, nil
}
