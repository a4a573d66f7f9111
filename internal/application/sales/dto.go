package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/henrytires/backend/internal/domain/sales"
	"github.com/henrytires/backend/internal/domain/shared/valueobject"
)

// CreateSaleLineRequest is one line in a sale creation request. Condition is
// required for goods and must be absent for services.
type CreateSaleLineRequest struct {
	ItemCode  string           `json:"itemCode" binding:"required"`
	Condition *string          `json:"condition,omitempty"`
	Quantity  int              `json:"quantity" binding:"required"`
	UnitPrice *decimal.Decimal `json:"unitPrice,omitempty"`
	IsTaxable *bool            `json:"isTaxable,omitempty"`
}

// CreateSaleRequest creates a draft sale
type CreateSaleRequest struct {
	BranchCode    string                  `json:"branchCode"`
	SaleDate      *time.Time              `json:"saleDate,omitempty"`
	CustomerName  *string                 `json:"customerName,omitempty"`
	CustomerPhone *string                 `json:"customerPhone,omitempty"`
	Notes         *string                 `json:"notes,omitempty"`
	PaymentMethod *string                 `json:"paymentMethod,omitempty"`
	Lines         []CreateSaleLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// SaleLineResponse mirrors one persisted sale line
type SaleLineResponse struct {
	ID                     uuid.UUID       `json:"id"`
	ItemCode               string          `json:"itemCode"`
	Description            string          `json:"description"`
	Classification         string          `json:"classification"`
	Condition              *string         `json:"condition,omitempty"`
	Quantity               int             `json:"quantity"`
	UnitPrice              decimal.Decimal `json:"unitPrice"`
	Currency               string          `json:"currency"`
	LineTotal              decimal.Decimal `json:"lineTotal"`
	InventoryTransactionID *uuid.UUID      `json:"inventoryTransactionId,omitempty"`
}

// SaleResponse mirrors one persisted sale
type SaleResponse struct {
	ID            uuid.UUID          `json:"id"`
	SaleNumber    string             `json:"saleNumber"`
	BranchCode    string             `json:"branchCode"`
	SaleDate      time.Time          `json:"saleDate"`
	CustomerName  *string            `json:"customerName,omitempty"`
	CustomerPhone *string            `json:"customerPhone,omitempty"`
	Notes         *string            `json:"notes,omitempty"`
	PaymentMethod *string            `json:"paymentMethod,omitempty"`
	Status        string             `json:"status"`
	TotalAmount   valueobject.Money  `json:"totalAmount"`
	PostedAtUtc   *time.Time         `json:"postedAtUtc,omitempty"`
	PostedBy      *string            `json:"postedBy,omitempty"`
	Lines         []SaleLineResponse `json:"lines"`
	CreatedAtUtc  time.Time          `json:"createdAtUtc"`
	CreatedBy     string             `json:"createdBy"`
}

// ToSaleResponse maps a domain sale to its response shape
func ToSaleResponse(sale *sales.Sale) SaleResponse {
	lines := make([]SaleLineResponse, len(sale.Lines))
	for i, line := range sale.Lines {
		var condition *string
		if line.Condition != nil {
			c := line.Condition.String()
			condition = &c
		}
		lines[i] = SaleLineResponse{
			ID:                     line.ID,
			ItemCode:               line.ItemCode,
			Description:            line.Description,
			Classification:         string(line.Classification),
			Condition:              condition,
			Quantity:               line.Quantity,
			UnitPrice:              line.UnitPrice,
			Currency:               string(line.Currency),
			LineTotal:              line.LineTotal,
			InventoryTransactionID: line.InventoryTransactionID,
		}
	}

	return SaleResponse{
		ID:            sale.ID,
		SaleNumber:    sale.SaleNumber,
		BranchCode:    sale.BranchCode,
		SaleDate:      sale.SaleDateUtc,
		CustomerName:  sale.CustomerName,
		CustomerPhone: sale.CustomerPhone,
		Notes:         sale.Notes,
		PaymentMethod: sale.PaymentMethod,
		Status:        sale.Status.String(),
		TotalAmount:   sale.TotalAmount(),
		PostedAtUtc:   sale.PostedAtUtc,
		PostedBy:      sale.PostedBy,
		Lines:         lines,
		CreatedAtUtc:  sale.CreatedAtUtc,
		CreatedBy:     sale.CreatedBy,
	}
}
