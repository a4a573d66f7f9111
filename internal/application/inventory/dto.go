package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/henrytires/backend/internal/domain/inventory"
	"github.com/henrytires/backend/internal/domain/shared/valueobject"
)

// CreateLineRequest is one line in a transaction creation request. For
// Adjust transactions Quantity is the new absolute quantity.
type CreateLineRequest struct {
	ItemCode  string           `json:"itemCode" binding:"required"`
	Condition string           `json:"condition" binding:"required,tirecondition"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unitPrice,omitempty"`
	IsTaxable *bool            `json:"isTaxable,omitempty"`
	Notes     *string          `json:"notes,omitempty"`
}

// CreateTransactionRequest creates a draft IN, OUT, or ADJUST transaction
type CreateTransactionRequest struct {
	BranchCode      string              `json:"branchCode"`
	TransactionDate *time.Time          `json:"transactionDate,omitempty"`
	Notes           *string             `json:"notes,omitempty"`
	PaymentMethod   *string             `json:"paymentMethod,omitempty"`
	Lines           []CreateLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// TransactionLineResponse mirrors one persisted transaction line
type TransactionLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	ItemCode    string          `json:"itemCode"`
	Condition   string          `json:"condition"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Currency    string          `json:"currency"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
	PriceSource string          `json:"priceSource"`
	PriceSetBy  string          `json:"priceSetBy"`
}

// TransactionResponse mirrors one persisted transaction
type TransactionResponse struct {
	ID                uuid.UUID                 `json:"id"`
	TransactionNumber string                    `json:"transactionNumber"`
	BranchCode        string                    `json:"branchCode"`
	Type              string                    `json:"type"`
	Status            string                    `json:"status"`
	TransactionDate   time.Time                 `json:"transactionDate"`
	Notes             *string                   `json:"notes,omitempty"`
	PaymentMethod     *string                   `json:"paymentMethod,omitempty"`
	TotalAmount       valueobject.Money         `json:"totalAmount"`
	CommittedAtUtc    *time.Time                `json:"committedAtUtc,omitempty"`
	CommittedBy       *string                   `json:"committedBy,omitempty"`
	Lines             []TransactionLineResponse `json:"lines"`
	CreatedAtUtc      time.Time                 `json:"createdAtUtc"`
	CreatedBy         string                    `json:"createdBy"`
}

// ToTransactionResponse maps a domain transaction to its response shape
func ToTransactionResponse(tx *inventory.InventoryTransaction) TransactionResponse {
	lines := make([]TransactionLineResponse, len(tx.Lines))
	for i, line := range tx.Lines {
		lines[i] = TransactionLineResponse{
			ID:          line.ID,
			ItemCode:    line.ItemCode,
			Condition:   line.Condition.String(),
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Currency:    string(line.Currency),
			LineTotal:   line.LineTotal,
			PriceSource: line.PriceSource.String(),
			PriceSetBy:  line.PriceSetByUser,
		}
	}

	return TransactionResponse{
		ID:                tx.ID,
		TransactionNumber: tx.TransactionNumber,
		BranchCode:        tx.BranchCode,
		Type:              tx.Type.String(),
		Status:            tx.Status.String(),
		TransactionDate:   tx.TransactionDateUtc,
		Notes:             tx.Notes,
		PaymentMethod:     tx.PaymentMethod,
		TotalAmount:       tx.TotalAmount(),
		CommittedAtUtc:    tx.CommittedAtUtc,
		CommittedBy:       tx.CommittedBy,
		Lines:             lines,
		CreatedAtUtc:      tx.CreatedAtUtc,
		CreatedBy:         tx.CreatedBy,
	}
}

// EntryResponse mirrors one per-condition stock entry
type EntryResponse struct {
	Condition  string    `json:"condition"`
	OnHand     int       `json:"onHand"`
	Reserved   int       `json:"reserved"`
	Available  int       `json:"available"`
	UpdatedUtc time.Time `json:"updatedUtc"`
}

// SummaryResponse mirrors one per-branch, per-item stock summary
type SummaryResponse struct {
	ID            uuid.UUID       `json:"id"`
	BranchCode    string          `json:"branchCode"`
	ItemCode      string          `json:"itemCode"`
	TotalOnHand   int             `json:"totalOnHand"`
	TotalReserved int             `json:"totalReserved"`
	NewOnHand     int             `json:"newOnHand"`
	UsedOnHand    int             `json:"usedOnHand"`
	Version       int64           `json:"version"`
	Entries       []EntryResponse `json:"entries"`
}

// ToSummaryResponse maps a domain summary to its response shape
func ToSummaryResponse(s *inventory.InventorySummary) SummaryResponse {
	entries := make([]EntryResponse, len(s.Entries))
	for i, e := range s.Entries {
		entries[i] = EntryResponse{
			Condition:  e.Condition.String(),
			OnHand:     e.OnHand,
			Reserved:   e.Reserved,
			Available:  e.Available(),
			UpdatedUtc: e.UpdatedUtc,
		}
	}

	return SummaryResponse{
		ID:            s.ID,
		BranchCode:    s.BranchCode,
		ItemCode:      s.ItemCode,
		TotalOnHand:   s.TotalOnHand,
		TotalReserved: s.TotalReserved,
		NewOnHand:     s.OnHand(inventory.ConditionNew),
		UsedOnHand:    s.OnHand(inventory.ConditionUsed),
		Version:       s.Version,
		Entries:       entries,
	}
}

// AvailabilityResponse mirrors a stock availability check
type AvailabilityResponse struct {
	BranchCode string `json:"branchCode"`
	ItemCode   string `json:"itemCode"`
	Condition  string `json:"condition"`
	Sufficient bool   `json:"sufficient"`
	Available  int    `json:"available"`
	Requested  int    `json:"requested"`
}
