package sales

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/henrytires/backend/internal/domain/catalog"
	"github.com/henrytires/backend/internal/domain/inventory"
	"github.com/henrytires/backend/internal/domain/shared"
	"github.com/henrytires/backend/internal/domain/shared/valueobject"
)

// SaleStatus represents the lifecycle state of a sale
type SaleStatus string

const (
	// SaleStatusDraft is the initial, still-mutable state
	SaleStatusDraft SaleStatus = "Draft"
	// SaleStatusCommitted means the sale has been posted; posting happens
	// exactly once
	SaleStatusCommitted SaleStatus = "Committed"
)

// String returns the string representation of SaleStatus
func (s SaleStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a known sale status
func (s SaleStatus) IsValid() bool {
	return s == SaleStatusDraft || s == SaleStatusCommitted
}

// SaleLine is one sold good or service. Goods carry a tire condition and,
// once the sale is posted, a link to the inventory transaction that debited
// stock. Services carry neither.
type SaleLine struct {
	ID                     uuid.UUID              `gorm:"type:uuid;primaryKey"`
	SaleID                 uuid.UUID              `gorm:"type:uuid;not null;index"`
	ItemID                 uuid.UUID              `gorm:"type:uuid;not null"`
	ItemCode               string                 `gorm:"type:varchar(50);not null"`
	Description            string                 `gorm:"type:varchar(200);not null"`
	Classification         catalog.Classification `gorm:"type:varchar(10);not null"`
	Condition              *inventory.Condition   `gorm:"type:varchar(10)"`
	Quantity               int                    `gorm:"not null"`
	UnitPrice              decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	Currency               valueobject.Currency   `gorm:"type:varchar(3);not null"`
	IsTaxable              bool                   `gorm:"not null;default:true"`
	AppliesFee             bool                   `gorm:"not null;default:true"`
	LineTotal              decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	InventoryTransactionID *uuid.UUID             `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (SaleLine) TableName() string {
	return "sale_lines"
}

// IsGood returns true if this line debits inventory when posted
func (l *SaleLine) IsGood() bool {
	return l.Classification == catalog.ClassificationGood
}

func (l *SaleLine) validate() error {
	if l.Quantity <= 0 {
		return shared.NewValidationError(fmt.Sprintf("Line quantity must be positive, got %d", l.Quantity))
	}
	if l.UnitPrice.IsNegative() {
		return shared.NewValidationError("Line unit price cannot be negative")
	}
	switch l.Classification {
	case catalog.ClassificationGood:
		if l.Condition == nil {
			return shared.NewValidationError(fmt.Sprintf("Good line for item %s requires a condition", l.ItemCode))
		}
		if !l.Condition.IsValid() {
			return shared.NewValidationError("Invalid condition: " + l.Condition.String())
		}
	case catalog.ClassificationService:
		if l.Condition != nil {
			return shared.NewValidationError(fmt.Sprintf("Service line for item %s cannot carry a condition", l.ItemCode))
		}
		if l.InventoryTransactionID != nil {
			return shared.NewValidationError("Service lines never link to inventory transactions")
		}
	default:
		return shared.NewValidationError("Invalid classification: " + string(l.Classification))
	}
	return nil
}

// Sale is a customer-facing commercial transaction. It may mix goods and
// services; only goods affect inventory, and only once the sale is posted.
type Sale struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	SaleNumber    string     `gorm:"type:varchar(40);uniqueIndex;not null"`
	BranchID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	BranchCode    string     `gorm:"type:varchar(30);not null;index"`
	SaleDateUtc   time.Time  `gorm:"type:timestamptz;not null;index"`
	CustomerName  *string    `gorm:"type:varchar(200)"`
	CustomerPhone *string    `gorm:"type:varchar(30)"`
	Notes         *string    `gorm:"type:varchar(500)"`
	PaymentMethod *string    `gorm:"type:varchar(30)"`
	Status        SaleStatus `gorm:"type:varchar(10);not null;index"`
	PostedAtUtc   *time.Time `gorm:"type:timestamptz"`
	PostedBy      *string    `gorm:"type:varchar(100)"`
	Lines         []SaleLine `gorm:"foreignKey:SaleID;references:ID"`
	shared.AuditInfo
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// NewSale creates a draft sale
func NewSale(
	saleNumber string,
	branchID uuid.UUID,
	branchCode string,
	saleDate time.Time,
	lines []SaleLine,
	createdBy string,
	createdAt time.Time,
) (*Sale, error) {
	if saleNumber == "" {
		return nil, shared.NewValidationError("Sale number cannot be empty")
	}
	if branchCode == "" {
		return nil, shared.NewValidationError("Branch code cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.NewValidationError("Sale must have at least one line")
	}

	id := uuid.New()
	for i := range lines {
		if err := lines[i].validate(); err != nil {
			return nil, err
		}
		lines[i].SaleID = id
		lines[i].LineTotal = inventory.CalculateLineTotal(lines[i].Quantity, lines[i].UnitPrice)
	}

	return &Sale{
		ID:          id,
		SaleNumber:  saleNumber,
		BranchID:    branchID,
		BranchCode:  branchCode,
		SaleDateUtc: saleDate,
		Status:      SaleStatusDraft,
		Lines:       lines,
		AuditInfo:   shared.NewAuditInfo(createdBy, createdAt),
	}, nil
}

// GoodLines returns the lines that debit inventory when the sale is posted
func (s *Sale) GoodLines() []*SaleLine {
	goods := make([]*SaleLine, 0, len(s.Lines))
	for i := range s.Lines {
		if s.Lines[i].IsGood() {
			goods = append(goods, &s.Lines[i])
		}
	}
	return goods
}

// TotalAmount returns the sum of all line totals as Money
func (s *Sale) TotalAmount() valueobject.Money {
	total := valueobject.ZeroUSD()
	for _, line := range s.Lines {
		total = total.MustAdd(valueobject.NewMoneyUSD(line.LineTotal))
	}
	return total
}

// MarkPosted transitions the sale from Draft to Committed. Posting is the
// only writer of the posted timestamp and actor.
func (s *Sale) MarkPosted(postedBy string, postedAt time.Time) error {
	if s.Status != SaleStatusDraft {
		return shared.NewBusinessError(fmt.Sprintf(
			"Sale %s has already been posted and cannot be posted again", s.SaleNumber))
	}

	s.Status = SaleStatusCommitted
	s.PostedAtUtc = &postedAt
	s.PostedBy = &postedBy
	s.Touch(postedBy, postedAt)
	return nil
}

// LinkInventoryTransaction back-links every Good line to the inventory
// transaction synthesized while posting. Service lines are never linked.
func (s *Sale) LinkInventoryTransaction(txID uuid.UUID) {
	for i := range s.Lines {
		if s.Lines[i].IsGood() {
			s.Lines[i].InventoryTransactionID = &txID
		}
	}
}
