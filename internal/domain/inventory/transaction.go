package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/henrytires/backend/internal/domain/shared"
	"github.com/henrytires/backend/internal/domain/shared/valueobject"
)

// TransactionType represents the type of inventory transaction
type TransactionType string

const (
	// TransactionTypeIn represents stock entering a branch (purchase, initial load)
	TransactionTypeIn TransactionType = "In"
	// TransactionTypeOut represents stock leaving a branch (sale, shipment)
	TransactionTypeOut TransactionType = "Out"
	// TransactionTypeAdjust represents a manual correction to an absolute quantity
	TransactionTypeAdjust TransactionType = "Adjust"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeIn, TransactionTypeOut, TransactionTypeAdjust:
		return true
	}
	return false
}

// numberPrefix returns the prefix used in transaction numbers
func (t TransactionType) numberPrefix() string {
	if t == TransactionTypeAdjust {
		return "ADJ"
	}
	return strings.ToUpper(string(t))
}

// TransactionStatus represents the lifecycle state of a transaction or sale
type TransactionStatus string

const (
	// StatusDraft is the initial, still-mutable state
	StatusDraft TransactionStatus = "Draft"
	// StatusCommitted is terminal; the transaction has mutated stock
	StatusCommitted TransactionStatus = "Committed"
	// StatusCancelled is terminal; the transaction never touched stock
	StatusCancelled TransactionStatus = "Cancelled"
)

// String returns the string representation of TransactionStatus
func (s TransactionStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is valid
func (s TransactionStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusCommitted, StatusCancelled:
		return true
	}
	return false
}

// Condition distinguishes new from used tires; stock of the same item code
// is tracked separately per condition
type Condition string

const (
	ConditionNew  Condition = "New"
	ConditionUsed Condition = "Used"
)

// String returns the string representation of Condition
func (c Condition) String() string {
	return string(c)
}

// IsValid returns true if the condition is valid
func (c Condition) IsValid() bool {
	return c == ConditionNew || c == ConditionUsed
}

// ParseCondition parses a condition string case-insensitively
func ParseCondition(s string) (Condition, error) {
	switch strings.ToLower(s) {
	case "new":
		return ConditionNew, nil
	case "used":
		return ConditionUsed, nil
	}
	return "", shared.NewValidationError(fmt.Sprintf("Invalid condition: %s", s))
}

// InventoryTransactionLine is one priced item movement within a transaction.
// For Adjust transactions Quantity is the new absolute quantity, not a delta.
type InventoryTransactionLine struct {
	ID             uuid.UUID            `gorm:"type:uuid;primaryKey"`
	TransactionID  uuid.UUID            `gorm:"type:uuid;not null;index"`
	ItemID         uuid.UUID            `gorm:"type:uuid;not null"`
	ItemCode       string               `gorm:"type:varchar(50);not null;index"`
	Condition      Condition            `gorm:"type:varchar(10);not null"`
	Quantity       int                  `gorm:"not null"`
	UnitPrice      decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Currency       valueobject.Currency `gorm:"type:varchar(3);not null"`
	IsTaxable      bool                 `gorm:"not null;default:true"`
	AppliesFee     bool                 `gorm:"not null;default:true"`
	PriceSource    PriceSource          `gorm:"type:varchar(20);not null"`
	PriceSetByRole string               `gorm:"type:varchar(20);not null"`
	PriceSetByUser string               `gorm:"type:varchar(100);not null"`
	LineTotal      decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	CostOfGoods    *decimal.Decimal     `gorm:"type:decimal(18,4)"`
	PriceNotes     *string              `gorm:"type:varchar(500)"`
	ExecutedAtUtc  time.Time            `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for GORM
func (InventoryTransactionLine) TableName() string {
	return "inventory_transaction_lines"
}

// CalculateLineTotal is the single definition of a line total: unit price
// times quantity, rounded to cents.
func CalculateLineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return valueobject.NewMoneyUSD(unitPrice).MultiplyByInt(int64(quantity)).Round(2).Amount()
}

// InventoryTransaction is one stock movement event at a branch. Once the
// status leaves Draft the transaction is immutable except for the commit and
// cancel audit stamps; corrections are made with new transactions.
type InventoryTransaction struct {
	ID                 uuid.UUID                  `gorm:"type:uuid;primaryKey"`
	TransactionNumber  string                     `gorm:"type:varchar(30);uniqueIndex;not null"`
	BranchCode         string                     `gorm:"type:varchar(30);not null;index"`
	Type               TransactionType            `gorm:"type:varchar(10);not null;index"`
	Status             TransactionStatus          `gorm:"type:varchar(10);not null;index"`
	TransactionDateUtc time.Time                  `gorm:"type:timestamptz;not null;index"`
	Notes              *string                    `gorm:"type:varchar(500)"`
	PaymentMethod      *string                    `gorm:"type:varchar(30)"`
	CommittedAtUtc     *time.Time                 `gorm:"type:timestamptz"`
	CommittedBy        *string                    `gorm:"type:varchar(100)"`
	Lines              []InventoryTransactionLine `gorm:"foreignKey:TransactionID;references:ID"`
	shared.AuditInfo
}

// TableName returns the table name for GORM
func (InventoryTransaction) TableName() string {
	return "inventory_transactions"
}

// NewTransactionNumber builds a human-readable transaction number in the
// format {TYPE}-{yyyyMMdd}-{RANDOM8}
func NewTransactionNumber(txType TransactionType, at time.Time) string {
	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s-%s-%s", txType.numberPrefix(), at.Format("20060102"), random)
}

// NewInventoryTransaction creates a draft transaction
func NewInventoryTransaction(
	branchCode string,
	txType TransactionType,
	transactionDate time.Time,
	lines []InventoryTransactionLine,
	createdBy string,
	createdAt time.Time,
) (*InventoryTransaction, error) {
	if branchCode == "" {
		return nil, shared.NewValidationError("Branch code cannot be empty")
	}
	if !txType.IsValid() {
		return nil, shared.NewValidationError("Invalid transaction type: " + string(txType))
	}
	if len(lines) == 0 {
		return nil, shared.NewValidationError("Transaction must have at least one line")
	}

	id := uuid.New()
	for i := range lines {
		lines[i].TransactionID = id
	}

	return &InventoryTransaction{
		ID:                 id,
		TransactionNumber:  NewTransactionNumber(txType, createdAt),
		BranchCode:         branchCode,
		Type:               txType,
		Status:             StatusDraft,
		TransactionDateUtc: transactionDate,
		Lines:              lines,
		AuditInfo:          shared.NewAuditInfo(createdBy, createdAt),
	}, nil
}

// Commit transitions the transaction from Draft to Committed.
// Committed is terminal; stock mutation happens when the committed
// transaction is applied to the affected summaries.
func (t *InventoryTransaction) Commit(committedBy string, committedAt time.Time) error {
	if t.Status != StatusDraft {
		return shared.NewInvalidStateError(fmt.Sprintf(
			"Cannot commit transaction with status %s. Only Draft transactions can be committed.", t.Status))
	}

	t.Status = StatusCommitted
	t.CommittedAtUtc = &committedAt
	t.CommittedBy = &committedBy
	t.Touch(committedBy, committedAt)
	return nil
}

// Cancel transitions the transaction from Draft to Cancelled. Committed
// transactions are never mutated; reversals are new transactions.
func (t *InventoryTransaction) Cancel() error {
	if t.Status == StatusCommitted {
		return shared.NewInvalidStateError(
			"Cannot cancel a committed transaction. Create a reversal transaction instead.")
	}
	if t.Status == StatusCancelled {
		return shared.NewInvalidStateError("Transaction is already cancelled.")
	}

	t.Status = StatusCancelled
	return nil
}

// TotalAmount returns the sum of all line totals as Money
func (t *InventoryTransaction) TotalAmount() valueobject.Money {
	total := valueobject.ZeroUSD()
	for _, line := range t.Lines {
		total = total.MustAdd(valueobject.NewMoneyUSD(line.LineTotal))
	}
	return total
}

// ItemCodes returns the distinct item codes touched by this transaction,
// in first-seen order
func (t *InventoryTransaction) ItemCodes() []string {
	seen := make(map[string]struct{}, len(t.Lines))
	codes := make([]string, 0, len(t.Lines))
	for _, line := range t.Lines {
		if _, ok := seen[line.ItemCode]; ok {
			continue
		}
		seen[line.ItemCode] = struct{}{}
		codes = append(codes, line.ItemCode)
	}
	return codes
}
