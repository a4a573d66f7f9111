// Package apptest provides in-memory repository implementations for
// application service tests.
package apptest

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/henrytires/backend/internal/domain/catalog"
	"github.com/henrytires/backend/internal/domain/identity"
	"github.com/henrytires/backend/internal/domain/inventory"
	"github.com/henrytires/backend/internal/domain/sales"
	"github.com/henrytires/backend/internal/domain/shared"
)

// TransactionRepo is an in-memory inventory.TransactionRepository
type TransactionRepo struct {
	mu  sync.Mutex
	txs map[uuid.UUID]*inventory.InventoryTransaction
}

// NewTransactionRepo creates an empty in-memory transaction repository
func NewTransactionRepo() *TransactionRepo {
	return &TransactionRepo{txs: make(map[uuid.UUID]*inventory.InventoryTransaction)}
}

func (r *TransactionRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.InventoryTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *tx
	return &clone, nil
}

func (r *TransactionRepo) FindByNumber(_ context.Context, number string) (*inventory.InventoryTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range r.txs {
		if tx.TransactionNumber == number {
			clone := *tx
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *TransactionRepo) Find(_ context.Context, filter inventory.TransactionFilter) ([]*inventory.InventoryTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*inventory.InventoryTransaction
	for _, tx := range r.txs {
		if filter.BranchCode != nil && tx.BranchCode != *filter.BranchCode {
			continue
		}
		if filter.Type != nil && tx.Type != *filter.Type {
			continue
		}
		if filter.Status != nil && tx.Status != *filter.Status {
			continue
		}
		if filter.FromUtc != nil && tx.TransactionDateUtc.Before(*filter.FromUtc) {
			continue
		}
		if filter.ToUtc != nil && tx.TransactionDateUtc.After(*filter.ToUtc) {
			continue
		}
		clone := *tx
		out = append(out, &clone)
	}
	return out, nil
}

func (r *TransactionRepo) Save(_ context.Context, tx *inventory.InventoryTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *tx
	r.txs[tx.ID] = &clone
	return nil
}

// Count returns the number of stored transactions
func (r *TransactionRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.txs)
}

// SummaryRepo is an in-memory inventory.SummaryRepository with real
// compare-and-set semantics on SaveWithVersion
type SummaryRepo struct {
	mu        sync.Mutex
	summaries map[string]*inventory.InventorySummary
}

// NewSummaryRepo creates an empty in-memory summary repository
func NewSummaryRepo() *SummaryRepo {
	return &SummaryRepo{summaries: make(map[string]*inventory.InventorySummary)}
}

func summaryKey(branchCode, itemCode string) string {
	return branchCode + "|" + itemCode
}

func cloneSummary(s *inventory.InventorySummary) *inventory.InventorySummary {
	clone := *s
	clone.Entries = make([]inventory.InventoryEntry, len(s.Entries))
	copy(clone.Entries, s.Entries)
	return &clone
}

func (r *SummaryRepo) FindByBranchAndItem(_ context.Context, branchCode, itemCode string) (*inventory.InventorySummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.summaries[summaryKey(branchCode, itemCode)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cloneSummary(s), nil
}

func (r *SummaryRepo) FindByBranch(_ context.Context, branchCode string) ([]*inventory.InventorySummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*inventory.InventorySummary
	for _, s := range r.summaries {
		if s.BranchCode == branchCode {
			out = append(out, cloneSummary(s))
		}
	}
	return out, nil
}

func (r *SummaryRepo) FindAll(_ context.Context) ([]*inventory.InventorySummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*inventory.InventorySummary, 0, len(r.summaries))
	for _, s := range r.summaries {
		out = append(out, cloneSummary(s))
	}
	return out, nil
}

func (r *SummaryRepo) Save(_ context.Context, summary *inventory.InventorySummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries[summaryKey(summary.BranchCode, summary.ItemCode)] = cloneSummary(summary)
	return nil
}

// SaveWithVersion persists the summary only if the stored version still
// matches the version the caller loaded
func (r *SummaryRepo) SaveWithVersion(_ context.Context, summary *inventory.InventorySummary, loadedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := summaryKey(summary.BranchCode, summary.ItemCode)
	stored, exists := r.summaries[key]
	if !exists {
		if loadedVersion != 0 {
			return shared.NewConcurrencyError(fmt.Sprintf(
				"Summary for %s/%s no longer exists at version %d", summary.BranchCode, summary.ItemCode, loadedVersion))
		}
		r.summaries[key] = cloneSummary(summary)
		return nil
	}
	if stored.Version != loadedVersion {
		return shared.NewConcurrencyError(fmt.Sprintf(
			"Summary for %s/%s was modified concurrently: expected version %d, found %d",
			summary.BranchCode, summary.ItemCode, loadedVersion, stored.Version))
	}
	r.summaries[key] = cloneSummary(summary)
	return nil
}

// ItemPriceRepo is an in-memory inventory.ItemPriceRepository
type ItemPriceRepo struct {
	mu     sync.Mutex
	prices map[string]*inventory.ItemPrice
}

// NewItemPriceRepo creates an empty in-memory price repository
func NewItemPriceRepo() *ItemPriceRepo {
	return &ItemPriceRepo{prices: make(map[string]*inventory.ItemPrice)}
}

func (r *ItemPriceRepo) FindByItemCode(_ context.Context, itemCode string) (*inventory.ItemPrice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.prices[itemCode]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *ItemPriceRepo) FindAll(_ context.Context) ([]*inventory.ItemPrice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*inventory.ItemPrice, 0, len(r.prices))
	for _, p := range r.prices {
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}

func (r *ItemPriceRepo) Save(_ context.Context, price *inventory.ItemPrice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *price
	r.prices[price.ItemCode] = &clone
	return nil
}

// ItemRepo is an in-memory catalog.ItemRepository
type ItemRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*catalog.Item
}

// NewItemRepo creates an empty in-memory item repository
func NewItemRepo() *ItemRepo {
	return &ItemRepo{items: make(map[uuid.UUID]*catalog.Item)}
}

func (r *ItemRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *item
	return &clone, nil
}

func (r *ItemRepo) FindByCode(_ context.Context, itemCode string) (*catalog.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.ItemCode == itemCode {
			clone := *item
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *ItemRepo) FindAll(_ context.Context, includeDeleted bool) ([]*catalog.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*catalog.Item
	for _, item := range r.items {
		if item.IsDeleted && !includeDeleted {
			continue
		}
		clone := *item
		out = append(out, &clone)
	}
	return out, nil
}

func (r *ItemRepo) Save(_ context.Context, item *catalog.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *item
	r.items[item.ID] = &clone
	return nil
}

// BranchRepo is an in-memory catalog.BranchRepository
type BranchRepo struct {
	mu       sync.Mutex
	branches map[uuid.UUID]*catalog.Branch
}

// NewBranchRepo creates an empty in-memory branch repository
func NewBranchRepo() *BranchRepo {
	return &BranchRepo{branches: make(map[uuid.UUID]*catalog.Branch)}
}

func (r *BranchRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Branch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.branches[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *BranchRepo) FindByCode(_ context.Context, code string) (*catalog.Branch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.branches {
		if b.Code == code {
			clone := *b
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *BranchRepo) FindAll(_ context.Context) ([]*catalog.Branch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*catalog.Branch, 0, len(r.branches))
	for _, b := range r.branches {
		clone := *b
		out = append(out, &clone)
	}
	return out, nil
}

func (r *BranchRepo) Save(_ context.Context, branch *catalog.Branch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *branch
	r.branches[branch.ID] = &clone
	return nil
}

// SaleRepo is an in-memory sales.SaleRepository
type SaleRepo struct {
	mu    sync.Mutex
	sales map[uuid.UUID]*sales.Sale
}

// NewSaleRepo creates an empty in-memory sale repository
func NewSaleRepo() *SaleRepo {
	return &SaleRepo{sales: make(map[uuid.UUID]*sales.Sale)}
}

func cloneSale(s *sales.Sale) *sales.Sale {
	clone := *s
	clone.Lines = make([]sales.SaleLine, len(s.Lines))
	copy(clone.Lines, s.Lines)
	return &clone
}

func (r *SaleRepo) FindByID(_ context.Context, id uuid.UUID) (*sales.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cloneSale(s), nil
}

func (r *SaleRepo) FindByNumber(_ context.Context, saleNumber string) (*sales.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sales {
		if s.SaleNumber == saleNumber {
			return cloneSale(s), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *SaleRepo) Find(_ context.Context, filter sales.SaleFilter) ([]*sales.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*sales.Sale
	for _, s := range r.sales {
		if filter.BranchCode != nil && s.BranchCode != *filter.BranchCode {
			continue
		}
		if filter.Status != nil && s.Status != *filter.Status {
			continue
		}
		if filter.FromUtc != nil && s.SaleDateUtc.Before(*filter.FromUtc) {
			continue
		}
		if filter.ToUtc != nil && s.SaleDateUtc.After(*filter.ToUtc) {
			continue
		}
		out = append(out, cloneSale(s))
	}
	return out, nil
}

func (r *SaleRepo) Save(_ context.Context, sale *sales.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sales[sale.ID] = cloneSale(sale)
	return nil
}

// Sequences is an in-memory sequence generator
type Sequences struct {
	mu     sync.Mutex
	values map[string]int64
}

// NewSequences creates an empty in-memory sequence generator
func NewSequences() *Sequences {
	return &Sequences{values: make(map[string]int64)}
}

// NextValue returns the next value of the named sequence, starting at 1
func (g *Sequences) NextValue(_ context.Context, name string) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[name]++
	return g.values[name], nil
}

// UserRepo is an in-memory identity.UserRepository
type UserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*identity.User
}

// NewUserRepo creates an empty in-memory user repository
func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[uuid.UUID]*identity.User)}
}

func (r *UserRepo) FindByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *UserRepo) FindByUsername(_ context.Context, username string) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *UserRepo) Save(_ context.Context, user *identity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

var _ identity.UserRepository = (*UserRepo)(nil)
