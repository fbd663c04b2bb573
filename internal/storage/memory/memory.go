// Package memory provides a mutex-guarded in-memory Store. It backs
// tests and the zero-configuration dev mode; data does not survive a
// restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"contas/internal/core"
	"contas/internal/storage"
)

type Store struct {
	mu           sync.RWMutex
	accounts     map[string]core.Account
	categories   map[string]core.Category
	parties      map[string]core.ClientSupplier
	payables     map[string]core.PayableAccount
	receivables  map[string]core.ReceivableAccount
	transactions map[string]core.Transaction
	audit        []storage.AuditEntry
}

func NewStore() *Store {
	return &Store{
		accounts:     make(map[string]core.Account),
		categories:   make(map[string]core.Category),
		parties:      make(map[string]core.ClientSupplier),
		payables:     make(map[string]core.PayableAccount),
		receivables:  make(map[string]core.ReceivableAccount),
		transactions: make(map[string]core.Transaction),
	}
}

var _ storage.Store = (*Store)(nil)

// WithTx runs fn against the store directly. The memory backend has no
// rollback; partial writes from a failed fn stay applied.
func (s *Store) WithTx(ctx context.Context, fn func(storage.Store) error) error {
	return fn(s)
}

func (s *Store) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now().UTC()
	s.accounts[a.ID] = a
	return a, nil
}

func (s *Store) GetAccount(ctx context.Context, id string) (core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return core.Account{}, core.ErrNotFound
	}
	return a, nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]core.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.After(accounts[j].CreatedAt)
	})
	return accounts, nil
}

func (s *Store) UpdateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.accounts[a.ID]
	if !ok {
		return core.Account{}, core.ErrNotFound
	}
	a.CreatedAt = existing.CreatedAt
	s.accounts[a.ID] = a
	return a, nil
}

func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.accounts, id)
	return nil
}

func (s *Store) AdjustAccountBalance(ctx context.Context, id string, delta decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return core.ErrNotFound
	}
	a.CurrentBalance = a.CurrentBalance.Add(delta)
	s.accounts[id] = a
	return nil
}

func (s *Store) AccountInUse(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.transactions {
		if t.AccountID == id {
			return true, nil
		}
	}
	for _, p := range s.payables {
		if p.AccountID == id {
			return true, nil
		}
	}
	for _, r := range s.receivables {
		if r.AccountID == id {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return core.Category{}, core.ErrNotFound
	}
	return c, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	categories := make([]core.Category, 0, len(s.categories))
	for _, c := range s.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.categories[c.ID]
	if !ok {
		return core.Category{}, core.ErrNotFound
	}
	c.CreatedAt = existing.CreatedAt
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) CategoryInUse(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.transactions {
		if t.CategoryID == id {
			return true, nil
		}
	}
	for _, p := range s.payables {
		if p.CategoryID == id {
			return true, nil
		}
	}
	for _, r := range s.receivables {
		if r.CategoryID == id {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateClientSupplier(ctx context.Context, cs core.ClientSupplier) (core.ClientSupplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs.ID = uuid.NewString()
	cs.CreatedAt = time.Now().UTC()
	s.parties[cs.ID] = cs
	return cs, nil
}

func (s *Store) GetClientSupplier(ctx context.Context, id string) (core.ClientSupplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cs, ok := s.parties[id]
	if !ok {
		return core.ClientSupplier{}, core.ErrNotFound
	}
	return cs, nil
}

func (s *Store) ListClientsSuppliers(ctx context.Context) ([]core.ClientSupplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	parties := make([]core.ClientSupplier, 0, len(s.parties))
	for _, cs := range s.parties {
		parties = append(parties, cs)
	}
	sort.Slice(parties, func(i, j int) bool {
		return parties[i].Name < parties[j].Name
	})
	return parties, nil
}

func (s *Store) UpdateClientSupplier(ctx context.Context, cs core.ClientSupplier) (core.ClientSupplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.parties[cs.ID]
	if !ok {
		return core.ClientSupplier{}, core.ErrNotFound
	}
	cs.CreatedAt = existing.CreatedAt
	s.parties[cs.ID] = cs
	return cs, nil
}

func (s *Store) DeleteClientSupplier(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.parties[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.parties, id)
	return nil
}

func (s *Store) PartyInUse(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.transactions {
		if t.ClientSupplierID == id {
			return true, nil
		}
	}
	for _, p := range s.payables {
		if p.SupplierID == id {
			return true, nil
		}
	}
	for _, r := range s.receivables {
		if r.ClientID == id {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreatePayable(ctx context.Context, p core.PayableAccount) (core.PayableAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	if p.Policy.Mode == "" {
		p.Policy.Mode = core.RepeatNone
	}
	s.payables[p.ID] = p
	return p, nil
}

func (s *Store) GetPayable(ctx context.Context, id string) (core.PayableAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payables[id]
	if !ok {
		return core.PayableAccount{}, core.ErrNotFound
	}
	return p, nil
}

func (s *Store) ListPayables(ctx context.Context) ([]core.PayableAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payables := make([]core.PayableAccount, 0, len(s.payables))
	for _, p := range s.payables {
		payables = append(payables, p)
	}
	sort.Slice(payables, func(i, j int) bool {
		if !payables[i].DueDate.Equal(payables[j].DueDate.Time) {
			return payables[i].DueDate.After(payables[j].DueDate.Time)
		}
		return payables[i].CreatedAt.After(payables[j].CreatedAt)
	})
	return payables, nil
}

func (s *Store) UpdatePayable(ctx context.Context, p core.PayableAccount) (core.PayableAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.payables[p.ID]
	if !ok {
		return core.PayableAccount{}, core.ErrNotFound
	}
	p.CreatedAt = existing.CreatedAt
	s.payables[p.ID] = p
	return p, nil
}

func (s *Store) DeletePayable(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payables[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.payables, id)
	return nil
}

func (s *Store) CreateReceivable(ctx context.Context, r core.ReceivableAccount) (core.ReceivableAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = uuid.NewString()
	r.CreatedAt = time.Now().UTC()
	if r.Policy.Mode == "" {
		r.Policy.Mode = core.RepeatNone
	}
	s.receivables[r.ID] = r
	return r, nil
}

func (s *Store) GetReceivable(ctx context.Context, id string) (core.ReceivableAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.receivables[id]
	if !ok {
		return core.ReceivableAccount{}, core.ErrNotFound
	}
	return r, nil
}

func (s *Store) ListReceivables(ctx context.Context) ([]core.ReceivableAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	receivables := make([]core.ReceivableAccount, 0, len(s.receivables))
	for _, r := range s.receivables {
		receivables = append(receivables, r)
	}
	sort.Slice(receivables, func(i, j int) bool {
		if !receivables[i].DueDate.Equal(receivables[j].DueDate.Time) {
			return receivables[i].DueDate.After(receivables[j].DueDate.Time)
		}
		return receivables[i].CreatedAt.After(receivables[j].CreatedAt)
	})
	return receivables, nil
}

func (s *Store) UpdateReceivable(ctx context.Context, r core.ReceivableAccount) (core.ReceivableAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.receivables[r.ID]
	if !ok {
		return core.ReceivableAccount{}, core.ErrNotFound
	}
	r.CreatedAt = existing.CreatedAt
	s.receivables[r.ID] = r
	return r, nil
}

func (s *Store) DeleteReceivable(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.receivables[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.receivables, id)
	return nil
}

func (s *Store) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now().UTC()
	if t.Source.Kind == "" {
		t.Source.Kind = core.SourceManual
	}
	s.transactions[t.ID] = t
	return t, nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, nil
}

func (s *Store) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	transactions := make([]core.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		transactions = append(transactions, t)
	}
	sort.Slice(transactions, func(i, j int) bool {
		if !transactions[i].PaymentDate.Equal(transactions[j].PaymentDate.Time) {
			return transactions[i].PaymentDate.After(transactions[j].PaymentDate.Time)
		}
		return transactions[i].CreatedAt.After(transactions[j].CreatedAt)
	})
	return transactions, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.transactions[t.ID]
	if !ok {
		return core.Transaction{}, core.ErrNotFound
	}
	t.CreatedAt = existing.CreatedAt
	s.transactions[t.ID] = t
	return t, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) FindTransactionBySource(ctx context.Context, kind core.SourceKind, sourceID string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.transactions {
		if t.Source.Kind == kind && t.Source.SourceID == sourceID {
			return t, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

func (s *Store) AppendAuditEntry(ctx context.Context, e storage.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt == "" {
		e.OccurredAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	s.audit = append(s.audit, e)
	return nil
}

func (s *Store) ListAuditEntries(ctx context.Context, limit int) ([]storage.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.audit) {
		limit = len(s.audit)
	}
	entries := make([]storage.AuditEntry, 0, limit)
	for i := len(s.audit) - 1; i >= 0 && len(entries) < limit; i-- {
		entries = append(entries, s.audit[i])
	}
	return entries, nil
}
