// Package storage defines the persistence boundary and its SQLite
// implementation. Services depend on the Store interface only; the
// in-memory backend in storage/memory satisfies the same contract.
package storage

import (
	"context"

	"github.com/shopspring/decimal"

	"contas/internal/core"
)

// Store is the persistence contract for the bookkeeping domain. All
// reads and writes run under ctx; mutations inside WithTx share one
// transaction.
type Store interface {
	CreateAccount(ctx context.Context, a core.Account) (core.Account, error)
	GetAccount(ctx context.Context, id string) (core.Account, error)
	ListAccounts(ctx context.Context) ([]core.Account, error)
	UpdateAccount(ctx context.Context, a core.Account) (core.Account, error)
	DeleteAccount(ctx context.Context, id string) error
	// AdjustAccountBalance adds delta to an account's current balance.
	AdjustAccountBalance(ctx context.Context, id string, delta decimal.Decimal) error
	// AccountInUse reports whether any transaction, payable or receivable
	// references the account.
	AccountInUse(ctx context.Context, id string) (bool, error)

	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	GetCategory(ctx context.Context, id string) (core.Category, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	UpdateCategory(ctx context.Context, c core.Category) (core.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	CategoryInUse(ctx context.Context, id string) (bool, error)

	CreateClientSupplier(ctx context.Context, cs core.ClientSupplier) (core.ClientSupplier, error)
	GetClientSupplier(ctx context.Context, id string) (core.ClientSupplier, error)
	ListClientsSuppliers(ctx context.Context) ([]core.ClientSupplier, error)
	UpdateClientSupplier(ctx context.Context, cs core.ClientSupplier) (core.ClientSupplier, error)
	DeleteClientSupplier(ctx context.Context, id string) error
	PartyInUse(ctx context.Context, id string) (bool, error)

	CreatePayable(ctx context.Context, p core.PayableAccount) (core.PayableAccount, error)
	GetPayable(ctx context.Context, id string) (core.PayableAccount, error)
	ListPayables(ctx context.Context) ([]core.PayableAccount, error)
	UpdatePayable(ctx context.Context, p core.PayableAccount) (core.PayableAccount, error)
	DeletePayable(ctx context.Context, id string) error

	CreateReceivable(ctx context.Context, r core.ReceivableAccount) (core.ReceivableAccount, error)
	GetReceivable(ctx context.Context, id string) (core.ReceivableAccount, error)
	ListReceivables(ctx context.Context) ([]core.ReceivableAccount, error)
	UpdateReceivable(ctx context.Context, r core.ReceivableAccount) (core.ReceivableAccount, error)
	DeleteReceivable(ctx context.Context, id string) error

	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	// FindTransactionBySource looks up the transaction generated by
	// settling the given payable/receivable entry. Returns
	// core.ErrNotFound when none exists.
	FindTransactionBySource(ctx context.Context, kind core.SourceKind, sourceID string) (core.Transaction, error)

	AppendAuditEntry(ctx context.Context, e AuditEntry) error
	ListAuditEntries(ctx context.Context, limit int) ([]AuditEntry, error)

	// WithTx runs fn against a Store bound to a single transaction,
	// committing on nil and rolling back on error.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// AuditEntry is one row of the append-only ledger audit trail, written
// by the audit worker from published ledger events.
type AuditEntry struct {
	ID         string
	Event      string
	EntityKind string
	EntityID   string
	Detail     string
	OccurredAt string
}
