package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"contas/internal/core"
)

const accountColumns = "id, name, kind, initial_balance, current_balance, created_at"

func (r *Repository) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO accounts (id, name, kind, initial_balance, current_balance, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		a.ID, a.Name, string(a.Kind), a.InitialBalance.String(), a.CurrentBalance.String(), encodeTime(a.CreatedAt))
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}
	return a, nil
}

func (r *Repository) GetAccount(ctx context.Context, id string) (core.Account, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = ?", id)
	return scanAccount(row)
}

func (r *Repository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+accountColumns+" FROM accounts ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *Repository) UpdateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE accounts SET name = ?, kind = ?, initial_balance = ?, current_balance = ? WHERE id = ?",
		a.Name, string(a.Kind), a.InitialBalance.String(), a.CurrentBalance.String(), a.ID)
	if err != nil {
		return core.Account{}, fmt.Errorf("update account: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return core.Account{}, err
	}
	return r.GetAccount(ctx, a.ID)
}

func (r *Repository) DeleteAccount(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return requireAffected(res)
}

func (r *Repository) AdjustAccountBalance(ctx context.Context, id string, delta decimal.Decimal) error {
	a, err := r.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	balance := a.CurrentBalance.Add(delta)

	// Decimal text columns do not support arithmetic in SQL, so the new
	// balance is computed here and written back under WithTx.
	res, err := r.db.ExecContext(ctx,
		"UPDATE accounts SET current_balance = ? WHERE id = ?", balance.String(), id)
	if err != nil {
		return fmt.Errorf("adjust account balance: %w", err)
	}
	return requireAffected(res)
}

func (r *Repository) AccountInUse(ctx context.Context, id string) (bool, error) {
	used, err := exists(ctx, r.db,
		"SELECT COUNT(*) FROM transactions WHERE account_id = ?", id)
	if err != nil || used {
		return used, err
	}
	used, err = exists(ctx, r.db,
		"SELECT COUNT(*) FROM payable_accounts WHERE account_id = ?", id)
	if err != nil || used {
		return used, err
	}
	return exists(ctx, r.db,
		"SELECT COUNT(*) FROM receivable_accounts WHERE account_id = ?", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (core.Account, error) {
	var (
		a                core.Account
		kind             string
		initial, current string
		createdAt        string
	)
	if err := row.Scan(&a.ID, &a.Name, &kind, &initial, &current, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Account{}, core.ErrNotFound
		}
		return core.Account{}, fmt.Errorf("scan account: %w", err)
	}

	var err error
	a.Kind = core.AccountKind(kind)
	if a.InitialBalance, err = decodeAmount(initial); err != nil {
		return core.Account{}, fmt.Errorf("decode initial balance: %w", err)
	}
	if a.CurrentBalance, err = decodeAmount(current); err != nil {
		return core.Account{}, fmt.Errorf("decode current balance: %w", err)
	}
	if a.CreatedAt, err = decodeTime(createdAt); err != nil {
		return core.Account{}, fmt.Errorf("decode created_at: %w", err)
	}
	return a, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
