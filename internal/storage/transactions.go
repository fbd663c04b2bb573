package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"contas/internal/core"
)

const transactionColumns = `id, kind, client_supplier_id, category_id, account_id,
	value, payment_date, notes, source_type, source_id, created_at`

func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now().UTC()
	if t.Source.Kind == "" {
		t.Source.Kind = core.SourceManual
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, string(t.Kind), t.ClientSupplierID, t.CategoryID, t.AccountID,
		t.Value.String(), t.PaymentDate.String(), t.Notes,
		string(t.Source.Kind), nullString(t.Source.SourceID), encodeTime(t.CreatedAt))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return t, nil
}

func (r *Repository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	return scanTransaction(row)
}

func (r *Repository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions ORDER BY payment_date DESC, created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (r *Repository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET kind = ?, client_supplier_id = ?, category_id = ?,
		 account_id = ?, value = ?, payment_date = ?, notes = ?, source_type = ?, source_id = ?
		 WHERE id = ?`,
		string(t.Kind), t.ClientSupplierID, t.CategoryID, t.AccountID,
		t.Value.String(), t.PaymentDate.String(), t.Notes,
		string(t.Source.Kind), nullString(t.Source.SourceID), t.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return core.Transaction{}, err
	}
	return r.GetTransaction(ctx, t.ID)
}

func (r *Repository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireAffected(res)
}

func (r *Repository) FindTransactionBySource(ctx context.Context, kind core.SourceKind, sourceID string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE source_type = ? AND source_id = ?",
		string(kind), sourceID)
	return scanTransaction(row)
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t                    core.Transaction
		kind, sourceType     string
		value, paymentDate   string
		sourceID             sql.NullString
		createdAt            string
	)
	err := row.Scan(&t.ID, &kind, &t.ClientSupplierID, &t.CategoryID, &t.AccountID,
		&value, &paymentDate, &t.Notes, &sourceType, &sourceID, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, core.ErrNotFound
		}
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	t.Kind = core.FlowKind(kind)
	t.Source = core.Source{Kind: core.SourceKind(sourceType), SourceID: sourceID.String}
	if t.Value, err = decodeAmount(value); err != nil {
		return core.Transaction{}, fmt.Errorf("decode transaction value: %w", err)
	}
	if t.PaymentDate, err = decodeDate(paymentDate); err != nil {
		return core.Transaction{}, fmt.Errorf("decode payment date: %w", err)
	}
	if t.CreatedAt, err = decodeTime(createdAt); err != nil {
		return core.Transaction{}, fmt.Errorf("decode created_at: %w", err)
	}
	return t, nil
}
