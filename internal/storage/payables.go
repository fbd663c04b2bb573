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

const payableColumns = `id, supplier_id, category_id, account_id, value, due_date, notes,
	repetition_type, installments, recurrence_type, recurrence_count,
	is_paid, paid_date, parent_id, created_at`

func (r *Repository) CreatePayable(ctx context.Context, p core.PayableAccount) (core.PayableAccount, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	if p.Policy.Mode == "" {
		p.Policy.Mode = core.RepeatNone
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO payable_accounts (`+payableColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.SupplierID, p.CategoryID, nullString(p.AccountID),
		p.Value.String(), p.DueDate.String(), p.Notes,
		string(p.Policy.Mode), nullInt(p.Policy.Installments),
		nullString(string(p.Policy.RecurrenceUnit)), nullInt(p.Policy.RecurrenceCount),
		boolToInt(p.IsPaid), nullString(encodeDate(p.PaidDate)), nullString(p.ParentID),
		encodeTime(p.CreatedAt))
	if err != nil {
		return core.PayableAccount{}, fmt.Errorf("insert payable: %w", err)
	}
	return p, nil
}

func (r *Repository) GetPayable(ctx context.Context, id string) (core.PayableAccount, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+payableColumns+" FROM payable_accounts WHERE id = ?", id)
	return scanPayable(row)
}

func (r *Repository) ListPayables(ctx context.Context) ([]core.PayableAccount, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+payableColumns+" FROM payable_accounts ORDER BY due_date DESC, created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list payables: %w", err)
	}
	defer rows.Close()

	var payables []core.PayableAccount
	for rows.Next() {
		p, err := scanPayable(rows)
		if err != nil {
			return nil, err
		}
		payables = append(payables, p)
	}
	return payables, rows.Err()
}

func (r *Repository) UpdatePayable(ctx context.Context, p core.PayableAccount) (core.PayableAccount, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payable_accounts SET supplier_id = ?, category_id = ?, account_id = ?,
		 value = ?, due_date = ?, notes = ?, repetition_type = ?, installments = ?,
		 recurrence_type = ?, recurrence_count = ?, is_paid = ?, paid_date = ?, parent_id = ?
		 WHERE id = ?`,
		p.SupplierID, p.CategoryID, nullString(p.AccountID),
		p.Value.String(), p.DueDate.String(), p.Notes,
		string(p.Policy.Mode), nullInt(p.Policy.Installments),
		nullString(string(p.Policy.RecurrenceUnit)), nullInt(p.Policy.RecurrenceCount),
		boolToInt(p.IsPaid), nullString(encodeDate(p.PaidDate)), nullString(p.ParentID),
		p.ID)
	if err != nil {
		return core.PayableAccount{}, fmt.Errorf("update payable: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return core.PayableAccount{}, err
	}
	return r.GetPayable(ctx, p.ID)
}

func (r *Repository) DeletePayable(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM payable_accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete payable: %w", err)
	}
	return requireAffected(res)
}

func scanPayable(row rowScanner) (core.PayableAccount, error) {
	var (
		p                           core.PayableAccount
		accountID, parentID         sql.NullString
		value, dueDate              string
		mode                        string
		installments, recurCount    sql.NullInt64
		recurUnit, paidDate         sql.NullString
		isPaid                      int
		createdAt                   string
	)
	err := row.Scan(&p.ID, &p.SupplierID, &p.CategoryID, &accountID,
		&value, &dueDate, &p.Notes,
		&mode, &installments, &recurUnit, &recurCount,
		&isPaid, &paidDate, &parentID, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.PayableAccount{}, core.ErrNotFound
		}
		return core.PayableAccount{}, fmt.Errorf("scan payable: %w", err)
	}

	p.AccountID = accountID.String
	p.ParentID = parentID.String
	p.IsPaid = isPaid != 0
	p.Policy = core.RepetitionPolicy{
		Mode:            core.RepetitionMode(mode),
		Installments:    int(installments.Int64),
		RecurrenceUnit:  core.RecurrenceUnit(recurUnit.String),
		RecurrenceCount: int(recurCount.Int64),
	}
	if p.Value, err = decodeAmount(value); err != nil {
		return core.PayableAccount{}, fmt.Errorf("decode payable value: %w", err)
	}
	if p.DueDate, err = decodeDate(dueDate); err != nil {
		return core.PayableAccount{}, fmt.Errorf("decode due date: %w", err)
	}
	if p.PaidDate, err = decodeDate(paidDate.String); err != nil {
		return core.PayableAccount{}, fmt.Errorf("decode paid date: %w", err)
	}
	if p.CreatedAt, err = decodeTime(createdAt); err != nil {
		return core.PayableAccount{}, fmt.Errorf("decode created_at: %w", err)
	}
	return p, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
