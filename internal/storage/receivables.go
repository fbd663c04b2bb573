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

const receivableColumns = `id, client_id, category_id, account_id, value, due_date, notes,
	repetition_type, installments, recurrence_type, recurrence_count,
	is_received, received_date, parent_id, created_at`

func (r *Repository) CreateReceivable(ctx context.Context, rc core.ReceivableAccount) (core.ReceivableAccount, error) {
	rc.ID = uuid.NewString()
	rc.CreatedAt = time.Now().UTC()
	if rc.Policy.Mode == "" {
		rc.Policy.Mode = core.RepeatNone
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO receivable_accounts (`+receivableColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rc.ID, rc.ClientID, rc.CategoryID, nullString(rc.AccountID),
		rc.Value.String(), rc.DueDate.String(), rc.Notes,
		string(rc.Policy.Mode), nullInt(rc.Policy.Installments),
		nullString(string(rc.Policy.RecurrenceUnit)), nullInt(rc.Policy.RecurrenceCount),
		boolToInt(rc.IsReceived), nullString(encodeDate(rc.ReceivedDate)), nullString(rc.ParentID),
		encodeTime(rc.CreatedAt))
	if err != nil {
		return core.ReceivableAccount{}, fmt.Errorf("insert receivable: %w", err)
	}
	return rc, nil
}

func (r *Repository) GetReceivable(ctx context.Context, id string) (core.ReceivableAccount, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+receivableColumns+" FROM receivable_accounts WHERE id = ?", id)
	return scanReceivable(row)
}

func (r *Repository) ListReceivables(ctx context.Context) ([]core.ReceivableAccount, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+receivableColumns+" FROM receivable_accounts ORDER BY due_date DESC, created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list receivables: %w", err)
	}
	defer rows.Close()

	var receivables []core.ReceivableAccount
	for rows.Next() {
		rc, err := scanReceivable(rows)
		if err != nil {
			return nil, err
		}
		receivables = append(receivables, rc)
	}
	return receivables, rows.Err()
}

func (r *Repository) UpdateReceivable(ctx context.Context, rc core.ReceivableAccount) (core.ReceivableAccount, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE receivable_accounts SET client_id = ?, category_id = ?, account_id = ?,
		 value = ?, due_date = ?, notes = ?, repetition_type = ?, installments = ?,
		 recurrence_type = ?, recurrence_count = ?, is_received = ?, received_date = ?, parent_id = ?
		 WHERE id = ?`,
		rc.ClientID, rc.CategoryID, nullString(rc.AccountID),
		rc.Value.String(), rc.DueDate.String(), rc.Notes,
		string(rc.Policy.Mode), nullInt(rc.Policy.Installments),
		nullString(string(rc.Policy.RecurrenceUnit)), nullInt(rc.Policy.RecurrenceCount),
		boolToInt(rc.IsReceived), nullString(encodeDate(rc.ReceivedDate)), nullString(rc.ParentID),
		rc.ID)
	if err != nil {
		return core.ReceivableAccount{}, fmt.Errorf("update receivable: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return core.ReceivableAccount{}, err
	}
	return r.GetReceivable(ctx, rc.ID)
}

func (r *Repository) DeleteReceivable(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM receivable_accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete receivable: %w", err)
	}
	return requireAffected(res)
}

func scanReceivable(row rowScanner) (core.ReceivableAccount, error) {
	var (
		rc                       core.ReceivableAccount
		accountID, parentID      sql.NullString
		value, dueDate           string
		mode                     string
		installments, recurCount sql.NullInt64
		recurUnit, receivedDate  sql.NullString
		isReceived               int
		createdAt                string
	)
	err := row.Scan(&rc.ID, &rc.ClientID, &rc.CategoryID, &accountID,
		&value, &dueDate, &rc.Notes,
		&mode, &installments, &recurUnit, &recurCount,
		&isReceived, &receivedDate, &parentID, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.ReceivableAccount{}, core.ErrNotFound
		}
		return core.ReceivableAccount{}, fmt.Errorf("scan receivable: %w", err)
	}

	rc.AccountID = accountID.String
	rc.ParentID = parentID.String
	rc.IsReceived = isReceived != 0
	rc.Policy = core.RepetitionPolicy{
		Mode:            core.RepetitionMode(mode),
		Installments:    int(installments.Int64),
		RecurrenceUnit:  core.RecurrenceUnit(recurUnit.String),
		RecurrenceCount: int(recurCount.Int64),
	}
	if rc.Value, err = decodeAmount(value); err != nil {
		return core.ReceivableAccount{}, fmt.Errorf("decode receivable value: %w", err)
	}
	if rc.DueDate, err = decodeDate(dueDate); err != nil {
		return core.ReceivableAccount{}, fmt.Errorf("decode due date: %w", err)
	}
	if rc.ReceivedDate, err = decodeDate(receivedDate.String); err != nil {
		return core.ReceivableAccount{}, fmt.Errorf("decode received date: %w", err)
	}
	if rc.CreatedAt, err = decodeTime(createdAt); err != nil {
		return core.ReceivableAccount{}, fmt.Errorf("decode created_at: %w", err)
	}
	return rc, nil
}
