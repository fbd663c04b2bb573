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

func (r *Repository) CreateClientSupplier(ctx context.Context, cs core.ClientSupplier) (core.ClientSupplier, error) {
	cs.ID = uuid.NewString()
	cs.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO clients_suppliers (id, name, kind, notes, created_at) VALUES (?, ?, ?, ?, ?)",
		cs.ID, cs.Name, string(cs.Kind), cs.Notes, encodeTime(cs.CreatedAt))
	if err != nil {
		return core.ClientSupplier{}, fmt.Errorf("insert client/supplier: %w", err)
	}
	return cs, nil
}

func (r *Repository) GetClientSupplier(ctx context.Context, id string) (core.ClientSupplier, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, kind, notes, created_at FROM clients_suppliers WHERE id = ?", id)
	return scanClientSupplier(row)
}

func (r *Repository) ListClientsSuppliers(ctx context.Context) ([]core.ClientSupplier, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, kind, notes, created_at FROM clients_suppliers ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list clients/suppliers: %w", err)
	}
	defer rows.Close()

	var parties []core.ClientSupplier
	for rows.Next() {
		cs, err := scanClientSupplier(rows)
		if err != nil {
			return nil, err
		}
		parties = append(parties, cs)
	}
	return parties, rows.Err()
}

func (r *Repository) UpdateClientSupplier(ctx context.Context, cs core.ClientSupplier) (core.ClientSupplier, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE clients_suppliers SET name = ?, kind = ?, notes = ? WHERE id = ?",
		cs.Name, string(cs.Kind), cs.Notes, cs.ID)
	if err != nil {
		return core.ClientSupplier{}, fmt.Errorf("update client/supplier: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return core.ClientSupplier{}, err
	}
	return r.GetClientSupplier(ctx, cs.ID)
}

func (r *Repository) DeleteClientSupplier(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM clients_suppliers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete client/supplier: %w", err)
	}
	return requireAffected(res)
}

func (r *Repository) PartyInUse(ctx context.Context, id string) (bool, error) {
	used, err := exists(ctx, r.db,
		"SELECT COUNT(*) FROM transactions WHERE client_supplier_id = ?", id)
	if err != nil || used {
		return used, err
	}
	used, err = exists(ctx, r.db,
		"SELECT COUNT(*) FROM payable_accounts WHERE supplier_id = ?", id)
	if err != nil || used {
		return used, err
	}
	return exists(ctx, r.db,
		"SELECT COUNT(*) FROM receivable_accounts WHERE client_id = ?", id)
}

func scanClientSupplier(row rowScanner) (core.ClientSupplier, error) {
	var (
		cs        core.ClientSupplier
		kind      string
		createdAt string
	)
	if err := row.Scan(&cs.ID, &cs.Name, &kind, &cs.Notes, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.ClientSupplier{}, core.ErrNotFound
		}
		return core.ClientSupplier{}, fmt.Errorf("scan client/supplier: %w", err)
	}

	var err error
	cs.Kind = core.PartyKind(kind)
	if cs.CreatedAt, err = decodeTime(createdAt); err != nil {
		return core.ClientSupplier{}, fmt.Errorf("decode created_at: %w", err)
	}
	return cs, nil
}
