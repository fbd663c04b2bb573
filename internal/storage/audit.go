package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (r *Repository) AppendAuditEntry(ctx context.Context, e AuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt == "" {
		e.OccurredAt = encodeTime(time.Now().UTC())
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO audit_log (id, event, entity_kind, entity_id, detail, occurred_at) VALUES (?, ?, ?, ?, ?, ?)",
		e.ID, e.Event, e.EntityKind, e.EntityID, e.Detail, e.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *Repository) ListAuditEntries(ctx context.Context, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, event, entity_kind, entity_id, detail, occurred_at FROM audit_log ORDER BY occurred_at DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.Event, &e.EntityKind, &e.EntityID, &e.Detail, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
