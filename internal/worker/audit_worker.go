// Package worker runs the background consumer side of the system: it
// turns ledger events published by the API into audit log rows.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"contas/internal/amqp"
	"contas/internal/core"
	"contas/internal/storage"
)

// AuditWorker consumes ledger events and appends them to the audit_log
// table, enriching each entry with a snapshot of the entity when it
// still exists.
type AuditWorker struct {
	store storage.Store
}

func NewAuditWorker(store storage.Store) *AuditWorker {
	return &AuditWorker{store: store}
}

// HandleLedgerEvent processes a single event. Returning an error makes
// the consumer nack and requeue the delivery.
func (w *AuditWorker) HandleLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"event", ev.Event,
		"entity_kind", ev.EntityKind,
		"entity_id", ev.EntityID)

	detail := ev.Detail
	if snapshot := w.snapshot(ctx, ev.EntityKind, ev.EntityID); snapshot != "" {
		detail = snapshot
	}

	entry := storage.AuditEntry{
		Event:      ev.Event,
		EntityKind: ev.EntityKind,
		EntityID:   ev.EntityID,
		Detail:     detail,
		OccurredAt: ev.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	if err := w.store.AppendAuditEntry(ctx, entry); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	return nil
}

// snapshot serializes the current state of the referenced entity. An
// entity that was deleted by the time the event arrives yields no
// snapshot; the event is still recorded.
func (w *AuditWorker) snapshot(ctx context.Context, entityKind, entityID string) string {
	var (
		v   any
		err error
	)
	switch entityKind {
	case "transaction":
		v, err = w.store.GetTransaction(ctx, entityID)
	case "payable":
		v, err = w.store.GetPayable(ctx, entityID)
	case "receivable":
		v, err = w.store.GetReceivable(ctx, entityID)
	default:
		return ""
	}
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			slog.WarnContext(ctx, "Failed to snapshot entity for audit",
				"entity_kind", entityKind,
				"entity_id", entityID,
				"error", err)
		}
		return ""
	}

	data, err := json.Marshal(v)
	if err != nil {
		slog.WarnContext(ctx, "Failed to marshal entity snapshot",
			"entity_kind", entityKind,
			"entity_id", entityID,
			"error", err)
		return ""
	}
	return string(data)
}
