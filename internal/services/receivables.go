package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"contas/internal/amqp"
	"contas/internal/core"
	"contas/internal/storage"
)

// ReceivableService manages scheduled income entries, mirroring
// PayableService on the other side of the ledger.
type ReceivableService struct {
	store  storage.Store
	events EventPublisher
}

func NewReceivableService(store storage.Store, events EventPublisher) *ReceivableService {
	return &ReceivableService{store: store, events: events}
}

func (s *ReceivableService) Create(ctx context.Context, r core.ReceivableAccount) ([]core.ReceivableAccount, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	occurrences := ExpandSchedule(r.Policy, r.DueDate, r.Notes)

	var created []core.ReceivableAccount
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		base := r
		base.DueDate = occurrences[0].DueDate
		base.Notes = occurrences[0].Note
		base.IsReceived = false
		base.ReceivedDate = core.Date{}

		first, err := tx.CreateReceivable(ctx, base)
		if err != nil {
			return err
		}
		created = append(created, first)

		for _, occ := range occurrences[1:] {
			sibling := r
			sibling.DueDate = occ.DueDate
			sibling.Notes = occ.Note
			sibling.IsReceived = false
			sibling.ReceivedDate = core.Date{}
			sibling.ParentID = first.ID

			entry, err := tx.CreateReceivable(ctx, sibling)
			if err != nil {
				return err
			}
			created = append(created, entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create receivable: %w", err)
	}

	slog.InfoContext(ctx, "Receivable created",
		"id", created[0].ID,
		"entries", len(created),
		"mode", created[0].Policy.Mode,
		"value", created[0].Value.String())

	return created, nil
}

func (s *ReceivableService) Get(ctx context.Context, id string) (core.ReceivableAccount, error) {
	return s.store.GetReceivable(ctx, id)
}

func (s *ReceivableService) List(ctx context.Context) ([]core.ReceivableAccount, error) {
	return s.store.ListReceivables(ctx)
}

// Update rewrites an entry in place without re-expanding its series.
func (s *ReceivableService) Update(ctx context.Context, r core.ReceivableAccount) (core.ReceivableAccount, error) {
	if err := r.Validate(); err != nil {
		return core.ReceivableAccount{}, err
	}
	updated, err := s.store.UpdateReceivable(ctx, r)
	if err != nil {
		return core.ReceivableAccount{}, fmt.Errorf("update receivable: %w", err)
	}
	return updated, nil
}

// Delete removes an entry together with its linked transaction, if any.
func (s *ReceivableService) Delete(ctx context.Context, id string) error {
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		if _, err := tx.GetReceivable(ctx, id); err != nil {
			return err
		}

		t, err := tx.FindTransactionBySource(ctx, core.SourceReceivable, id)
		if err == nil {
			if err := tx.AdjustAccountBalance(ctx, t.AccountID, t.Value.Neg()); err != nil {
				return err
			}
			if err := tx.DeleteTransaction(ctx, t.ID); err != nil {
				return err
			}
		} else if !errors.Is(err, core.ErrNotFound) {
			return err
		}

		return tx.DeleteReceivable(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete receivable: %w", err)
	}

	if s.events != nil {
		ev := amqp.NewLedgerEvent(amqp.EventEntryDeleted, "receivable", id, "")
		if pubErr := s.events.PublishLedgerEvent(ctx, ev); pubErr != nil {
			slog.WarnContext(ctx, "Failed to publish ledger event", "entity_id", id, "error", pubErr)
		}
	}
	return nil
}
