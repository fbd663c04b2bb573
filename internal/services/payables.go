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

// PayableService manages scheduled expense entries. Creating an entry
// with a repetition policy materializes the whole series in one
// transaction; the extra entries point back to the first through
// ParentID.
type PayableService struct {
	store  storage.Store
	events EventPublisher
}

func NewPayableService(store storage.Store, events EventPublisher) *PayableService {
	return &PayableService{store: store, events: events}
}

func (s *PayableService) Create(ctx context.Context, p core.PayableAccount) ([]core.PayableAccount, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	occurrences := ExpandSchedule(p.Policy, p.DueDate, p.Notes)

	var created []core.PayableAccount
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		base := p
		base.DueDate = occurrences[0].DueDate
		base.Notes = occurrences[0].Note
		base.IsPaid = false
		base.PaidDate = core.Date{}

		first, err := tx.CreatePayable(ctx, base)
		if err != nil {
			return err
		}
		created = append(created, first)

		for _, occ := range occurrences[1:] {
			sibling := p
			sibling.DueDate = occ.DueDate
			sibling.Notes = occ.Note
			sibling.IsPaid = false
			sibling.PaidDate = core.Date{}
			sibling.ParentID = first.ID

			entry, err := tx.CreatePayable(ctx, sibling)
			if err != nil {
				return err
			}
			created = append(created, entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create payable: %w", err)
	}

	slog.InfoContext(ctx, "Payable created",
		"id", created[0].ID,
		"entries", len(created),
		"mode", created[0].Policy.Mode,
		"value", created[0].Value.String())

	return created, nil
}

func (s *PayableService) Get(ctx context.Context, id string) (core.PayableAccount, error) {
	return s.store.GetPayable(ctx, id)
}

func (s *PayableService) List(ctx context.Context) ([]core.PayableAccount, error) {
	return s.store.ListPayables(ctx)
}

// Update rewrites an entry in place. The repetition series is not
// re-expanded: edits affect the single entry only, matching how the
// entries were materialized up front.
func (s *PayableService) Update(ctx context.Context, p core.PayableAccount) (core.PayableAccount, error) {
	if err := p.Validate(); err != nil {
		return core.PayableAccount{}, err
	}
	updated, err := s.store.UpdatePayable(ctx, p)
	if err != nil {
		return core.PayableAccount{}, fmt.Errorf("update payable: %w", err)
	}
	return updated, nil
}

// Delete removes an entry. A settled entry takes its linked transaction
// with it, restoring the account balance.
func (s *PayableService) Delete(ctx context.Context, id string) error {
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		if _, err := tx.GetPayable(ctx, id); err != nil {
			return err
		}

		t, err := tx.FindTransactionBySource(ctx, core.SourcePayable, id)
		if err == nil {
			if err := tx.AdjustAccountBalance(ctx, t.AccountID, t.Value); err != nil {
				return err
			}
			if err := tx.DeleteTransaction(ctx, t.ID); err != nil {
				return err
			}
		} else if !errors.Is(err, core.ErrNotFound) {
			return err
		}

		return tx.DeletePayable(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete payable: %w", err)
	}

	if s.events != nil {
		ev := amqp.NewLedgerEvent(amqp.EventEntryDeleted, "payable", id, "")
		if pubErr := s.events.PublishLedgerEvent(ctx, ev); pubErr != nil {
			slog.WarnContext(ctx, "Failed to publish ledger event", "entity_id", id, "error", pubErr)
		}
	}
	return nil
}
