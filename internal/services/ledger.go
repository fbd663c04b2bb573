package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"contas/internal/amqp"
	"contas/internal/core"
	"contas/internal/storage"
)

// EventPublisher pushes ledger events to the message broker. A nil
// publisher disables eventing; mutations still succeed.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error
}

// LedgerService owns every mutation that moves money: recording,
// updating and deleting transactions, and settling payable/receivable
// entries. Account balances change only through this service, and each
// mutation runs inside a single store transaction.
type LedgerService struct {
	store  storage.Store
	events EventPublisher
}

func NewLedgerService(store storage.Store, events EventPublisher) *LedgerService {
	return &LedgerService{store: store, events: events}
}

// signedDelta is the balance effect of a transaction: income adds,
// expense subtracts.
func signedDelta(kind core.FlowKind, value decimal.Decimal) decimal.Decimal {
	if kind == core.Expense {
		return value.Neg()
	}
	return value
}

// RecordTransaction inserts a transaction and applies its effect to the
// account balance atomically.
func (s *LedgerService) RecordTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	var created core.Transaction
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		var err error
		created, err = tx.CreateTransaction(ctx, t)
		if err != nil {
			return err
		}
		return tx.AdjustAccountBalance(ctx, created.AccountID, signedDelta(created.Kind, created.Value))
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("record transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction recorded",
		"id", created.ID,
		"kind", created.Kind,
		"account_id", created.AccountID,
		"value", created.Value.String())

	s.publish(ctx, amqp.EventTransactionRecorded, "transaction", created.ID, string(created.Kind))
	return created, nil
}

// GetTransaction fetches a single transaction.
func (s *LedgerService) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

// ListTransactions returns the ledger newest-first, filtered by payment
// date when the range has bounds.
func (s *LedgerService) ListTransactions(ctx context.Context, rng core.DateRange) ([]core.Transaction, error) {
	transactions, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	if rng.IsOpen() {
		return transactions, nil
	}
	filtered := transactions[:0]
	for _, t := range transactions {
		if rng.Contains(t.PaymentDate) {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

// UpdateTransaction replaces a transaction, reversing the old effect on
// the old account before applying the new one. Moving a transaction
// between accounts reconciles both balances.
func (s *LedgerService) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	var updated core.Transaction
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		old, err := tx.GetTransaction(ctx, t.ID)
		if err != nil {
			return err
		}
		if err := tx.AdjustAccountBalance(ctx, old.AccountID, signedDelta(old.Kind, old.Value).Neg()); err != nil {
			return err
		}
		if err := tx.AdjustAccountBalance(ctx, t.AccountID, signedDelta(t.Kind, t.Value)); err != nil {
			return err
		}
		t.Source = old.Source
		updated, err = tx.UpdateTransaction(ctx, t)
		return err
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	s.publish(ctx, amqp.EventTransactionUpdated, "transaction", updated.ID, string(updated.Kind))
	return updated, nil
}

// DeleteTransaction removes a transaction and reverses its balance
// effect. When the transaction came from settling a payable or
// receivable, the source entry reverts to pending so it can be settled
// again.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		t, err := tx.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.AdjustAccountBalance(ctx, t.AccountID, signedDelta(t.Kind, t.Value).Neg()); err != nil {
			return err
		}
		if err := revertSourceEntry(ctx, tx, t.Source); err != nil {
			return err
		}
		return tx.DeleteTransaction(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.publish(ctx, amqp.EventTransactionDeleted, "transaction", id, "")
	return nil
}

// revertSourceEntry marks the payable/receivable behind a sourced
// transaction as pending again. A manual source or an already-deleted
// entry is a no-op.
func revertSourceEntry(ctx context.Context, tx storage.Store, src core.Source) error {
	switch src.Kind {
	case core.SourcePayable:
		p, err := tx.GetPayable(ctx, src.SourceID)
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		p.IsPaid = false
		p.PaidDate = core.Date{}
		p.AccountID = ""
		_, err = tx.UpdatePayable(ctx, p)
		return err
	case core.SourceReceivable:
		r, err := tx.GetReceivable(ctx, src.SourceID)
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		r.IsReceived = false
		r.ReceivedDate = core.Date{}
		r.AccountID = ""
		_, err = tx.UpdateReceivable(ctx, r)
		return err
	}
	return nil
}

// SettlePayable marks a payable as paid and records the matching
// expense transaction. When a linked transaction already exists the
// call is idempotent: only the paid flag and date are refreshed, no
// second transaction is created and the balance moves once.
func (s *LedgerService) SettlePayable(ctx context.Context, id, accountID string, paidDate core.Date) (core.PayableAccount, error) {
	if paidDate.IsZero() {
		return core.PayableAccount{}, core.NewValidationError("paidDate", "required")
	}

	var settled core.PayableAccount
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		p, err := tx.GetPayable(ctx, id)
		if err != nil {
			return err
		}

		_, err = tx.FindTransactionBySource(ctx, core.SourcePayable, id)
		switch {
		case err == nil:
			// Already settled once; refresh the flags only.
		case errors.Is(err, core.ErrNotFound):
			if accountID == "" {
				accountID = p.AccountID
			}
			if accountID == "" {
				return core.NewValidationError("accountId", "required to pay an entry")
			}
			t := core.Transaction{
				Kind:             core.Expense,
				ClientSupplierID: p.SupplierID,
				CategoryID:       p.CategoryID,
				AccountID:        accountID,
				Value:            p.Value,
				PaymentDate:      paidDate,
				Notes:            p.Notes,
				Source:           core.Source{Kind: core.SourcePayable, SourceID: p.ID},
			}
			if _, err := tx.CreateTransaction(ctx, t); err != nil {
				return err
			}
			if err := tx.AdjustAccountBalance(ctx, accountID, p.Value.Neg()); err != nil {
				return err
			}
			p.AccountID = accountID
		default:
			return err
		}

		p.IsPaid = true
		p.PaidDate = paidDate
		settled, err = tx.UpdatePayable(ctx, p)
		return err
	})
	if err != nil {
		return core.PayableAccount{}, fmt.Errorf("settle payable: %w", err)
	}

	slog.InfoContext(ctx, "Payable settled",
		"id", settled.ID,
		"account_id", settled.AccountID,
		"value", settled.Value.String(),
		"paid_date", settled.PaidDate.String())

	s.publish(ctx, amqp.EventEntrySettled, "payable", settled.ID, "")
	return settled, nil
}

// UnsettlePayable reverts a paid entry to pending, deleting the linked
// transaction and restoring the account balance.
func (s *LedgerService) UnsettlePayable(ctx context.Context, id string) (core.PayableAccount, error) {
	var reverted core.PayableAccount
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		p, err := tx.GetPayable(ctx, id)
		if err != nil {
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

		p.IsPaid = false
		p.PaidDate = core.Date{}
		p.AccountID = ""
		reverted, err = tx.UpdatePayable(ctx, p)
		return err
	})
	if err != nil {
		return core.PayableAccount{}, fmt.Errorf("unsettle payable: %w", err)
	}

	s.publish(ctx, amqp.EventEntryUnsettled, "payable", reverted.ID, "")
	return reverted, nil
}

// SettleReceivable mirrors SettlePayable on the income side.
func (s *LedgerService) SettleReceivable(ctx context.Context, id, accountID string, receivedDate core.Date) (core.ReceivableAccount, error) {
	if receivedDate.IsZero() {
		return core.ReceivableAccount{}, core.NewValidationError("receivedDate", "required")
	}

	var settled core.ReceivableAccount
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		r, err := tx.GetReceivable(ctx, id)
		if err != nil {
			return err
		}

		_, err = tx.FindTransactionBySource(ctx, core.SourceReceivable, id)
		switch {
		case err == nil:
			// Already settled once; refresh the flags only.
		case errors.Is(err, core.ErrNotFound):
			if accountID == "" {
				accountID = r.AccountID
			}
			if accountID == "" {
				return core.NewValidationError("accountId", "required to receive an entry")
			}
			t := core.Transaction{
				Kind:             core.Income,
				ClientSupplierID: r.ClientID,
				CategoryID:       r.CategoryID,
				AccountID:        accountID,
				Value:            r.Value,
				PaymentDate:      receivedDate,
				Notes:            r.Notes,
				Source:           core.Source{Kind: core.SourceReceivable, SourceID: r.ID},
			}
			if _, err := tx.CreateTransaction(ctx, t); err != nil {
				return err
			}
			if err := tx.AdjustAccountBalance(ctx, accountID, r.Value); err != nil {
				return err
			}
			r.AccountID = accountID
		default:
			return err
		}

		r.IsReceived = true
		r.ReceivedDate = receivedDate
		settled, err = tx.UpdateReceivable(ctx, r)
		return err
	})
	if err != nil {
		return core.ReceivableAccount{}, fmt.Errorf("settle receivable: %w", err)
	}

	slog.InfoContext(ctx, "Receivable settled",
		"id", settled.ID,
		"account_id", settled.AccountID,
		"value", settled.Value.String(),
		"received_date", settled.ReceivedDate.String())

	s.publish(ctx, amqp.EventEntrySettled, "receivable", settled.ID, "")
	return settled, nil
}

// UnsettleReceivable reverts a received entry to pending.
func (s *LedgerService) UnsettleReceivable(ctx context.Context, id string) (core.ReceivableAccount, error) {
	var reverted core.ReceivableAccount
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		r, err := tx.GetReceivable(ctx, id)
		if err != nil {
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

		r.IsReceived = false
		r.ReceivedDate = core.Date{}
		r.AccountID = ""
		reverted, err = tx.UpdateReceivable(ctx, r)
		return err
	})
	if err != nil {
		return core.ReceivableAccount{}, fmt.Errorf("unsettle receivable: %w", err)
	}

	s.publish(ctx, amqp.EventEntryUnsettled, "receivable", reverted.ID, "")
	return reverted, nil
}

func (s *LedgerService) publish(ctx context.Context, event, entityKind, entityID, detail string) {
	if s.events == nil {
		return
	}
	ev := amqp.NewLedgerEvent(event, entityKind, entityID, detail)
	if err := s.events.PublishLedgerEvent(ctx, ev); err != nil {
		slog.WarnContext(ctx, "Failed to publish ledger event",
			"event", event,
			"entity_id", entityID,
			"error", err)
	}
}
