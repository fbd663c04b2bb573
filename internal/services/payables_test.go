package services

import (
	"context"
	"errors"
	"testing"

	"contas/internal/core"
)

func TestPayableService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("single entry", func(t *testing.T) {
		f := newFixture(t)
		svc := NewPayableService(f.store, nil)

		created, err := svc.Create(ctx, core.PayableAccount{
			SupplierID: f.party.ID,
			CategoryID: f.category.ID,
			Value:      dec(t, "300"),
			DueDate:    core.NewDate(2024, 7, 10),
			Notes:      "Insurance",
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if len(created) != 1 {
			t.Fatalf("Create() returned %d entries, want 1", len(created))
		}
		if created[0].Notes != "Insurance" {
			t.Errorf("Notes = %q, want untouched", created[0].Notes)
		}
		if created[0].ParentID != "" {
			t.Errorf("ParentID = %q, want empty on a single entry", created[0].ParentID)
		}
	})

	t.Run("installment plan links siblings to the first entry", func(t *testing.T) {
		f := newFixture(t)
		svc := NewPayableService(f.store, nil)

		created, err := svc.Create(ctx, core.PayableAccount{
			SupplierID: f.party.ID,
			CategoryID: f.category.ID,
			Value:      dec(t, "100"),
			DueDate:    core.NewDate(2024, 1, 31),
			Notes:      "Laptop",
			Policy:     core.RepetitionPolicy{Mode: core.RepeatInstallments, Installments: 3},
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if len(created) != 3 {
			t.Fatalf("Create() returned %d entries, want 3", len(created))
		}
		if created[0].ParentID != "" {
			t.Errorf("first entry ParentID = %q, want empty", created[0].ParentID)
		}
		if created[0].Notes != "Laptop" {
			t.Errorf("first entry Notes = %q, want base note untouched", created[0].Notes)
		}
		for i, entry := range created[1:] {
			if entry.ParentID != created[0].ID {
				t.Errorf("sibling %d ParentID = %q, want %q", i+2, entry.ParentID, created[0].ID)
			}
		}
		if created[1].DueDate.String() != "2024-02-29" {
			t.Errorf("second installment DueDate = %v, want clamped 2024-02-29", created[1].DueDate)
		}
		if created[2].Notes != "Laptop - Installment 3/3" {
			t.Errorf("third installment Notes = %q", created[2].Notes)
		}
	})

	t.Run("created entries are always unpaid", func(t *testing.T) {
		f := newFixture(t)
		svc := NewPayableService(f.store, nil)

		created, err := svc.Create(ctx, core.PayableAccount{
			SupplierID: f.party.ID,
			CategoryID: f.category.ID,
			Value:      dec(t, "10"),
			DueDate:    core.NewDate(2024, 7, 1),
			IsPaid:     true,
			PaidDate:   core.NewDate(2024, 6, 1),
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if created[0].IsPaid || !created[0].PaidDate.IsEmpty() {
			t.Errorf("Create() IsPaid = %v, PaidDate = %v; want unpaid with no date",
				created[0].IsPaid, created[0].PaidDate)
		}
	})

	t.Run("validation failure creates nothing", func(t *testing.T) {
		f := newFixture(t)
		svc := NewPayableService(f.store, nil)

		if _, err := svc.Create(ctx, core.PayableAccount{CategoryID: f.category.ID}); err == nil {
			t.Fatal("Create() error = nil, want validation error")
		}
		entries, err := f.store.ListPayables(ctx)
		if err != nil {
			t.Fatalf("ListPayables() error = %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("store has %d entries, want 0", len(entries))
		}
	})
}

func TestPayableService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deleting a settled entry removes the linked transaction", func(t *testing.T) {
		f := newFixture(t)
		svc := NewPayableService(f.store, nil)
		ledger := NewLedgerService(f.store, nil)

		created, err := svc.Create(ctx, core.PayableAccount{
			SupplierID: f.party.ID,
			CategoryID: f.category.ID,
			Value:      dec(t, "120"),
			DueDate:    core.NewDate(2024, 6, 30),
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if _, err := ledger.SettlePayable(ctx, created[0].ID, f.account.ID, core.NewDate(2024, 6, 20)); err != nil {
			t.Fatalf("SettlePayable() error = %v", err)
		}

		if err := svc.Delete(ctx, created[0].ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if got := f.balance(t, f.account.ID); got != "1000" {
			t.Errorf("balance = %v, want 1000 restored", got)
		}
		transactions, err := f.store.ListTransactions(ctx)
		if err != nil {
			t.Fatalf("ListTransactions() error = %v", err)
		}
		if len(transactions) != 0 {
			t.Errorf("ledger has %d transactions, want 0", len(transactions))
		}
	})

	t.Run("deleting a pending entry touches no balance", func(t *testing.T) {
		f := newFixture(t)
		svc := NewPayableService(f.store, nil)

		created, err := svc.Create(ctx, core.PayableAccount{
			SupplierID: f.party.ID,
			CategoryID: f.category.ID,
			Value:      dec(t, "120"),
			DueDate:    core.NewDate(2024, 6, 30),
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if err := svc.Delete(ctx, created[0].ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if got := f.balance(t, f.account.ID); got != "1000" {
			t.Errorf("balance = %v, want untouched 1000", got)
		}
	})

	t.Run("unknown entry", func(t *testing.T) {
		f := newFixture(t)
		svc := NewPayableService(f.store, nil)
		if err := svc.Delete(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("Delete() error = %v, want ErrNotFound", err)
		}
	})
}

func TestReceivableService_CreateAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewReceivableService(f.store, nil)
	ledger := NewLedgerService(f.store, nil)

	created, err := svc.Create(ctx, core.ReceivableAccount{
		ClientID:   f.party.ID,
		CategoryID: f.category.ID,
		Value:      dec(t, "250"),
		DueDate:    core.NewDate(2024, 7, 5),
		Notes:      "Invoice 42",
		Policy: core.RepetitionPolicy{
			Mode:            core.RepeatRecurring,
			RecurrenceUnit:  core.UnitMonthly,
			RecurrenceCount: 2,
		},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("Create() returned %d entries, want 2", len(created))
	}
	if created[1].ParentID != created[0].ID {
		t.Errorf("sibling ParentID = %q, want %q", created[1].ParentID, created[0].ID)
	}
	if created[1].DueDate.String() != "2024-08-05" {
		t.Errorf("second occurrence DueDate = %v, want 2024-08-05", created[1].DueDate)
	}

	if _, err := ledger.SettleReceivable(ctx, created[0].ID, f.account.ID, core.NewDate(2024, 7, 6)); err != nil {
		t.Fatalf("SettleReceivable() error = %v", err)
	}
	if got := f.balance(t, f.account.ID); got != "1250" {
		t.Fatalf("balance = %v, want 1250", got)
	}

	if err := svc.Delete(ctx, created[0].ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got := f.balance(t, f.account.ID); got != "1000" {
		t.Errorf("balance = %v, want 1000 restored after deleting settled entry", got)
	}
}
