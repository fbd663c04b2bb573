package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"contas/internal/core"
)

func TestReportService_Dashboard(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	f := newFixture(t)
	ledger := NewLedgerService(f.store, nil)
	svc := NewReportService(f.store)

	income := f.transaction(t, "500", core.Income)
	income.PaymentDate = core.NewDate(2024, 6, 5)
	if _, err := ledger.RecordTransaction(ctx, income); err != nil {
		t.Fatalf("RecordTransaction() error = %v", err)
	}
	expense := f.transaction(t, "200", core.Expense)
	expense.PaymentDate = core.NewDate(2024, 6, 10)
	if _, err := ledger.RecordTransaction(ctx, expense); err != nil {
		t.Fatalf("RecordTransaction() error = %v", err)
	}
	outside := f.transaction(t, "999", core.Expense)
	outside.PaymentDate = core.NewDate(2024, 1, 1)
	if _, err := ledger.RecordTransaction(ctx, outside); err != nil {
		t.Fatalf("RecordTransaction() error = %v", err)
	}

	// One overdue payable, one upcoming receivable.
	if _, err := f.store.CreatePayable(ctx, core.PayableAccount{
		SupplierID: f.party.ID,
		CategoryID: f.category.ID,
		Value:      dec(t, "80"),
		DueDate:    core.NewDate(2024, 6, 1),
	}); err != nil {
		t.Fatalf("seed payable: %v", err)
	}
	if _, err := f.store.CreateReceivable(ctx, core.ReceivableAccount{
		ClientID:   f.party.ID,
		CategoryID: f.category.ID,
		Value:      dec(t, "300"),
		DueDate:    core.NewDate(2024, 6, 28),
	}); err != nil {
		t.Fatalf("seed receivable: %v", err)
	}

	t.Run("bounded range", func(t *testing.T) {
		rng := core.DateRange{From: core.NewDate(2024, 6, 1), To: core.NewDate(2024, 6, 30)}
		summary, err := svc.Dashboard(ctx, rng, now)
		if err != nil {
			t.Fatalf("Dashboard() error = %v", err)
		}

		// 1000 + 500 - 200 - 999 on the main account plus the second account.
		if summary.TotalBalance.String() != "801" {
			t.Errorf("TotalBalance = %v, want 801", summary.TotalBalance)
		}
		if summary.TotalIncome.String() != "500" {
			t.Errorf("TotalIncome = %v, want 500", summary.TotalIncome)
		}
		if summary.TotalExpenses.String() != "200" {
			t.Errorf("TotalExpenses = %v, want 200 (january stays out)", summary.TotalExpenses)
		}
		if summary.NetResult.String() != "300" {
			t.Errorf("NetResult = %v, want 300", summary.NetResult)
		}
		if summary.PendingPayables.String() != "80" {
			t.Errorf("PendingPayables = %v, want 80", summary.PendingPayables)
		}
		if summary.PendingReceivables.String() != "300" {
			t.Errorf("PendingReceivables = %v, want 300", summary.PendingReceivables)
		}
		if summary.OverduePayables != 1 {
			t.Errorf("OverduePayables = %d, want 1", summary.OverduePayables)
		}
		if summary.OverdueReceivables != 0 {
			t.Errorf("OverdueReceivables = %d, want 0", summary.OverdueReceivables)
		}
	})

	t.Run("open range counts every unsettled entry", func(t *testing.T) {
		summary, err := svc.Dashboard(ctx, core.DateRange{}, now)
		if err != nil {
			t.Fatalf("Dashboard() error = %v", err)
		}
		if summary.TotalExpenses.String() != "1199" {
			t.Errorf("TotalExpenses = %v, want 1199", summary.TotalExpenses)
		}
		if summary.PendingPayables.String() != "80" {
			t.Errorf("PendingPayables = %v, want 80", summary.PendingPayables)
		}
	})
}

func TestReportService_BuildReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ledger := NewLedgerService(f.store, nil)
	svc := NewReportService(f.store)

	other, err := f.store.CreateCategory(ctx, core.Category{Name: "Rent", Kind: core.Expense})
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}

	record := func(value string, kind core.FlowKind, categoryID string) {
		t.Helper()
		tr := f.transaction(t, value, kind)
		tr.CategoryID = categoryID
		if _, err := ledger.RecordTransaction(ctx, tr); err != nil {
			t.Fatalf("RecordTransaction() error = %v", err)
		}
	}
	record("100", core.Expense, f.category.ID)
	record("40", core.Expense, f.category.ID)
	record("900", core.Expense, other.ID)
	record("500", core.Income, f.category.ID)

	t.Run("expenses grouped by category, heaviest first", func(t *testing.T) {
		report, err := svc.BuildReport(ctx, core.ReportExpenses, core.DateRange{})
		if err != nil {
			t.Fatalf("BuildReport() error = %v", err)
		}
		if report.Total.String() != "1040" {
			t.Errorf("Total = %v, want 1040", report.Total)
		}
		if report.Count != 3 {
			t.Errorf("Count = %d, want 3", report.Count)
		}
		if len(report.Groups) != 2 {
			t.Fatalf("Groups = %d, want 2", len(report.Groups))
		}
		if report.Groups[0].CategoryName != "Rent" || report.Groups[0].Total.String() != "900" {
			t.Errorf("first group = %v %v, want Rent 900", report.Groups[0].CategoryName, report.Groups[0].Total)
		}
		if report.Groups[1].Total.String() != "140" || report.Groups[1].Count != 2 {
			t.Errorf("second group total/count = %v/%d, want 140/2", report.Groups[1].Total, report.Groups[1].Count)
		}
	})

	t.Run("income includes only income", func(t *testing.T) {
		report, err := svc.BuildReport(ctx, core.ReportIncome, core.DateRange{})
		if err != nil {
			t.Fatalf("BuildReport() error = %v", err)
		}
		if report.Total.String() != "500" {
			t.Errorf("Total = %v, want 500", report.Total)
		}
	})

	t.Run("cash flow nets per category", func(t *testing.T) {
		report, err := svc.BuildReport(ctx, core.ReportCashFlow, core.DateRange{})
		if err != nil {
			t.Fatalf("BuildReport() error = %v", err)
		}
		// Rent: -900; Utilities: 500 - 140 = 360.
		if report.Groups[0].Total.String() != "-900" {
			t.Errorf("first group Total = %v, want -900", report.Groups[0].Total)
		}
		if report.Groups[1].Total.String() != "360" {
			t.Errorf("second group Total = %v, want 360", report.Groups[1].Total)
		}
	})

	t.Run("entry reports split by settlement", func(t *testing.T) {
		// Pending, due in July.
		if _, err := f.store.CreatePayable(ctx, core.PayableAccount{
			SupplierID: f.party.ID,
			CategoryID: other.ID,
			Value:      dec(t, "75"),
			DueDate:    core.NewDate(2024, 7, 1),
		}); err != nil {
			t.Fatalf("seed payable: %v", err)
		}
		// Due in July but paid in August.
		paid, err := f.store.CreatePayable(ctx, core.PayableAccount{
			SupplierID: f.party.ID,
			CategoryID: other.ID,
			Value:      dec(t, "60"),
			DueDate:    core.NewDate(2024, 7, 15),
		})
		if err != nil {
			t.Fatalf("seed payable: %v", err)
		}
		if _, err := ledger.SettlePayable(ctx, paid.ID, f.account.ID, core.NewDate(2024, 8, 2)); err != nil {
			t.Fatalf("SettlePayable() error = %v", err)
		}

		july := core.DateRange{From: core.NewDate(2024, 7, 1), To: core.NewDate(2024, 7, 31)}
		august := core.DateRange{From: core.NewDate(2024, 8, 1), To: core.NewDate(2024, 8, 31)}

		report, err := svc.BuildReport(ctx, core.ReportUnpaidExpenses, july)
		if err != nil {
			t.Fatalf("BuildReport() error = %v", err)
		}
		if report.Total.String() != "75" {
			t.Errorf("unpaid-expenses Total = %v, want 75 (settled entry excluded)", report.Total)
		}

		report, err = svc.BuildReport(ctx, core.ReportPaidExpenses, july)
		if err != nil {
			t.Fatalf("BuildReport() error = %v", err)
		}
		if report.Count != 0 {
			t.Errorf("paid-expenses Count in July = %d, want 0 (filters on paid date)", report.Count)
		}

		report, err = svc.BuildReport(ctx, core.ReportPaidExpenses, august)
		if err != nil {
			t.Fatalf("BuildReport() error = %v", err)
		}
		if report.Total.String() != "60" {
			t.Errorf("paid-expenses Total in August = %v, want 60", report.Total)
		}
	})

	t.Run("revenue entry reports mirror the split", func(t *testing.T) {
		rec, err := f.store.CreateReceivable(ctx, core.ReceivableAccount{
			ClientID:   f.party.ID,
			CategoryID: f.category.ID,
			Value:      dec(t, "320"),
			DueDate:    core.NewDate(2024, 9, 10),
		})
		if err != nil {
			t.Fatalf("seed receivable: %v", err)
		}

		september := core.DateRange{From: core.NewDate(2024, 9, 1), To: core.NewDate(2024, 9, 30)}
		report, err := svc.BuildReport(ctx, core.ReportUnreceivedRevenues, september)
		if err != nil {
			t.Fatalf("BuildReport() error = %v", err)
		}
		if report.Total.String() != "320" {
			t.Errorf("unreceived-revenues Total = %v, want 320", report.Total)
		}

		if _, err := ledger.SettleReceivable(ctx, rec.ID, f.account.ID, core.NewDate(2024, 10, 1)); err != nil {
			t.Fatalf("SettleReceivable() error = %v", err)
		}
		report, err = svc.BuildReport(ctx, core.ReportUnreceivedRevenues, september)
		if err != nil {
			t.Fatalf("BuildReport() error = %v", err)
		}
		if report.Count != 0 {
			t.Errorf("unreceived-revenues Count = %d, want 0 after settling", report.Count)
		}

		october := core.DateRange{From: core.NewDate(2024, 10, 1), To: core.NewDate(2024, 10, 31)}
		report, err = svc.BuildReport(ctx, core.ReportReceivedRevenues, october)
		if err != nil {
			t.Fatalf("BuildReport() error = %v", err)
		}
		if report.Total.String() != "320" {
			t.Errorf("received-revenues Total = %v, want 320", report.Total)
		}
	})

	t.Run("unknown kind is a validation error", func(t *testing.T) {
		var validationErr *core.ValidationError
		_, err := svc.BuildReport(ctx, core.ReportKind("budget"), core.DateRange{})
		if !errors.As(err, &validationErr) {
			t.Errorf("BuildReport() error = %v, want ValidationError", err)
		}
	})
}
