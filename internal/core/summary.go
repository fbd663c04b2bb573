package core

import "github.com/shopspring/decimal"

const (
	// Transaction-based reports over realized ledger movements.
	ReportIncome   ReportKind = "income"
	ReportExpenses ReportKind = "expenses"
	ReportCashFlow ReportKind = "cash_flow"

	// Entry-based reports. Unsettled variants filter on due date,
	// settled variants on the date the entry was paid/received.
	ReportUnpaidExpenses     ReportKind = "unpaid-expenses"
	ReportPaidExpenses       ReportKind = "paid-expenses"
	ReportUnreceivedRevenues ReportKind = "unreceived-revenues"
	ReportReceivedRevenues   ReportKind = "received-revenues"
)

type (
	ReportKind string

	// DateRange filters by calendar day, inclusive on both ends. A zero
	// bound leaves that side open.
	DateRange struct {
		From Date
		To   Date
	}

	// DashboardSummary aggregates the figures shown on the home screen.
	// Totals for income/expenses respect the range; overdue counts are
	// always measured against the current day.
	DashboardSummary struct {
		TotalBalance       decimal.Decimal
		TotalIncome        decimal.Decimal
		TotalExpenses      decimal.Decimal
		NetResult          decimal.Decimal
		PendingPayables    decimal.Decimal
		PendingReceivables decimal.Decimal
		OverduePayables    int
		OverdueReceivables int
	}

	// CategoryGroup is one report row: a category and its totals.
	CategoryGroup struct {
		CategoryID   string
		CategoryName string
		Total        decimal.Decimal
		Count        int
	}

	Report struct {
		Kind   ReportKind
		Range  DateRange
		Total  decimal.Decimal
		Count  int
		Groups []CategoryGroup
	}
)

func (k ReportKind) Valid() bool {
	switch k {
	case ReportIncome, ReportExpenses, ReportCashFlow,
		ReportUnpaidExpenses, ReportPaidExpenses,
		ReportUnreceivedRevenues, ReportReceivedRevenues:
		return true
	}
	return false
}

// Contains reports whether d falls inside the range.
func (r DateRange) Contains(d Date) bool {
	if !r.From.IsZero() && d.Before(r.From.Time) {
		return false
	}
	if !r.To.IsZero() && d.After(r.To.Time) {
		return false
	}
	return true
}

// IsOpen reports whether the range has no bounds at all.
func (r DateRange) IsOpen() bool {
	return r.From.IsZero() && r.To.IsZero()
}
