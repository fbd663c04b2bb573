package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"contas/internal/core"
	"contas/internal/storage"
)

// ReportService aggregates ledger data for the dashboard and the
// category reports. It is read-only.
type ReportService struct {
	store storage.Store
}

func NewReportService(store storage.Store) *ReportService {
	return &ReportService{store: store}
}

// Dashboard computes the summary figures. Income and expense totals
// honor the date range; the balance total always reflects every
// account, and overdue counts are always measured against now, not the
// range. An open range counts every unsettled entry as pending.
func (s *ReportService) Dashboard(ctx context.Context, rng core.DateRange, now time.Time) (core.DashboardSummary, error) {
	var summary core.DashboardSummary
	today := core.Today(now)

	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return summary, fmt.Errorf("dashboard accounts: %w", err)
	}
	for _, a := range accounts {
		summary.TotalBalance = summary.TotalBalance.Add(a.CurrentBalance)
	}

	transactions, err := s.store.ListTransactions(ctx)
	if err != nil {
		return summary, fmt.Errorf("dashboard transactions: %w", err)
	}
	for _, t := range transactions {
		if !rng.Contains(t.PaymentDate) {
			continue
		}
		if t.Kind == core.Income {
			summary.TotalIncome = summary.TotalIncome.Add(t.Value)
		} else {
			summary.TotalExpenses = summary.TotalExpenses.Add(t.Value)
		}
	}
	summary.NetResult = summary.TotalIncome.Sub(summary.TotalExpenses)

	payables, err := s.store.ListPayables(ctx)
	if err != nil {
		return summary, fmt.Errorf("dashboard payables: %w", err)
	}
	for _, p := range payables {
		if p.IsPaid {
			continue
		}
		if rng.IsOpen() || rng.Contains(p.DueDate) {
			summary.PendingPayables = summary.PendingPayables.Add(p.Value)
		}
		if core.StatusOf(false, p.DueDate, today) == core.StatusOverdue {
			summary.OverduePayables++
		}
	}

	receivables, err := s.store.ListReceivables(ctx)
	if err != nil {
		return summary, fmt.Errorf("dashboard receivables: %w", err)
	}
	for _, r := range receivables {
		if r.IsReceived {
			continue
		}
		if rng.IsOpen() || rng.Contains(r.DueDate) {
			summary.PendingReceivables = summary.PendingReceivables.Add(r.Value)
		}
		if core.StatusOf(false, r.DueDate, today) == core.StatusOverdue {
			summary.OverdueReceivables++
		}
	}

	return summary, nil
}

// BuildReport groups amounts by category for the requested kind over
// the range. Transaction kinds read the realized ledger; entry kinds
// split payables/receivables by settlement, filtering unsettled
// entries on due date and settled ones on paid/received date. Cash
// flow nets income against expenses per category.
func (s *ReportService) BuildReport(ctx context.Context, kind core.ReportKind, rng core.DateRange) (core.Report, error) {
	if !kind.Valid() {
		return core.Report{}, core.NewValidationError("kind", "unknown report kind")
	}

	names, err := s.categoryNames(ctx)
	if err != nil {
		return core.Report{}, err
	}

	acc := newReportAccumulator(names)
	switch kind {
	case core.ReportIncome, core.ReportExpenses, core.ReportCashFlow:
		transactions, err := s.store.ListTransactions(ctx)
		if err != nil {
			return core.Report{}, fmt.Errorf("report transactions: %w", err)
		}
		for _, t := range transactions {
			if !rng.Contains(t.PaymentDate) {
				continue
			}
			switch kind {
			case core.ReportIncome:
				if t.Kind == core.Income {
					acc.add(t.CategoryID, t.Value)
				}
			case core.ReportExpenses:
				if t.Kind == core.Expense {
					acc.add(t.CategoryID, t.Value)
				}
			case core.ReportCashFlow:
				acc.add(t.CategoryID, signedDelta(t.Kind, t.Value))
			}
		}
	case core.ReportUnpaidExpenses, core.ReportPaidExpenses:
		payables, err := s.store.ListPayables(ctx)
		if err != nil {
			return core.Report{}, fmt.Errorf("report payables: %w", err)
		}
		settled := kind == core.ReportPaidExpenses
		for _, p := range payables {
			if p.IsPaid != settled {
				continue
			}
			// Settled entries report on the day they were paid,
			// pending ones on when they fall due.
			date := p.DueDate
			if settled {
				if p.PaidDate.IsZero() {
					continue
				}
				date = p.PaidDate
			}
			if rng.Contains(date) {
				acc.add(p.CategoryID, p.Value)
			}
		}
	case core.ReportUnreceivedRevenues, core.ReportReceivedRevenues:
		receivables, err := s.store.ListReceivables(ctx)
		if err != nil {
			return core.Report{}, fmt.Errorf("report receivables: %w", err)
		}
		settled := kind == core.ReportReceivedRevenues
		for _, r := range receivables {
			if r.IsReceived != settled {
				continue
			}
			date := r.DueDate
			if settled {
				if r.ReceivedDate.IsZero() {
					continue
				}
				date = r.ReceivedDate
			}
			if rng.Contains(date) {
				acc.add(r.CategoryID, r.Value)
			}
		}
	}

	report := core.Report{
		Kind:   kind,
		Range:  rng,
		Groups: acc.groups(),
	}
	for _, g := range report.Groups {
		report.Total = report.Total.Add(g.Total)
		report.Count += g.Count
	}
	return report, nil
}

func (s *ReportService) categoryNames(ctx context.Context) (map[string]string, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("report categories: %w", err)
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

type reportAccumulator struct {
	names  map[string]string
	totals map[string]decimal.Decimal
	counts map[string]int
}

func newReportAccumulator(names map[string]string) *reportAccumulator {
	return &reportAccumulator{
		names:  names,
		totals: make(map[string]decimal.Decimal),
		counts: make(map[string]int),
	}
}

func (a *reportAccumulator) add(categoryID string, value decimal.Decimal) {
	a.totals[categoryID] = a.totals[categoryID].Add(value)
	a.counts[categoryID]++
}

// groups returns category rows sorted by descending absolute total, so
// the heaviest categories lead the report.
func (a *reportAccumulator) groups() []core.CategoryGroup {
	groups := make([]core.CategoryGroup, 0, len(a.totals))
	for id, total := range a.totals {
		groups = append(groups, core.CategoryGroup{
			CategoryID:   id,
			CategoryName: a.names[id],
			Total:        total,
			Count:        a.counts[id],
		})
	}
	sort.Slice(groups, func(i, j int) bool {
		ti, tj := groups[i].Total.Abs(), groups[j].Total.Abs()
		if !ti.Equal(tj) {
			return ti.GreaterThan(tj)
		}
		return groups[i].CategoryName < groups[j].CategoryName
	})
	return groups
}
