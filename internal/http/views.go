package http

import (
	"time"

	"github.com/shopspring/decimal"

	"contas/internal/core"
)

// View structs fix the wire shape of the API independently from the
// domain structs. Dates travel as YYYY-MM-DD, amounts as decimal
// strings.

type accountView struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Kind           string          `json:"kind"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	CreatedAt      time.Time       `json:"createdAt"`
}

func newAccountView(a core.Account) accountView {
	return accountView{
		ID:             a.ID,
		Name:           a.Name,
		Kind:           string(a.Kind),
		InitialBalance: a.InitialBalance,
		CurrentBalance: a.CurrentBalance,
		CreatedAt:      a.CreatedAt,
	}
}

type categoryView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
}

func newCategoryView(c core.Category) categoryView {
	return categoryView{ID: c.ID, Name: c.Name, Kind: string(c.Kind), CreatedAt: c.CreatedAt}
}

type partyView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func newPartyView(cs core.ClientSupplier) partyView {
	return partyView{ID: cs.ID, Name: cs.Name, Kind: string(cs.Kind), Notes: cs.Notes, CreatedAt: cs.CreatedAt}
}

type entryView struct {
	ID              string          `json:"id"`
	SupplierID      string          `json:"supplierId,omitempty"`
	ClientID        string          `json:"clientId,omitempty"`
	CategoryID      string          `json:"categoryId"`
	AccountID       string          `json:"accountId,omitempty"`
	Value           decimal.Decimal `json:"value"`
	DueDate         core.Date       `json:"dueDate"`
	Notes           string          `json:"notes,omitempty"`
	RepetitionType  string          `json:"repetitionType"`
	Installments    int             `json:"installments,omitempty"`
	RecurrenceType  string          `json:"recurrenceType,omitempty"`
	RecurrenceCount int             `json:"recurrenceCount,omitempty"`
	Settled         bool            `json:"settled"`
	SettledDate     core.Date       `json:"settledDate"`
	Status          string          `json:"status"`
	ParentID        string          `json:"parentId,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

func newPayableView(p core.PayableAccount, today core.Date) entryView {
	return entryView{
		ID:              p.ID,
		SupplierID:      p.SupplierID,
		CategoryID:      p.CategoryID,
		AccountID:       p.AccountID,
		Value:           p.Value,
		DueDate:         p.DueDate,
		Notes:           p.Notes,
		RepetitionType:  string(p.Policy.Mode),
		Installments:    p.Policy.Installments,
		RecurrenceType:  string(p.Policy.RecurrenceUnit),
		RecurrenceCount: p.Policy.RecurrenceCount,
		Settled:         p.IsPaid,
		SettledDate:     p.PaidDate,
		Status:          string(core.StatusOf(p.IsPaid, p.DueDate, today)),
		ParentID:        p.ParentID,
		CreatedAt:       p.CreatedAt,
	}
}

func newReceivableView(r core.ReceivableAccount, today core.Date) entryView {
	return entryView{
		ID:              r.ID,
		ClientID:        r.ClientID,
		CategoryID:      r.CategoryID,
		AccountID:       r.AccountID,
		Value:           r.Value,
		DueDate:         r.DueDate,
		Notes:           r.Notes,
		RepetitionType:  string(r.Policy.Mode),
		Installments:    r.Policy.Installments,
		RecurrenceType:  string(r.Policy.RecurrenceUnit),
		RecurrenceCount: r.Policy.RecurrenceCount,
		Settled:         r.IsReceived,
		SettledDate:     r.ReceivedDate,
		Status:          string(core.StatusOf(r.IsReceived, r.DueDate, today)),
		ParentID:        r.ParentID,
		CreatedAt:       r.CreatedAt,
	}
}

type transactionView struct {
	ID               string          `json:"id"`
	Kind             string          `json:"kind"`
	ClientSupplierID string          `json:"clientSupplierId"`
	CategoryID       string          `json:"categoryId"`
	AccountID        string          `json:"accountId"`
	Value            decimal.Decimal `json:"value"`
	PaymentDate      core.Date       `json:"paymentDate"`
	Notes            string          `json:"notes,omitempty"`
	SourceType       string          `json:"sourceType"`
	SourceID         string          `json:"sourceId,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}

func newTransactionView(t core.Transaction) transactionView {
	return transactionView{
		ID:               t.ID,
		Kind:             string(t.Kind),
		ClientSupplierID: t.ClientSupplierID,
		CategoryID:       t.CategoryID,
		AccountID:        t.AccountID,
		Value:            t.Value,
		PaymentDate:      t.PaymentDate,
		Notes:            t.Notes,
		SourceType:       string(t.Source.Kind),
		SourceID:         t.Source.SourceID,
		CreatedAt:        t.CreatedAt,
	}
}

type dashboardView struct {
	TotalBalance       decimal.Decimal `json:"totalBalance"`
	TotalIncome        decimal.Decimal `json:"totalIncome"`
	TotalExpenses      decimal.Decimal `json:"totalExpenses"`
	NetResult          decimal.Decimal `json:"netResult"`
	PendingPayables    decimal.Decimal `json:"pendingPayables"`
	PendingReceivables decimal.Decimal `json:"pendingReceivables"`
	OverduePayables    int             `json:"overduePayables"`
	OverdueReceivables int             `json:"overdueReceivables"`
}

func newDashboardView(s core.DashboardSummary) dashboardView {
	return dashboardView{
		TotalBalance:       s.TotalBalance,
		TotalIncome:        s.TotalIncome,
		TotalExpenses:      s.TotalExpenses,
		NetResult:          s.NetResult,
		PendingPayables:    s.PendingPayables,
		PendingReceivables: s.PendingReceivables,
		OverduePayables:    s.OverduePayables,
		OverdueReceivables: s.OverdueReceivables,
	}
}

type reportGroupView struct {
	CategoryID   string          `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	Total        decimal.Decimal `json:"total"`
	Count        int             `json:"count"`
}

type reportView struct {
	Kind   string            `json:"kind"`
	From   core.Date         `json:"from"`
	To     core.Date         `json:"to"`
	Total  decimal.Decimal   `json:"total"`
	Count  int               `json:"count"`
	Groups []reportGroupView `json:"groups"`
}

func newReportView(r core.Report) reportView {
	view := reportView{
		Kind:   string(r.Kind),
		From:   r.Range.From,
		To:     r.Range.To,
		Total:  r.Total,
		Count:  r.Count,
		Groups: make([]reportGroupView, 0, len(r.Groups)),
	}
	for _, g := range r.Groups {
		view.Groups = append(view.Groups, reportGroupView{
			CategoryID:   g.CategoryID,
			CategoryName: g.CategoryName,
			Total:        g.Total,
			Count:        g.Count,
		})
	}
	return view
}
