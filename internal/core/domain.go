package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	AccountBank AccountKind = "bank"
	AccountCash AccountKind = "cash"
	AccountTill AccountKind = "till"
	AccountCard AccountKind = "card"

	Income  FlowKind = "income"
	Expense FlowKind = "expense"

	Client   PartyKind = "client"
	Supplier PartyKind = "supplier"

	SourceManual     SourceKind = "manual"
	SourcePayable    SourceKind = "payable"
	SourceReceivable SourceKind = "receivable"
)

type (
	AccountKind string

	// FlowKind classifies both categories and transactions as money in or out.
	FlowKind string

	PartyKind string

	SourceKind string

	Date struct {
		time.Time
	}

	// Account is a money holding (bank account, cash box, till, card).
	// CurrentBalance is derived: it moves only when transactions are
	// applied or reversed, and resets to InitialBalance on account edit.
	Account struct {
		ID             string
		Name           string
		Kind           AccountKind
		InitialBalance decimal.Decimal
		CurrentBalance decimal.Decimal
		CreatedAt      time.Time
	}

	Category struct {
		ID        string
		Name      string
		Kind      FlowKind
		CreatedAt time.Time
	}

	// ClientSupplier is a counterparty: a client on the receivable side,
	// a supplier on the payable side.
	ClientSupplier struct {
		ID        string
		Name      string
		Kind      PartyKind
		Notes     string
		CreatedAt time.Time
	}

	// PayableAccount is a scheduled expense obligation, independent of
	// whether money has moved yet.
	PayableAccount struct {
		ID         string
		SupplierID string
		CategoryID string
		AccountID  string // optional until paid
		Value      decimal.Decimal
		DueDate    Date
		Notes      string
		Policy     RepetitionPolicy
		IsPaid     bool
		PaidDate   Date   // zero unless paid
		ParentID   string // set on entries generated from a repetition policy
		CreatedAt  time.Time
	}

	// ReceivableAccount mirrors PayableAccount on the income side.
	ReceivableAccount struct {
		ID           string
		ClientID     string
		CategoryID   string
		AccountID    string
		Value        decimal.Decimal
		DueDate      Date
		Notes        string
		Policy       RepetitionPolicy
		IsReceived   bool
		ReceivedDate Date
		ParentID     string
		CreatedAt    time.Time
	}

	// Source records the provenance of a transaction: entered manually or
	// generated by settling a payable/receivable entry.
	Source struct {
		Kind     SourceKind
		SourceID string
	}

	// Transaction is a realized ledger movement affecting an account balance.
	Transaction struct {
		ID               string
		Kind             FlowKind
		ClientSupplierID string
		CategoryID       string
		AccountID        string
		Value            decimal.Decimal
		PaymentDate      Date
		Notes            string
		Source           Source
		CreatedAt        time.Time
	}
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyName     = errors.New("empty name")
	ErrInvalidKind   = errors.New("invalid kind")
	ErrInvalidDate   = errors.New("invalid date")
)

// ValidationError reports a missing or malformed field on a mutating
// operation. Handlers map it to 422.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError reports a delete blocked by existing references.
// Handlers map it to 409.
type ConflictError struct {
	Entity string
	ID     string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s cannot be removed: %s", e.Entity, e.ID, e.Reason)
}

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD wire date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Today truncates a clock reading to its calendar day.
func Today(now time.Time) Date {
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// IsEmpty reports whether the date is unset (optional dates use the zero value).
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// MarshalJSON encodes the date as a YYYY-MM-DD string, or null when unset.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts a YYYY-MM-DD string, empty string or null.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (k AccountKind) Valid() bool {
	switch k {
	case AccountBank, AccountCash, AccountTill, AccountCard:
		return true
	}
	return false
}

func (k FlowKind) Valid() bool {
	return k == Income || k == Expense
}

func (k PartyKind) Valid() bool {
	return k == Client || k == Supplier
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if !a.Kind.Valid() {
		return ErrInvalidKind
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Kind.Valid() {
		return ErrInvalidKind
	}
	return nil
}

func (cs ClientSupplier) Validate() error {
	if strings.TrimSpace(cs.Name) == "" {
		return ErrEmptyName
	}
	if !cs.Kind.Valid() {
		return ErrInvalidKind
	}
	return nil
}

func (p PayableAccount) Validate() error {
	if p.SupplierID == "" {
		return NewValidationError("supplierId", "required")
	}
	if p.CategoryID == "" {
		return NewValidationError("categoryId", "required")
	}
	if !p.Value.IsPositive() {
		return ErrInvalidAmount
	}
	if p.DueDate.IsZero() {
		return NewValidationError("dueDate", "required")
	}
	return p.Policy.Validate()
}

func (r ReceivableAccount) Validate() error {
	if r.ClientID == "" {
		return NewValidationError("clientId", "required")
	}
	if r.CategoryID == "" {
		return NewValidationError("categoryId", "required")
	}
	if !r.Value.IsPositive() {
		return ErrInvalidAmount
	}
	if r.DueDate.IsZero() {
		return NewValidationError("dueDate", "required")
	}
	return r.Policy.Validate()
}

func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if t.ClientSupplierID == "" {
		return NewValidationError("clientSupplierId", "required")
	}
	if t.CategoryID == "" {
		return NewValidationError("categoryId", "required")
	}
	if t.AccountID == "" {
		return NewValidationError("accountId", "required")
	}
	if !t.Value.IsPositive() {
		return ErrInvalidAmount
	}
	if t.PaymentDate.IsZero() {
		return NewValidationError("paymentDate", "required")
	}
	switch t.Source.Kind {
	case SourceManual:
		// sourceId not required
	case SourcePayable, SourceReceivable:
		if t.Source.SourceID == "" {
			return NewValidationError("sourceId", "required for sourced transactions")
		}
	default:
		return NewValidationError("sourceType", "unknown source kind")
	}
	return nil
}
