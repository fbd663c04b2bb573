package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"contas/internal/core"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// amount accepts a JSON number or a string, including comma decimal
// separators, and rejects non-positive values.
type amount struct {
	decimal.Decimal
}

func (a *amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		return core.ErrInvalidAmount
	}
	v, err := core.ParseAmount(s)
	if err != nil {
		return err
	}
	a.Decimal = v
	return nil
}

// decodeJSON reads a bounded JSON body into dst. Malformed input comes
// back as a ValidationError so handlers answer 422 uniformly.
func decodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer io.Copy(io.Discard, body)

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return core.NewValidationError("body", fmt.Sprintf("malformed JSON: %v", err))
	}
	return nil
}

// decodeJSONOptional is decodeJSON for endpoints where the body may be
// omitted entirely, like the settle actions.
func decodeJSONOptional(r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err != nil {
		return core.NewValidationError("body", "unreadable body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return core.NewValidationError("body", fmt.Sprintf("malformed JSON: %v", err))
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// parseRange reads optional from/to query parameters (YYYY-MM-DD).
func parseRange(query url.Values) (core.DateRange, error) {
	var rng core.DateRange
	if v := strings.TrimSpace(query.Get("from")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.DateRange{}, core.NewValidationError("from", "expected YYYY-MM-DD")
		}
		rng.From = d
	}
	if v := strings.TrimSpace(query.Get("to")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.DateRange{}, core.NewValidationError("to", "expected YYYY-MM-DD")
		}
		rng.To = d
	}
	return rng, nil
}

type accountRequest struct {
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	InitialBalance amount `json:"initialBalance"`
}

func (req accountRequest) toCore(id string) core.Account {
	return core.Account{
		ID:             id,
		Name:           sanitizeInput(req.Name),
		Kind:           core.AccountKind(req.Kind),
		InitialBalance: req.InitialBalance.Decimal,
	}
}

type categoryRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func (req categoryRequest) toCore(id string) core.Category {
	return core.Category{
		ID:   id,
		Name: sanitizeInput(req.Name),
		Kind: core.FlowKind(req.Kind),
	}
}

type partyRequest struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Notes string `json:"notes"`
}

func (req partyRequest) toCore(id string) core.ClientSupplier {
	return core.ClientSupplier{
		ID:    id,
		Name:  sanitizeInput(req.Name),
		Kind:  core.PartyKind(req.Kind),
		Notes: sanitizeInput(req.Notes),
	}
}

type policyRequest struct {
	RepetitionType  string `json:"repetitionType"`
	Installments    int    `json:"installments"`
	RecurrenceType  string `json:"recurrenceType"`
	RecurrenceCount int    `json:"recurrenceCount"`
}

func (req policyRequest) toCore() core.RepetitionPolicy {
	mode := core.RepetitionMode(req.RepetitionType)
	if mode == "" {
		mode = core.RepeatNone
	}
	return core.RepetitionPolicy{
		Mode:            mode,
		Installments:    req.Installments,
		RecurrenceUnit:  core.RecurrenceUnit(req.RecurrenceType),
		RecurrenceCount: req.RecurrenceCount,
	}
}

type payableRequest struct {
	SupplierID string    `json:"supplierId"`
	CategoryID string    `json:"categoryId"`
	AccountID  string    `json:"accountId"`
	Value      amount    `json:"value"`
	DueDate    core.Date `json:"dueDate"`
	Notes      string    `json:"notes"`
	policyRequest
}

func (req payableRequest) toCore(id string) core.PayableAccount {
	return core.PayableAccount{
		ID:         id,
		SupplierID: req.SupplierID,
		CategoryID: req.CategoryID,
		AccountID:  req.AccountID,
		Value:      req.Value.Decimal,
		DueDate:    req.DueDate,
		Notes:      sanitizeInput(req.Notes),
		Policy:     req.policyRequest.toCore(),
	}
}

type receivableRequest struct {
	ClientID   string    `json:"clientId"`
	CategoryID string    `json:"categoryId"`
	AccountID  string    `json:"accountId"`
	Value      amount    `json:"value"`
	DueDate    core.Date `json:"dueDate"`
	Notes      string    `json:"notes"`
	policyRequest
}

func (req receivableRequest) toCore(id string) core.ReceivableAccount {
	return core.ReceivableAccount{
		ID:         id,
		ClientID:   req.ClientID,
		CategoryID: req.CategoryID,
		AccountID:  req.AccountID,
		Value:      req.Value.Decimal,
		DueDate:    req.DueDate,
		Notes:      sanitizeInput(req.Notes),
		Policy:     req.policyRequest.toCore(),
	}
}

type transactionRequest struct {
	Kind             string    `json:"kind"`
	ClientSupplierID string    `json:"clientSupplierId"`
	CategoryID       string    `json:"categoryId"`
	AccountID        string    `json:"accountId"`
	Value            amount    `json:"value"`
	PaymentDate      core.Date `json:"paymentDate"`
	Notes            string    `json:"notes"`
}

func (req transactionRequest) toCore(id string) core.Transaction {
	return core.Transaction{
		ID:               id,
		Kind:             core.FlowKind(req.Kind),
		ClientSupplierID: req.ClientSupplierID,
		CategoryID:       req.CategoryID,
		AccountID:        req.AccountID,
		Value:            req.Value.Decimal,
		PaymentDate:      req.PaymentDate,
		Notes:            sanitizeInput(req.Notes),
		Source:           core.Source{Kind: core.SourceManual},
	}
}

type settleRequest struct {
	AccountID string    `json:"accountId"`
	Date      core.Date `json:"date"`
}
