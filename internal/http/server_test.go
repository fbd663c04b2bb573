package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"contas/internal/core"
	"contas/internal/services"
	"contas/internal/storage"
	"contas/internal/storage/memory"
)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	srv := NewServer(":0",
		services.NewRegistryService(store),
		services.NewLedgerService(store, nil),
		services.NewPayableService(store, nil),
		services.NewReceivableService(store, nil),
		services.NewReportService(store),
		services.NewAuditService(store, 100),
	)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv, store
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
}

func seedRegistry(t *testing.T, srv *Server) (accountID, categoryID, partyID string) {
	t.Helper()
	var account, category, party struct {
		ID string `json:"id"`
	}

	rr := doJSON(t, srv, http.MethodPost, "/api/accounts",
		`{"name":"Main checking","kind":"bank","initialBalance":"1000"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("seed account status = %d, body %s", rr.Code, rr.Body.String())
	}
	decodeBody(t, rr, &account)

	rr = doJSON(t, srv, http.MethodPost, "/api/categories",
		`{"name":"Utilities","kind":"expense"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("seed category status = %d, body %s", rr.Code, rr.Body.String())
	}
	decodeBody(t, rr, &category)

	rr = doJSON(t, srv, http.MethodPost, "/api/clients-suppliers",
		`{"name":"Acme Power","kind":"supplier"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("seed party status = %d, body %s", rr.Code, rr.Body.String())
	}
	decodeBody(t, rr, &party)

	return account.ID, category.ID, party.ID
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rr.Code)
		}
	}
}

func TestAccountsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("create and list", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodPost, "/api/accounts",
			`{"name":"Cash box","kind":"cash","initialBalance":"250,50"}`)
		if rr.Code != http.StatusCreated {
			t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
		}
		var created accountView
		decodeBody(t, rr, &created)
		if created.CurrentBalance.String() != "250.5" {
			t.Errorf("currentBalance = %v, want 250.5", created.CurrentBalance)
		}

		rr = doJSON(t, srv, http.MethodGet, "/api/accounts", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("list status = %d", rr.Code)
		}
		var listed []accountView
		decodeBody(t, rr, &listed)
		if len(listed) != 1 {
			t.Errorf("listed %d accounts, want 1", len(listed))
		}
	})

	t.Run("validation errors map to 422", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{name: "empty name", body: `{"name":"","kind":"bank","initialBalance":"10"}`},
			{name: "bad kind", body: `{"name":"X","kind":"wallet","initialBalance":"10"}`},
			{name: "malformed JSON", body: `{"name":`},
			{name: "negative balance", body: `{"name":"X","kind":"bank","initialBalance":"-10"}`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rr := doJSON(t, srv, http.MethodPost, "/api/accounts", tt.body)
				if rr.Code != http.StatusUnprocessableEntity {
					t.Errorf("status = %d, want 422 (body %s)", rr.Code, rr.Body.String())
				}
			})
		}
	})

	t.Run("unknown account is 404", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodGet, "/api/accounts/missing", "")
		if rr.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rr.Code)
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodPatch, "/api/accounts", `{}`)
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rr.Code)
		}
		if allow := rr.Header().Get("Allow"); allow != "GET, POST" {
			t.Errorf("Allow = %q, want GET, POST", allow)
		}
	})
}

func TestTransactionsEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	accountID, categoryID, partyID := seedRegistry(t, srv)

	t.Run("record moves the balance", func(t *testing.T) {
		body := `{"kind":"expense","clientSupplierId":"` + partyID +
			`","categoryId":"` + categoryID +
			`","accountId":"` + accountID +
			`","value":"200","paymentDate":"2024-06-10"}`
		rr := doJSON(t, srv, http.MethodPost, "/api/transactions", body)
		if rr.Code != http.StatusCreated {
			t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
		}
		var created transactionView
		decodeBody(t, rr, &created)
		if created.SourceType != "manual" {
			t.Errorf("sourceType = %q, want manual", created.SourceType)
		}

		account, err := store.GetAccount(context.Background(), accountID)
		if err != nil {
			t.Fatalf("GetAccount() error = %v", err)
		}
		if account.CurrentBalance.String() != "800" {
			t.Errorf("balance = %v, want 800", account.CurrentBalance)
		}
	})

	t.Run("list filters by range", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodGet, "/api/transactions?from=2024-06-01&to=2024-06-30", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		var listed []transactionView
		decodeBody(t, rr, &listed)
		if len(listed) != 1 {
			t.Errorf("listed %d transactions, want 1", len(listed))
		}

		rr = doJSON(t, srv, http.MethodGet, "/api/transactions?from=2023-01-01&to=2023-12-31", "")
		decodeBody(t, rr, &listed)
		if len(listed) != 0 {
			t.Errorf("listed %d transactions, want 0 outside the range", len(listed))
		}
	})

	t.Run("bad range parameter is 422", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodGet, "/api/transactions?from=junk", "")
		if rr.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", rr.Code)
		}
	})

	t.Run("delete restores the balance", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodGet, "/api/transactions", "")
		var listed []transactionView
		decodeBody(t, rr, &listed)
		if len(listed) != 1 {
			t.Fatalf("listed %d transactions, want 1", len(listed))
		}

		rr = doJSON(t, srv, http.MethodDelete, "/api/transactions/"+listed[0].ID, "")
		if rr.Code != http.StatusNoContent {
			t.Fatalf("delete status = %d", rr.Code)
		}

		account, err := store.GetAccount(context.Background(), accountID)
		if err != nil {
			t.Fatalf("GetAccount() error = %v", err)
		}
		if account.CurrentBalance.String() != "1000" {
			t.Errorf("balance = %v, want 1000 restored", account.CurrentBalance)
		}
	})
}

func TestPayablesEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	accountID, categoryID, partyID := seedRegistry(t, srv)

	t.Run("create installment plan", func(t *testing.T) {
		body := `{"supplierId":"` + partyID +
			`","categoryId":"` + categoryID +
			`","value":"100","dueDate":"2024-01-31","notes":"Laptop",` +
			`"repetitionType":"installments","installments":3}`
		rr := doJSON(t, srv, http.MethodPost, "/api/payables", body)
		if rr.Code != http.StatusCreated {
			t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
		}
		var created []entryView
		decodeBody(t, rr, &created)
		if len(created) != 3 {
			t.Fatalf("created %d entries, want 3", len(created))
		}
		if created[1].ParentID != created[0].ID {
			t.Errorf("sibling parentId = %q, want %q", created[1].ParentID, created[0].ID)
		}
		if created[1].DueDate.String() != "2024-02-29" {
			t.Errorf("second dueDate = %v, want 2024-02-29", created[1].DueDate)
		}
	})

	t.Run("pay defaults the date to today", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodGet, "/api/payables", "")
		var listed []entryView
		decodeBody(t, rr, &listed)
		if len(listed) == 0 {
			t.Fatal("no payables listed")
		}
		id := listed[0].ID

		body := `{"accountId":"` + accountID + `"}`
		rr = doJSON(t, srv, http.MethodPost, "/api/payables/"+id+"/pay", body)
		if rr.Code != http.StatusOK {
			t.Fatalf("pay status = %d, body %s", rr.Code, rr.Body.String())
		}
		var settled entryView
		decodeBody(t, rr, &settled)
		if !settled.Settled {
			t.Error("settled = false, want true")
		}
		today := core.Today(time.Now())
		if settled.SettledDate.String() != today.String() {
			t.Errorf("settledDate = %v, want today %v", settled.SettledDate, today)
		}
		if settled.Status != string(core.StatusSettled) {
			t.Errorf("status = %q, want settled", settled.Status)
		}

		account, err := store.GetAccount(context.Background(), accountID)
		if err != nil {
			t.Fatalf("GetAccount() error = %v", err)
		}
		if account.CurrentBalance.String() != "900" {
			t.Errorf("balance = %v, want 900", account.CurrentBalance)
		}

		// Round trip back to pending.
		rr = doJSON(t, srv, http.MethodPost, "/api/payables/"+id+"/unpay", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("unpay status = %d", rr.Code)
		}
		account, _ = store.GetAccount(context.Background(), accountID)
		if account.CurrentBalance.String() != "1000" {
			t.Errorf("balance = %v, want 1000 after unpay", account.CurrentBalance)
		}
	})

	t.Run("missing entry is 404", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodPost, "/api/payables/missing/pay", "")
		if rr.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rr.Code)
		}
	})
}

func TestReceivablesEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	accountID, categoryID, partyID := seedRegistry(t, srv)

	body := `{"clientId":"` + partyID +
		`","categoryId":"` + categoryID +
		`","accountId":"` + accountID +
		`","value":"400","dueDate":"2024-07-05","notes":"Invoice 42"}`
	rr := doJSON(t, srv, http.MethodPost, "/api/receivables", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var created []entryView
	decodeBody(t, rr, &created)
	if len(created) != 1 {
		t.Fatalf("created %d entries, want 1", len(created))
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/receivables/"+created[0].ID+"/receive",
		`{"date":"2024-07-06"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("receive status = %d, body %s", rr.Code, rr.Body.String())
	}

	account, err := store.GetAccount(context.Background(), accountID)
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}
	if account.CurrentBalance.String() != "1400" {
		t.Errorf("balance = %v, want 1400", account.CurrentBalance)
	}
}

func TestRegistryDeleteConflict(t *testing.T) {
	srv, _ := newTestServer(t)
	accountID, categoryID, partyID := seedRegistry(t, srv)

	body := `{"kind":"expense","clientSupplierId":"` + partyID +
		`","categoryId":"` + categoryID +
		`","accountId":"` + accountID +
		`","value":"10","paymentDate":"2024-06-10"}`
	if rr := doJSON(t, srv, http.MethodPost, "/api/transactions", body); rr.Code != http.StatusCreated {
		t.Fatalf("seed transaction status = %d", rr.Code)
	}

	for _, path := range []string{
		"/api/accounts/" + accountID,
		"/api/categories/" + categoryID,
		"/api/clients-suppliers/" + partyID,
	} {
		rr := doJSON(t, srv, http.MethodDelete, path, "")
		if rr.Code != http.StatusConflict {
			t.Errorf("DELETE %s status = %d, want 409", path, rr.Code)
		}
	}
}

func TestDashboardEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	accountID, categoryID, partyID := seedRegistry(t, srv)

	body := `{"kind":"income","clientSupplierId":"` + partyID +
		`","categoryId":"` + categoryID +
		`","accountId":"` + accountID +
		`","value":"500","paymentDate":"2024-06-05"}`
	if rr := doJSON(t, srv, http.MethodPost, "/api/transactions", body); rr.Code != http.StatusCreated {
		t.Fatalf("seed transaction status = %d", rr.Code)
	}

	rr := doJSON(t, srv, http.MethodGet, "/api/dashboard?from=2024-06-01&to=2024-06-30", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var view dashboardView
	decodeBody(t, rr, &view)
	if view.TotalIncome.String() != "500" {
		t.Errorf("totalIncome = %v, want 500", view.TotalIncome)
	}
	if view.TotalBalance.String() != "1500" {
		t.Errorf("totalBalance = %v, want 1500", view.TotalBalance)
	}

	t.Run("cache invalidated by mutations", func(t *testing.T) {
		body := `{"kind":"income","clientSupplierId":"` + partyID +
			`","categoryId":"` + categoryID +
			`","accountId":"` + accountID +
			`","value":"100","paymentDate":"2024-06-06"}`
		if rr := doJSON(t, srv, http.MethodPost, "/api/transactions", body); rr.Code != http.StatusCreated {
			t.Fatalf("transaction status = %d", rr.Code)
		}

		rr := doJSON(t, srv, http.MethodGet, "/api/dashboard?from=2024-06-01&to=2024-06-30", "")
		var after dashboardView
		decodeBody(t, rr, &after)
		if after.TotalIncome.String() != "600" {
			t.Errorf("totalIncome = %v, want 600 after new transaction", after.TotalIncome)
		}
	})
}

func TestReportsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	accountID, categoryID, partyID := seedRegistry(t, srv)

	body := `{"kind":"expense","clientSupplierId":"` + partyID +
		`","categoryId":"` + categoryID +
		`","accountId":"` + accountID +
		`","value":"140","paymentDate":"2024-06-10"}`
	if rr := doJSON(t, srv, http.MethodPost, "/api/transactions", body); rr.Code != http.StatusCreated {
		t.Fatalf("seed transaction status = %d", rr.Code)
	}

	rr := doJSON(t, srv, http.MethodGet, "/api/reports?kind=expenses", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var view reportView
	decodeBody(t, rr, &view)
	if view.Total.String() != "140" {
		t.Errorf("total = %v, want 140", view.Total)
	}
	if len(view.Groups) != 1 || view.Groups[0].CategoryName != "Utilities" {
		t.Errorf("groups = %+v, want single Utilities group", view.Groups)
	}

	t.Run("unknown kind is 422", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodGet, "/api/reports?kind=budget", "")
		if rr.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", rr.Code)
		}
	})
}

func TestAuditEndpoint(t *testing.T) {
	srv, store := newTestServer(t)

	for i := 0; i < 3; i++ {
		if err := store.AppendAuditEntry(context.Background(), storage.AuditEntry{
			Event:      "transaction.recorded",
			EntityKind: "transaction",
			EntityID:   "t-" + strconv.Itoa(i),
		}); err != nil {
			t.Fatalf("seed audit entry: %v", err)
		}
	}

	rr := doJSON(t, srv, http.MethodGet, "/api/audit", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var entries []auditEntryView
	decodeBody(t, rr, &entries)
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	// Newest first.
	if entries[0].EntityID != "t-2" {
		t.Errorf("first entry EntityID = %q, want t-2", entries[0].EntityID)
	}

	t.Run("limit narrows the page", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodGet, "/api/audit?limit=1", "")
		var entries []auditEntryView
		decodeBody(t, rr, &entries)
		if len(entries) != 1 {
			t.Errorf("len(entries) = %d, want 1", len(entries))
		}
	})

	t.Run("invalid limit is 422", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodGet, "/api/audit?limit=zero", "")
		if rr.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", rr.Code)
		}
	})

	t.Run("mutations are rejected", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodPost, "/api/audit", `{}`)
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rr.Code)
		}
	})
}
