package http

import (
	"net/http"
	"time"

	"contas/internal/core"
)

func (s *Server) handlePayables(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		payables, err := s.payables.List(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		today := core.Today(time.Now())
		views := make([]entryView, 0, len(payables))
		for _, p := range payables {
			views = append(views, newPayableView(p, today))
		}
		writeJSON(w, http.StatusOK, views)

	case http.MethodPost:
		var req payableRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		created, err := s.payables.Create(r.Context(), req.toCore(""))
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateAggregates()
		today := core.Today(time.Now())
		views := make([]entryView, 0, len(created))
		for _, p := range created {
			views = append(views, newPayableView(p, today))
		}
		writeJSON(w, http.StatusCreated, views)

	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handlePayableByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		p, err := s.payables.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newPayableView(p, core.Today(time.Now())))

	case http.MethodPut:
		var req payableRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		existing, err := s.payables.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		entry := req.toCore(id)
		entry.IsPaid = existing.IsPaid
		entry.PaidDate = existing.PaidDate
		entry.ParentID = existing.ParentID
		updated, err := s.payables.Update(r.Context(), entry)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateAggregates()
		writeJSON(w, http.StatusOK, newPayableView(updated, core.Today(time.Now())))

	case http.MethodDelete:
		if err := s.payables.Delete(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateAggregates()
		writeJSON(w, http.StatusNoContent, nil)

	default:
		methodNotAllowed(w, "GET, PUT, DELETE")
	}
}

func (s *Server) handlePayPayable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req settleRequest
	if err := decodeJSONOptional(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	paidDate := req.Date
	if paidDate.IsZero() {
		paidDate = core.Today(time.Now())
	}

	settled, err := s.ledger.SettlePayable(r.Context(), r.PathValue("id"), req.AccountID, paidDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateAggregates()
	writeJSON(w, http.StatusOK, newPayableView(settled, core.Today(time.Now())))
}

func (s *Server) handleUnpayPayable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	reverted, err := s.ledger.UnsettlePayable(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateAggregates()
	writeJSON(w, http.StatusOK, newPayableView(reverted, core.Today(time.Now())))
}
