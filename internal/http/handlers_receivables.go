package http

import (
	"net/http"
	"time"

	"contas/internal/core"
)

func (s *Server) handleReceivables(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		receivables, err := s.receivables.List(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		today := core.Today(time.Now())
		views := make([]entryView, 0, len(receivables))
		for _, rc := range receivables {
			views = append(views, newReceivableView(rc, today))
		}
		writeJSON(w, http.StatusOK, views)

	case http.MethodPost:
		var req receivableRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		created, err := s.receivables.Create(r.Context(), req.toCore(""))
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateAggregates()
		today := core.Today(time.Now())
		views := make([]entryView, 0, len(created))
		for _, rc := range created {
			views = append(views, newReceivableView(rc, today))
		}
		writeJSON(w, http.StatusCreated, views)

	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleReceivableByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		rc, err := s.receivables.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newReceivableView(rc, core.Today(time.Now())))

	case http.MethodPut:
		var req receivableRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		existing, err := s.receivables.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		entry := req.toCore(id)
		entry.IsReceived = existing.IsReceived
		entry.ReceivedDate = existing.ReceivedDate
		entry.ParentID = existing.ParentID
		updated, err := s.receivables.Update(r.Context(), entry)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateAggregates()
		writeJSON(w, http.StatusOK, newReceivableView(updated, core.Today(time.Now())))

	case http.MethodDelete:
		if err := s.receivables.Delete(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateAggregates()
		writeJSON(w, http.StatusNoContent, nil)

	default:
		methodNotAllowed(w, "GET, PUT, DELETE")
	}
}

func (s *Server) handleReceiveReceivable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req settleRequest
	if err := decodeJSONOptional(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	receivedDate := req.Date
	if receivedDate.IsZero() {
		receivedDate = core.Today(time.Now())
	}

	settled, err := s.ledger.SettleReceivable(r.Context(), r.PathValue("id"), req.AccountID, receivedDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateAggregates()
	writeJSON(w, http.StatusOK, newReceivableView(settled, core.Today(time.Now())))
}

func (s *Server) handleUnreceiveReceivable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	reverted, err := s.ledger.UnsettleReceivable(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateAggregates()
	writeJSON(w, http.StatusOK, newReceivableView(reverted, core.Today(time.Now())))
}
