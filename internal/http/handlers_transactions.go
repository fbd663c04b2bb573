package http

import (
	"net/http"
)

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rng, err := parseRange(r.URL.Query())
		if err != nil {
			writeError(w, r, err)
			return
		}
		transactions, err := s.ledger.ListTransactions(r.Context(), rng)
		if err != nil {
			writeError(w, r, err)
			return
		}
		views := make([]transactionView, 0, len(transactions))
		for _, t := range transactions {
			views = append(views, newTransactionView(t))
		}
		writeJSON(w, http.StatusOK, views)

	case http.MethodPost:
		var req transactionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		created, err := s.ledger.RecordTransaction(r.Context(), req.toCore(""))
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateAggregates()
		writeJSON(w, http.StatusCreated, newTransactionView(created))

	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		t, err := s.ledger.GetTransaction(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newTransactionView(t))

	case http.MethodPut:
		var req transactionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		updated, err := s.ledger.UpdateTransaction(r.Context(), req.toCore(id))
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateAggregates()
		writeJSON(w, http.StatusOK, newTransactionView(updated))

	case http.MethodDelete:
		if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateAggregates()
		writeJSON(w, http.StatusNoContent, nil)

	default:
		methodNotAllowed(w, "GET, PUT, DELETE")
	}
}
