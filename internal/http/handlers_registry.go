package http

import (
	"net/http"
)

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		accounts, err := s.registry.ListAccounts(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		views := make([]accountView, 0, len(accounts))
		for _, a := range accounts {
			views = append(views, newAccountView(a))
		}
		writeJSON(w, http.StatusOK, views)

	case http.MethodPost:
		var req accountRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		created, err := s.registry.CreateAccount(r.Context(), req.toCore(""))
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateAggregates()
		writeJSON(w, http.StatusCreated, newAccountView(created))

	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleAccountByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		account, err := s.registry.GetAccount(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newAccountView(account))

	case http.MethodPut:
		var req accountRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		updated, err := s.registry.UpdateAccount(r.Context(), req.toCore(id))
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateAggregates()
		writeJSON(w, http.StatusOK, newAccountView(updated))

	case http.MethodDelete:
		if err := s.registry.DeleteAccount(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateAggregates()
		writeJSON(w, http.StatusNoContent, nil)

	default:
		methodNotAllowed(w, "GET, PUT, DELETE")
	}
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		categories, err := s.registry.ListCategories(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		views := make([]categoryView, 0, len(categories))
		for _, c := range categories {
			views = append(views, newCategoryView(c))
		}
		writeJSON(w, http.StatusOK, views)

	case http.MethodPost:
		var req categoryRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		created, err := s.registry.CreateCategory(r.Context(), req.toCore(""))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, newCategoryView(created))

	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleCategoryByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodPut:
		var req categoryRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		updated, err := s.registry.UpdateCategory(r.Context(), req.toCore(id))
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.invalidateAggregates()
		writeJSON(w, http.StatusOK, newCategoryView(updated))

	case http.MethodDelete:
		if err := s.registry.DeleteCategory(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusNoContent, nil)

	default:
		methodNotAllowed(w, "PUT, DELETE")
	}
}

func (s *Server) handleClientsSuppliers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		parties, err := s.registry.ListClientsSuppliers(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		views := make([]partyView, 0, len(parties))
		for _, cs := range parties {
			views = append(views, newPartyView(cs))
		}
		writeJSON(w, http.StatusOK, views)

	case http.MethodPost:
		var req partyRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		created, err := s.registry.CreateClientSupplier(r.Context(), req.toCore(""))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, newPartyView(created))

	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleClientSupplierByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodPut:
		var req partyRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		updated, err := s.registry.UpdateClientSupplier(r.Context(), req.toCore(id))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newPartyView(updated))

	case http.MethodDelete:
		if err := s.registry.DeleteClientSupplier(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusNoContent, nil)

	default:
		methodNotAllowed(w, "PUT, DELETE")
	}
}
