package http

import (
	"net/http"

	authmw "spendify/internal/middleware/auth"
	"spendify/internal/services"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	session, _ := authmw.SessionFromContext(r.Context())

	filter := parseDateFilter(r.URL.Query())
	sortBy := parseSort(r.URL.Query())

	view, err := s.ledger.List(r.Context(), session, filter, sortBy)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	session, _ := authmw.SessionFromContext(r.Context())

	var input services.TransactionInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	created, err := s.transactions.Create(r.Context(), session, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	session, _ := authmw.SessionFromContext(r.Context())

	tx, err := s.transactions.Get(r.Context(), session, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	session, _ := authmw.SessionFromContext(r.Context())

	var input services.TransactionInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	updated, err := s.transactions.Update(r.Context(), session, r.PathValue("id"), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	session, _ := authmw.SessionFromContext(r.Context())

	if err := s.transactions.Delete(r.Context(), session, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
