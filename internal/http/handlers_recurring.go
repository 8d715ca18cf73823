package http

import (
	"net/http"

	authmw "spendify/internal/middleware/auth"
	"spendify/internal/services"
)

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	session, _ := authmw.SessionFromContext(r.Context())

	rules, err := s.recurring.List(r.Context(), session)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rules)
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	session, _ := authmw.SessionFromContext(r.Context())

	var input services.RecurringInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	rule, err := s.recurring.Create(r.Context(), session, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, rule)
}

func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	session, _ := authmw.SessionFromContext(r.Context())

	var input services.RecurringInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	rule, err := s.recurring.Update(r.Context(), session, r.PathValue("id"), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rule)
}

func (s *Server) handleSetRecurringActive(w http.ResponseWriter, r *http.Request) {
	session, _ := authmw.SessionFromContext(r.Context())

	var body struct {
		IsActive *bool `json:"is_active"`
	}
	if err := decodeJSON(r, &body); err != nil || body.IsActive == nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	rule, err := s.recurring.SetActive(r.Context(), session, r.PathValue("id"), *body.IsActive)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rule)
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	session, _ := authmw.SessionFromContext(r.Context())

	if err := s.recurring.Delete(r.Context(), session, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
