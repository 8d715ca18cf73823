package http

import (
	"net/http"

	authmw "spendify/internal/middleware/auth"
)

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken string  `json:"access_token"`
	User        userDTO `json:"user"`
}

type userDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	creds, err := s.authService.Signup(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		AccessToken: creds.AccessToken,
		User:        userDTO{ID: creds.Account.ID, Email: creds.Account.Email, Name: creds.Account.Name},
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	creds, err := s.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		AccessToken: creds.AccessToken,
		User:        userDTO{ID: creds.Account.ID, Email: creds.Account.Email, Name: creds.Account.Name},
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	session, ok := authmw.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no session")
		return
	}

	account, err := s.authService.Account(r.Context(), session)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userDTO{ID: account.ID, Email: account.Email, Name: account.Name})
}
