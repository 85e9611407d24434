package api

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"pizza-palace/models"
	"pizza-palace/services"
)

type loginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decodeJSON(r, &creds); err != nil {
		s.writeError(w, r, err)
		return
	}
	token, user, wait, err := s.auth.Login(r.Context(), creds)
	if err != nil {
		if wait > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(wait))
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: services.ErrTooManyAttempts.Error(), RetryAfter: wait})
			return
		}
		s.requestLog(r).Info("login_failed", zap.String("email", creds.Email))
		s.writeError(w, r, err)
		return
	}
	s.requestLog(r).Info("login_succeeded", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: *user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.Logout(tokenFrom(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFrom(r.Context()))
}
