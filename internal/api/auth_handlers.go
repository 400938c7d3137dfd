package api

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/example/wordquiz/internal/auth"
	"github.com/example/wordquiz/pkg/models"
)

const minPasswordLength = 8

type credentials struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
}

// POST /auth/register  { "username": "...", "password": "...", "first_name": "...", "last_name": "..." }
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if n := utf8.RuneCountInString(req.Username); n < 3 || n > 150 {
		writeError(w, r, s.logger, badRequest("username must be 3-150 characters"))
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, r, s.logger, badRequest("password is too short"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	user := &models.User{
		Username:            req.Username,
		PasswordHash:        hash,
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Role:                models.RoleStudent,
		NotificationEnabled: true,
		NotificationHour:    9,
	}
	if err := s.users.Create(r.Context(), user); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	token, err := s.auth.IssueJWT(user)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{AccessToken: token, User: user})
}

// POST /auth/login  { "username": "...", "password": "..." }
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	user, err := s.users.GetByUsername(r.Context(), strings.TrimSpace(req.Username))
	if errors.Is(err, models.ErrNotFound) {
		err = auth.ErrInvalidCredentials
	}
	if err == nil {
		err = auth.CheckPassword(user.PasswordHash, req.Password)
	}
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	token, err := s.auth.IssueJWT(user)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, User: user})
}
