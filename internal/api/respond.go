package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pkg/errors"

	"github.com/example/wordquiz/internal/auth"
	"github.com/example/wordquiz/internal/database"
	"github.com/example/wordquiz/internal/quiz"
	"github.com/example/wordquiz/pkg/models"
)

// errBadRequest marks client mistakes in request payloads
var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

func badRequest(msg string) error {
	return errors.Wrap(errBadRequest, msg)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP statuses; anything unexpected is logged and hidden
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, quiz.ErrInvalidResults), errors.Is(err, errBadRequest):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
	case database.IsUniqueViolation(err):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "already exists"})
	default:
		logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("bad json: " + err.Error())
	}
	return nil
}
