package api

import (
	"net/http"
	"strconv"

	"github.com/example/wordquiz/internal/auth"
	"github.com/example/wordquiz/internal/quiz"
	"github.com/example/wordquiz/internal/rbac"
)

const defaultHistoryLimit = 20

func caller(r *http.Request) quiz.Caller {
	return quiz.Caller{ID: auth.UserIDFromContext(r.Context()), Role: rbac.RoleFromContext(r.Context())}
}

// GET /topics
func (s *Server) handleListTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := s.quiz.Topics(r.Context(), caller(r), s.today())
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, topics)
}

// GET /topics/{topicID}/quiz
func (s *Server) handleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	topicID, err := pathID(r, "topicID")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	payload, err := s.quiz.GenerateQuiz(r.Context(), caller(r), topicID, s.today())
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// POST /topics/{topicID}/results  { "<word id>": true, ... }
func (s *Server) handleSubmitResults(w http.ResponseWriter, r *http.Request) {
	topicID, err := pathID(r, "topicID")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	var raw map[string]bool
	if err := decodeJSON(r, &raw); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	results, err := quiz.ParseResults(raw)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	summary, err := s.quiz.ProcessResults(r.Context(), results, auth.UserIDFromContext(r.Context()), topicID, s.today())
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GET /me/streak
func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	streak, err := s.quiz.CurrentStreak(r.Context(), auth.UserIDFromContext(r.Context()), s.today())
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"streak": streak})
}

// GET /me/dashboard
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.quiz.Dashboard(r.Context(), auth.UserIDFromContext(r.Context()), s.today())
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GET /me/results?limit=N
func (s *Server) handleResultHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			writeError(w, r, s.logger, badRequest("invalid limit"))
			return
		}
		limit = n
	}
	results, err := s.results.ListByStudent(r.Context(), auth.UserIDFromContext(r.Context()), limit)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
