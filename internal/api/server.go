package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"

	"github.com/example/wordquiz/internal/auth"
	"github.com/example/wordquiz/internal/database"
	"github.com/example/wordquiz/internal/excel"
	"github.com/example/wordquiz/internal/quiz"
	"github.com/example/wordquiz/internal/rbac"
	"github.com/example/wordquiz/internal/spaced_repetition"
)

// Server exposes the quiz service over HTTP
type Server struct {
	db       *sqlx.DB
	quiz     *quiz.Service
	auth     *auth.Service
	topics   *database.TopicRepository
	words    *database.WordRepository
	users    *database.UserRepository
	results  *database.QuizResultRepository
	importer *excel.Importer
	limiter  *RateLimiter
	logger   *slog.Logger
	now      func() time.Time
}

// NewServer wires the HTTP handlers to their dependencies
func NewServer(db *sqlx.DB, quizSvc *quiz.Service, authSvc *auth.Service, logger *slog.Logger) *Server {
	return &Server{
		db:       db,
		quiz:     quizSvc,
		auth:     authSvc,
		topics:   database.NewTopicRepository(db),
		words:    database.NewWordRepository(db),
		users:    database.NewUserRepository(db),
		results:  database.NewQuizResultRepository(db),
		importer: excel.NewImporter(db, logger),
		limiter:  NewRateLimiter(2*time.Second, 5),
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Server) today() time.Time {
	return spaced_repetition.Day(s.now())
}

// Router builds the chi router with middleware and routes
func (s *Server) Router(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID, middleware.RealIP, requestLogger(s.logger), middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(s.auth))

		pr.With(rbac.Require(rbac.PermTopicView)).Get("/topics", s.handleListTopics)

		pr.With(rbac.Require(rbac.PermQuizTake)).Get("/topics/{topicID}/quiz", s.handleGenerateQuiz)
		pr.With(rbac.Require(rbac.PermQuizTake), s.limiter.PerUser).Post("/topics/{topicID}/results", s.handleSubmitResults)
		pr.With(rbac.Require(rbac.PermQuizTake)).Get("/me/streak", s.handleStreak)
		pr.With(rbac.Require(rbac.PermQuizTake)).Get("/me/dashboard", s.handleDashboard)
		pr.With(rbac.Require(rbac.PermQuizTake)).Get("/me/results", s.handleResultHistory)

		// Editor
		pr.Group(func(er chi.Router) {
			er.Use(rbac.Require(rbac.PermTopicEdit))
			er.Post("/topics", s.handleCreateTopic)
			er.Put("/topics/{topicID}", s.handleUpdateTopic)
			er.Delete("/topics/{topicID}", s.handleDeleteTopic)
			er.Get("/topics/{topicID}/words", s.handleListTopicWords)
			er.Post("/topics/{topicID}/words", s.handleAddTopicWord)
			er.Delete("/topics/{topicID}/words/{wordID}", s.handleRemoveTopicWord)
			er.Post("/words/import", s.handleImportWords)
		})
	})

	return r
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid " + name)
	}
	return id, nil
}
