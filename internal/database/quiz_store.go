package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/wordquiz/internal/quiz"
	"github.com/example/wordquiz/pkg/models"
)

// QuizStore backs the quiz service with the SQL repositories
type QuizStore struct {
	db *sqlx.DB
	repos
}

// repos bundles the repositories bound to one connection or transaction
type repos struct {
	topics  *TopicRepository
	words   *WordRepository
	scores  *WordScoreRepository
	results *QuizResultRepository
	users   *UserRepository
	stats   *StatisticsRepository
}

func newRepos(db sqlx.ExtContext) repos {
	return repos{
		topics:  NewTopicRepository(db),
		words:   NewWordRepository(db),
		scores:  NewWordScoreRepository(db),
		results: NewQuizResultRepository(db),
		users:   NewUserRepository(db),
		stats:   NewStatisticsRepository(db),
	}
}

// NewQuizStore creates a quiz store on db
func NewQuizStore(db *sqlx.DB) *QuizStore {
	return &QuizStore{db: db, repos: newRepos(db)}
}

var (
	_ quiz.Store = (*QuizStore)(nil)
	_ quiz.Tx    = (*quizTx)(nil)
)

func (s *QuizStore) Topic(ctx context.Context, topicID int64, includeHidden bool, today time.Time) (*models.Topic, error) {
	if includeHidden {
		return s.topics.GetByID(ctx, topicID)
	}
	return s.topics.GetVisible(ctx, topicID, today)
}

func (s *QuizStore) Topics(ctx context.Context, includeHidden bool, today time.Time) ([]models.Topic, error) {
	if includeHidden {
		return s.topics.List(ctx)
	}
	return s.topics.ListLive(ctx, today)
}

func (s *QuizStore) TopicWords(ctx context.Context, topicID int64, limit int) ([]models.Word, error) {
	return s.words.ListByTopic(ctx, topicID, limit)
}

func (s *QuizStore) WordsDueRevision(ctx context.Context, topicID, studentID int64, today time.Time, limit int) ([]models.Word, error) {
	return s.words.DueRevision(ctx, topicID, studentID, today, limit)
}

func (s *QuizStore) Students(ctx context.Context) ([]models.User, error) {
	return s.users.ListStudents(ctx)
}

func (s *QuizStore) Streak(ctx context.Context, studentID int64) (int, error) {
	return s.users.GetStreak(ctx, studentID)
}

func (s *QuizStore) QuizTakenOn(ctx context.Context, studentID int64, day time.Time) (bool, error) {
	return s.results.ExistsOn(ctx, studentID, day)
}

func (s *QuizStore) Dashboard(ctx context.Context, studentID int64, today time.Time) (*models.DashboardStats, error) {
	return s.stats.Dashboard(ctx, studentID, today)
}

// InTx runs fn with repositories bound to a single transaction
func (s *QuizStore) InTx(ctx context.Context, fn func(tx quiz.Tx) error) error {
	return WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return fn(&quizTx{repos: newRepos(tx)})
	})
}

type quizTx struct {
	repos
}

func (t *quizTx) TopicExists(ctx context.Context, topicID int64) (bool, error) {
	return t.topics.Exists(ctx, topicID)
}

func (t *quizTx) TopicWordsByIDs(ctx context.Context, topicID int64, ids []int64) (map[int64]models.Word, error) {
	return t.words.MapByIDsInTopic(ctx, topicID, ids)
}

func (t *quizTx) WordScores(ctx context.Context, studentID int64, wordIDs []int64) (map[int64]models.WordScore, error) {
	return t.scores.MapForStudent(ctx, studentID, wordIDs)
}

func (t *quizTx) CreateWordScores(ctx context.Context, scores []models.WordScore) error {
	return t.scores.CreateBatch(ctx, scores)
}

func (t *quizTx) ApplyReviews(ctx context.Context, updates []models.ReviewUpdate) error {
	return t.scores.ApplyReviews(ctx, updates)
}

func (t *quizTx) QuizTakenOn(ctx context.Context, studentID int64, day time.Time) (bool, error) {
	return t.results.ExistsOn(ctx, studentID, day)
}

func (t *quizTx) IncrementStreak(ctx context.Context, studentID int64) error {
	return t.users.IncrementStreak(ctx, studentID)
}

func (t *quizTx) ResetStreak(ctx context.Context, studentID int64) error {
	return t.users.ResetStreak(ctx, studentID)
}

func (t *quizTx) CreateQuizResult(ctx context.Context, result *models.QuizResult) error {
	return t.results.Create(ctx, result)
}
