package quiz

import (
	"context"
	"time"

	"github.com/example/wordquiz/pkg/models"
)

// Store is the read side the quiz service needs, plus a way to open a transaction
type Store interface {
	// Topic returns models.ErrNotFound for missing topics, and for hidden or
	// not yet available ones unless includeHidden is set.
	Topic(ctx context.Context, topicID int64, includeHidden bool, today time.Time) (*models.Topic, error)
	// Topics returns live topics, or every topic when includeHidden is set
	Topics(ctx context.Context, includeHidden bool, today time.Time) ([]models.Topic, error)
	TopicWords(ctx context.Context, topicID int64, limit int) ([]models.Word, error)
	WordsDueRevision(ctx context.Context, topicID, studentID int64, today time.Time, limit int) ([]models.Word, error)
	Students(ctx context.Context) ([]models.User, error)
	Streak(ctx context.Context, studentID int64) (int, error)
	QuizTakenOn(ctx context.Context, studentID int64, day time.Time) (bool, error)
	Dashboard(ctx context.Context, studentID int64, today time.Time) (*models.DashboardStats, error)

	// InTx runs fn in a single transaction. Returning an error rolls everything back.
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the write side used while processing results
type Tx interface {
	TopicExists(ctx context.Context, topicID int64) (bool, error)
	TopicWordsByIDs(ctx context.Context, topicID int64, ids []int64) (map[int64]models.Word, error)
	WordScores(ctx context.Context, studentID int64, wordIDs []int64) (map[int64]models.WordScore, error)
	CreateWordScores(ctx context.Context, scores []models.WordScore) error
	ApplyReviews(ctx context.Context, updates []models.ReviewUpdate) error
	QuizTakenOn(ctx context.Context, studentID int64, day time.Time) (bool, error)
	IncrementStreak(ctx context.Context, studentID int64) error
	ResetStreak(ctx context.Context, studentID int64) error
	CreateQuizResult(ctx context.Context, result *models.QuizResult) error
}
