package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/wordquiz/pkg/models"
)

// StatisticsRepository aggregates progress figures for the dashboard
type StatisticsRepository struct {
	db     sqlx.ExtContext
	words  *WordRepository
	scores *WordScoreRepository
}

// NewStatisticsRepository creates a new repository instance
func NewStatisticsRepository(db sqlx.ExtContext) *StatisticsRepository {
	return &StatisticsRepository{
		db:     db,
		words:  NewWordRepository(db),
		scores: NewWordScoreRepository(db),
	}
}

// Dashboard returns the student's due, mastered and quiz totals. Streak is left to the caller
// because only the quiz service knows whether the stored counter is still current.
func (r *StatisticsRepository) Dashboard(ctx context.Context, studentID int64, today time.Time) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	err := sqlx.GetContext(ctx, r.db, &stats, r.db.Rebind(`
		SELECT COUNT(*) AS quizzes_taken, COALESCE(SUM(points), 0) AS total_points
		FROM quiz_results
		WHERE student_id = ?`), studentID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get quiz totals")
	}

	due, err := r.words.DueAcrossLiveTopics(ctx, studentID, today)
	if err != nil {
		return nil, err
	}
	stats.WordsDueRevision = len(due)

	if stats.WordsMastered, err = r.scores.CountMastered(ctx, studentID); err != nil {
		return nil, err
	}
	return &stats, nil
}
