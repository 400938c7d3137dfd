package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/wordquiz/pkg/models"
)

// QuizResultRepository handles database operations for quiz results
type QuizResultRepository struct {
	db sqlx.ExtContext
}

// NewQuizResultRepository creates a new repository instance
func NewQuizResultRepository(db sqlx.ExtContext) *QuizResultRepository {
	return &QuizResultRepository{db: db}
}

// Create inserts a quiz result and fills in its id
func (r *QuizResultRepository) Create(ctx context.Context, result *models.QuizResult) error {
	query := `
		INSERT INTO quiz_results (student_id, topic_id, date_created, correct_answers, incorrect_answers, points)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(query),
		result.StudentID, result.TopicID, sqlDate(result.DateCreated),
		result.CorrectAnswers, result.IncorrectAnswers, result.Points,
	).Scan(&result.ID)
	if err != nil {
		return errors.Wrap(err, "failed to create quiz result")
	}
	return nil
}

// ExistsOn reports whether the student logged at least one quiz on the given day
func (r *QuizResultRepository) ExistsOn(ctx context.Context, studentID int64, day time.Time) (bool, error) {
	var count int
	err := sqlx.GetContext(ctx, r.db, &count,
		r.db.Rebind("SELECT COUNT(*) FROM quiz_results WHERE student_id = ? AND date_created = ?"),
		studentID, sqlDate(day))
	if err != nil {
		return false, errors.Wrap(err, "failed to check quiz results")
	}
	return count > 0, nil
}

// ListByStudent returns the student's most recent quiz results, newest first
func (r *QuizResultRepository) ListByStudent(ctx context.Context, studentID int64, limit int) ([]models.QuizResult, error) {
	query := `
		SELECT id, student_id, topic_id, date_created, correct_answers, incorrect_answers, points
		FROM quiz_results
		WHERE student_id = ?
		ORDER BY date_created DESC, id DESC
		LIMIT ?`

	results := []models.QuizResult{}
	if err := sqlx.SelectContext(ctx, r.db, &results, r.db.Rebind(query), studentID, limit); err != nil {
		return nil, errors.Wrap(err, "failed to list quiz results")
	}
	return results, nil
}
