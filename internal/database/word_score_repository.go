package database

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/wordquiz/internal/spaced_repetition"
	"github.com/example/wordquiz/pkg/models"
)

// WordScoreRepository handles database operations for spaced-repetition scores
type WordScoreRepository struct {
	db sqlx.ExtContext
}

// NewWordScoreRepository creates a new repository instance
func NewWordScoreRepository(db sqlx.ExtContext) *WordScoreRepository {
	return &WordScoreRepository{db: db}
}

// wordScoreRow is the insert shape of a WordScore with the date already formatted
type wordScoreRow struct {
	WordID             int64  `db:"word_id"`
	StudentID          int64  `db:"student_id"`
	ConsecutiveCorrect int    `db:"consecutive_correct"`
	TimesSeen          int    `db:"times_seen"`
	TimesCorrect       int    `db:"times_correct"`
	NextReview         string `db:"next_review"`
}

// MapForStudent returns the student's scores for the given words, keyed by word id
func (r *WordScoreRepository) MapForStudent(ctx context.Context, studentID int64, wordIDs []int64) (map[int64]models.WordScore, error) {
	result := make(map[int64]models.WordScore, len(wordIDs))
	if len(wordIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, word_id, student_id, consecutive_correct, times_seen, times_correct, next_review
		FROM word_scores
		WHERE student_id = ? AND word_id IN (?)`, studentID, wordIDs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build word scores query")
	}

	var scores []models.WordScore
	if err := sqlx.SelectContext(ctx, r.db, &scores, r.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "failed to load word scores")
	}
	for _, ws := range scores {
		result[ws.WordID] = ws
	}
	return result, nil
}

// CreateBatch inserts all scores with a single statement
func (r *WordScoreRepository) CreateBatch(ctx context.Context, scores []models.WordScore) error {
	if len(scores) == 0 {
		return nil
	}

	rows := make([]wordScoreRow, 0, len(scores))
	for _, ws := range scores {
		rows = append(rows, wordScoreRow{
			WordID:             ws.WordID,
			StudentID:          ws.StudentID,
			ConsecutiveCorrect: ws.ConsecutiveCorrect,
			TimesSeen:          ws.TimesSeen,
			TimesCorrect:       ws.TimesCorrect,
			NextReview:         sqlDate(ws.NextReview),
		})
	}

	query := `
		INSERT INTO word_scores (word_id, student_id, consecutive_correct, times_seen, times_correct, next_review)
		VALUES (:word_id, :student_id, :consecutive_correct, :times_seen, :times_correct, :next_review)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, rows); err != nil {
		return errors.Wrap(err, "failed to create word scores")
	}
	return nil
}

// ApplyReviews writes counted answers. Counters are incremented in the database so
// concurrent submissions never lose an update.
func (r *WordScoreRepository) ApplyReviews(ctx context.Context, updates []models.ReviewUpdate) error {
	correctQuery := r.db.Rebind(`
		UPDATE word_scores
		SET times_seen = times_seen + 1,
			consecutive_correct = consecutive_correct + 1,
			times_correct = times_correct + 1,
			next_review = ?
		WHERE id = ?`)
	incorrectQuery := r.db.Rebind(`
		UPDATE word_scores
		SET times_seen = times_seen + 1,
			consecutive_correct = 0,
			next_review = ?
		WHERE id = ?`)

	for _, u := range updates {
		query := incorrectQuery
		if u.Correct {
			query = correctQuery
		}
		res, err := r.db.ExecContext(ctx, query, sqlDate(u.NextReview), u.ID)
		if err != nil {
			return errors.Wrapf(err, "failed to update word score %d", u.ID)
		}
		if err := expectAffected(res); err != nil {
			return errors.Wrapf(err, "word score %d", u.ID)
		}
	}
	return nil
}

// CountMastered returns how many words the student has answered correctly enough times in a row
// to reach the longest review interval
func (r *WordScoreRepository) CountMastered(ctx context.Context, studentID int64) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.db, &count,
		r.db.Rebind("SELECT COUNT(*) FROM word_scores WHERE student_id = ? AND consecutive_correct >= ?"),
		studentID, spaced_repetition.MaxScore)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count mastered words")
	}
	return count, nil
}
