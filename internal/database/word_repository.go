package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/wordquiz/internal/spaced_repetition"
	"github.com/example/wordquiz/pkg/models"
)

// WordRepository handles database operations for words
type WordRepository struct {
	db sqlx.ExtContext
}

// NewWordRepository creates a new repository instance
func NewWordRepository(db sqlx.ExtContext) *WordRepository {
	return &WordRepository{db: db}
}

// GetByID retrieves a word by its ID
func (r *WordRepository) GetByID(ctx context.Context, id int64) (*models.Word, error) {
	return r.get(ctx, "SELECT id, origin, target, created_at FROM words WHERE id = ?", id)
}

// GetByOrigin retrieves a word by its origin text
func (r *WordRepository) GetByOrigin(ctx context.Context, origin string) (*models.Word, error) {
	return r.get(ctx, "SELECT id, origin, target, created_at FROM words WHERE origin = ?", origin)
}

func (r *WordRepository) get(ctx context.Context, query string, args ...interface{}) (*models.Word, error) {
	var word models.Word
	err := sqlx.GetContext(ctx, r.db, &word, r.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get word")
	}
	return &word, nil
}

// Create inserts a new word and fills in its id
func (r *WordRepository) Create(ctx context.Context, word *models.Word) error {
	err := r.db.QueryRowxContext(ctx, r.db.Rebind("INSERT INTO words (origin, target) VALUES (?, ?) RETURNING id"),
		word.Origin, word.Target).Scan(&word.ID)
	if err != nil {
		return errors.Wrap(err, "failed to create word")
	}
	return nil
}

// Update saves both sides of a word
func (r *WordRepository) Update(ctx context.Context, word *models.Word) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("UPDATE words SET origin = ?, target = ? WHERE id = ?"),
		word.Origin, word.Target, word.ID)
	if err != nil {
		return errors.Wrap(err, "failed to update word")
	}
	return expectAffected(res)
}

// Delete removes a word together with its scores and topic links
func (r *WordRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM words WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "failed to delete word")
	}
	return expectAffected(res)
}

// ListByTopic returns up to limit words of a topic ordered by origin; limit <= 0 means all
func (r *WordRepository) ListByTopic(ctx context.Context, topicID int64, limit int) ([]models.Word, error) {
	query := `
		SELECT w.id, w.origin, w.target, w.created_at
		FROM words w
		JOIN topic_words tw ON tw.word_id = w.id
		WHERE tw.topic_id = ?
		ORDER BY w.origin`
	args := []interface{}{topicID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	words := []models.Word{}
	if err := sqlx.SelectContext(ctx, r.db, &words, r.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "failed to list topic words")
	}
	return words, nil
}

// IDsByTopic returns the ids of a topic's words ordered by origin
func (r *WordRepository) IDsByTopic(ctx context.Context, topicID int64) ([]int64, error) {
	query := `
		SELECT w.id
		FROM words w
		JOIN topic_words tw ON tw.word_id = w.id
		WHERE tw.topic_id = ?
		ORDER BY w.origin`

	var ids []int64
	if err := sqlx.SelectContext(ctx, r.db, &ids, r.db.Rebind(query), topicID); err != nil {
		return nil, errors.Wrap(err, "failed to list topic word ids")
	}
	return ids, nil
}

// ListByIDs returns the words with the given ids ordered by origin. Unknown ids are ignored.
func (r *WordRepository) ListByIDs(ctx context.Context, ids []int64) ([]models.Word, error) {
	words := []models.Word{}
	if len(ids) == 0 {
		return words, nil
	}

	query, args, err := sqlx.In("SELECT id, origin, target, created_at FROM words WHERE id IN (?) ORDER BY origin", ids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build words query")
	}
	if err := sqlx.SelectContext(ctx, r.db, &words, r.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "failed to list words")
	}
	return words, nil
}

// MapByIDsInTopic returns the words among ids that belong to the topic, keyed by id
func (r *WordRepository) MapByIDsInTopic(ctx context.Context, topicID int64, ids []int64) (map[int64]models.Word, error) {
	result := make(map[int64]models.Word, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`
		SELECT w.id, w.origin, w.target, w.created_at
		FROM words w
		JOIN topic_words tw ON tw.word_id = w.id
		WHERE tw.topic_id = ? AND w.id IN (?)`, topicID, ids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build words query")
	}

	var words []models.Word
	if err := sqlx.SelectContext(ctx, r.db, &words, r.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "failed to load quiz words")
	}
	for _, w := range words {
		result[w.ID] = w
	}
	return result, nil
}

// DueRevision returns up to limit words of a topic the student should revise today, ordered by origin.
// A word is due unless the student has a score for it whose next review lies after today;
// words the student has never seen are due. limit <= 0 means all.
func (r *WordRepository) DueRevision(ctx context.Context, topicID, studentID int64, today time.Time, limit int) ([]models.Word, error) {
	all, err := r.IDsByTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ws.word_id
		FROM word_scores ws
		JOIN topic_words tw ON tw.word_id = ws.word_id
		WHERE tw.topic_id = ? AND ws.student_id = ? AND ws.next_review > ?`
	var notDue []int64
	if err := sqlx.SelectContext(ctx, r.db, &notDue, r.db.Rebind(query), topicID, studentID, sqlDate(today)); err != nil {
		return nil, errors.Wrap(err, "failed to list scheduled words")
	}

	due := spaced_repetition.DueWordIDs(all, notDue)
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return r.ListByIDs(ctx, due)
}

// DueAcrossLiveTopics returns the ids of all words in live topics the student should revise today
func (r *WordRepository) DueAcrossLiveTopics(ctx context.Context, studentID int64, today time.Time) ([]int64, error) {
	query := `
		SELECT DISTINCT tw.word_id
		FROM topic_words tw
		JOIN topics t ON t.id = tw.topic_id
		WHERE t.is_hidden = ? AND t.available_from <= ?
			AND (SELECT COUNT(*) FROM topic_words c WHERE c.topic_id = t.id) >= ?
		ORDER BY tw.word_id`
	var all []int64
	err := sqlx.SelectContext(ctx, r.db, &all, r.db.Rebind(query), false, sqlDate(today), models.MinTopicWords)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list live topic words")
	}

	var notDue []int64
	err = sqlx.SelectContext(ctx, r.db, &notDue,
		r.db.Rebind("SELECT word_id FROM word_scores WHERE student_id = ? AND next_review > ?"),
		studentID, sqlDate(today))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list scheduled words")
	}

	return spaced_repetition.DueWordIDs(all, notDue), nil
}
