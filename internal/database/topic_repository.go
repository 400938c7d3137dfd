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

const topicSelect = `
	SELECT t.id, t.name, t.long_desc, t.short_desc, t.is_hidden, t.available_from, t.created_at,
		(SELECT COUNT(*) FROM topic_words tw WHERE tw.topic_id = t.id) AS word_count
	FROM topics t`

// TopicRepository handles database operations for topics
type TopicRepository struct {
	db sqlx.ExtContext
}

// NewTopicRepository creates a new repository instance.
// db can be either a *sqlx.DB or a *sqlx.Tx.
func NewTopicRepository(db sqlx.ExtContext) *TopicRepository {
	return &TopicRepository{db: db}
}

// GetByID retrieves a topic regardless of its visibility
func (r *TopicRepository) GetByID(ctx context.Context, id int64) (*models.Topic, error) {
	return r.get(ctx, topicSelect+" WHERE t.id = ?", id)
}

// GetVisible retrieves a topic that students may open on the given day
func (r *TopicRepository) GetVisible(ctx context.Context, id int64, today time.Time) (*models.Topic, error) {
	return r.get(ctx, topicSelect+" WHERE t.id = ? AND t.is_hidden = ? AND t.available_from <= ?",
		id, false, sqlDate(today))
}

// GetByName retrieves a topic by its unique name
func (r *TopicRepository) GetByName(ctx context.Context, name string) (*models.Topic, error) {
	return r.get(ctx, topicSelect+" WHERE t.name = ?", name)
}

func (r *TopicRepository) get(ctx context.Context, query string, args ...interface{}) (*models.Topic, error) {
	var topic models.Topic
	err := sqlx.GetContext(ctx, r.db, &topic, r.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get topic")
	}
	return &topic, nil
}

// Exists reports whether a topic with the given id exists
func (r *TopicRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int
	err := sqlx.GetContext(ctx, r.db, &count, r.db.Rebind("SELECT COUNT(*) FROM topics WHERE id = ?"), id)
	if err != nil {
		return false, errors.Wrap(err, "failed to check topic")
	}
	return count > 0, nil
}

// List returns every topic ordered by name
func (r *TopicRepository) List(ctx context.Context) ([]models.Topic, error) {
	topics := []models.Topic{}
	if err := sqlx.SelectContext(ctx, r.db, &topics, topicSelect+" ORDER BY t.name"); err != nil {
		return nil, errors.Wrap(err, "failed to list topics")
	}
	return topics, nil
}

// ListLive returns topics with enough words that are neither hidden nor scheduled for later
func (r *TopicRepository) ListLive(ctx context.Context, today time.Time) ([]models.Topic, error) {
	query := topicSelect + `
		WHERE t.is_hidden = ? AND t.available_from <= ?
			AND (SELECT COUNT(*) FROM topic_words tw WHERE tw.topic_id = t.id) >= ?
		ORDER BY t.name`

	topics := []models.Topic{}
	err := sqlx.SelectContext(ctx, r.db, &topics, r.db.Rebind(query), false, sqlDate(today), models.MinTopicWords)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list live topics")
	}
	return topics, nil
}

// Create inserts a new topic and fills in its id
func (r *TopicRepository) Create(ctx context.Context, topic *models.Topic) error {
	if topic.ShortDesc == "" {
		topic.ShortDesc = models.DefaultShortDesc
	}
	if topic.AvailableFrom.IsZero() {
		topic.AvailableFrom = spaced_repetition.Day(time.Now())
	}

	query := `
		INSERT INTO topics (name, long_desc, short_desc, is_hidden, available_from)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(query),
		topic.Name, topic.LongDesc, topic.ShortDesc, topic.IsHidden, sqlDate(topic.AvailableFrom),
	).Scan(&topic.ID)
	if err != nil {
		return errors.Wrap(err, "failed to create topic")
	}
	return nil
}

// Update saves the editable fields of a topic
func (r *TopicRepository) Update(ctx context.Context, topic *models.Topic) error {
	if topic.ShortDesc == "" {
		topic.ShortDesc = models.DefaultShortDesc
	}
	query := `
		UPDATE topics
		SET name = ?, long_desc = ?, short_desc = ?, is_hidden = ?, available_from = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		topic.Name, topic.LongDesc, topic.ShortDesc, topic.IsHidden, sqlDate(topic.AvailableFrom), topic.ID)
	if err != nil {
		return errors.Wrap(err, "failed to update topic")
	}
	return expectAffected(res)
}

// Delete removes a topic; its word links and quiz results go with it
func (r *TopicRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM topics WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "failed to delete topic")
	}
	return expectAffected(res)
}

// AddWord links a word to a topic. Linking twice is a no-op.
func (r *TopicRepository) AddWord(ctx context.Context, topicID, wordID int64) (bool, error) {
	query := "INSERT INTO topic_words (topic_id, word_id) VALUES (?, ?) ON CONFLICT DO NOTHING"
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), topicID, wordID)
	if err != nil {
		return false, errors.Wrap(err, "failed to add word to topic")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "failed to add word to topic")
	}
	return n > 0, nil
}

// RemoveWord unlinks a word from a topic
func (r *TopicRepository) RemoveWord(ctx context.Context, topicID, wordID int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM topic_words WHERE topic_id = ? AND word_id = ?"),
		topicID, wordID)
	if err != nil {
		return errors.Wrap(err, "failed to remove word from topic")
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
