package quiz

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/example/wordquiz/internal/spaced_repetition"
	"github.com/example/wordquiz/pkg/models"
)

type scoreKey struct {
	wordID, studentID int64
}

// memStore is an in-memory Store and Tx. InTx restores a snapshot when fn fails.
type memStore struct {
	topics      map[int64]models.Topic
	words       map[int64]models.Word
	topicWords  map[int64][]int64
	users       map[int64]models.User
	scores      map[scoreKey]models.WordScore
	results     []models.QuizResult
	nextScoreID int64

	failCreateResult bool
}

func newMemStore() *memStore {
	return &memStore{
		topics:     map[int64]models.Topic{},
		words:      map[int64]models.Word{},
		topicWords: map[int64][]int64{},
		users:      map[int64]models.User{},
		scores:     map[scoreKey]models.WordScore{},
	}
}

func (m *memStore) addTopic(t models.Topic, words ...models.Word) {
	m.topics[t.ID] = t
	for _, w := range words {
		m.words[w.ID] = w
		m.topicWords[t.ID] = append(m.topicWords[t.ID], w.ID)
	}
}

func (m *memStore) addScore(ws models.WordScore) {
	m.nextScoreID++
	ws.ID = m.nextScoreID
	m.scores[scoreKey{ws.WordID, ws.StudentID}] = ws
}

func (m *memStore) score(wordID, studentID int64) (models.WordScore, bool) {
	ws, ok := m.scores[scoreKey{wordID, studentID}]
	return ws, ok
}

func (m *memStore) withCount(t models.Topic) models.Topic {
	t.WordCount = len(m.topicWords[t.ID])
	return t
}

func (m *memStore) Topic(_ context.Context, topicID int64, includeHidden bool, today time.Time) (*models.Topic, error) {
	t, ok := m.topics[topicID]
	if !ok {
		return nil, models.ErrNotFound
	}
	if !includeHidden && (t.IsHidden || t.AvailableFrom.After(today)) {
		return nil, models.ErrNotFound
	}
	t = m.withCount(t)
	return &t, nil
}

func (m *memStore) Topics(_ context.Context, includeHidden bool, today time.Time) ([]models.Topic, error) {
	var out []models.Topic
	for _, t := range m.topics {
		t = m.withCount(t)
		if includeHidden || t.IsLive(today) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) sortedTopicWords(topicID int64) []models.Word {
	var words []models.Word
	for _, id := range m.topicWords[topicID] {
		words = append(words, m.words[id])
	}
	sort.Slice(words, func(i, j int) bool { return words[i].Origin < words[j].Origin })
	return words
}

func (m *memStore) TopicWords(_ context.Context, topicID int64, limit int) ([]models.Word, error) {
	words := m.sortedTopicWords(topicID)
	if limit > 0 && len(words) > limit {
		words = words[:limit]
	}
	return words, nil
}

func (m *memStore) WordsDueRevision(_ context.Context, topicID, studentID int64, today time.Time, limit int) ([]models.Word, error) {
	var all, notDue []int64
	for _, w := range m.sortedTopicWords(topicID) {
		all = append(all, w.ID)
		if ws, ok := m.score(w.ID, studentID); ok && ws.NextReview.After(today) {
			notDue = append(notDue, w.ID)
		}
	}
	due := spaced_repetition.DueWordIDs(all, notDue)
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	words := make([]models.Word, 0, len(due))
	for _, id := range due {
		words = append(words, m.words[id])
	}
	return words, nil
}

func (m *memStore) Students(context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range m.users {
		if u.Role == models.RoleStudent {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) Streak(_ context.Context, studentID int64) (int, error) {
	u, ok := m.users[studentID]
	if !ok {
		return 0, models.ErrNotFound
	}
	return u.Streak, nil
}

func (m *memStore) QuizTakenOn(_ context.Context, studentID int64, day time.Time) (bool, error) {
	for _, r := range m.results {
		if r.StudentID == studentID && r.DateCreated.Equal(day) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Dashboard(_ context.Context, studentID int64, _ time.Time) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	for _, r := range m.results {
		if r.StudentID == studentID {
			stats.QuizzesTaken++
			stats.TotalPoints += r.Points
		}
	}
	for _, ws := range m.scores {
		if ws.StudentID == studentID && spaced_repetition.IsMastered(&ws) {
			stats.WordsMastered++
		}
	}
	return stats, nil
}

func (m *memStore) InTx(_ context.Context, fn func(tx Tx) error) error {
	scores := make(map[scoreKey]models.WordScore, len(m.scores))
	for k, v := range m.scores {
		scores[k] = v
	}
	users := make(map[int64]models.User, len(m.users))
	for k, v := range m.users {
		users[k] = v
	}
	results := append([]models.QuizResult(nil), m.results...)
	nextID := m.nextScoreID

	if err := fn(m); err != nil {
		m.scores, m.users, m.results, m.nextScoreID = scores, users, results, nextID
		return err
	}
	return nil
}

func (m *memStore) TopicExists(_ context.Context, topicID int64) (bool, error) {
	_, ok := m.topics[topicID]
	return ok, nil
}

func (m *memStore) TopicWordsByIDs(_ context.Context, topicID int64, ids []int64) (map[int64]models.Word, error) {
	inTopic := map[int64]bool{}
	for _, id := range m.topicWords[topicID] {
		inTopic[id] = true
	}
	out := map[int64]models.Word{}
	for _, id := range ids {
		if inTopic[id] {
			out[id] = m.words[id]
		}
	}
	return out, nil
}

func (m *memStore) WordScores(_ context.Context, studentID int64, wordIDs []int64) (map[int64]models.WordScore, error) {
	out := map[int64]models.WordScore{}
	for _, id := range wordIDs {
		if ws, ok := m.score(id, studentID); ok {
			out[id] = ws
		}
	}
	return out, nil
}

func (m *memStore) CreateWordScores(_ context.Context, scores []models.WordScore) error {
	for _, ws := range scores {
		if _, ok := m.score(ws.WordID, ws.StudentID); ok {
			return errors.New("unique constraint violated")
		}
		m.addScore(ws)
	}
	return nil
}

func (m *memStore) ApplyReviews(_ context.Context, updates []models.ReviewUpdate) error {
	for _, u := range updates {
		found := false
		for k, ws := range m.scores {
			if ws.ID != u.ID {
				continue
			}
			found = true
			ws.TimesSeen++
			if u.Correct {
				ws.ConsecutiveCorrect++
				ws.TimesCorrect++
			} else {
				ws.ConsecutiveCorrect = 0
			}
			ws.NextReview = u.NextReview
			m.scores[k] = ws
		}
		if !found {
			return models.ErrNotFound
		}
	}
	return nil
}

func (m *memStore) IncrementStreak(_ context.Context, studentID int64) error {
	u, ok := m.users[studentID]
	if !ok {
		return models.ErrNotFound
	}
	u.Streak++
	m.users[studentID] = u
	return nil
}

func (m *memStore) ResetStreak(_ context.Context, studentID int64) error {
	u, ok := m.users[studentID]
	if !ok {
		return models.ErrNotFound
	}
	u.Streak = 1
	m.users[studentID] = u
	return nil
}

func (m *memStore) CreateQuizResult(_ context.Context, result *models.QuizResult) error {
	if m.failCreateResult {
		return errors.New("disk full")
	}
	result.ID = int64(len(m.results) + 1)
	m.results = append(m.results, *result)
	return nil
}
