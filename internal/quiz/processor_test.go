package quiz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/wordquiz/internal/spaced_repetition"
	"github.com/example/wordquiz/pkg/models"
)

func TestProcessResults_NewWords(t *testing.T) {
	store := newFixture(4)
	svc := newTestService(store, 1)

	summary, err := svc.ProcessResults(context.Background(), map[int64]bool{1: true, 2: false}, studentID, topicID, today)
	require.NoError(t, err)

	ws, ok := store.score(1, studentID)
	require.True(t, ok)
	assert.Equal(t, 1, ws.ConsecutiveCorrect)
	assert.Equal(t, 1, ws.TimesSeen)
	assert.Equal(t, 1, ws.TimesCorrect)
	assert.Equal(t, today.AddDate(0, 0, 1), ws.NextReview)

	ws, ok = store.score(2, studentID)
	require.True(t, ok)
	assert.Equal(t, 0, ws.ConsecutiveCorrect)
	assert.Equal(t, 0, ws.TimesSeen)
	assert.Equal(t, 0, ws.TimesCorrect)
	assert.Equal(t, today, ws.NextReview)

	assert.Equal(t, &Summary{
		Words: []WordResult{
			{WordID: 1, Origin: "origin-01", Target: "target-01", IsCorrect: true},
			{WordID: 2, Origin: "origin-02", Target: "target-02", IsCorrect: false},
		},
		Correct: 1,
		Total:   2,
		Points:  DefaultConfig().CorrectAnswerPts,
	}, summary)
}

func TestProcessResults_ExistingScores(t *testing.T) {
	tests := []struct {
		name    string
		before  models.WordScore
		correct bool
		want    models.WordScore
	}{
		{
			name:    "due and correct",
			before:  models.WordScore{ConsecutiveCorrect: 2, TimesSeen: 4, TimesCorrect: 3, NextReview: today},
			correct: true,
			want: models.WordScore{ConsecutiveCorrect: 3, TimesSeen: 5, TimesCorrect: 4,
				NextReview: today.AddDate(0, 0, spaced_repetition.QuizIntervals[3])},
		},
		{
			name:    "overdue and wrong",
			before:  models.WordScore{ConsecutiveCorrect: 2, TimesSeen: 4, TimesCorrect: 3, NextReview: today.AddDate(0, 0, -3)},
			correct: false,
			want:    models.WordScore{ConsecutiveCorrect: 0, TimesSeen: 5, TimesCorrect: 3, NextReview: today},
		},
		{
			name:    "not due and wrong",
			before:  models.WordScore{ConsecutiveCorrect: 5, TimesSeen: 9, TimesCorrect: 8, NextReview: today.AddDate(0, 0, 10)},
			correct: false,
			want:    models.WordScore{ConsecutiveCorrect: 0, TimesSeen: 10, TimesCorrect: 8, NextReview: today},
		},
		{
			name:    "not due and correct",
			before:  models.WordScore{ConsecutiveCorrect: 5, TimesSeen: 9, TimesCorrect: 8, NextReview: today.AddDate(0, 0, 10)},
			correct: true,
			want:    models.WordScore{ConsecutiveCorrect: 5, TimesSeen: 9, TimesCorrect: 8, NextReview: today.AddDate(0, 0, 10)},
		},
		{
			name:    "streak past the last interval",
			before:  models.WordScore{ConsecutiveCorrect: 40, TimesSeen: 40, TimesCorrect: 40, NextReview: today},
			correct: true,
			want: models.WordScore{ConsecutiveCorrect: 41, TimesSeen: 41, TimesCorrect: 41,
				NextReview: today.AddDate(0, 0, spaced_repetition.QuizIntervals[spaced_repetition.MaxScore])},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFixture(4)
			tt.before.WordID, tt.before.StudentID = 3, studentID
			store.addScore(tt.before)

			svc := newTestService(store, 1)
			_, err := svc.ProcessResults(context.Background(), map[int64]bool{3: tt.correct}, studentID, topicID, today)
			require.NoError(t, err)

			got, ok := store.score(3, studentID)
			require.True(t, ok)
			tt.want.ID, tt.want.WordID, tt.want.StudentID = got.ID, 3, studentID
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProcessResults_LogsQuizResult(t *testing.T) {
	store := newFixture(5)
	svc := newTestService(store, 1)

	_, err := svc.ProcessResults(context.Background(), map[int64]bool{1: true, 2: true, 3: false, 4: true}, studentID, topicID, today)
	require.NoError(t, err)

	require.Len(t, store.results, 1)
	r := store.results[0]
	assert.Equal(t, studentID, r.StudentID)
	assert.Equal(t, topicID, r.TopicID)
	assert.Equal(t, today, r.DateCreated)
	assert.Equal(t, 3, r.CorrectAnswers)
	assert.Equal(t, 1, r.IncorrectAnswers)
	assert.Equal(t, 3*DefaultConfig().CorrectAnswerPts, r.Points)
}

func TestProcessResults_Validation(t *testing.T) {
	tests := []struct {
		name    string
		results map[int64]bool
		topicID int64
		wantErr error
	}{
		{"empty", map[int64]bool{}, topicID, ErrInvalidResults},
		{"unknown word", map[int64]bool{1: true, 99: true}, topicID, ErrInvalidResults},
		{"word from another topic", map[int64]bool{50: true}, topicID, ErrInvalidResults},
		{"unknown topic", map[int64]bool{1: true}, 77, ErrTopicNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFixture(4)
			store.addTopic(models.Topic{ID: 2, Name: "Other"}, models.Word{ID: 50, Origin: "x", Target: "y"})
			svc := newTestService(store, 1)

			_, err := svc.ProcessResults(context.Background(), tt.results, studentID, tt.topicID, today)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, store.scores)
			assert.Empty(t, store.results)
		})
	}
}

func TestProcessResults_RollsBackOnFailure(t *testing.T) {
	store := newFixture(4)
	store.addScore(models.WordScore{WordID: 2, StudentID: studentID, ConsecutiveCorrect: 1, TimesSeen: 1, TimesCorrect: 1, NextReview: today})
	before, _ := store.score(2, studentID)
	store.failCreateResult = true

	svc := newTestService(store, 1)
	_, err := svc.ProcessResults(context.Background(), map[int64]bool{1: true, 2: true}, studentID, topicID, today)
	require.Error(t, err)

	_, created := store.score(1, studentID)
	assert.False(t, created)
	after, _ := store.score(2, studentID)
	assert.Equal(t, before, after)
	assert.Equal(t, 0, store.users[studentID].Streak)
}

func TestProcessResults_RepeatSubmissionIsIndependent(t *testing.T) {
	store := newFixture(4)
	svc := newTestService(store, 1)
	results := map[int64]bool{1: true}

	_, err := svc.ProcessResults(context.Background(), results, studentID, topicID, today)
	require.NoError(t, err)
	_, err = svc.ProcessResults(context.Background(), results, studentID, topicID, today)
	require.NoError(t, err)

	// Second correct answer is bonus practice: the word is not due until tomorrow
	ws, _ := store.score(1, studentID)
	assert.Equal(t, 1, ws.ConsecutiveCorrect)
	assert.Equal(t, 1, ws.TimesSeen)
	assert.Len(t, store.results, 2)
}

func TestParseResults(t *testing.T) {
	got, err := ParseResults(map[string]bool{"1": true, "12": false})
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{1: true, 12: false}, got)

	for _, bad := range []string{"abc", "", "-3", "0", "1.5"} {
		_, err := ParseResults(map[string]bool{bad: true})
		assert.ErrorIs(t, err, ErrInvalidResults, "key %q", bad)
	}
}
