package spaced_repetition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/wordquiz/pkg/models"
)

var today = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

func TestMaxScore(t *testing.T) {
	assert.Equal(t, len(QuizIntervals)-1, MaxScore)
	assert.Equal(t, 0, QuizIntervals[0])
}

func TestScore_CapsAtMaxScore(t *testing.T) {
	for num := 0; num <= MaxScore+2; num++ {
		ws := &models.WordScore{ConsecutiveCorrect: num}
		want := num
		if want > MaxScore {
			want = MaxScore
		}
		assert.Equal(t, want, Score(ws), "consecutive_correct=%d", num)
		assert.Equal(t, num, ws.ConsecutiveCorrect, "counter must not be capped")
	}
}

func TestSetNextReview(t *testing.T) {
	for i := range QuizIntervals {
		ws := &models.WordScore{ConsecutiveCorrect: i}
		SetNextReview(ws, today)
		assert.Equal(t, today.AddDate(0, 0, QuizIntervals[i]), ws.NextReview)
	}

	ws := &models.WordScore{ConsecutiveCorrect: MaxScore + 10}
	SetNextReview(ws, today)
	assert.Equal(t, today.AddDate(0, 0, QuizIntervals[MaxScore]), ws.NextReview)
}

func TestIsDue(t *testing.T) {
	tests := []struct {
		name       string
		nextReview time.Time
		want       bool
	}{
		{"yesterday", today.AddDate(0, 0, -1), true},
		{"today", today, true},
		{"later today", today.Add(15 * time.Hour), true},
		{"tomorrow", today.AddDate(0, 0, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := &models.WordScore{NextReview: tt.nextReview}
			assert.Equal(t, tt.want, IsDue(ws, today))
		})
	}
}

func TestNewScore(t *testing.T) {
	correct := NewScore(1, 2, true, today)
	assert.Equal(t, models.WordScore{
		WordID: 2, StudentID: 1,
		ConsecutiveCorrect: 1, TimesSeen: 1, TimesCorrect: 1,
		NextReview: today.AddDate(0, 0, 1),
	}, correct)

	wrong := NewScore(1, 2, false, today)
	assert.Equal(t, models.WordScore{WordID: 2, StudentID: 1, NextReview: today}, wrong)
}

func TestReview(t *testing.T) {
	t.Run("due and correct", func(t *testing.T) {
		ws := &models.WordScore{ConsecutiveCorrect: 2, TimesSeen: 5, TimesCorrect: 3, NextReview: today}
		assert.True(t, Review(ws, true, today))
		assert.Equal(t, 3, ws.ConsecutiveCorrect)
		assert.Equal(t, 6, ws.TimesSeen)
		assert.Equal(t, 4, ws.TimesCorrect)
		assert.Equal(t, today.AddDate(0, 0, QuizIntervals[3]), ws.NextReview)
	})

	t.Run("due and wrong", func(t *testing.T) {
		ws := &models.WordScore{ConsecutiveCorrect: 4, TimesSeen: 5, TimesCorrect: 4, NextReview: today.AddDate(0, 0, -2)}
		assert.True(t, Review(ws, false, today))
		assert.Equal(t, 0, ws.ConsecutiveCorrect)
		assert.Equal(t, 6, ws.TimesSeen)
		assert.Equal(t, 4, ws.TimesCorrect)
		assert.Equal(t, today, ws.NextReview)
	})

	t.Run("not due and wrong", func(t *testing.T) {
		ws := &models.WordScore{ConsecutiveCorrect: 4, TimesSeen: 5, TimesCorrect: 4, NextReview: today.AddDate(0, 0, 5)}
		assert.True(t, Review(ws, false, today))
		assert.Equal(t, 0, ws.ConsecutiveCorrect)
		assert.Equal(t, today, ws.NextReview)
	})

	t.Run("not due and correct is bonus practice", func(t *testing.T) {
		before := models.WordScore{ConsecutiveCorrect: 4, TimesSeen: 5, TimesCorrect: 4, NextReview: today.AddDate(0, 0, 5)}
		ws := before
		assert.False(t, Review(&ws, true, today))
		assert.Equal(t, before, ws)
	})

	t.Run("streak keeps growing past the last interval", func(t *testing.T) {
		ws := &models.WordScore{ConsecutiveCorrect: MaxScore + 3, NextReview: today}
		assert.True(t, Review(ws, true, today))
		assert.Equal(t, MaxScore+4, ws.ConsecutiveCorrect)
		assert.Equal(t, today.AddDate(0, 0, QuizIntervals[MaxScore]), ws.NextReview)
	})
}

func TestDueWordIDs(t *testing.T) {
	assert.Equal(t, []int64{1, 3, 5}, DueWordIDs([]int64{1, 2, 3, 4, 5}, []int64{4, 2, 99}))
	assert.Equal(t, []int64{}, DueWordIDs([]int64{1}, []int64{1}))
	assert.Equal(t, []int64{7, 8}, DueWordIDs([]int64{7, 8}, nil))
}

func TestDay(t *testing.T) {
	local := time.Date(2024, 3, 10, 23, 30, 0, 0, time.FixedZone("X", -2*3600))
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), Day(local))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), AddDays(time.Date(2024, 2, 29, 5, 0, 0, 0, time.UTC), 1))
}
