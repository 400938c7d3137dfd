package quiz

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulator_Run(t *testing.T) {
	store := newFixture(8)
	svc := newTestService(store, 1)
	sim := NewSimulator(svc, rand.New(rand.NewSource(3)))

	report, err := sim.Run(context.Background(), 5, today)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Students, "teachers are skipped")
	assert.Equal(t, 5, report.Days)
	assert.Equal(t, len(store.results), report.Quizzes)
	for _, r := range store.results {
		assert.Equal(t, studentID, r.StudentID)
		assert.False(t, r.DateCreated.After(today))
		assert.False(t, r.DateCreated.Before(today.AddDate(0, 0, -5)))
	}
	for _, ws := range store.scores {
		assert.LessOrEqual(t, ws.TimesCorrect, ws.TimesSeen)
	}
}

func TestSimulator_QuizzesTodayIsBounded(t *testing.T) {
	sim := NewSimulator(newTestService(newMemStore(), 1), rand.New(rand.NewSource(9)))
	for i := 0; i < 500; i++ {
		n := sim.quizzesToday()
		assert.GreaterOrEqual(t, n, 0)
		assert.LessOrEqual(t, n, MaxQuizzesPerDay)
	}
}
