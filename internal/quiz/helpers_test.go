package quiz

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/example/wordquiz/pkg/models"
)

var today = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

const (
	topicID   int64 = 1
	studentID int64 = 100
	teacherID int64 = 200
)

var (
	student = Caller{ID: studentID, Role: models.RoleStudent}
	teacher = Caller{ID: teacherID, Role: models.RoleTeacher}
)

func makeWords(n int) []models.Word {
	words := make([]models.Word, 0, n)
	for i := 1; i <= n; i++ {
		words = append(words, models.Word{
			ID:     int64(i),
			Origin: fmt.Sprintf("origin-%02d", i),
			Target: fmt.Sprintf("target-%02d", i),
		})
	}
	return words
}

// newFixture returns a store with one live topic holding n words, a student and a teacher
func newFixture(n int) *memStore {
	store := newMemStore()
	store.addTopic(models.Topic{ID: topicID, Name: "Animals", AvailableFrom: today.AddDate(0, 0, -30)}, makeWords(n)...)
	store.users[studentID] = models.User{ID: studentID, Username: "sam", Role: models.RoleStudent}
	store.users[teacherID] = models.User{ID: teacherID, Username: "tess", Role: models.RoleTeacher}
	return store
}

func newTestService(store Store, seed int64) *Service {
	return NewService(store, DefaultConfig(),
		WithRand(rand.New(rand.NewSource(seed))),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}
