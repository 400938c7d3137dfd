package spaced_repetition

import (
	"time"

	"github.com/example/wordquiz/pkg/models"
)

// QuizIntervals maps a word's score to the number of days until it is due again
var QuizIntervals = []int{0, 1, 3, 7, 14, 30, 60}

// MaxScore is the highest score a word can reach; longer streaks reuse the last interval
var MaxScore = len(QuizIntervals) - 1

// Day truncates t to its UTC calendar day
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays shifts a calendar day by n days
func AddDays(day time.Time, n int) time.Time {
	return Day(day).AddDate(0, 0, n)
}

// Score returns the interval index for ws. The stored counter itself is never capped.
func Score(ws *models.WordScore) int {
	if ws.ConsecutiveCorrect < 0 {
		return 0
	}
	if ws.ConsecutiveCorrect > MaxScore {
		return MaxScore
	}
	return ws.ConsecutiveCorrect
}

// SetNextReview schedules ws relative to today using its current score.
// Call it after ConsecutiveCorrect has been bumped for the answer being processed.
func SetNextReview(ws *models.WordScore, today time.Time) {
	ws.NextReview = AddDays(today, QuizIntervals[Score(ws)])
}

// IsDue reports whether ws should be revised on the given day
func IsDue(ws *models.WordScore, today time.Time) bool {
	return !Day(ws.NextReview).After(Day(today))
}

// IsMastered reports whether ws has reached the longest interval
func IsMastered(ws *models.WordScore) bool {
	return ws.ConsecutiveCorrect >= MaxScore
}

// NewScore builds the record for a student's first answer to a word
func NewScore(studentID, wordID int64, correct bool, today time.Time) models.WordScore {
	ws := models.WordScore{
		WordID:     wordID,
		StudentID:  studentID,
		NextReview: Day(today),
	}
	if correct {
		ws.ConsecutiveCorrect = 1
		ws.TimesSeen = 1
		ws.TimesCorrect = 1
		ws.NextReview = AddDays(today, 1)
	}
	return ws
}

// Review applies an answer to an existing record and reports whether it counted.
// A correct answer to a word that is not yet due is bonus practice and leaves ws untouched.
func Review(ws *models.WordScore, correct bool, today time.Time) bool {
	if correct && !IsDue(ws, today) {
		return false
	}

	ws.TimesSeen++
	if correct {
		ws.ConsecutiveCorrect++
		ws.TimesCorrect++
		SetNextReview(ws, today)
	} else {
		ws.ConsecutiveCorrect = 0
		ws.NextReview = Day(today)
	}
	return true
}

// DueWordIDs returns the ids in all that are not in notDue, keeping the order of all
func DueWordIDs(all, notDue []int64) []int64 {
	skip := make(map[int64]struct{}, len(notDue))
	for _, id := range notDue {
		skip[id] = struct{}{}
	}

	due := make([]int64, 0, len(all))
	for _, id := range all {
		if _, ok := skip[id]; ok {
			continue
		}
		due = append(due, id)
	}
	return due
}
