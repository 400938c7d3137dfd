package quiz

import (
	"context"
	"time"

	"github.com/example/wordquiz/internal/spaced_repetition"
)

// updateStreak counts today towards the student's streak. Only the first quiz of a
// day changes it: a quiz yesterday extends the streak, anything older starts over at 1.
func updateStreak(ctx context.Context, tx Tx, studentID int64, today time.Time) error {
	takenToday, err := tx.QuizTakenOn(ctx, studentID, today)
	if err != nil {
		return err
	}
	if takenToday {
		return nil
	}

	takenYesterday, err := tx.QuizTakenOn(ctx, studentID, spaced_repetition.AddDays(today, -1))
	if err != nil {
		return err
	}
	if takenYesterday {
		return tx.IncrementStreak(ctx, studentID)
	}
	return tx.ResetStreak(ctx, studentID)
}
