package quiz

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/example/wordquiz/internal/spaced_repetition"
	"github.com/example/wordquiz/pkg/models"
)

// ProcessResults records a finished quiz: it updates the student's word scores,
// the daily streak and the results log in one transaction and returns the summary
// shown on the results page. results maps word ids to whether they were answered
// correctly; every id must belong to the topic.
func (s *Service) ProcessResults(ctx context.Context, results map[int64]bool, studentID, topicID int64, today time.Time) (*Summary, error) {
	if len(results) == 0 {
		return nil, errors.Wrap(ErrInvalidResults, "no answers submitted")
	}
	today = spaced_repetition.Day(today)
	ids := sortedIDs(results)

	var summary *Summary
	err := s.store.InTx(ctx, func(tx Tx) error {
		exists, err := tx.TopicExists(ctx, topicID)
		if err != nil {
			return err
		}
		if !exists {
			return errors.Wrapf(ErrTopicNotFound, "id %d", topicID)
		}

		words, err := tx.TopicWordsByIDs(ctx, topicID, ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if _, ok := words[id]; !ok {
				return errors.Wrapf(ErrInvalidResults, "word %d is not part of topic %d", id, topicID)
			}
		}

		scores, err := tx.WordScores(ctx, studentID, ids)
		if err != nil {
			return err
		}

		sum := &Summary{Words: make([]WordResult, 0, len(ids)), Total: len(ids)}
		var toCreate []models.WordScore
		var toUpdate []models.ReviewUpdate

		for _, id := range ids {
			correct := results[id]
			if ws, ok := scores[id]; ok {
				if spaced_repetition.Review(&ws, correct, today) {
					toUpdate = append(toUpdate, models.ReviewUpdate{ID: ws.ID, Correct: correct, NextReview: ws.NextReview})
				}
			} else {
				toCreate = append(toCreate, spaced_repetition.NewScore(studentID, id, correct, today))
			}

			if correct {
				sum.Correct++
			}
			word := words[id]
			sum.Words = append(sum.Words, WordResult{WordID: id, Origin: word.Origin, Target: word.Target, IsCorrect: correct})
		}

		if err := tx.CreateWordScores(ctx, toCreate); err != nil {
			return err
		}
		if err := tx.ApplyReviews(ctx, toUpdate); err != nil {
			return err
		}

		// The streak looks at earlier results, so it is updated before today's row is written
		if err := updateStreak(ctx, tx, studentID, today); err != nil {
			return err
		}

		sum.Points = sum.Correct * s.cfg.CorrectAnswerPts
		result := &models.QuizResult{
			StudentID:        studentID,
			TopicID:          topicID,
			DateCreated:      today,
			CorrectAnswers:   sum.Correct,
			IncorrectAnswers: sum.Total - sum.Correct,
			Points:           sum.Points,
		}
		if err := tx.CreateQuizResult(ctx, result); err != nil {
			return err
		}

		summary = sum
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to process quiz results")
	}

	s.logger.Info("quiz results processed",
		"student_id", studentID, "topic_id", topicID,
		"correct", summary.Correct, "total", summary.Total)
	return summary, nil
}
