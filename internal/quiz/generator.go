package quiz

import (
	"context"
	"time"

	"github.com/example/wordquiz/internal/spaced_repetition"
	"github.com/example/wordquiz/pkg/models"
)

// optionsPerQuestion is the number of choices shown for every question
const optionsPerQuestion = 4

// GenerateQuiz builds a multiple-choice quiz for the caller on a topic.
// Words due for revision are asked first; when nothing is due the quiz falls back to
// plain practice over the topic's words. A topic with fewer than four words yields
// a payload without questions.
func (s *Service) GenerateQuiz(ctx context.Context, caller Caller, topicID int64, today time.Time) (*Payload, error) {
	today = spaced_repetition.Day(today)

	topic, err := s.topic(ctx, caller, topicID, today)
	if err != nil {
		return nil, err
	}

	toRevise, err := s.store.WordsDueRevision(ctx, topic.ID, caller.ID, today, s.cfg.MaxQuizLength)
	if err != nil {
		return nil, err
	}
	pool, err := s.store.TopicWords(ctx, topic.ID, s.cfg.MaxQuizLength*optionsPerQuestion)
	if err != nil {
		return nil, err
	}

	payload := &Payload{
		CorrectPts:    s.cfg.CorrectAnswerPts,
		OriginIcon:    s.cfg.OriginIcon,
		TargetIcon:    s.cfg.TargetIcon,
		IsDueRevision: true,
		Questions:     []Question{},
	}

	if len(toRevise) == 0 {
		payload.IsDueRevision = false
		toRevise = pool
		if len(toRevise) > s.cfg.MaxQuizLength {
			toRevise = toRevise[:s.cfg.MaxQuizLength]
		}
	}

	if len(pool) < models.MinTopicWords {
		return payload, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, word := range toRevise {
		q, ok := s.buildQuestion(word, pool)
		if !ok {
			s.logger.Warn("not enough distinct options for word", "word_id", word.ID, "topic_id", topic.ID)
			continue
		}
		payload.Questions = append(payload.Questions, q)
	}

	s.logger.Debug("quiz generated",
		"topic_id", topic.ID, "student_id", caller.ID,
		"questions", len(payload.Questions), "due_revision", payload.IsDueRevision)
	return payload, nil
}

// buildQuestion picks a direction and three distractors for word. Distractors are
// drawn from pool in random order, skipping the word itself and any text already
// used, so all options are different. s.mu must be held.
func (s *Service) buildQuestion(word models.Word, pool []models.Word) (Question, bool) {
	originToTarget := s.rnd.Intn(2) == 0
	answer := word.Answer(originToTarget)

	used := map[string]struct{}{answer: {}}
	distractors := make([]string, 0, optionsPerQuestion-1)
	for _, i := range s.rnd.Perm(len(pool)) {
		candidate := pool[i]
		if candidate.ID == word.ID {
			continue
		}
		text := candidate.Answer(originToTarget)
		if _, dup := used[text]; dup {
			continue
		}
		used[text] = struct{}{}
		distractors = append(distractors, text)
		if len(distractors) == optionsPerQuestion-1 {
			break
		}
	}
	if len(distractors) < optionsPerQuestion-1 {
		return Question{}, false
	}

	pos := s.rnd.Intn(optionsPerQuestion)
	options := make([]string, 0, optionsPerQuestion)
	options = append(options, distractors[:pos]...)
	options = append(options, answer)
	options = append(options, distractors[pos:]...)

	return Question{
		WordID:         word.ID,
		OriginToTarget: originToTarget,
		Word:           word.Text(originToTarget),
		Options:        options,
		CorrectAnswer:  pos,
	}, true
}
