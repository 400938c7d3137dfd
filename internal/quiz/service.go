package quiz

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/example/wordquiz/internal/rbac"
	"github.com/example/wordquiz/internal/spaced_repetition"
	"github.com/example/wordquiz/pkg/models"
)

// Service builds quizzes and records their results
type Service struct {
	store  Store
	cfg    Config
	logger *slog.Logger

	mu  sync.Mutex // guards rnd
	rnd *rand.Rand
}

// Option configures a Service
type Option func(*Service)

// WithRand makes question generation reproducible
func WithRand(rnd *rand.Rand) Option {
	return func(s *Service) { s.rnd = rnd }
}

// WithLogger sets the service logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a quiz service
func NewService(store Store, cfg Config, opts ...Option) *Service {
	s := &Service{
		store:  store,
		cfg:    cfg,
		logger: slog.Default(),
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the quiz settings in use
func (s *Service) Config() Config {
	return s.cfg
}

// Topics lists the topics the caller can see with how many words are due in each
func (s *Service) Topics(ctx context.Context, caller Caller, today time.Time) ([]TopicSummary, error) {
	today = spaced_repetition.Day(today)
	topics, err := s.store.Topics(ctx, rbac.Has(caller.Role, rbac.PermTopicPreview), today)
	if err != nil {
		return nil, err
	}

	summaries := make([]TopicSummary, 0, len(topics))
	for _, t := range topics {
		due, err := s.store.WordsDueRevision(ctx, t.ID, caller.ID, today, 0)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, TopicSummary{Topic: t, WordsDue: len(due), IsLive: t.IsLive(today)})
	}
	return summaries, nil
}

// CurrentStreak returns the student's streak, or 0 when no quiz was taken today or yesterday
func (s *Service) CurrentStreak(ctx context.Context, studentID int64, today time.Time) (int, error) {
	today = spaced_repetition.Day(today)
	for _, day := range []time.Time{today, spaced_repetition.AddDays(today, -1)} {
		taken, err := s.store.QuizTakenOn(ctx, studentID, day)
		if err != nil {
			return 0, err
		}
		if taken {
			return s.store.Streak(ctx, studentID)
		}
	}
	return 0, nil
}

// Dashboard returns the student's progress overview
func (s *Service) Dashboard(ctx context.Context, studentID int64, today time.Time) (*models.DashboardStats, error) {
	today = spaced_repetition.Day(today)
	stats, err := s.store.Dashboard(ctx, studentID, today)
	if err != nil {
		return nil, err
	}
	if stats.Streak, err = s.CurrentStreak(ctx, studentID, today); err != nil {
		return nil, err
	}
	return stats, nil
}

// topic resolves a topic, hiding unpublished ones from callers without preview rights
func (s *Service) topic(ctx context.Context, caller Caller, topicID int64, today time.Time) (*models.Topic, error) {
	topic, err := s.store.Topic(ctx, topicID, rbac.Has(caller.Role, rbac.PermTopicPreview), today)
	if errors.Is(err, models.ErrNotFound) {
		return nil, errors.Wrapf(ErrTopicNotFound, "id %d", topicID)
	}
	return topic, err
}
