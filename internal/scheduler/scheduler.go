package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/wordquiz/internal/database"
	"github.com/example/wordquiz/internal/spaced_repetition"
	"github.com/example/wordquiz/pkg/models"
)

// Default notification window (UTC hours, inclusive)
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 20
)

// Notifier interface for sending notifications
type Notifier interface {
	SendReminders(ctx context.Context, user models.User, count int) error
}

// Config limits when reminders may go out
type Config struct {
	StartHour int
	EndHour   int
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	users     *database.UserRepository
	words     *database.WordRepository
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a new scheduler instance
func New(db sqlx.ExtContext, notifier Notifier, cfg Config, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		notifier:  notifier,
		users:     database.NewUserRepository(db),
		words:     database.NewWordRepository(db),
		cfg:       cfg,
		logger:    logger.With("component", "scheduler"),
		now:       time.Now,
	}
}

// Start begins running all scheduled tasks; they stop with ctx or Stop
func (s *Scheduler) Start(ctx context.Context) error {
	// top of every hour, so notification_hour matches the hour the job runs in
	_, err := s.scheduler.Cron("0 * * * *").Do(func() {
		if _, err := s.checkAndSendReminders(ctx); err != nil {
			s.logger.Error("reminder run failed", "error", err)
		}
	})
	if err != nil {
		return errors.Wrap(err, "failed to schedule reminders")
	}
	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	if s.scheduler.IsRunning() {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) inWindow(hour int) bool {
	return hour >= s.cfg.StartHour && hour <= s.cfg.EndHour
}

// checkAndSendReminders reminds every user booked for the current hour who has words due.
// It returns how many reminders were sent.
func (s *Scheduler) checkAndSendReminders(ctx context.Context) (int, error) {
	now := s.now().UTC()
	currentHour := now.Hour()
	if !s.inWindow(currentHour) {
		s.logger.Debug("outside notification hours, skipping reminders",
			"hour", currentHour, "start", s.cfg.StartHour, "end", s.cfg.EndHour)
		return 0, nil
	}

	users, err := s.users.GetUsersForNotification(ctx, currentHour)
	if err != nil {
		return 0, err
	}

	today := spaced_repetition.Day(now)
	sent := 0
	for _, user := range users {
		due, err := s.words.DueAcrossLiveTopics(ctx, user.ID, today)
		if err != nil {
			s.logger.Error("failed to count due words", "user_id", user.ID, "error", err)
			continue
		}
		if len(due) == 0 {
			continue
		}
		if err := s.notifier.SendReminders(ctx, user, len(due)); err != nil {
			s.logger.Error("failed to send reminder", "user_id", user.ID, "error", err)
			continue
		}
		sent++
	}
	s.logger.Info("reminders sent", "hour", currentHour, "candidates", len(users), "sent", sent)
	return sent, nil
}

// RunManualCheck forces a reminder for a specific user regardless of their hour
func (s *Scheduler) RunManualCheck(ctx context.Context, userID int64) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	due, err := s.words.DueAcrossLiveTopics(ctx, userID, spaced_repetition.Day(s.now()))
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}
	return s.notifier.SendReminders(ctx, *user, len(due))
}
