package scheduler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/wordquiz/internal/database"
	"github.com/example/wordquiz/pkg/models"
)

var today = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

type reminder struct {
	userID int64
	count  int
}

type fakeNotifier struct {
	sent []reminder
	fail map[int64]bool
}

func (f *fakeNotifier) SendReminders(_ context.Context, user models.User, count int) error {
	if f.fail[user.ID] {
		return errors.New("telegram is down")
	}
	f.sent = append(f.sent, reminder{userID: user.ID, count: count})
	return nil
}

type fixture struct {
	db       *sqlx.DB
	users    *database.UserRepository
	notifier *fakeNotifier
	sched    *Scheduler
}

func newFixture(t *testing.T, hour int) *fixture {
	t.Helper()
	ctx := context.Background()
	db, err := database.Connect(ctx, database.TypeSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	topics := database.NewTopicRepository(db)
	words := database.NewWordRepository(db)
	topic := &models.Topic{Name: "food", AvailableFrom: today}
	require.NoError(t, topics.Create(ctx, topic))
	for i := 1; i <= 5; i++ {
		w := &models.Word{Origin: fmt.Sprintf("en-%d", i), Target: fmt.Sprintf("es-%d", i)}
		require.NoError(t, words.Create(ctx, w))
		_, err := topics.AddWord(ctx, topic.ID, w.ID)
		require.NoError(t, err)
	}

	n := &fakeNotifier{fail: map[int64]bool{}}
	s := New(db, n, Config{StartHour: DefaultNotificationStartHour, EndHour: DefaultNotificationEndHour},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time { return today.Add(time.Duration(hour)*time.Hour + 5*time.Minute) }
	return &fixture{db: db, users: database.NewUserRepository(db), notifier: n, sched: s}
}

func (f *fixture) user(t *testing.T, name string, telegramID int64, enabled bool, hour int) *models.User {
	t.Helper()
	u := &models.User{Username: name, NotificationEnabled: enabled, NotificationHour: hour}
	if telegramID != 0 {
		u.TelegramID = &telegramID
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func TestCheckAndSendReminders(t *testing.T) {
	f := newFixture(t, 9)
	booked := f.user(t, "booked", 1001, true, 9)
	f.user(t, "other-hour", 1002, true, 18)
	f.user(t, "disabled", 1003, false, 9)
	f.user(t, "no-telegram", 0, true, 9)

	sent, err := f.sched.checkAndSendReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []reminder{{userID: booked.ID, count: 5}}, f.notifier.sent)
}

func TestCheckAndSendReminders_OutsideWindow(t *testing.T) {
	f := newFixture(t, 3)
	f.user(t, "night-owl", 1001, true, 3)

	sent, err := f.sched.checkAndSendReminders(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, f.notifier.sent)
}

func TestCheckAndSendReminders_NothingDue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 9)
	u := f.user(t, "done", 1001, true, 9)

	scores := database.NewWordScoreRepository(f.db)
	var batch []models.WordScore
	for id := int64(1); id <= 5; id++ {
		batch = append(batch, models.WordScore{WordID: id, StudentID: u.ID, ConsecutiveCorrect: 1, TimesSeen: 1, TimesCorrect: 1, NextReview: today.AddDate(0, 0, 1)})
	}
	require.NoError(t, scores.CreateBatch(ctx, batch))

	sent, err := f.sched.checkAndSendReminders(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestCheckAndSendReminders_NotifierFailureDoesNotStopOthers(t *testing.T) {
	f := newFixture(t, 9)
	broken := f.user(t, "broken", 1001, true, 9)
	ok := f.user(t, "ok", 1002, true, 9)
	f.notifier.fail[broken.ID] = true

	sent, err := f.sched.checkAndSendReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []reminder{{userID: ok.ID, count: 5}}, f.notifier.sent)
}

func TestRunManualCheck(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 23)
	u := f.user(t, "manual", 1001, false, 3)

	require.NoError(t, f.sched.RunManualCheck(ctx, u.ID))
	assert.Equal(t, []reminder{{userID: u.ID, count: 5}}, f.notifier.sent)

	assert.ErrorIs(t, f.sched.RunManualCheck(ctx, 999), models.ErrNotFound)
}

func TestStartStop(t *testing.T) {
	f := newFixture(t, 9)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, f.sched.Start(ctx))
	assert.True(t, f.sched.scheduler.IsRunning())
	cancel()
	assert.Eventually(t, func() bool { return !f.sched.scheduler.IsRunning() }, time.Second, 10*time.Millisecond)
}
