package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"github.com/example/wordquiz/internal/quiz"
	"github.com/example/wordquiz/internal/rbac"
	"github.com/example/wordquiz/pkg/models"
)

// Constants for callback data
const (
	callbackMenu         = "menu"
	callbackTopics       = "topics"
	callbackStreak       = "streak"
	callbackStats        = "stats"
	callbackTopicPrefix  = "topic:"
	callbackAnswerPrefix = "answer:" // answer:<question>:<option>
)

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	if message.From == nil || message.Chat == nil {
		return errors.New("invalid message: required fields are missing")
	}
	user, err := b.userFor(ctx, message.From)
	if err != nil {
		return err
	}
	chatID := message.Chat.ID

	switch message.Command() {
	case "start":
		err = b.handleStart(chatID, user)
	case "help":
		err = b.handleHelp(chatID)
	case "topics":
		err = b.handleTopics(ctx, chatID, user)
	case "streak":
		err = b.handleStreak(ctx, chatID, user)
	case "stats":
		err = b.handleStats(ctx, chatID, user)
	case "notify":
		err = b.handleNotify(ctx, chatID, user, message.CommandArguments())
	case "cancel":
		err = b.handleCancel(chatID)
	default:
		err = b.sendText(chatID, "Unknown command. Use /help to see what I can do.", b.mainMenu())
	}
	return err
}

func (b *Bot) handleStart(chatID int64, user *models.User) error {
	name := user.FirstName
	if name == "" {
		name = "there"
	}
	text := fmt.Sprintf("👋 Hi %s!\n\n"+
		"I quiz you on vocabulary and bring words back just before you forget them.\n"+
		"Pick a topic to start. Words you get wrong come back tomorrow, the ones you know come back later and later.",
		name)
	return b.sendText(chatID, text, b.mainMenu())
}

func (b *Bot) handleHelp(chatID int64) error {
	text := "📖 Commands\n\n" +
		"/topics - choose a topic and start a quiz\n" +
		"/streak - days in a row with at least one quiz\n" +
		"/stats - your progress\n" +
		"/notify on|off|<hour> - daily review reminders\n" +
		"/cancel - abandon the current quiz"
	return b.sendText(chatID, text, b.mainMenu())
}

func (b *Bot) handleTopics(ctx context.Context, chatID int64, user *models.User) error {
	topics, err := b.quiz.Topics(ctx, quiz.Caller{ID: user.ID, Role: user.Role}, b.today())
	if err != nil {
		return err
	}

	var rows [][]MenuButton
	for _, t := range topics {
		if t.WordCount < models.MinTopicWords {
			continue
		}
		label := fmt.Sprintf("%s %s", t.ShortDesc, t.Name)
		if t.WordsDue > 0 {
			label += fmt.Sprintf(" (%d due)", t.WordsDue)
		}
		if !t.IsLive {
			label = "👁 " + label
		}
		rows = append(rows, []MenuButton{{Text: label, CallbackData: callbackTopicPrefix + strconv.FormatInt(t.ID, 10)}})
	}
	if len(rows) == 0 {
		return b.sendText(chatID, "There are no topics to practise yet. Check back soon!", nil)
	}
	kb := createKeyboard(rows)
	return b.sendText(chatID, "📚 Choose a topic:", &kb)
}

func (b *Bot) handleStreak(ctx context.Context, chatID int64, user *models.User) error {
	streak, err := b.quiz.CurrentStreak(ctx, user.ID, b.today())
	if err != nil {
		return err
	}
	text := "No streak yet. Take a quiz today to start one!"
	if streak > 0 {
		text = fmt.Sprintf("🔥 Your streak: %d %s", streak, plural(streak, "day", "days"))
	}
	return b.sendText(chatID, text, b.mainMenu())
}

func (b *Bot) handleStats(ctx context.Context, chatID int64, user *models.User) error {
	stats, err := b.quiz.Dashboard(ctx, user.ID, b.today())
	if err != nil {
		return err
	}
	text := fmt.Sprintf("📊 Your progress\n\n"+
		"Words due for revision: %d\n"+
		"Words mastered: %d\n"+
		"Quizzes taken: %d\n"+
		"Total points: %d\n"+
		"Streak: %d",
		stats.WordsDueRevision, stats.WordsMastered, stats.QuizzesTaken, stats.TotalPoints, stats.Streak)
	return b.sendText(chatID, text, b.mainMenu())
}

func (b *Bot) handleNotify(ctx context.Context, chatID int64, user *models.User, args string) error {
	enabled, hour := user.NotificationEnabled, user.NotificationHour
	switch arg := strings.ToLower(strings.TrimSpace(args)); arg {
	case "on":
		enabled = true
	case "off":
		enabled = false
	case "":
		return b.sendText(chatID, fmt.Sprintf("Reminders are %s at %02d:00 UTC.\nUse /notify on, /notify off or /notify <hour>.",
			enabledString(enabled), hour), nil)
	default:
		h, err := strconv.Atoi(arg)
		if err != nil || h < 0 || h > 23 {
			return b.sendText(chatID, "Please give an hour between 0 and 23, e.g. /notify 18", nil)
		}
		enabled, hour = true, h
	}

	if err := b.users.UpdateNotificationSettings(ctx, user.ID, enabled, hour); err != nil {
		return err
	}
	return b.sendText(chatID, fmt.Sprintf("✅ Reminders %s at %02d:00 UTC.", enabledString(enabled), hour), nil)
}

func (b *Bot) handleCancel(chatID int64) error {
	b.mu.Lock()
	_, had := b.sessions[chatID]
	delete(b.sessions, chatID)
	b.mu.Unlock()

	text := "Nothing to cancel."
	if had {
		text = "Quiz cancelled. Nothing was saved."
	}
	return b.sendText(chatID, text, b.mainMenu())
}

// HandleCallback handles inline keyboard presses
func (b *Bot) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback.Message == nil || callback.From == nil {
		return errors.New("invalid callback data: Message or From is nil")
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.logger.Warn("failed to answer callback", "error", err)
	}

	user, err := b.userFor(ctx, callback.From)
	if err != nil {
		return err
	}
	chatID := callback.Message.Chat.ID
	data := callback.Data

	switch {
	case data == callbackMenu:
		return b.sendText(chatID, "What would you like to do?", b.mainMenu())
	case data == callbackTopics:
		return b.handleTopics(ctx, chatID, user)
	case data == callbackStreak:
		return b.handleStreak(ctx, chatID, user)
	case data == callbackStats:
		return b.handleStats(ctx, chatID, user)
	case strings.HasPrefix(data, callbackTopicPrefix):
		topicID, err := strconv.ParseInt(strings.TrimPrefix(data, callbackTopicPrefix), 10, 64)
		if err != nil {
			return errors.Wrapf(err, "bad topic callback %q", data)
		}
		return b.startQuiz(ctx, chatID, user, topicID)
	case strings.HasPrefix(data, callbackAnswerPrefix):
		parts := strings.Split(strings.TrimPrefix(data, callbackAnswerPrefix), ":")
		if len(parts) != 2 {
			return errors.Errorf("bad answer callback %q", data)
		}
		question, err1 := strconv.Atoi(parts[0])
		option, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			return errors.Errorf("bad answer callback %q", data)
		}
		return b.answer(ctx, chatID, user, question, option)
	}
	return errors.Errorf("unknown callback %q", data)
}

func (b *Bot) startQuiz(ctx context.Context, chatID int64, user *models.User, topicID int64) error {
	payload, err := b.quiz.GenerateQuiz(ctx, quiz.Caller{ID: user.ID, Role: user.Role}, topicID, b.today())
	if errors.Is(err, quiz.ErrTopicNotFound) {
		return b.sendText(chatID, "This topic is not available.", b.mainMenu())
	}
	if err != nil {
		return err
	}
	if len(payload.Questions) == 0 {
		return b.sendText(chatID, "This topic does not have enough words for a quiz yet.", b.mainMenu())
	}

	s := &quizSession{
		userID:    user.ID,
		topicID:   topicID,
		payload:   payload,
		results:   make(map[int64]bool, len(payload.Questions)),
		updatedAt: b.now(),
	}
	b.mu.Lock()
	b.sessions[chatID] = s
	b.mu.Unlock()

	intro := "🔁 Revision time! These words are due today."
	if !payload.IsDueRevision {
		intro = "🎯 Nothing is due here, so this is extra practice."
	}
	if rbac.Has(user.Role, rbac.PermTopicPreview) {
		intro += "\n(Preview: your answers are saved like a student's.)"
	}
	if err := b.sendText(chatID, intro, nil); err != nil {
		return err
	}
	return b.askQuestion(chatID, payload, 0)
}

func (b *Bot) askQuestion(chatID int64, payload *quiz.Payload, idx int) error {
	q := payload.Questions[idx]
	from, to := payload.OriginIcon, payload.TargetIcon
	if !q.OriginToTarget {
		from, to = to, from
	}

	rows := make([][]MenuButton, 0, len(q.Options))
	for i, opt := range q.Options {
		rows = append(rows, []MenuButton{{
			Text:         opt,
			CallbackData: fmt.Sprintf("%s%d:%d", callbackAnswerPrefix, idx, i),
		}})
	}
	kb := createKeyboard(rows)
	text := fmt.Sprintf("Question %d/%d\n\n%s %s\n%s ?", idx+1, len(payload.Questions), from, q.Word, to)
	return b.sendText(chatID, text, &kb)
}

func (b *Bot) answer(ctx context.Context, chatID int64, user *models.User, question, option int) error {
	b.mu.Lock()
	s := b.session(chatID)
	if s == nil || s.userID != user.ID || question != s.current {
		b.mu.Unlock()
		return b.sendText(chatID, "That question is no longer active. Use /topics to start a new quiz.", nil)
	}
	q := s.payload.Questions[s.current]
	if option < 0 || option >= len(q.Options) {
		b.mu.Unlock()
		return errors.Errorf("option %d out of range", option)
	}
	correct := option == q.CorrectAnswer
	s.results[q.WordID] = correct
	s.current++
	s.updatedAt = b.now()
	finished := s.current == len(s.payload.Questions)
	if finished {
		delete(b.sessions, chatID)
	}
	payload, next := s.payload, s.current
	b.mu.Unlock()

	feedback := "✅ Correct!"
	if !correct {
		feedback = "❌ The answer is: " + q.Options[q.CorrectAnswer]
	}
	if err := b.sendText(chatID, feedback, nil); err != nil {
		return err
	}
	if !finished {
		return b.askQuestion(chatID, payload, next)
	}
	return b.finishQuiz(ctx, chatID, s)
}

func (b *Bot) finishQuiz(ctx context.Context, chatID int64, s *quizSession) error {
	today := b.today()
	summary, err := b.quiz.ProcessResults(ctx, s.results, s.userID, s.topicID, today)
	if err != nil {
		_ = b.sendText(chatID, "❌ Your answers could not be saved. Please try again later.", b.mainMenu())
		return err
	}
	streak, err := b.quiz.CurrentStreak(ctx, s.userID, today)
	if err != nil {
		return err
	}

	var text strings.Builder
	fmt.Fprintf(&text, "🏁 Quiz finished: %d/%d correct, +%d points\n\n", summary.Correct, summary.Total, summary.Points)
	for _, w := range summary.Words {
		mark := "✅"
		if !w.IsCorrect {
			mark = "❌"
		}
		fmt.Fprintf(&text, "%s %s %s = %s %s\n", mark, s.payload.OriginIcon, w.Origin, s.payload.TargetIcon, w.Target)
	}
	fmt.Fprintf(&text, "\n🔥 Streak: %d %s", streak, plural(streak, "day", "days"))
	return b.sendText(chatID, text.String(), b.mainMenu())
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func enabledString(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}
