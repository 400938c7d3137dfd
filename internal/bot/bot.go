package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/wordquiz/internal/database"
	"github.com/example/wordquiz/internal/quiz"
	"github.com/example/wordquiz/internal/spaced_repetition"
	"github.com/example/wordquiz/pkg/models"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// sender is the part of the Telegram API the bot talks to
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// quizSession is a quiz in progress in one chat
type quizSession struct {
	userID    int64
	topicID   int64
	payload   *quiz.Payload
	current   int
	results   map[int64]bool
	updatedAt time.Time
}

// Bot represents the Telegram front-end of the quiz
type Bot struct {
	api    sender
	botAPI *tgbotapi.BotAPI
	quiz   *quiz.Service
	users  *database.UserRepository
	cfg    Config
	admins map[int64]bool
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[int64]*quizSession // by chat id
}

// New connects to Telegram with token and creates the bot
func New(token string, db *sqlx.DB, svc *quiz.Service, cfg Config, logger *slog.Logger) (*Bot, error) {
	if token == "" {
		return nil, errors.New("TELEGRAM_BOT_TOKEN is not set")
	}
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create bot")
	}
	b := newBot(botAPI, db, svc, cfg, logger)
	b.botAPI = botAPI
	b.logger.Info("authorized on telegram", "account", botAPI.Self.UserName)
	return b, nil
}

func newBot(api sender, db sqlx.ExtContext, svc *quiz.Service, cfg Config, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	admins := make(map[int64]bool, len(cfg.AdminUserIDs))
	for _, id := range cfg.AdminUserIDs {
		admins[id] = true
	}
	return &Bot{
		api:      api,
		quiz:     svc,
		users:    database.NewUserRepository(db),
		cfg:      cfg,
		admins:   admins,
		logger:   logger.With("component", "bot"),
		now:      time.Now,
		sessions: make(map[int64]*quizSession),
	}
}

// Start receives updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	if b.botAPI == nil {
		return errors.New("bot is not connected")
	}
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.cfg.UpdateTimeout
	updates := b.botAPI.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.botAPI.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) today() time.Time {
	return spaced_repetition.Day(b.now())
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var err error
	switch {
	case update.Message != nil && update.Message.IsCommand():
		err = b.HandleCommand(ctx, update.Message)
	case update.Message != nil:
		err = b.sendText(update.Message.Chat.ID, "Use /topics to start a quiz or /help to see all commands.", nil)
	case update.CallbackQuery != nil:
		err = b.HandleCallback(ctx, update.CallbackQuery)
	}
	if err != nil {
		b.logger.Error("failed to handle update", "update_id", update.UpdateID, "error", err)
	}
}

// SendReminders tells a user how many words are waiting for revision
func (b *Bot) SendReminders(_ context.Context, user models.User, count int) error {
	if user.TelegramID == nil {
		return errors.Errorf("user %d has no telegram account", user.ID)
	}
	wordForm := "words"
	if count == 1 {
		wordForm = "word"
	}
	text := fmt.Sprintf("⏰ You have %d %s due for revision! Pick a topic to start a quiz.", count, wordForm)
	if err := b.sendText(*user.TelegramID, text, b.mainMenu()); err != nil {
		return errors.Wrapf(err, "failed to send reminder to user %d", user.ID)
	}
	b.logger.Info("reminder sent", "user_id", user.ID, "due", count)
	return nil
}

// userFor returns the account linked to a Telegram user, creating a student on first contact
func (b *Bot) userFor(ctx context.Context, from *tgbotapi.User) (*models.User, error) {
	if from == nil {
		return nil, errors.New("message has no sender")
	}
	user, err := b.users.GetByTelegramID(ctx, from.ID)
	if err == nil || !errors.Is(err, models.ErrNotFound) {
		return user, err
	}

	telegramID := from.ID
	user = &models.User{
		Username:            "tg" + strconv.FormatInt(from.ID, 10),
		FirstName:           from.FirstName,
		LastName:            from.LastName,
		Role:                models.RoleStudent,
		TelegramID:          &telegramID,
		NotificationEnabled: true,
		NotificationHour:    b.cfg.DefaultNotificationHour,
	}
	if b.admins[from.ID] {
		user.Role = models.RoleTeacher
	}
	if err := b.users.Create(ctx, user); err != nil {
		return nil, err
	}
	b.logger.Info("linked telegram account", "user_id", user.ID, "telegram_id", from.ID, "role", user.Role)
	return user, nil
}

func (b *Bot) mainMenu() *tgbotapi.InlineKeyboardMarkup {
	kb := createKeyboard([][]MenuButton{
		{{Text: "📚 Topics", CallbackData: callbackTopics}},
		{{Text: "🔥 Streak", CallbackData: callbackStreak}, {Text: "📊 Stats", CallbackData: callbackStats}},
	})
	return &kb
}

func (b *Bot) sendText(chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	_, err := b.api.Send(msg)
	return err
}

// session returns the live quiz of a chat, dropping it when it went stale
func (b *Bot) session(chatID int64) *quizSession {
	s, ok := b.sessions[chatID]
	if !ok {
		return nil
	}
	if b.now().Sub(s.updatedAt) > b.cfg.SessionTTL {
		delete(b.sessions, chatID)
		return nil
	}
	return s
}
