package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/example/drillbot/internal/database"
	"github.com/example/drillbot/internal/exam"
	"github.com/example/drillbot/internal/practice"
	"github.com/example/drillbot/internal/session"
	"github.com/example/drillbot/pkg/logger"
	"github.com/example/drillbot/pkg/monitoring"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
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
		if len(row) == 0 {
			continue
		}
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// sender is the part of the Telegram API the handlers use
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Deps are the services the bot drives
type Deps struct {
	Sessions   *session.Store
	Practice   *practice.Service
	Builder    *exam.Builder
	Grader     *exam.Grader
	ExamConfig exam.Config
	Questions  *database.QuestionRepository
	Wrong      *database.WrongLogRepository
	Stats      *database.StatisticsRepository
}

// Bot represents the Telegram bot application
type Bot struct {
	config  Config
	botAPI  *tgbotapi.BotAPI
	api     sender
	deps    Deps
	now     func() time.Time
	stopped chan struct{}
}

// New creates a bot. The Telegram connection is made by Start.
func New(config Config, deps Deps) *Bot {
	return &Bot{
		config:  config,
		deps:    deps,
		now:     time.Now,
		stopped: make(chan struct{}),
	}
}

// Start connects to Telegram and handles updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	botAPI, err := tgbotapi.NewBotAPI(b.config.Token)
	if err != nil {
		return fmt.Errorf("unable to create bot: %v", err)
	}
	botAPI.Debug = b.config.Debug
	b.botAPI = botAPI
	b.api = botAPI
	logger.Log.Info("authorized on telegram", zap.String("account", botAPI.Self.UserName))

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = int(b.config.UpdateTimeout / time.Second)
	updates := botAPI.GetUpdatesChan(updateConfig)
	defer close(b.stopped)

	for {
		select {
		case <-ctx.Done():
			botAPI.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

// Stop waits for the update loop to finish
func (b *Bot) Stop(ctx context.Context) error {
	if b.botAPI == nil {
		return nil
	}
	select {
	case <-b.stopped:
		logger.Log.Info("bot stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// handleUpdate routes one update. Updates of the same chat are serialized on the session lock.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	chat := chatOf(update)
	if chat == nil {
		return
	}
	s := b.deps.Sessions.Get(chat.ID)
	s.Lock()
	defer s.Unlock()

	if b.pollExam(ctx, s) {
		if update.CallbackQuery != nil {
			b.answerCallback(update.CallbackQuery, "")
		}
		return
	}

	var err error
	switch {
	case update.Message != nil && update.Message.IsCommand():
		monitoring.BotUpdates.WithLabelValues("command").Inc()
		err = b.handleCommand(ctx, s, update.Message)
	case update.Message != nil:
		monitoring.BotUpdates.WithLabelValues("text").Inc()
		err = b.handleText(ctx, s, update.Message)
	case update.CallbackQuery != nil:
		monitoring.BotUpdates.WithLabelValues("callback").Inc()
		err = b.handleCallback(ctx, s, update.CallbackQuery)
	}
	if err != nil {
		logger.Log.Error("failed to handle update",
			zap.Int64("chat", chat.ID),
			zap.Int("update", update.UpdateID),
			zap.Error(err))
		b.send(chat.ID, "❌ Something went wrong. Please try again.", nil)
	}
}

func chatOf(update tgbotapi.Update) *tgbotapi.Chat {
	switch {
	case update.Message != nil:
		return update.Message.Chat
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.Message.Chat
	}
	return nil
}

// pollExam grades a timed-out attempt and reports whether it did
func (b *Bot) pollExam(ctx context.Context, s *session.Session) bool {
	a := s.Exam
	graded, err := b.deps.Grader.Poll(ctx, s.User, a, b.now())
	if err != nil {
		logger.Log.Error("failed to grade timed out exam", zap.Int64("chat", s.ChatID), zap.Error(err))
		return false
	}
	if !graded {
		return false
	}
	b.send(s.ChatID, "⏰ Time is up, your paper was submitted.\n\n"+renderResult(a.Result()), nil)
	s.ResetExam()
	return true
}

func (b *Bot) send(chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	if _, err := b.api.Send(msg); err != nil {
		logger.Log.Warn("failed to send message", zap.Int64("chat", chatID), zap.Error(err))
	}
}

// reply edits the message behind a button press, or sends a new one when messageID is 0
func (b *Bot) reply(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	if messageID == 0 {
		b.send(chatID, text, markup)
		return
	}
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ReplyMarkup = markup
	if _, err := b.api.Send(edit); err != nil {
		logger.Log.Warn("failed to edit message", zap.Int64("chat", chatID), zap.Error(err))
	}
}

func (b *Bot) answerCallback(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		logger.Log.Warn("failed to answer callback", zap.Error(err))
	}
}
