package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/skillbuilder/internal/auth"
	"github.com/example/skillbuilder/internal/catalog"
	"github.com/example/skillbuilder/internal/chatbot"
	"github.com/example/skillbuilder/internal/excel"
	"github.com/example/skillbuilder/internal/forum"
	"github.com/example/skillbuilder/internal/logger"
	"github.com/example/skillbuilder/internal/progress"
	"github.com/example/skillbuilder/internal/quiz"
	"github.com/example/skillbuilder/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of the Telegram API the bot talks to.
// *tgbotapi.BotAPI implements it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Services are the application services behind the bot commands
type Services struct {
	Catalog   *catalog.Service
	Progress  *progress.Service
	Forum     *forum.Service
	Quiz      *quiz.Service
	Auth      *auth.Service
	Sessions  *auth.Sessions
	Responder *chatbot.Responder
	Reporter  *excel.Reporter
}

// DigestRunner sends the progress digest to one chat on demand
type DigestRunner interface {
	RunManualCheck(ctx context.Context, chatID int64) error
}

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

// UserState represents the current state of a multi-step interaction
type UserState struct {
	Action string
	Step   int
	Data   map[string]string
}

// Bot represents the Telegram bot application
type Bot struct {
	api    Sender
	svc    Services
	config *BotConfig
	log    *logger.Logger
	admins map[int64]bool

	mu            sync.Mutex
	userStates    map[int64]*UserState
	attempts      map[int64]*quiz.Attempt
	conversations map[int64]*chatbot.Conversation
	digests       DigestRunner

	pause func(ctx context.Context, d time.Duration) error
	wg    sync.WaitGroup
}

// New creates a new bot instance
func New(api Sender, svc Services, config *BotConfig, log *logger.Logger) *Bot {
	if config == nil {
		config = DefaultConfig()
	}
	admins := make(map[int64]bool, len(config.AdminUserIDs))
	for _, id := range config.AdminUserIDs {
		admins[id] = true
	}
	return &Bot{
		api:           api,
		svc:           svc,
		config:        config,
		log:           log.With("component", "bot"),
		admins:        admins,
		userStates:    make(map[int64]*UserState),
		attempts:      make(map[int64]*quiz.Attempt),
		conversations: make(map[int64]*chatbot.Conversation),
		pause:         chatbot.Pause,
	}
}

// SetDigests enables the /digest command
func (b *Bot) SetDigests(d DigestRunner) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.digests = d
}

// NewUpdateConfig returns the long polling configuration of the bot
func (b *Bot) NewUpdateConfig() tgbotapi.UpdateConfig {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.config.UpdateTimeout
	return updateConfig
}

// Run handles updates until ctx is done or the channel is closed, then
// waits for in-flight handlers
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) error {
	defer b.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.wg.Add(1)
			go func(update tgbotapi.Update) {
				defer b.wg.Done()
				b.HandleUpdate(ctx, update)
			}(update)
		}
	}
}

// HandleUpdate handles one incoming update from Telegram
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	var err error
	switch {
	case update.Message != nil && update.Message.IsCommand():
		err = b.HandleCommand(ctx, update.Message)
	case update.Message != nil:
		err = b.HandleText(ctx, update.Message)
	case update.CallbackQuery != nil:
		err = b.HandleCallback(ctx, update.CallbackQuery)
	}
	if err != nil {
		b.log.Error("Error handling update", "update_id", update.UpdateID, "error", err)
	}
}

// SendDigest implements the scheduler.Notifier interface
func (b *Bot) SendDigest(chatID int64, user models.User, stats models.ProgressStats) error {
	text := fmt.Sprintf("Good morning, %s!\n\n%s\n\nKeep going, use /skills to pick your next module.",
		user.DisplayName(), formatStats(stats))
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	if err := b.sendMessage(msg); err != nil {
		return err
	}
	b.log.Info("Sent digest", "chat_id", chatID, "user_id", user.ID)
	return nil
}

// isAdmin checks if a user is an admin
func (b *Bot) isAdmin(userID int64) bool {
	return b.admins[userID]
}

// MainMenuButtons returns the buttons for the main menu
func (b *Bot) MainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{
			{Text: "📚 Skills", CallbackData: "skills"},
			{Text: "📊 Progress", CallbackData: "progress"},
		},
		{
			{Text: "💬 Forum", CallbackData: "forum"},
			{Text: "🤖 Assistant", CallbackData: "chat"},
		},
		{
			{Text: "📄 Report", CallbackData: "report"},
		},
	}
}

func (b *Bot) showMainMenu(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "Main Menu - choose an option:")
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	return b.sendMessage(msg)
}

func (b *Bot) sendMessage(msg tgbotapi.Chattable) error {
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (b *Bot) sendText(chatID int64, text string) error {
	return b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) setState(chatID int64, state *UserState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if state == nil {
		delete(b.userStates, chatID)
		return
	}
	b.userStates[chatID] = state
}

func (b *Bot) state(chatID int64) (*UserState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.userStates[chatID]
	return s, ok
}

func (b *Bot) conversation(chatID int64) *chatbot.Conversation {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.conversations[chatID]
	if !ok {
		c = chatbot.NewConversation(b.svc.Responder)
		b.conversations[chatID] = c
	}
	return c
}

// currentUser returns the profile signed in on chatID, asking the user to
// sign in when there is none
func (b *Bot) currentUser(chatID int64) (*models.User, bool, error) {
	user, ok := b.svc.Sessions.Load(chatID)
	if ok {
		return user, true, nil
	}
	return nil, false, b.sendText(chatID, "Please sign in first with /login <email> <password> or create an account with /signup <username> <email> <password>.")
}
