// Package telegram is the bot transport: the long-polling update loop that
// registers users, and the message sender the scheduler delivers through.
package telegram

import (
	"context"
	"log/slog"
	"time"

	"github.com/aryabkin/domabot/internal/watch/store"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const msgRegistered = "✅ Ты зарегистрирован в системе! Запускай приложение по кнопке ниже"

// Bot runs the long-polling update loop. Its only command is /start, which
// binds the sender's Telegram identity (handle + chat id) into the registry
// so the scheduler can reach them.
type Bot struct {
	api    *tgbotapi.BotAPI
	store  store.Store
	logger *slog.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewBot authenticates against the Bot API and returns a ready-to-start bot.
func NewBot(token string, st store.Store, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	return &Bot{
		api:    api,
		store:  st,
		logger: logger.With("bot", api.Self.UserName),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}, nil
}

// Sender returns a Notifier-compatible sender sharing this bot's API client.
func (b *Bot) Sender() *Sender {
	return &Sender{
		API:    b.api,
		Token:  b.api.Token,
		Logger: b.logger,
	}
}

// Start begins the background update loop. Call Stop() to shut it down.
func (b *Bot) Start() {
	go b.run()
	b.logger.Info("bot transport started")
}

// Stop gracefully shuts down the update loop.
func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
	close(b.stopCh)
	<-b.doneCh
	b.logger.Info("bot transport stopped")
}

func (b *Bot) run() {
	defer close(b.doneCh)

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30

	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-b.stopCh:
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(update)
		}
	}
}

// handleUpdate processes one inbound update. Errors are logged and dropped;
// one bad update must not stop the loop.
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || !msg.IsCommand() {
		return
	}
	if msg.Command() != "start" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reply, err := RegisterUser(ctx, b.store, b.logger, msg.From.ID, msg.From.UserName, msg.Chat.ID)
	if err != nil {
		b.logger.Error("registration failed", "user_id", msg.From.ID, "error", err)
		return
	}

	if _, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, reply)); err != nil {
		b.logger.Warn("registration reply failed", "chat_id", msg.Chat.ID, "error", err)
	}
}

// RegisterUser records the transport identity for a user and back-fills the
// cached contact address of everyone who designated this handle before its
// owner showed up. Returns the reply text for the /start command.
func RegisterUser(ctx context.Context, st store.Store, logger *slog.Logger, userID int64, username string, chatID int64) (string, error) {
	handle := ""
	if username != "" {
		handle = "@" + username
	}

	users := st.Users()
	if err := users.RegisterTransport(ctx, userID, handle, chatID); err != nil {
		return "", err
	}

	if handle != "" {
		linked, err := users.LinkPendingContacts(ctx, handle, chatID)
		if err != nil {
			logger.Warn("linking pending contacts failed", "handle", handle, "error", err)
		} else if linked > 0 {
			logger.Info("pending emergency contacts linked", "handle", handle, "count", linked)
		}
	}

	logger.Info("user registered", "user_id", userID, "handle", handle)
	return msgRegistered, nil
}
