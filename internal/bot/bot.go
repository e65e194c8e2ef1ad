// Package bot is the Telegram front end: it parses commands and pasted
// token addresses, consults the authorization manager, drives the trading
// gateway and renders results back into the chat.
package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/solman/solbot/internal/auth"
	"github.com/solman/solbot/internal/gateway"
	"github.com/solman/solbot/pkg/config"
	"github.com/solman/solbot/pkg/logger"
	"github.com/solman/solbot/pkg/solana"
)

// positionsPerPage is how many positions one /positions page shows.
const positionsPerPage = 5

// Bot wires the Telegram API to the authorization manager and the trading
// gateway. Updates are handled concurrently, one goroutine per update; the
// auth manager carries the locking.
type Bot struct {
	api       *tgbotapi.BotAPI
	auth      *auth.Manager
	gw        *gateway.Client
	validator solana.Validator
	cfg       *config.Config

	stopOnce sync.Once
	handlers sync.WaitGroup
}

// New connects to Telegram and prepares the bot. It does not start polling.
func New(cfg *config.Config, authMgr *auth.Manager, gw *gateway.Client) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, errors.Wrap(err, "connect to telegram")
	}

	logger.Infof("authorized on telegram as @%s", api.Self.UserName)

	return &Bot{
		api:       api,
		auth:      authMgr,
		gw:        gw,
		validator: solana.NewValidator(cfg.MinTokenLength, cfg.MaxTokenLength),
		cfg:       cfg,
	}, nil
}

// Run registers the command menu and processes updates until Stop is
// called. It returns after in-flight handlers have finished.
func (b *Bot) Run() {
	b.setCommands()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message", "callback_query"}

	updates := b.api.GetUpdatesChan(u)
	logger.Info("bot polling started")

	for update := range updates {
		b.handlers.Add(1)
		go func(upd tgbotapi.Update) {
			defer b.handlers.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Errorf("handler panic: %v", r)
				}
			}()
			b.handleUpdate(upd)
		}(update)
	}

	b.handlers.Wait()
	logger.Info("bot polling stopped")
}

// Stop closes the update channel, letting Run drain and return.
func (b *Bot) Stop() {
	b.stopOnce.Do(func() {
		b.api.StopReceivingUpdates()
	})
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	ctx := context.Background()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.Message != nil && update.Message.Text != "":
		b.handleMessage(ctx, update.Message)
	}
}

// setCommands publishes the command menu for Telegram autocomplete.
func (b *Bot) setCommands() {
	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Welcome message and instructions"},
		tgbotapi.BotCommand{Command: "help", Description: "Usage guide"},
		tgbotapi.BotCommand{Command: "status", Description: "Check bot and API status"},
		tgbotapi.BotCommand{Command: "positions", Description: "View current positions with PnL"},
		tgbotapi.BotCommand{Command: "sell", Description: "Sell a position"},
		tgbotapi.BotCommand{Command: "wallet", Description: "View wallet balance"},
		tgbotapi.BotCommand{Command: "admin", Description: "Admin panel (owner only)"},
	)
	if _, err := b.api.Request(commands); err != nil {
		logger.Errorf("failed to set bot commands: %v", err)
	}
}

// send is a fire-and-log wrapper around the Telegram API.
func (b *Bot) send(c tgbotapi.Chattable) (tgbotapi.Message, bool) {
	msg, err := b.api.Send(c)
	if err != nil {
		logger.WithFields(logrus.Fields{"err": err}).Error("telegram send failed")
		return tgbotapi.Message{}, false
	}
	return msg, true
}

// reply sends a Markdown message into chatID.
func (b *Bot) reply(chatID int64, text string) (tgbotapi.Message, bool) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	return b.send(msg)
}

// edit rewrites a previously sent message in place.
func (b *Bot) edit(chatID int64, messageID int, text string) {
	e := tgbotapi.NewEditMessageText(chatID, messageID, text)
	e.ParseMode = tgbotapi.ModeMarkdown
	e.DisableWebPagePreview = true
	b.send(e)
}
