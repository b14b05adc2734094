package bot

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/iabalyuk/geoguide/dialogue"
	"go.uber.org/zap"
)

// Handler applies dialogue events; *dialogue.Engine implements it
type Handler interface {
	Handle(ctx context.Context, userID int64, ev dialogue.Event) dialogue.Reply
}

// sender is the part of the Telegram API the bot writes through
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot represents the sightseeing assistant on Telegram
type Bot struct {
	botAPI  *tgbotapi.BotAPI
	api     sender
	handler Handler
	logger  *zap.Logger
	wg      sync.WaitGroup
}

// New creates a new bot instance
func New(token string, handler Handler, debug bool, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	api.Debug = debug

	b := newBot(api, handler, logger)
	b.botAPI = api
	return b, nil
}

func newBot(api sender, handler Handler, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		api:     api,
		handler: handler,
		logger:  logger.With(zap.String("component", "bot")),
	}
}

// Start polls for updates until ctx is cancelled, then waits for in-flight updates
func (b *Bot) Start(ctx context.Context) error {
	if b.botAPI == nil {
		return fmt.Errorf("bot is not connected to Telegram")
	}
	b.logger.Info("Bot started", zap.String("username", b.botAPI.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.botAPI.GetUpdatesChan(u)
	defer b.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.botAPI.StopReceivingUpdates()
			b.logger.Info("Bot stopping, waiting for in-flight updates")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.wg.Add(1)
			go func(update tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdate(ctx, update)
			}(update)
		}
	}
}

// handleUpdate processes one update on its own goroutine
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	logger := b.logger.With(
		zap.String("correlation_id", uuid.NewString()),
		zap.Int("update_id", update.UpdateID),
	)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic while handling update", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()

	switch {
	case update.Message != nil:
		b.handleMessage(ctx, logger, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(ctx, logger, update.CallbackQuery)
	}
}
