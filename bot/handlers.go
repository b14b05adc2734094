package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/iabalyuk/geoguide/dialogue"
	"go.uber.org/zap"
)

// handleMessage handles incoming messages
func (b *Bot) handleMessage(ctx context.Context, logger *zap.Logger, message *tgbotapi.Message) {
	if message.From == nil {
		return
	}
	userID := message.From.ID
	chatID := message.Chat.ID
	logger = logger.With(zap.Int64("user_id", userID))

	if message.IsCommand() {
		switch message.Command() {
		case "help":
			b.handleHelpCommand(logger, chatID)
			return
		case "start", "cancel":
		default:
			b.send(logger, tgbotapi.NewMessage(chatID, textUnknownCommand))
			return
		}
	}

	ev, ok := decodeMessage(message)
	if !ok {
		return
	}
	reply := b.handler.Handle(ctx, userID, ev)

	to := target{ChatID: chatID}
	if _, isStart := ev.(dialogue.Start); isStart {
		to.FirstName = message.From.FirstName
	}
	b.sendAll(logger, render(to, reply))
}

// handleCallbackQuery handles callback queries from inline keyboards
func (b *Bot) handleCallbackQuery(ctx context.Context, logger *zap.Logger, query *tgbotapi.CallbackQuery) {
	if query.From == nil || query.Message == nil {
		return
	}
	userID := query.From.ID
	chatID := query.Message.Chat.ID
	logger = logger.With(zap.Int64("user_id", userID), zap.String("data", query.Data))

	ev, ok := decodeCallback(query.Data)
	if !ok {
		logger.Warn("Unhandled callback data")
		b.answerCallbackQuery(logger, query.ID, textUnsupportedAction)
		return
	}
	b.answerCallbackQuery(logger, query.ID, "")

	reply := b.handler.Handle(ctx, userID, ev)

	to := target{ChatID: chatID}
	// Photo cards cannot be edited into text messages.
	if len(query.Message.Photo) == 0 {
		to.EditID = query.Message.MessageID
	}
	b.sendAll(logger, render(to, reply))
}

// handleHelpCommand handles the /help command
func (b *Bot) handleHelpCommand(logger *zap.Logger, chatID int64) {
	b.send(logger, tgbotapi.NewMessage(chatID, textHelp))
}

func (b *Bot) sendAll(logger *zap.Logger, messages []tgbotapi.Chattable) {
	for _, c := range messages {
		b.send(logger, c)
	}
}

// send delivers c and retries once without formatting when Telegram rejects it
func (b *Bot) send(logger *zap.Logger, c tgbotapi.Chattable) {
	_, err := b.api.Send(c)
	if err == nil || isNotModified(err) {
		return
	}

	fallback, ok := plainFallback(c)
	if !ok {
		logger.Error("Error sending message", zap.Error(err))
		return
	}
	logger.Warn("Error sending message, falling back to plain text", zap.Error(err))
	if _, err := b.api.Send(fallback); err != nil {
		logger.Error("Error sending fallback message", zap.Error(err))
	}
}
