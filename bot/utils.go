package bot

import (
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// answerCallbackQuery sends an answer to a callback query.
func (b *Bot) answerCallbackQuery(logger *zap.Logger, queryID string, text string) {
	callback := tgbotapi.NewCallback(queryID, text)
	if _, err := b.api.Request(callback); err != nil {
		logger.Warn("Error answering callback query", zap.String("query_id", queryID), zap.Error(err))
	}
}

// htmlEscape escapes a string for safe use in Telegram HTML messages.
func htmlEscape(s string) string {
	return html.EscapeString(s)
}

var tagStripper = strings.NewReplacer("<b>", "", "</b>", "", "<i>", "", "</i>", "", "</a>", "")

// plainText turns the small HTML subset used by the bot back into plain text.
func plainText(s string) string {
	for {
		start := strings.Index(s, "<a href=")
		if start < 0 {
			break
		}
		end := strings.Index(s[start:], ">")
		if end < 0 {
			break
		}
		s = s[:start] + s[start+end+1:]
	}
	return html.UnescapeString(tagStripper.Replace(s))
}

// plainFallback returns a copy of c without HTML formatting, or false when c
// has nothing to fall back to.
func plainFallback(c tgbotapi.Chattable) (tgbotapi.Chattable, bool) {
	switch m := c.(type) {
	case tgbotapi.MessageConfig:
		if m.ParseMode == "" {
			return nil, false
		}
		m.Text = plainText(m.Text)
		m.ParseMode = ""
		return m, true
	case tgbotapi.EditMessageTextConfig:
		// The edited message may be gone or unchanged; send the text as a new message.
		msg := tgbotapi.NewMessage(m.ChatID, plainText(m.Text))
		if m.ReplyMarkup != nil {
			msg.ReplyMarkup = *m.ReplyMarkup
		}
		return msg, true
	case tgbotapi.PhotoConfig:
		// Usually a photo URL Telegram could not fetch.
		msg := tgbotapi.NewMessage(m.ChatID, plainText(m.Caption))
		msg.ReplyMarkup = m.ReplyMarkup
		return msg, true
	}
	return nil, false
}

// isNotModified reports whether Telegram refused an edit because nothing changed
func isNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}
