package bot

import (
	"fmt"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/iabalyuk/geoguide/dialogue"
	"github.com/iabalyuk/geoguide/session"
)

const (
	maxMessageRunes = 4000
	maxCaptionRunes = 1000
)

// target describes where a reply goes
type target struct {
	ChatID int64
	// EditID is the text message to edit in place, 0 to send a new message
	EditID int
	// FirstName is set for /start and turns the location prompt into a greeting
	FirstName string
}

// render builds the Telegram messages for a dialogue reply
func render(to target, reply dialogue.Reply) []tgbotapi.Chattable {
	switch reply.Prompt {
	case dialogue.PromptLocation:
		text := textAskLocation
		if to.FirstName != "" {
			text = fmt.Sprintf(textGreeting, to.FirstName)
		}
		if reply.Stale {
			text = textSessionExpired + "\n" + text
		}
		msg := tgbotapi.NewMessage(to.ChatID, text)
		msg.ReplyMarkup = getLocationKeyboard()
		return []tgbotapi.Chattable{msg}

	case dialogue.PromptRadius:
		return []tgbotapi.Chattable{textWithKeyboard(to, htmlEscape(textAskRadius), getRadiusKeyboard(reply.Radii))}

	case dialogue.PromptInterests:
		return []tgbotapi.Chattable{textWithKeyboard(to, htmlEscape(textAskInterests), getInterestsKeyboard(reply.Interests))}

	case dialogue.PromptCandidates:
		text := textCandidates
		if reply.SelectedIndex != session.NoSelection {
			text = textCandidatesAgain
		}
		return []tgbotapi.Chattable{textWithKeyboard(to, htmlEscape(text), getCandidatesKeyboard(reply.Candidates))}

	case dialogue.PromptDetail:
		return []tgbotapi.Chattable{renderDetail(to, reply)}

	case dialogue.PromptRoute:
		name := htmlEscape(reply.PlaceName)
		text := fmt.Sprintf(textRouteBuilt, name)
		if reply.RouteURL == "" {
			text = fmt.Sprintf(textRouteFailed, name)
		}
		msg := tgbotapi.NewMessage(to.ChatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.ReplyMarkup = getRouteKeyboard(reply.RouteURL, reply.SelectedIndex)
		return []tgbotapi.Chattable{msg}

	case dialogue.PromptNarration:
		body := truncateRunes(reply.Text, maxMessageRunes-200)
		text := fmt.Sprintf("<b>%s</b>\n\n%s", htmlEscape(topicTitle(reply.Topic, reply.PlaceName)), htmlEscape(body))
		msg := tgbotapi.NewMessage(to.ChatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.ReplyMarkup = getBackKeyboard(reply.SelectedIndex)
		return []tgbotapi.Chattable{msg}

	case dialogue.PromptNoResults:
		return []tgbotapi.Chattable{textWithKeyboard(to, htmlEscape(textNoResults), getRestartKeyboard())}

	case dialogue.PromptCancelled:
		msg := tgbotapi.NewMessage(to.ChatID, textCancelled)
		msg.ReplyMarkup = getStartKeyboard()
		return []tgbotapi.Chattable{msg}
	}
	return nil
}

// textWithKeyboard edits the target message when possible, otherwise sends a new one
func textWithKeyboard(to target, text string, keyboard tgbotapi.InlineKeyboardMarkup) tgbotapi.Chattable {
	if to.EditID != 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(to.ChatID, to.EditID, text, keyboard)
		edit.ParseMode = tgbotapi.ModeHTML
		return edit
	}
	msg := tgbotapi.NewMessage(to.ChatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = keyboard
	return msg
}

// renderDetail builds the place card, as a photo with caption when a photo is available
func renderDetail(to target, reply dialogue.Reply) tgbotapi.Chattable {
	keyboard := getDetailKeyboard(reply.SelectedIndex)
	if reply.Detail == nil {
		return textWithKeyboard(to, htmlEscape(reply.PlaceName), keyboard)
	}

	if reply.PhotoURL != "" {
		photo := tgbotapi.NewPhoto(to.ChatID, tgbotapi.FileURL(reply.PhotoURL))
		photo.Caption = detailCard(reply, false)
		photo.ParseMode = tgbotapi.ModeHTML
		photo.ReplyMarkup = keyboard
		return photo
	}
	return textWithKeyboard(to, detailCard(reply, true), keyboard)
}

// detailCard formats the place card. Captions are shorter, so opening hours
// are only included in full messages.
func detailCard(reply dialogue.Reply, withHours bool) string {
	d := reply.Detail

	address := d.Address
	if address == "" {
		address = textNoAddress
	}
	rating := textNoRating
	if d.Rating != nil {
		rating = fmt.Sprintf("%.1f", *d.Rating)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📍 <b>%s</b>\n\n", htmlEscape(d.Name)))
	sb.WriteString(fmt.Sprintf("📏 Расстояние: %d метров\n", int(reply.DetailDistance)))
	sb.WriteString(fmt.Sprintf("🏠 Адрес: %s\n", htmlEscape(address)))
	sb.WriteString(fmt.Sprintf("⭐ Рейтинг: %s\n", htmlEscape(rating)))
	if d.Phone != "" {
		sb.WriteString(fmt.Sprintf("📞 Телефон: %s\n", htmlEscape(d.Phone)))
	}
	if d.Website != "" {
		sb.WriteString(fmt.Sprintf("🌐 <a href=\"%s\">Сайт</a>\n", htmlEscape(d.Website)))
	}
	if withHours && len(d.OpeningHours) > 0 {
		sb.WriteString("\n🕒 Часы работы:\n")
		for _, line := range d.OpeningHours {
			sb.WriteString(htmlEscape(line))
			sb.WriteString("\n")
		}
	}

	card := strings.TrimRight(sb.String(), "\n")
	if !withHours && utf8.RuneCountInString(card) > maxCaptionRunes {
		// Fall back to the bare header rather than cutting through an HTML entity
		card = fmt.Sprintf("📍 <b>%s</b>", htmlEscape(truncateRunes(d.Name, maxCaptionRunes-20)))
	}
	return card
}

// formatDistance renders a distance as "~Nм"
func formatDistance(meters float64) string {
	return fmt.Sprintf("~%dм", int(meters))
}

// truncateRunes cuts s to at most n runes, adding an ellipsis when it was cut
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}
