package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/iabalyuk/geoguide/dialogue"
)

// getLocationKeyboard returns a reply keyboard with the location request button
func getLocationKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonLocation(textShareLocation)),
	)
	keyboard.OneTimeKeyboard = true
	return keyboard
}

// getStartKeyboard returns a reply keyboard with the /start command
func getStartKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(textButtonStart)),
	)
	keyboard.OneTimeKeyboard = true
	return keyboard
}

// getRadiusKeyboard returns an inline keyboard with the radius options, two per row
func getRadiusKeyboard(radii []int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, r := range radii {
		button := tgbotapi.NewInlineKeyboardButtonData(radiusLabel(r), radiusData(r))
		if len(rows) == 0 || len(rows[len(rows)-1]) == 2 {
			rows = append(rows, []tgbotapi.InlineKeyboardButton{button})
		} else {
			rows[len(rows)-1] = append(rows[len(rows)-1], button)
		}
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// getInterestsKeyboard returns one toggle per category and the "done" button
func getInterestsKeyboard(options []dialogue.InterestOption) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(options)+1)
	for _, opt := range options {
		label := opt.Label
		if opt.Selected {
			label = "✅ " + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, interestData(opt.Category)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(textDone, cbInterestEnd),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// getCandidatesKeyboard returns one button per candidate, labelled with its distance
func getCandidatesKeyboard(candidates []dialogue.Candidate) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(candidates)+1)
	for _, c := range candidates {
		label := fmt.Sprintf("%s (%s)", c.Place.Name, formatDistance(c.DistanceMeters))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, placeData(c.Index)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(textRestart, cbRestart),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// getDetailKeyboard returns the actions available on a place card
func getDetailKeyboard(index int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(textButtonRoute, routeData(index))),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(textButtonDescribe, cbDescribe),
			tgbotapi.NewInlineKeyboardButtonData(textButtonNarrate, cbNarrate),
			tgbotapi.NewInlineKeyboardButtonData(textButtonReviews, cbReviews),
		),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(textButtonOtherPlace, cbBackList)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(textRestart, cbRestart)),
	)
}

// getRouteKeyboard returns the link to the route and a way back to the card
func getRouteKeyboard(routeURL string, index int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if routeURL != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(textOpenRoute, routeURL)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(textButtonBack, placeData(index))))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// getBackKeyboard returns the buttons shown under generated texts
func getBackKeyboard(index int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(textButtonBack, placeData(index))),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(textButtonOtherPlace, cbBackList)),
	)
}

// getRestartKeyboard returns a single restart button
func getRestartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(textRestart, cbRestart)),
	)
}
