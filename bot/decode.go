package bot

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/iabalyuk/geoguide/dialogue"
	"github.com/iabalyuk/geoguide/geo"
	"github.com/iabalyuk/geoguide/places"
)

// Callback data values
const (
	cbRadius      = "radius"
	cbInterest    = "interest"
	cbPlace       = "place"
	cbRoute       = "route"
	cbDescribe    = "describe"
	cbNarrate     = "narrate"
	cbReviews     = "reviews"
	cbBack        = "back"
	cbRestart     = "restart"
	valueDone     = "done"
	valueList     = "list"
	cbInterestEnd = cbInterest + ":" + valueDone
	cbBackList    = cbBack + ":" + valueList
)

// decodeCallback turns inline button data into a dialogue event
func decodeCallback(data string) (dialogue.Event, bool) {
	parts := strings.Split(data, ":")
	action := parts[0]
	value := ""
	if len(parts) > 1 {
		value = parts[1]
	}

	switch action {
	case cbRadius:
		meters, err := strconv.Atoi(value)
		if err != nil {
			return nil, false
		}
		return dialogue.RadiusChosen{Meters: meters}, true
	case cbInterest:
		if value == valueDone {
			return dialogue.InterestsDone{}, true
		}
		c, ok := places.ParseCategory(value)
		if !ok {
			return nil, false
		}
		return dialogue.InterestToggled{Category: c}, true
	case cbPlace, cbRoute:
		index, err := strconv.Atoi(value)
		if err != nil {
			return nil, false
		}
		if action == cbRoute {
			return dialogue.RouteRequested{Index: index}, true
		}
		return dialogue.PlaceSelected{Index: index}, true
	case cbDescribe:
		return dialogue.DescriptionRequested{}, true
	case cbNarrate:
		return dialogue.NarrationRequested{}, true
	case cbReviews:
		return dialogue.ReviewsRequested{}, true
	case cbBack:
		if value == valueList {
			return dialogue.BackToList{}, true
		}
	case cbRestart:
		return dialogue.Restart{}, true
	}
	return nil, false
}

// decodeMessage turns a chat message into a dialogue event. Commands that are
// answered without the dialogue (/help, unknown ones) return ok == false.
func decodeMessage(message *tgbotapi.Message) (ev dialogue.Event, ok bool) {
	if message.IsCommand() {
		switch message.Command() {
		case "start":
			return dialogue.Start{}, true
		case "cancel":
			return dialogue.Cancel{}, true
		}
		return nil, false
	}
	if message.Location != nil {
		return dialogue.LocationShared{Coordinate: geo.Coordinate{
			Lat: message.Location.Latitude,
			Lng: message.Location.Longitude,
		}}, true
	}
	return dialogue.TextEntered{Text: message.Text}, true
}

func placeData(index int) string {
	return cbPlace + ":" + strconv.Itoa(index)
}

func routeData(index int) string {
	return cbRoute + ":" + strconv.Itoa(index)
}

func radiusData(meters int) string {
	return cbRadius + ":" + strconv.Itoa(meters)
}

func interestData(c places.Category) string {
	return cbInterest + ":" + string(c)
}
