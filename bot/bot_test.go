package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/iabalyuk/geoguide/dialogue"
	"github.com/iabalyuk/geoguide/geo"
	"github.com/iabalyuk/geoguide/places"
	"github.com/iabalyuk/geoguide/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCallback(t *testing.T) {
	tests := []struct {
		data string
		want dialogue.Event
	}{
		{"radius:500", dialogue.RadiusChosen{Meters: 500}},
		{"interest:nature", dialogue.InterestToggled{Category: places.CategoryNature}},
		{"interest:Исторические", dialogue.InterestToggled{Category: places.CategoryHistoric}},
		{"interest:done", dialogue.InterestsDone{}},
		{"place:3", dialogue.PlaceSelected{Index: 3}},
		{"route:0", dialogue.RouteRequested{Index: 0}},
		{"describe", dialogue.DescriptionRequested{}},
		{"narrate", dialogue.NarrationRequested{}},
		{"reviews", dialogue.ReviewsRequested{}},
		{"back:list", dialogue.BackToList{}},
		{"restart", dialogue.Restart{}},
	}
	for _, tt := range tests {
		got, ok := decodeCallback(tt.data)
		require.True(t, ok, tt.data)
		assert.Equal(t, tt.want, got, tt.data)
	}

	for _, bad := range []string{"", "radius:abc", "interest:food", "place:", "back:date", "date:2024-05-01"} {
		_, ok := decodeCallback(bad)
		assert.False(t, ok, bad)
	}
}

func TestCallbackDataRoundTrip(t *testing.T) {
	ev, ok := decodeCallback(radiusData(300))
	require.True(t, ok)
	assert.Equal(t, dialogue.RadiusChosen{Meters: 300}, ev)

	ev, ok = decodeCallback(interestData(places.CategoryCulture))
	require.True(t, ok)
	assert.Equal(t, dialogue.InterestToggled{Category: places.CategoryCulture}, ev)

	ev, ok = decodeCallback(placeData(4))
	require.True(t, ok)
	assert.Equal(t, dialogue.PlaceSelected{Index: 4}, ev)

	ev, ok = decodeCallback(routeData(2))
	require.True(t, ok)
	assert.Equal(t, dialogue.RouteRequested{Index: 2}, ev)
}

func command(text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Text:     text,
		From:     &tgbotapi.User{ID: 42, FirstName: "Анна"},
		Chat:     &tgbotapi.Chat{ID: 100},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(strings.Fields(text)[0])}},
	}
}

func TestDecodeMessage(t *testing.T) {
	ev, ok := decodeMessage(command("/start"))
	require.True(t, ok)
	assert.Equal(t, dialogue.Start{}, ev)

	ev, ok = decodeMessage(command("/cancel"))
	require.True(t, ok)
	assert.Equal(t, dialogue.Cancel{}, ev)

	_, ok = decodeMessage(command("/help"))
	assert.False(t, ok)

	ev, ok = decodeMessage(&tgbotapi.Message{Location: &tgbotapi.Location{Latitude: 55.75, Longitude: 37.62}})
	require.True(t, ok)
	assert.Equal(t, dialogue.LocationShared{Coordinate: geo.Coordinate{Lat: 55.75, Lng: 37.62}}, ev)

	ev, ok = decodeMessage(&tgbotapi.Message{Text: "где музей?"})
	require.True(t, ok)
	assert.Equal(t, dialogue.TextEntered{Text: "где музей?"}, ev)
}

func TestRenderLocationPrompt(t *testing.T) {
	out := render(target{ChatID: 1, FirstName: "Анна"}, dialogue.Reply{Prompt: dialogue.PromptLocation})
	require.Len(t, out, 1)
	msg, ok := out[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Contains(t, msg.Text, "Привет, Анна!")
	keyboard, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.True(t, keyboard.Keyboard[0][0].RequestLocation)

	out = render(target{ChatID: 1, EditID: 9}, dialogue.Reply{Prompt: dialogue.PromptLocation, Stale: true})
	msg = out[0].(tgbotapi.MessageConfig)
	assert.True(t, strings.HasPrefix(msg.Text, textSessionExpired))
}

func TestRenderInterestsEditsInPlace(t *testing.T) {
	reply := dialogue.Reply{
		Prompt: dialogue.PromptInterests,
		Interests: []dialogue.InterestOption{
			{Category: places.CategoryHistoric, Label: "Исторические", Selected: true},
			{Category: places.CategoryNature, Label: "Природные"},
		},
	}
	out := render(target{ChatID: 1, EditID: 7}, reply)
	require.Len(t, out, 1)
	edit, ok := out[0].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Equal(t, 7, edit.MessageID)

	rows := edit.ReplyMarkup.InlineKeyboard
	require.Len(t, rows, 3)
	assert.Equal(t, "✅ Исторические", rows[0][0].Text)
	assert.Equal(t, "interest:historic", *rows[0][0].CallbackData)
	assert.Equal(t, "Природные", rows[1][0].Text)
	assert.Equal(t, "interest:done", *rows[2][0].CallbackData)
}

func TestRenderRadius(t *testing.T) {
	out := render(target{ChatID: 1}, dialogue.Reply{Prompt: dialogue.PromptRadius, Radii: dialogue.AllowedRadii})
	msg := out[0].(tgbotapi.MessageConfig)
	keyboard := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.Len(t, keyboard.InlineKeyboard, 2)
	assert.Equal(t, "100 метров", keyboard.InlineKeyboard[0][0].Text)
	assert.Equal(t, "1 километр", keyboard.InlineKeyboard[1][1].Text)
	assert.Equal(t, "radius:1000", *keyboard.InlineKeyboard[1][1].CallbackData)
}

func TestRenderCandidates(t *testing.T) {
	reply := dialogue.Reply{
		Prompt:        dialogue.PromptCandidates,
		SelectedIndex: session.NoSelection,
		Candidates: []dialogue.Candidate{
			{Index: 0, Place: places.Place{Name: "ГУМ"}, DistanceMeters: 120.7},
			{Index: 1, Place: places.Place{Name: "Мавзолей"}, DistanceMeters: 340},
		},
	}
	out := render(target{ChatID: 1}, reply)
	msg := out[0].(tgbotapi.MessageConfig)
	assert.Equal(t, textCandidates, msg.Text)
	rows := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup).InlineKeyboard
	require.Len(t, rows, 3)
	assert.Equal(t, "ГУМ (~120м)", rows[0][0].Text)
	assert.Equal(t, "place:1", *rows[1][0].CallbackData)
	assert.Equal(t, "restart", *rows[2][0].CallbackData)
}

func TestRenderDetail(t *testing.T) {
	rating := 4.56
	detail := &places.PlaceDetail{
		Place:        places.Place{ID: "p", Name: "Музей <Москвы>"},
		Rating:       &rating,
		OpeningHours: []string{"Пн: выходной"},
	}
	reply := dialogue.Reply{Prompt: dialogue.PromptDetail, Detail: detail, SelectedIndex: 2, DetailDistance: 250.9}

	out := render(target{ChatID: 1, EditID: 3}, reply)
	edit, ok := out[0].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Equal(t, tgbotapi.ModeHTML, edit.ParseMode)
	assert.Contains(t, edit.Text, "Музей &lt;Москвы&gt;")
	assert.Contains(t, edit.Text, "Расстояние: 250 метров")
	assert.Contains(t, edit.Text, "Адрес: "+textNoAddress)
	assert.Contains(t, edit.Text, "Рейтинг: 4.6")
	assert.Contains(t, edit.Text, "Пн: выходной")
	assert.Equal(t, "route:2", *edit.ReplyMarkup.InlineKeyboard[0][0].CallbackData)

	reply.PhotoURL = "https://example.test/p.jpg"
	detail.Rating = nil
	out = render(target{ChatID: 1, EditID: 3}, reply)
	photo, ok := out[0].(tgbotapi.PhotoConfig)
	require.True(t, ok)
	assert.Equal(t, tgbotapi.FileURL("https://example.test/p.jpg"), photo.File)
	assert.Contains(t, photo.Caption, textNoRating)
	assert.NotContains(t, photo.Caption, "Пн: выходной")
}

func TestRenderRouteAndNarration(t *testing.T) {
	out := render(target{ChatID: 1, EditID: 3}, dialogue.Reply{
		Prompt: dialogue.PromptRoute, PlaceName: "ГУМ", RouteURL: "https://maps.test/r", SelectedIndex: 1,
	})
	msg := out[0].(tgbotapi.MessageConfig)
	assert.Contains(t, msg.Text, "Маршрут до <b>ГУМ</b>")
	rows := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup).InlineKeyboard
	require.Len(t, rows, 2)
	assert.Equal(t, "https://maps.test/r", *rows[0][0].URL)
	assert.Equal(t, "place:1", *rows[1][0].CallbackData)

	out = render(target{ChatID: 1}, dialogue.Reply{Prompt: dialogue.PromptRoute, PlaceName: "ГУМ"})
	msg = out[0].(tgbotapi.MessageConfig)
	assert.Contains(t, msg.Text, "Не удалось построить маршрут")
	assert.Len(t, msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup).InlineKeyboard, 1)

	out = render(target{ChatID: 1}, dialogue.Reply{
		Prompt: dialogue.PromptNarration, Topic: dialogue.TopicNarration, PlaceName: "ГУМ", Text: "История & факты",
	})
	msg = out[0].(tgbotapi.MessageConfig)
	assert.Equal(t, "<b>Мини-экскурсия по ГУМ</b>\n\nИстория &amp; факты", msg.Text)
}

func TestRenderTerminalPrompts(t *testing.T) {
	out := render(target{ChatID: 1, EditID: 3}, dialogue.Reply{Prompt: dialogue.PromptNoResults})
	edit := out[0].(tgbotapi.EditMessageTextConfig)
	assert.Equal(t, "restart", *edit.ReplyMarkup.InlineKeyboard[0][0].CallbackData)

	out = render(target{ChatID: 1}, dialogue.Reply{Prompt: dialogue.PromptCancelled})
	msg := out[0].(tgbotapi.MessageConfig)
	assert.Equal(t, textCancelled, msg.Text)
	keyboard := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	assert.Equal(t, "/start", keyboard.Keyboard[0][0].Text)
}

func TestPlainFallback(t *testing.T) {
	msg := tgbotapi.NewMessage(1, `📍 <b>A &amp; B</b> <a href="https://x.test">Сайт</a>`)
	msg.ParseMode = tgbotapi.ModeHTML
	fb, ok := plainFallback(msg)
	require.True(t, ok)
	plain := fb.(tgbotapi.MessageConfig)
	assert.Equal(t, "📍 A & B Сайт", plain.Text)
	assert.Empty(t, plain.ParseMode)

	_, ok = plainFallback(plain)
	assert.False(t, ok)

	photo := tgbotapi.NewPhoto(1, tgbotapi.FileURL("https://x.test/p.jpg"))
	photo.Caption = "<b>card</b>"
	fb, ok = plainFallback(photo)
	require.True(t, ok)
	assert.Equal(t, "card", fb.(tgbotapi.MessageConfig).Text)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "абв", truncateRunes("абв", 3))
	assert.Equal(t, "аб…", truncateRunes("абвг", 3))
}

type fakeSender struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	failOnce bool
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	if f.failOnce {
		f.failOnce = false
		return tgbotapi.Message{}, errors.New("Bad Request: can't parse entities")
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type recordingHandler struct {
	events []dialogue.Event
	reply  dialogue.Reply
}

func (h *recordingHandler) Handle(_ context.Context, _ int64, ev dialogue.Event) dialogue.Reply {
	h.events = append(h.events, ev)
	return h.reply
}

func TestHandleStartCommand(t *testing.T) {
	api := &fakeSender{}
	handler := &recordingHandler{reply: dialogue.Reply{Prompt: dialogue.PromptLocation}}
	b := newBot(api, handler, nil)

	b.handleUpdate(context.Background(), tgbotapi.Update{Message: command("/start")})

	require.Equal(t, []dialogue.Event{dialogue.Start{}}, handler.events)
	require.Len(t, api.sent, 1)
	assert.Contains(t, api.sent[0].(tgbotapi.MessageConfig).Text, "Анна")
}

func TestHandleHelpAndUnknownCommands(t *testing.T) {
	api := &fakeSender{}
	handler := &recordingHandler{}
	b := newBot(api, handler, nil)

	b.handleUpdate(context.Background(), tgbotapi.Update{Message: command("/help")})
	b.handleUpdate(context.Background(), tgbotapi.Update{Message: command("/check")})

	assert.Empty(t, handler.events)
	require.Len(t, api.sent, 2)
	assert.Equal(t, textHelp, api.sent[0].(tgbotapi.MessageConfig).Text)
	assert.Equal(t, textUnknownCommand, api.sent[1].(tgbotapi.MessageConfig).Text)
}

func TestHandleCallbackQuery(t *testing.T) {
	api := &fakeSender{}
	handler := &recordingHandler{reply: dialogue.Reply{Prompt: dialogue.PromptRadius, Radii: dialogue.AllowedRadii}}
	b := newBot(api, handler, nil)

	query := &tgbotapi.CallbackQuery{
		ID:      "q1",
		From:    &tgbotapi.User{ID: 42},
		Message: &tgbotapi.Message{MessageID: 5, Chat: &tgbotapi.Chat{ID: 100}},
		Data:    "radius:300",
	}
	b.handleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: query})

	assert.Equal(t, []dialogue.Event{dialogue.RadiusChosen{Meters: 300}}, handler.events)
	assert.Len(t, api.requests, 1)
	require.Len(t, api.sent, 1)
	edit, ok := api.sent[0].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Equal(t, 5, edit.MessageID)

	query.Data = "date:2024-05-01"
	b.handleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: query})
	assert.Len(t, handler.events, 1)
	assert.Len(t, api.requests, 2)
}

func TestSendFallsBackToPlainText(t *testing.T) {
	api := &fakeSender{failOnce: true}
	handler := &recordingHandler{reply: dialogue.Reply{
		Prompt: dialogue.PromptNarration, PlaceName: "ГУМ", Text: "текст",
	}}
	b := newBot(api, handler, nil)

	b.handleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Text: "hi", From: &tgbotapi.User{ID: 1}, Chat: &tgbotapi.Chat{ID: 1},
	}})

	require.Len(t, api.sent, 2)
	fallback := api.sent[1].(tgbotapi.MessageConfig)
	assert.Empty(t, fallback.ParseMode)
	assert.Equal(t, "ГУМ\n\nтекст", fallback.Text)
}
