package bot

import (
	"fmt"

	"github.com/iabalyuk/geoguide/dialogue"
)

const (
	textGreeting = "Привет, %s! Я бот-экскурсовод, который поможет вам найти интересные достопримечательности поблизости. " +
		"Чтобы начать, отправьте мне свою геолокацию, нажав на кнопку ниже."
	textAskLocation    = "Отправьте мне свою геолокацию, нажав на кнопку ниже."
	textSessionExpired = "Сессия устарела, начнём сначала."
	textShareLocation  = "Отправить местоположение"

	textAskRadius    = "В каком радиусе искать достопримечательности?"
	textAskInterests = "Какие типы достопримечательностей вас интересуют? Выберите один или несколько вариантов:"
	textDone         = "Готово"

	textCandidates      = "Я нашел несколько интересных мест поблизости. Выберите одно из них:"
	textCandidatesAgain = "Выберите одно из мест:"
	textNoResults       = "К сожалению, я не нашел интересных мест поблизости. " +
		"Попробуйте увеличить радиус поиска или выбрать другие категории."
	textRestart = "Начать заново"

	textNoAddress = "Адрес недоступен"
	textNoRating  = "Нет оценок"

	textRouteBuilt  = "Маршрут до <b>%s</b> построен! Нажмите на кнопку ниже, чтобы открыть его в картах:"
	textRouteFailed = "Не удалось построить маршрут до <b>%s</b>."
	textOpenRoute   = "Открыть маршрут"

	textButtonRoute      = "Проложить маршрут"
	textButtonDescribe   = "Описание"
	textButtonNarrate    = "Мини-экскурсия"
	textButtonReviews    = "Отзывы"
	textButtonOtherPlace = "Выбрать другое место"
	textButtonBack       = "Назад"
	textButtonStart      = "/start"

	textCancelled      = "Поиск отменен. Чтобы начать заново, отправьте /start."
	textUnknownCommand = "Неизвестная команда. Используйте /start для поиска достопримечательностей или /help для списка команд."

	textHelp = "Я бот-экскурсовод, который поможет вам найти интересные достопримечательности рядом с вами.\n\n" +
		"Доступные команды:\n" +
		"/start - Начать поиск достопримечательностей\n" +
		"/cancel - Отменить текущий поиск\n" +
		"/help - Показать эту справку"

	textUnsupportedAction = "Это действие больше недоступно"
)

// radiusLabel returns the button caption for a search radius
func radiusLabel(meters int) string {
	switch {
	case meters == 1000:
		return "1 километр"
	case meters > 1000 && meters%1000 == 0:
		return fmt.Sprintf("%d км", meters/1000)
	default:
		return fmt.Sprintf("%d метров", meters)
	}
}

// topicTitle returns the bold header of a generated text
func topicTitle(topic dialogue.Topic, name string) string {
	switch topic {
	case dialogue.TopicNarration:
		return "Мини-экскурсия по " + name
	case dialogue.TopicReviews:
		return "Отзывы о месте " + name
	default:
		return name
	}
}
