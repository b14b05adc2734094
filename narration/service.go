package narration

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned when no narration backend has credentials
	ErrNotConfigured = errors.New("narration: service is not configured")

	// ErrEmptyResponse is returned when a backend answers without any text
	ErrEmptyResponse = errors.New("narration: empty response")
)

// Service produces short texts about a place
type Service interface {
	// Describe returns a short description of the place's history and significance
	Describe(ctx context.Context, name, address string) (string, error)

	// Narrate returns a mini guided tour of the place
	Narrate(ctx context.Context, name, address string) (string, error)

	// ReviewsSummary returns a summary of what visitors say about the place
	ReviewsSummary(ctx context.Context, name, address string) (string, error)
}

// Completer sends a single prompt to a text generation model
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

const systemPrompt = "Ты - информативный ассистент по туризму и достопримечательностям. " +
	"Отвечай детально и точно о местах, их истории и культурном значении. " +
	"Отвечай только на русском языке."

func describePrompt(name, address string) string {
	return fmt.Sprintf("Опиши достопримечательность '%s' по адресу %s. "+
		"Напиши интересную информацию об истории и значимости этого места. "+
		"Ответ на русском языке, до 200 слов.", name, address)
}

func narratePrompt(name, address string) string {
	return fmt.Sprintf("Проведи мини-экскурсию по достопримечательности '%s' по адресу %s. "+
		"Расскажи о истории создания, архитектурных особенностях, интересных фактах и культурной значимости. "+
		"Ответ должен быть информативным и увлекательным, в стиле профессионального экскурсовода. "+
		"Текст на русском языке, 250-300 слов.", name, address)
}

func reviewsPrompt(name, address string) string {
	return fmt.Sprintf("Предоставь краткий обзор отзывов о достопримечательности '%s' по адресу %s. "+
		"Что обычно отмечают посетители как плюсы и минусы? Какие советы дают для посещения? "+
		"Ответ на русском языке, до 150 слов.", name, address)
}

// promptService turns a Completer into a Service
type promptService struct {
	c Completer
}

// FromCompleter builds a Service that sends the standard prompts to c
func FromCompleter(c Completer) Service {
	return promptService{c: c}
}

func (p promptService) Describe(ctx context.Context, name, address string) (string, error) {
	return p.c.Complete(ctx, systemPrompt, describePrompt(name, address))
}

func (p promptService) Narrate(ctx context.Context, name, address string) (string, error) {
	return p.c.Complete(ctx, systemPrompt, narratePrompt(name, address))
}

func (p promptService) ReviewsSummary(ctx context.Context, name, address string) (string, error) {
	return p.c.Complete(ctx, systemPrompt, reviewsPrompt(name, address))
}

// Unavailable is the Service used when no backend is configured
type Unavailable struct{}

func (Unavailable) Describe(context.Context, string, string) (string, error) {
	return "", ErrNotConfigured
}

func (Unavailable) Narrate(context.Context, string, string) (string, error) {
	return "", ErrNotConfigured
}

func (Unavailable) ReviewsSummary(context.Context, string, string) (string, error) {
	return "", ErrNotConfigured
}
