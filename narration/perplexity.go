package narration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPerplexityURL   = "https://api.perplexity.ai/chat/completions"
	DefaultPerplexityModel = "pplx-7b-online"
	defaultMaxTokens       = 500
)

// Perplexity is a Completer backed by the Perplexity chat completions API
type Perplexity struct {
	httpClient *http.Client
	apiKey     string
	model      string
	url        string
	maxTokens  int
	logger     *zap.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewPerplexity creates a Perplexity completer
func NewPerplexity(apiKey, model string, logger *zap.Logger) *Perplexity {
	if model == "" {
		model = DefaultPerplexityModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Perplexity{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		apiKey:     apiKey,
		model:      model,
		url:        DefaultPerplexityURL,
		maxTokens:  defaultMaxTokens,
		logger:     logger.With(zap.String("component", "narration.perplexity")),
	}
}

// WithURL points the completer at another endpoint
func (p *Perplexity) WithURL(url string) *Perplexity {
	p.url = url
	return p
}

// Complete sends the system and user prompts and returns the first choice
func (p *Perplexity) Complete(ctx context.Context, system, prompt string) (string, error) {
	if p.apiKey == "" {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens: p.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		p.logger.Warn("Unexpected status from Perplexity",
			zap.Int("status", resp.StatusCode), zap.String("body", string(errBody)))
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}

	p.logger.Debug("Perplexity completion finished",
		zap.String("model", p.model), zap.Duration("duration", time.Since(start)))
	return result.Choices[0].Message.Content, nil
}
