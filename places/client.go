package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxErrorBody caps how much of an error response body is kept for logs.
const maxErrorBody = 512

// Client is the HTTP client shared by the place directory backends.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	Debug      bool
}

// ClientConfig configures NewClient.
type ClientConfig struct {
	RatePerSecond float64 // Requests per second across all users
	Burst         int
	Timeout       time.Duration
	Debug         bool
	Logger        *zap.Logger
}

// NewClient creates a new rate-limited provider client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst)
	logger.Info("Initialized places client rate limiter",
		zap.Float64("rps", float64(limiter.Limit())), zap.Int("burst", limiter.Burst()))

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:          10,
				MaxIdleConnsPerHost:   5,
				IdleConnTimeout:       60 * time.Second,
				ResponseHeaderTimeout: cfg.Timeout,
			},
		},
		limiter: limiter,
		logger:  logger.With(zap.String("component", "places.client")),
		Debug:   cfg.Debug,
	}
}

// getJSON performs a rate-limited GET and decodes the JSON body into target.
func (c *Client) getJSON(ctx context.Context, rawURL string, target interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("rate limiter context error: %w", ctx.Err())
		}
		return fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Accept-Language", "ru,en;q=0.8")

	if c.Debug {
		c.logger.Debug("Making request", zap.String("url", redactKey(rawURL)))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("request context error: %w", ctxErr)
		}
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("Unexpected status code",
			zap.Int("status", resp.StatusCode),
			zap.String("url", redactKey(rawURL)),
			zap.ByteString("body", body))
		return fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// redactKey hides API keys before a URL is logged.
func redactKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<unparsable url>"
	}
	q := u.Query()
	for _, k := range []string{"key", "apikey"} {
		if q.Has(k) {
			q.Set(k, "REDACTED")
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
