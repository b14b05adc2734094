package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingToken is returned when no Telegram token is configured
var ErrMissingToken = errors.New("telegram token is required: set TELEGRAM_TOKEN or TELEGRAM_BOT_TOKEN, or pass -token")

// Config holds all configuration values.
type Config struct {
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	Debug    bool   `mapstructure:"DEBUG"`

	TelegramToken string `mapstructure:"TELEGRAM_TOKEN"`

	// Place search
	PlacesProvider     string  `mapstructure:"PLACES_PROVIDER"`
	GooglePlacesAPIKey string  `mapstructure:"GOOGLE_PLACES_API_KEY"`
	YandexAPIKey       string  `mapstructure:"YANDEX_API_KEY"`
	PlacesRateLimit    float64 `mapstructure:"PLACES_RATE_LIMIT"`
	PlacesRateBurst    int     `mapstructure:"PLACES_RATE_BURST"`

	// Narration
	NarrationProvider string `mapstructure:"NARRATION_PROVIDER"`
	PerplexityAPIKey  string `mapstructure:"PERPLEXITY_API_KEY"`
	PerplexityModel   string `mapstructure:"PERPLEXITY_MODEL"`
	GeminiAPIKey      string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel       string `mapstructure:"GEMINI_MODEL"`
	AnthropicAPIKey   string `mapstructure:"ANTHROPIC_API_KEY"`
	ClaudeModel       string `mapstructure:"CLAUDE_MODEL"`

	// Storage and dialogue
	DBPath              string        `mapstructure:"DB_PATH"`
	DetailCacheTTL      time.Duration `mapstructure:"DETAIL_CACHE_TTL"`
	SessionTTL          time.Duration `mapstructure:"SESSION_TTL"`
	CallTimeout         time.Duration `mapstructure:"CALL_TIMEOUT"`
	DisplayCap          int           `mapstructure:"DISPLAY_CAP"`
	MaintenanceInterval time.Duration `mapstructure:"MAINTENANCE_INTERVAL"`
}

// Load reads config.yaml from the current or ./config directory, then the environment.
// A missing config file is not an error.
func Load() (*Config, error) {
	return load(viper.New(), ".", "./config")
}

func load(v *viper.Viper, paths ...string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AutomaticEnv()

	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DEBUG", false)
	v.SetDefault("TELEGRAM_TOKEN", "")
	v.SetDefault("TELEGRAM_BOT_TOKEN", "")
	v.SetDefault("PLACES_PROVIDER", "google")
	v.SetDefault("GOOGLE_PLACES_API_KEY", "")
	v.SetDefault("YANDEX_API_KEY", "")
	v.SetDefault("PLACES_RATE_LIMIT", 10.0)
	v.SetDefault("PLACES_RATE_BURST", 5)
	v.SetDefault("NARRATION_PROVIDER", "perplexity")
	v.SetDefault("PERPLEXITY_API_KEY", "")
	v.SetDefault("PERPLEXITY_MODEL", "pplx-7b-online")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("ANTHROPIC_API_KEY", "")
	v.SetDefault("CLAUDE_MODEL", "claude-sonnet-4-20250514")
	v.SetDefault("DB_PATH", "geoguide.db")
	v.SetDefault("DETAIL_CACHE_TTL", "168h")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("CALL_TIMEOUT", "20s")
	v.SetDefault("DISPLAY_CAP", 5)
	v.SetDefault("MAINTENANCE_INTERVAL", "1h")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.TelegramToken == "" {
		cfg.TelegramToken = v.GetString("TELEGRAM_BOT_TOKEN")
	}
	cfg.PlacesProvider = strings.ToLower(strings.TrimSpace(cfg.PlacesProvider))
	cfg.NarrationProvider = strings.ToLower(strings.TrimSpace(cfg.NarrationProvider))
	return &cfg, nil
}

// ApplyFlags lets command-line flags override loaded values
func (c *Config) ApplyFlags(token string, debug bool) {
	if token != "" {
		c.TelegramToken = token
	}
	if debug {
		c.Debug = true
	}
}

// Validate checks the values the bot cannot start without
func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return ErrMissingToken
	}
	switch c.PlacesProvider {
	case "google", "yandex":
	default:
		return fmt.Errorf("unknown PLACES_PROVIDER %q: must be google or yandex", c.PlacesProvider)
	}
	if c.DisplayCap <= 0 {
		return fmt.Errorf("DISPLAY_CAP must be positive, got %d", c.DisplayCap)
	}
	return nil
}

// IsProduction checks if the environment is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
