package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Server
	Port      int    `env:"PORT" envDefault:"3000"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	StaticDir string `env:"STATIC_DIR" envDefault:"static"`

	// Model provider: gemini or openrouter
	ModelProvider   string `env:"MODEL_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	GeminiModel     string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	OpenRouterKey   string `env:"OPENROUTER_API_KEY"`
	OpenRouterModel string `env:"OPENROUTER_MODEL" envDefault:"google/gemini-flash-1.5"`

	// Knowledge sources
	PDFPath     string   `env:"PDF_PATH" envDefault:"files/metropolia_manual.pdf"`
	WebsiteURLs []string `env:"WEBSITE_URLS" envSeparator:"," envDefault:"https://www.metropolia.fi/en"`

	// Assistant identity
	OrganizationName string `env:"ORGANIZATION_NAME" envDefault:"Metropolia University"`
	AssistantName    string `env:"ASSISTANT_NAME" envDefault:"Metropolia Student Assistant"`

	// Voice
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`
	VoiceName     string `env:"VOICE_NAME" envDefault:"alice"`
	VoiceLanguage string `env:"VOICE_LANGUAGE" envDefault:"en-US"`

	// Sessions
	SessionMaxMessages int           `env:"SESSION_MAX_MESSAGES" envDefault:"200"`
	SessionIdleTTL     time.Duration `env:"SESSION_IDLE_TTL" envDefault:"2h"`

	// Telegram channel and ops logging
	TelegramBotToken  string `env:"TELEGRAM_BOT_TOKEN"`
	LogTelegramChatID int64  `env:"LOG_TELEGRAM_CHAT_ID"`
	LogTopicError     int    `env:"LOG_TOPIC_ERROR"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.WebsiteURLs = CleanURLs(cfg.WebsiteURLs)
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return cfg, nil
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// ModelCredential returns the API key for the selected provider.
func (c *Config) ModelCredential() string {
	if c.ModelProvider == "openrouter" {
		return c.OpenRouterKey
	}
	return c.GeminiAPIKey
}

// SpeechActionURL is where the telephony provider posts collected speech.
func (c *Config) SpeechActionURL() string {
	return c.PublicBaseURL + "/process_speech"
}

// CleanURLs trims entries and drops blanks.
func CleanURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}
