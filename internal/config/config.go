package config

import (
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server ServerConfig
	LLM    LLMConfig
	Gemini GeminiConfig
	OpenAI OpenAIConfig
	Stocks StocksConfig
	News   NewsConfig
}

type ServerConfig struct {
	Port         string        `envconfig:"SERVER_PORT" default:"5002"`
	Host         string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	ClientOrigin string        `envconfig:"CLIENT_URL" default:"http://localhost:3000"`
	PortAttempts int           `envconfig:"SERVER_PORT_ATTEMPTS" default:"10"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
}

type LLMConfig struct {
	// Provider selects the chat backend: "gemini" or "openai".
	Provider string `envconfig:"LLM_PROVIDER" default:"gemini"`
}

type GeminiConfig struct {
	APIKey string `envconfig:"GEMINI_API_KEY"`
	Model  string `envconfig:"GEMINI_MODEL" default:"gemini-1.5-pro"`
}

type OpenAIConfig struct {
	APIKey      string `envconfig:"OPENAI_API_KEY"`
	APIEndpoint string `envconfig:"OPENAI_ENDPOINT" default:"https://api.openai.com/v1"`
	Model       string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
}

type StocksConfig struct {
	Endpoint string        `envconfig:"STOCK_API_ENDPOINT" default:"http://localhost:8100"`
	APIKey   string        `envconfig:"STOCK_API_KEY"`
	Timeout  time.Duration `envconfig:"STOCK_TIMEOUT" default:"5s"`
}

type NewsConfig struct {
	Endpoint     string        `envconfig:"NEWS_API_ENDPOINT" default:"https://newsapi.org/v2"`
	APIKey       string        `envconfig:"NEWS_API_KEY"`
	Timeout      time.Duration `envconfig:"NEWS_TIMEOUT" default:"5s"`
	PollInterval time.Duration `envconfig:"NEWS_POLL_INTERVAL" default:"1m"`
	Topics       []string      `envconfig:"NEWS_TOPICS"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("configuration loaded successfully")
	return &cfg, nil
}
