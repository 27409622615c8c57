package main

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`

	RateLimit        int           `env:"RATE_LIMIT" envDefault:"10"`
	RateWindow       time.Duration `env:"RATE_WINDOW" envDefault:"60s"`
	RateStore        string        `env:"RATE_STORE" envDefault:"memory"`
	RateKeyHeader    string        `env:"RATE_KEY_HEADER" envDefault:"X-Forwarded-For"`
	AddHeaders       bool          `env:"ADD_RATELIMIT_HEADERS" envDefault:"false"`
	RateCleanupEvery time.Duration `env:"RATE_CLEANUP_EVERY" envDefault:"2m"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"ratelimit:window"`

	RateStatsEnabled   bool          `env:"RATE_STATS_ENABLED" envDefault:"false"`
	RateStatsPrefix    string        `env:"RATE_STATS_PREFIX" envDefault:"chat:stats"`
	RateStatsTTL       time.Duration `env:"RATE_STATS_TTL" envDefault:"24h"`
	RateStatsBucket    string        `env:"RATE_STATS_BUCKET" envDefault:"minute"`
	RateStatsTrackKeys bool          `env:"RATE_STATS_TRACK_KEYS" envDefault:"false"`

	ConcurrencyMax     int           `env:"CONCURRENCY_MAX" envDefault:"100"`
	ConcurrencyTimeout time.Duration `env:"CONCURRENCY_TIMEOUT" envDefault:"0s"`

	MaxMessageLength int   `env:"MAX_MESSAGE_LENGTH" envDefault:"2000"`
	MaxHistory       int   `env:"MAX_HISTORY" envDefault:"100"`
	MaxBodyBytes     int64 `env:"MAX_BODY_BYTES" envDefault:"10485760"`
	MaxImageBytes    int   `env:"MAX_IMAGE_BYTES" envDefault:"5242880"`

	Provider        string        `env:"PROVIDER" envDefault:"openai"`
	OpenAIAPIKey    string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string        `env:"OPENAI_BASE_URL"`
	OpenAIModel     string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	SystemPrompt    string        `env:"SYSTEM_PROMPT"`
	MaxTokens       int           `env:"MAX_TOKENS" envDefault:"1024"`
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"60s"`
	// PROVIDER_RPS=0 desliga o throttle de saída.
	ProviderRPS   float64 `env:"PROVIDER_RPS" envDefault:"0"`
	ProviderBurst int     `env:"PROVIDER_BURST" envDefault:"1"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// loadEnvFile carrega o arquivo passado em -env antes de ler o ambiente.
func loadEnvFile(args []string) error {
	fs := flag.NewFlagSet("gateway", flag.ContinueOnError)
	path := fs.String("env", "", "path to load env from")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return nil
	}
	if err := godotenv.Load(*path); err != nil {
		return fmt.Errorf("error loading env file %q: %w", *path, err)
	}
	return nil
}

// readConfig lê do ambiente do processo quando environ é nil.
func readConfig(environ map[string]string) (config, error) {
	var cfg config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return config{}, err
	}

	cfg.RateStore = strings.ToLower(strings.TrimSpace(cfg.RateStore))
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))

	if cfg.RateLimit <= 0 {
		return config{}, errors.New("RATE_LIMIT must be > 0")
	}
	if cfg.RateWindow <= 0 {
		return config{}, errors.New("RATE_WINDOW must be > 0")
	}
	switch cfg.RateStore {
	case "memory":
	case "redis":
		if strings.TrimSpace(cfg.RedisAddr) == "" {
			return config{}, errors.New("REDIS_ADDR is required when RATE_STORE=redis")
		}
	default:
		return config{}, fmt.Errorf("RATE_STORE must be memory or redis, got %q", cfg.RateStore)
	}
	if cfg.RateStatsEnabled && strings.TrimSpace(cfg.RedisAddr) == "" {
		return config{}, errors.New("REDIS_ADDR is required when RATE_STATS_ENABLED=true")
	}
	if cfg.ConcurrencyMax < 0 {
		return config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	if cfg.MaxMessageLength <= 0 {
		return config{}, errors.New("MAX_MESSAGE_LENGTH must be > 0")
	}
	if cfg.MaxHistory <= 0 {
		return config{}, errors.New("MAX_HISTORY must be > 0")
	}
	if cfg.MaxBodyBytes <= 0 || cfg.MaxImageBytes <= 0 {
		return config{}, errors.New("MAX_BODY_BYTES and MAX_IMAGE_BYTES must be > 0")
	}
	switch cfg.Provider {
	case "echo":
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return config{}, errors.New("OPENAI_API_KEY is required when PROVIDER=openai")
		}
	default:
		return config{}, fmt.Errorf("PROVIDER must be openai or echo, got %q", cfg.Provider)
	}
	if cfg.ProviderRPS < 0 {
		return config{}, errors.New("PROVIDER_RPS must be >= 0")
	}
	return cfg, nil
}

func (c config) needsRedis() bool {
	return c.RateStore == "redis" || c.RateStatsEnabled
}
