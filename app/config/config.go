package config

import (
	"os"
	"strconv"
	"time"

	// this will automatically load your .env file:
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	DB     PostgresConfig
	Stripe StripeConfig
	LLM    LLMConfig
	Outbox OutboxConfig
	Auth   AuthConfig
}

type PostgresConfig struct {
	Username string
	Password string
	URL      string
	Port     string
	Database string
}

type StripeConfig struct {
	SecretKey         string
	WebhookSecret     string
	SuccessURL        string
	CancelURL         string
	MonthlyPriceCents int64
	YearlyPriceCents  int64
}

type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type OutboxConfig struct {
	QueueURL string
}

// AuthConfig is optional; an empty Issuer disables bearer auth entirely.
type AuthConfig struct {
	Issuer   string
	Audience string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		DB: PostgresConfig{
			Username: os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PWD"),
			URL:      os.Getenv("POSTGRES_URL"),
			Port:     os.Getenv("POSTGRES_PORT"),
			Database: os.Getenv("POSTGRES_DB"),
		},
		Stripe: StripeConfig{
			SecretKey:         os.Getenv("STRIPE_API_KEY"),
			WebhookSecret:     os.Getenv("STRIPE_WEBHOOK_SECRET"),
			SuccessURL:        envOr("CHECKOUT_SUCCESS_URL", "https://wwtd.webflow.io/success?session_id={CHECKOUT_SESSION_ID}"),
			CancelURL:         envOr("CHECKOUT_CANCEL_URL", "https://wwtd.webflow.io/subscribe"),
			MonthlyPriceCents: envInt64("MONTHLY_PRICE_CENTS", 199),
			YearlyPriceCents:  envInt64("YEARLY_PRICE_CENTS", 999),
		},
		LLM: LLMConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: envOr("OPENAI_BASE_URL", "https://api.openai.com"),
			Model:   envOr("OPENAI_MODEL", "gpt-4o"),
			Timeout: time.Duration(envInt64("OPENAI_TIMEOUT_SECONDS", 60)) * time.Second,
		},
		Outbox: OutboxConfig{
			QueueURL: os.Getenv("OUTBOX_QUEUE_URL"),
		},
		Auth: AuthConfig{
			Issuer:   os.Getenv("OIDC_ISSUER"),
			Audience: os.Getenv("OIDC_AUDIENCE"),
		},
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
