package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v8"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL"`

	// Auth0
	Auth0Domain   string `env:"AUTH0_DOMAIN"`
	Auth0Audience string `env:"AUTH0_AUDIENCE"`
	Auth0ClientID string `env:"AUTH0_CLIENT_ID"`

	// Server
	Port        string   `env:"PORT" envDefault:"8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	Env         string   `env:"ENV" envDefault:"development"`

	S3       S3Config
	AMQP     AMQPConfig
	Payment  PaymentConfig
	Goals    GoalConfig
	Reminder ReminderConfig
}

// S3Config holds object storage configuration for receipts and exports
type S3Config struct {
	Region          string `env:"S3_REGION" envDefault:"us-east-1"`
	Bucket          string `env:"S3_BUCKET" envDefault:"fluxo-files"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	Endpoint        string `env:"S3_ENDPOINT"` // Optional: for MinIO/LocalStack local dev
}

// AMQPConfig holds the broker used for reminder notifications.
// An empty URL disables publishing.
type AMQPConfig struct {
	URL      string `env:"AMQP_URL"`
	Exchange string `env:"AMQP_EXCHANGE" envDefault:"fluxo"`
	Queue    string `env:"AMQP_REMINDER_QUEUE" envDefault:"reminders.due"`
}

// PaymentConfig holds the payment gateway settings and plan prices
type PaymentConfig struct {
	BaseURL        string          `env:"PAYMENT_BASE_URL" envDefault:"https://sandbox.asaas.com/api/v3"`
	ProxyURL       string          `env:"PAYMENT_PROXY_URL"`
	APIKey         string          `env:"PAYMENT_API_KEY"`
	Timeout        time.Duration   `env:"PAYMENT_TIMEOUT" envDefault:"15s"`
	PriceMensal    decimal.Decimal `env:"PLAN_PRICE_MENSAL" envDefault:"29.90"`
	PriceSemestral decimal.Decimal `env:"PLAN_PRICE_SEMESTRAL" envDefault:"161.40"`
	PriceAnual     decimal.Decimal `env:"PLAN_PRICE_ANUAL" envDefault:"286.80"`
	RatePerMinute  int             `env:"CHECKOUT_RATE_PER_MINUTE" envDefault:"10"`
	RateBurst      int             `env:"CHECKOUT_RATE_BURST" envDefault:"3"`
}

// GoalConfig holds the ascending cutoffs used to tier goal progress
type GoalConfig struct {
	ThresholdLow    decimal.Decimal `env:"GOAL_THRESHOLD_LOW" envDefault:"0.7"`
	ThresholdMedium decimal.Decimal `env:"GOAL_THRESHOLD_MEDIUM" envDefault:"0.9"`
	ThresholdHigh   decimal.Decimal `env:"GOAL_THRESHOLD_HIGH" envDefault:"1.0"`
}

// ReminderConfig holds the reminder worker schedule
type ReminderConfig struct {
	Interval      time.Duration `env:"REMINDER_INTERVAL" envDefault:"1h"`
	LookaheadDays int           `env:"REMINDER_LOOKAHEAD_DAYS" envDefault:"3"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg, err := parse()
	if err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDatabase reads only what the CLI needs to reach the database
func LoadDatabase() (*Config, error) {
	cfg, err := parse()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Reminder.LookaheadDays < 0 {
		return nil, fmt.Errorf("REMINDER_LOOKAHEAD_DAYS must not be negative")
	}
	if err := cfg.Goals.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadBroker reads only what the CLI needs to reach the message broker
func LoadBroker() (*Config, error) {
	cfg, err := parse()
	if err != nil {
		return nil, err
	}
	if cfg.AMQP.URL == "" {
		return nil, fmt.Errorf("AMQP_URL is required")
	}
	return cfg, nil
}

func parse() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Auth0Domain == "" {
		return fmt.Errorf("AUTH0_DOMAIN is required")
	}
	if c.Auth0Audience == "" {
		return fmt.Errorf("AUTH0_AUDIENCE is required")
	}
	if c.Reminder.LookaheadDays < 0 {
		return fmt.Errorf("REMINDER_LOOKAHEAD_DAYS must not be negative")
	}
	return c.Goals.validate()
}

func (g GoalConfig) validate() error {
	if !g.ThresholdLow.IsPositive() ||
		!g.ThresholdLow.LessThan(g.ThresholdMedium) ||
		!g.ThresholdMedium.LessThan(g.ThresholdHigh) {
		return fmt.Errorf("goal thresholds must satisfy 0 < LOW < MEDIUM < HIGH, got %s/%s/%s",
			g.ThresholdLow, g.ThresholdMedium, g.ThresholdHigh)
	}
	return nil
}
