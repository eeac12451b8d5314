package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every setting the service reads at startup.
type Config struct {
	AppPort string

	DBDriver    string
	DatabaseDSN string

	JWTSecret string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripeSuccessURL    string
	StripeCancelURL     string
	StripeCurrency      string
	StripeAPIURL        string

	AppScheme  string
	WebBaseURL string

	RabbitMQURL string

	RedisAddr      string
	EventLedgerTTL time.Duration
}

// SetDefaults registers the default value for every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:phsar.db?cache=shared&_foreign_keys=on")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	v.SetDefault("STRIPE_SUCCESS_URL", "http://localhost:8080/payment-return?session_id={CHECKOUT_SESSION_ID}")
	v.SetDefault("STRIPE_CANCEL_URL", "http://localhost:8080/payment-cancel")
	v.SetDefault("STRIPE_CURRENCY", "usd")
	v.SetDefault("STRIPE_API_URL", "")
	v.SetDefault("APP_SCHEME", "phsakhmer://")
	v.SetDefault("WEB_BASE_URL", "http://localhost:5000")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("EVENT_LEDGER_TTL", "72h")
}

// Load reads configuration from the environment and, when CONFIG_FILE is set,
// from that file. Environment variables win over file values.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		AppPort:             v.GetString("APP_PORT"),
		DBDriver:            strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:         v.GetString("DATABASE_DSN"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		StripeSecretKey:     v.GetString("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
		StripeSuccessURL:    v.GetString("STRIPE_SUCCESS_URL"),
		StripeCancelURL:     v.GetString("STRIPE_CANCEL_URL"),
		StripeCurrency:      v.GetString("STRIPE_CURRENCY"),
		StripeAPIURL:        v.GetString("STRIPE_API_URL"),
		AppScheme:           v.GetString("APP_SCHEME"),
		WebBaseURL:          strings.TrimRight(v.GetString("WEB_BASE_URL"), "/"),
		RabbitMQURL:         v.GetString("RABBITMQ_URL"),
		RedisAddr:           v.GetString("REDIS_ADDR"),
		EventLedgerTTL:      v.GetDuration("EVENT_LEDGER_TTL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that have no usable default.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite)", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.StripeWebhookSecret == "" {
		return fmt.Errorf("STRIPE_WEBHOOK_SECRET is required")
	}
	return nil
}
