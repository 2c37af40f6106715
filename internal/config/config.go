package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/billforge/billforge/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Logging  LoggingConfig  `validate:"required"`
	Stripe   StripeConfig   `validate:"required"`
	Supabase SupabaseConfig
	Retry    RetryConfig
	Cache    CacheConfig
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

// StripeConfig holds the payment provider credentials. The secret key is
// required for any provider-backed operation; the publishable key is only
// surfaced to the rendering layer.
type StripeConfig struct {
	SecretKey      string `mapstructure:"secret_key"`
	PublishableKey string `mapstructure:"publishable_key"`
	WebhookSecret  string `mapstructure:"webhook_secret"`
}

type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
}

// RetryConfig tunes the payment retry handler. Zero values fall back to the
// handler defaults (3 attempts, 1s base, 10s cap).
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
	MaxDelay   time.Duration `mapstructure:"max_delay"`
}

type CacheConfig struct {
	PlanTTL time.Duration `mapstructure:"plan_ttl"`
}

func NewConfig() (*Configuration, error) {
	// Load .env if present; environment variables win over file values
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/billforge")

	v.SetEnvPrefix("BILLFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("retry.max_retries", 3)
	v.SetDefault("retry.base_delay", time.Second)
	v.SetDefault("retry.max_delay", 10*time.Second)
	v.SetDefault("cache.plan_ttl", 30*time.Minute)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c Configuration) Validate() error {
	if err := c.Logging.Level.Validate(); err != nil {
		return err
	}
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// and tests.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Logging: LoggingConfig{Level: types.LogLevelDebug},
		Stripe:  StripeConfig{SecretKey: "sk_test_default"},
		Retry: RetryConfig{
			MaxRetries: 3,
			BaseDelay:  time.Second,
			MaxDelay:   10 * time.Second,
		},
		Cache: CacheConfig{PlanTTL: 30 * time.Minute},
	}
}
