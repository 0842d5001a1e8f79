package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/vinohrad/shop/internal/dedup"
)

type Config struct {
	Env          string
	LogLevel     string
	Port         uint16
	CORSOrigins  []string
	Stripe       StripeConfig
	SuperFaktura SuperFakturaConfig
	Email        EmailConfig
	Dedup        DedupConfig
	Webhook      WebhookConfig
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

// SuperFakturaConfig holds credentials for the invoicing service.
type SuperFakturaConfig struct {
	Email   string
	APIKey  string
	BaseURL string // empty for production
}

type EmailConfig struct {
	ResendAPIKey string
	From         string
	FromName     string
	AdminAddress string
}

// DedupConfig controls webhook idempotency tracking.
type DedupConfig struct {
	// Window is how long processed payment intents are remembered.
	Window time.Duration

	// RedisURL, when set, switches dedup to Redis so state survives
	// restarts and is shared between instances.
	RedisURL string
}

type WebhookConfig struct {
	// SkipSignatureVerification allows unsigned webhook requests.
	// Only honored outside production.
	SkipSignatureVerification bool

	RefetchAttempts uint64
	RefetchDelay    time.Duration
}

func NewConfig() (*Config, error) {
	// Try to load .env from current directory, then walk up to find it
	if err := godotenv.Load(); err != nil {
		dir, _ := os.Getwd()
		found := false
		for i := 0; i < 2; i++ {
			dir = filepath.Join(dir, "..")
			if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
				found = true
				break
			}
		}
		if !found {
			slog.Default().Warn("Warning: .env file not found, using environment variables and defaults")
		}
	}

	cfg := &Config{
		Env:         getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Port:        getEnvPort("PORT", 3000),
		CORSOrigins: []string{getEnv("STOREFRONT_ORIGIN", "*")},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		},
		SuperFaktura: SuperFakturaConfig{
			Email:   getEnv("SUPERFAKTURA_EMAIL", ""),
			APIKey:  getEnv("SUPERFAKTURA_API_KEY", ""),
			BaseURL: getEnv("SUPERFAKTURA_BASE_URL", ""),
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			From:         getEnv("EMAIL_FROM", "obchod@vinohrad.sk"),
			FromName:     getEnv("EMAIL_FROM_NAME", "Vinohrad"),
			AdminAddress: getEnv("EMAIL_ADMIN", "obchod@vinohrad.sk"),
		},
		Dedup: DedupConfig{
			Window:   getEnvDuration("DEDUP_WINDOW", dedup.DefaultWindow),
			RedisURL: getEnv("REDIS_URL", ""),
		},
		Webhook: WebhookConfig{
			SkipSignatureVerification: getEnvBool("WEBHOOK_SKIP_SIGNATURE", false),
			RefetchAttempts:           uint64(getEnvInt("WEBHOOK_REFETCH_ATTEMPTS", 5)),
			RefetchDelay:              getEnvDuration("WEBHOOK_REFETCH_DELAY", 2*time.Second),
		},
	}

	validEnv := cfg.Env == "development" || cfg.Env == "staging" || cfg.Env == "production"
	if !validEnv {
		slog.Default().Warn("Invalid environment. Using default: production", slog.String("env", cfg.Env))
		cfg.Env = "production"
	}

	validLevel := cfg.LogLevel == "info" || cfg.LogLevel == "debug" || cfg.LogLevel == "warn" || cfg.LogLevel == "error"
	if !validLevel {
		slog.Default().Warn("Invalid log level. Using default: info", slog.String("value", cfg.LogLevel))
		cfg.LogLevel = "info"
	}

	if cfg.Env == "production" {
		if cfg.Stripe.SecretKey == "" {
			return nil, fmt.Errorf("STRIPE_SECRET_KEY must be set in production")
		}
		if cfg.Stripe.WebhookSecret == "" {
			return nil, fmt.Errorf("STRIPE_WEBHOOK_SECRET must be set in production")
		}
		if cfg.SuperFaktura.Email == "" || cfg.SuperFaktura.APIKey == "" {
			return nil, fmt.Errorf("SUPERFAKTURA_EMAIL and SUPERFAKTURA_API_KEY must be set in production")
		}
		if cfg.Email.ResendAPIKey == "" {
			return nil, fmt.Errorf("RESEND_API_KEY must be set in production")
		}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvPort(key string, defaultValue uint16) uint16 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseUint(value, 10, 16); err == nil {
			return uint16(n)
		}
		slog.Default().Warn("Invalid port value, using default", slog.String("key", key), slog.String("value", value))
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		slog.Default().Warn("Invalid integer value, using default", slog.String("key", key), slog.String("value", value))
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		slog.Default().Warn("Invalid boolean value, using default", slog.String("key", key), slog.String("value", value))
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		slog.Default().Warn("Invalid duration value, using default", slog.String("key", key), slog.String("value", value))
	}
	return defaultValue
}
