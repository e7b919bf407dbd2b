package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                      string
	DatabaseURL               string
	JWTSecret                 string
	DataEncryptionKey         string
	FrontendDir               string
	UploadDir                 string
	Environment               string
	SeedAdminEmail            string
	SeedAdminPassword         string
	AllowSelfSignup           bool
	EmailFrom                 string
	EmailEnabled              bool
	SMTPHost                  string
	SMTPPort                  int
	SMTPUser                  string
	SMTPPassword              string
	SMTPUseTLS                bool
	BillingAPIBase            string
	BillingAPIKey             string
	BillingWebhookSecret      string
	BillingPriceID            string
	CheckoutSuccessURL        string
	CheckoutCancelURL         string
	RunMigrations             bool
	RunSeed                   bool
	MaxBodyBytes              int64
	MaxUploadBytes            int64
	RateLimitPerMinute        int
	SessionPurgeInterval      time.Duration
	SubscriptionSweepInterval time.Duration
	MetricsEnabled            bool
}

func Load() Config {
	// Missing .env is fine; real env vars always win.
	_ = godotenv.Load()

	return Config{
		Addr:                      getEnv("APP_ADDR", ":8080"),
		DatabaseURL:               getEnv("DATABASE_URL", ""),
		JWTSecret:                 getEnv("JWT_SECRET", ""),
		DataEncryptionKey:         getEnv("DATA_ENCRYPTION_KEY", ""),
		FrontendDir:               getEnv("FRONTEND_DIR", "frontend/dist"),
		UploadDir:                 getEnv("UPLOAD_DIR", "uploads"),
		Environment:               getEnv("APP_ENV", "development"),
		SeedAdminEmail:            getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword:         getEnv("SEED_ADMIN_PASSWORD", ""),
		AllowSelfSignup:           getEnvBool("ALLOW_SELF_SIGNUP", true),
		EmailFrom:                 getEnv("EMAIL_FROM", "no-reply@example.com"),
		EmailEnabled:              getEnvBool("EMAIL_ENABLED", false),
		SMTPHost:                  getEnv("SMTP_HOST", ""),
		SMTPPort:                  getEnvInt("SMTP_PORT", 587),
		SMTPUser:                  getEnv("SMTP_USER", ""),
		SMTPPassword:              getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:                getEnvBool("SMTP_USE_TLS", true),
		BillingAPIBase:            getEnv("BILLING_API_BASE", "https://api.stripe.com/v1"),
		BillingAPIKey:             getEnv("BILLING_API_KEY", ""),
		BillingWebhookSecret:      getEnv("BILLING_WEBHOOK_SECRET", ""),
		BillingPriceID:            getEnv("BILLING_PRICE_ID", ""),
		CheckoutSuccessURL:        getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:8080/settings/billing?status=success"),
		CheckoutCancelURL:         getEnv("CHECKOUT_CANCEL_URL", "http://localhost:8080/pricing"),
		RunMigrations:             getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:                   getEnvBool("RUN_SEED", true),
		MaxBodyBytes:              int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		MaxUploadBytes:            int64(getEnvInt("MAX_UPLOAD_BYTES", 5242880)),
		RateLimitPerMinute:        getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		SessionPurgeInterval:      getEnvDuration("SESSION_PURGE_INTERVAL", 24*time.Hour),
		SubscriptionSweepInterval: getEnvDuration("SUBSCRIPTION_SWEEP_INTERVAL", time.Hour),
		MetricsEnabled:            getEnvBool("METRICS_ENABLED", true),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for encryption at rest")
		}
		if strings.TrimSpace(c.BillingWebhookSecret) == "" {
			return fmt.Errorf("BILLING_WEBHOOK_SECRET must be set in production")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be changed or RUN_SEED disabled in production")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.MaxUploadBytes < c.MaxBodyBytes {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be at least MAX_BODY_BYTES")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	return nil
}
