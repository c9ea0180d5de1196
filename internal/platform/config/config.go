package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	RunMigrations bool
	// LockTimeout bounds how long a transaction waits on a row lock before
	// the operation fails as retryable contention.
	LockTimeout time.Duration

	// Defaults for businesses without stored settings.
	DefaultAmountPrecision int32
	DefaultVoidDating      string
	StrictGroupNature      bool

	AuditQueueSize    int
	AuditMaxRetries   int
	AuditRetryBackoff time.Duration

	RedisURL     string
	RatioLockTTL time.Duration

	RateLimit          string
	CORSAllowedOrigins []string

	PubSubProjectID  string
	PubSubAuditTopic string

	PosthogAPIKey   string
	PosthogEndpoint string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("RUN_MIGRATIONS", false)
	v.SetDefault("LOCK_TIMEOUT", "5s")
	v.SetDefault("DEFAULT_AMOUNT_PRECISION", 2)
	v.SetDefault("DEFAULT_VOID_DATING", "void_date")
	v.SetDefault("STRICT_GROUP_NATURE", false)
	v.SetDefault("AUDIT_QUEUE_SIZE", 1024)
	v.SetDefault("AUDIT_MAX_RETRIES", 3)
	v.SetDefault("AUDIT_RETRY_BACKOFF", "200ms")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("RATIO_LOCK_TTL", "30s")
	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("PUBSUB_PROJECT_ID", "")
	v.SetDefault("PUBSUB_AUDIT_TOPIC", "")
	v.SetDefault("POSTHOG_API_KEY", "")
	v.SetDefault("POSTHOG_ENDPOINT", "https://eu.i.posthog.com")

	v.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = v.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = v.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = v.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = v.GetBool("ENABLE_DB_CHECK")
	cfg.RunMigrations = v.GetBool("RUN_MIGRATIONS")
	cfg.StrictGroupNature = v.GetBool("STRICT_GROUP_NATURE")

	var err error
	if cfg.LockTimeout, err = durationOf(v, "LOCK_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.AuditRetryBackoff, err = durationOf(v, "AUDIT_RETRY_BACKOFF"); err != nil {
		return nil, err
	}
	if cfg.RatioLockTTL, err = durationOf(v, "RATIO_LOCK_TTL"); err != nil {
		return nil, err
	}

	precision := v.GetInt("DEFAULT_AMOUNT_PRECISION")
	if precision < 2 || precision > 6 {
		return nil, fmt.Errorf("DEFAULT_AMOUNT_PRECISION must be between 2 and 6, got %d", precision)
	}
	cfg.DefaultAmountPrecision = int32(precision)

	cfg.DefaultVoidDating = v.GetString("DEFAULT_VOID_DATING")
	if cfg.DefaultVoidDating != "void_date" && cfg.DefaultVoidDating != "original_date" {
		return nil, fmt.Errorf("DEFAULT_VOID_DATING must be void_date or original_date, got %q", cfg.DefaultVoidDating)
	}

	cfg.AuditQueueSize = v.GetInt("AUDIT_QUEUE_SIZE")
	cfg.AuditMaxRetries = v.GetInt("AUDIT_MAX_RETRIES")

	cfg.RedisURL = v.GetString("REDIS_URL")
	cfg.RateLimit = v.GetString("RATE_LIMIT")
	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	cfg.PubSubProjectID = v.GetString("PUBSUB_PROJECT_ID")
	cfg.PubSubAuditTopic = v.GetString("PUBSUB_AUDIT_TOPIC")
	if (cfg.PubSubProjectID == "") != (cfg.PubSubAuditTopic == "") {
		log.Println("Warning: PUBSUB_PROJECT_ID and PUBSUB_AUDIT_TOPIC must both be set. Audit publishing disabled.")
		cfg.PubSubProjectID, cfg.PubSubAuditTopic = "", ""
	}

	cfg.PosthogAPIKey = v.GetString("POSTHOG_API_KEY")
	cfg.PosthogEndpoint = v.GetString("POSTHOG_ENDPOINT")

	return cfg, nil
}

func durationOf(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s (%q): %w", key, raw, err)
	}
	return d, nil
}
