package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName           = "OwoBank"
	defaultAppEnv            = "development"
	defaultPort              = "8080"
	defaultLogLevel          = "info"
	defaultShutdownDelay     = 10 * time.Second
	defaultIdempotencyTTL    = 24 * time.Hour
	defaultAccessTokenTTL    = 15 * time.Minute
	defaultRefreshTokenTTL   = 7 * 24 * time.Hour
	defaultSettlementTimeout = 5 * time.Second
	defaultStatementPreview  = 50
	idemTTLSecondsEnvVar     = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar         = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar    = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar   = "SHUTDOWN_TIMEOUT"
	settlementTimeoutEnvVar  = "SETTLEMENT_TIMEOUT"
	accessTTLEnvVar          = "ACCESS_TOKEN_TTL"
	refreshTTLEnvVar         = "REFRESH_TOKEN_TTL"
	statementPreviewEnvVar   = "STATEMENT_PREVIEW_LIMIT"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName               string
	AppEnv                string
	Port                  string
	LogLevel              string
	DatabaseURL           string
	RedisURL              string
	JWTSecret             string
	RefreshSecret         string
	AccessTokenTTL        time.Duration
	RefreshTokenTTL       time.Duration
	SettlementTimeout     time.Duration
	StatementPreviewLimit int
	ShutdownPeriod        time.Duration
	IdempotencyTTL        time.Duration
}

// Load reads configuration values from the environment and populates a Config
// instance. DATABASE_URL and REDIS_URL may be left empty outside production,
// in which case the API runs on in-memory stores.
func Load() (Config, error) {
	cfg := Config{
		AppName:               getEnv("APP_NAME", defaultAppName),
		AppEnv:                getEnv("APP_ENV", defaultAppEnv),
		Port:                  getEnv("PORT", defaultPort),
		LogLevel:              strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisURL:              os.Getenv("REDIS_URL"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		RefreshSecret:         os.Getenv("REFRESH_SECRET"),
		AccessTokenTTL:        defaultAccessTokenTTL,
		RefreshTokenTTL:       defaultRefreshTokenTTL,
		SettlementTimeout:     defaultSettlementTimeout,
		StatementPreviewLimit: defaultStatementPreview,
		ShutdownPeriod:        defaultShutdownDelay,
		IdempotencyTTL:        defaultIdempotencyTTL,
	}

	if v := os.Getenv(shutdownSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownSecondsEnvVar, err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(shutdownDurationEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownDurationEnvVar, err)
		}
		cfg.ShutdownPeriod = d
	}

	if v := os.Getenv(idemTTLSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", idemTTLSecondsEnvVar, err)
		}
		cfg.IdempotencyTTL = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(idemTTLDurEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", idemTTLDurEnvVar, err)
		}
		cfg.IdempotencyTTL = d
	}

	for _, dur := range []struct {
		env    string
		target *time.Duration
	}{
		{settlementTimeoutEnvVar, &cfg.SettlementTimeout},
		{accessTTLEnvVar, &cfg.AccessTokenTTL},
		{refreshTTLEnvVar, &cfg.RefreshTokenTTL},
	} {
		if v := os.Getenv(dur.env); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return Config{}, fmt.Errorf("invalid %s: %w", dur.env, err)
			}
			*dur.target = d
		}
	}

	if v := os.Getenv(statementPreviewEnvVar); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid %s: %q", statementPreviewEnvVar, v)
		}
		cfg.StatementPreviewLimit = n
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set")
	}
	if cfg.RefreshSecret == "" {
		cfg.RefreshSecret = cfg.JWTSecret
	}

	if cfg.AppEnv == "production" {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set in production")
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set in production")
		}
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
