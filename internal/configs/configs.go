package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

type Config struct {
	AppURL                 string
	DatabaseDSN            string
	RateLimit              int
	RedisAddr              string
	RedisRateLimitPrefix   string
	ShutdownTimeoutSeconds int
	JWTSecret              string
	LogLevel               string
	LogFormat              string
	ReconcileBatchSize     int
	ImportMaxBytes         int64
}

// RedisEnabled reports whether a Redis host was configured.
func (c Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func Load() (Config, error) {
	appHost := getEnv("APP_HOST", "127.0.0.1")
	appPort := getEnv("APP_PORT", "8080")

	var redisAddr string
	if redisHost := os.Getenv("REDIS_HOST"); redisHost != "" {
		redisAddr = fmt.Sprintf("%s:%s", redisHost, getEnv("REDIS_PORT", "6379"))
	}

	cfg := Config{
		AppURL:               fmt.Sprintf("%s:%s", appHost, appPort),
		DatabaseDSN:          getEnv("DATABASE_DSN", "care-tasks.db"),
		RedisAddr:            redisAddr,
		RedisRateLimitPrefix: getEnv("REDIS_RATE_LIMIT_PREFIX", "care_tasks_rate"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "json"),
	}

	var err error
	if cfg.RateLimit, err = getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeoutSeconds, err = getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 20); err != nil {
		return Config{}, err
	}
	if cfg.ReconcileBatchSize, err = getEnvAsInt("RECONCILE_BATCH_SIZE", 200); err != nil {
		return Config{}, err
	}
	maxBytes, err := getEnvAsInt("IMPORT_MAX_BYTES", 20<<20)
	if err != nil {
		return Config{}, err
	}
	cfg.ImportMaxBytes = int64(maxBytes)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN must not be empty")
	}
	if cfg.RateLimit <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be greater than 0")
	}
	if cfg.ShutdownTimeoutSeconds <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT_SECONDS must be greater than 0")
	}
	if cfg.ReconcileBatchSize <= 0 {
		return errors.New("RECONCILE_BATCH_SIZE must be greater than 0")
	}
	if cfg.ImportMaxBytes <= 0 {
		return errors.New("IMPORT_MAX_BYTES must be greater than 0")
	}
	return nil
}

// RequireJWTSecret is checked by commands that serve authenticated traffic.
func (c Config) RequireJWTSecret() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) (int, error) {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid integer value for %s", key)
		}
		return i, nil
	}
	return defaultVal, nil
}
