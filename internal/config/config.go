package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppName         = "CongoTransfers"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultShutdownDelay   = 10 * time.Second
	defaultLockTimeout     = 100 * time.Millisecond
	defaultBreakerFailures = 5
	defaultBreakerCooldown = 30 * time.Second
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
	lockMillisEnvVar       = "LOCK_TIMEOUT_MS"
	lockDurationEnvVar     = "LOCK_TIMEOUT"
	breakerFailuresEnvVar  = "NOTIFY_BREAKER_FAILURES"
	breakerCooldownEnvVar  = "NOTIFY_BREAKER_COOLDOWN"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName         string
	AppEnv          string
	Port            string
	LogLevel        string
	DatabaseURL     string
	RedisURL        string
	NATSURL         string
	NotifySubject   string
	ShutdownPeriod  time.Duration
	LockTimeout     time.Duration
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// Load reads an optional .env file, then configuration values from the
// environment. Variables already set in the environment win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		AppName:         getEnv("APP_NAME", defaultAppName),
		AppEnv:          getEnv("APP_ENV", defaultAppEnv),
		Port:            getEnv("PORT", defaultPort),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		NATSURL:         os.Getenv("NATS_URL"),
		NotifySubject:   os.Getenv("NOTIFY_SUBJECT"),
		ShutdownPeriod:  defaultShutdownDelay,
		LockTimeout:     defaultLockTimeout,
		BreakerFailures: defaultBreakerFailures,
		BreakerCooldown: defaultBreakerCooldown,
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

	if v := os.Getenv(lockMillisEnvVar); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", lockMillisEnvVar, err)
		}
		cfg.LockTimeout = time.Duration(ms) * time.Millisecond
	} else if v := os.Getenv(lockDurationEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", lockDurationEnvVar, err)
		}
		cfg.LockTimeout = d
	}
	if cfg.LockTimeout <= 0 {
		return Config{}, fmt.Errorf("lock timeout must be positive, got %s", cfg.LockTimeout)
	}

	if v := os.Getenv(breakerFailuresEnvVar); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", breakerFailuresEnvVar, err)
		}
		cfg.BreakerFailures = uint32(n)
	}

	if v := os.Getenv(breakerCooldownEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", breakerCooldownEnvVar, err)
		}
		cfg.BreakerCooldown = d
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
