package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds relay configuration loaded from environment variables.
type Config struct {
	HTTPPort      string
	RedisURL      string
	QueueKey      string
	WorkerCount   int
	MaxAttempts   int
	RetryBackoff  time.Duration
	SubmitTimeout time.Duration
	OverrideHost  string
	LogLevel      string
}

// Load reads configuration from environment variables with sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:      getEnv("HTTP_PORT", ":8080"),
		QueueKey:      getEnv("REPORT_QUEUE_KEY", "report_event_queue"),
		WorkerCount:   parseIntEnv("WORKER_COUNT", 2),
		MaxAttempts:   parseIntEnv("MAX_ATTEMPTS", 3),
		RetryBackoff:  parseDurationEnv("RETRY_BACKOFF", 30*time.Second),
		SubmitTimeout: parseDurationEnv("SUBMIT_TIMEOUT", 30*time.Second),
		OverrideHost:  strings.TrimRight(os.Getenv("OVERRIDE_HOST"), "/"),
		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}
	cfg.RedisURL = os.Getenv("REDIS_URL")
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseIntEnv(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseDurationEnv(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return parsed
}
