package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL string

	RequestTimeout     time.Duration
	LogoutTimeout      time.Duration
	CurrentUserTimeout time.Duration

	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
	RetryMaxDelay    time.Duration

	StorePath string
	StoreKey  string

	KafkaBrokers []string
	KafkaTopic   string

	LogLevel string
}

func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		APIBaseURL:         EnvDefault("SAVEDFEAST_API_URL", "http://localhost:8000"),
		RequestTimeout:     EnvDurationDefault("SAVEDFEAST_REQUEST_TIMEOUT", 30*time.Second),
		LogoutTimeout:      EnvDurationDefault("SAVEDFEAST_LOGOUT_TIMEOUT", 5*time.Second),
		CurrentUserTimeout: EnvDurationDefault("SAVEDFEAST_CURRENT_USER_TIMEOUT", 10*time.Second),
		RetryMaxAttempts:   EnvIntDefault("SAVEDFEAST_RETRY_MAX_ATTEMPTS", 3),
		RetryBaseDelay:     EnvDurationDefault("SAVEDFEAST_RETRY_BASE_DELAY", time.Second),
		RetryMaxDelay:      EnvDurationDefault("SAVEDFEAST_RETRY_MAX_DELAY", 10*time.Second),
		StorePath:          EnvDefault("SAVEDFEAST_STORE_PATH", "savedfeast.db"),
		StoreKey:           os.Getenv("SAVEDFEAST_STORE_KEY"),
		KafkaBrokers:       CSV(os.Getenv("SAVEDFEAST_KAFKA_BROKERS")),
		KafkaTopic:         EnvDefault("SAVEDFEAST_KAFKA_TOPIC", "client_events"),
		LogLevel:           EnvDefault("SAVEDFEAST_LOG_LEVEL", "info"),
	}

	return config, nil
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if os.Getenv(key) != "" {
		return os.Getenv(key)
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
