package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backend names accepted in STORE_BACKEND.
const (
	BackendCSV      = "csv"
	BackendPostgres = "postgres"
)

// Config holds all service settings, populated from environment variables.
// It is constructed once at startup and handed to component constructors;
// nothing else reads the environment.
type Config struct {
	SourceURL     string
	SourceTimeout time.Duration

	StoreBackend string
	DataFilePath string // csv backend
	PostgresDSN  string // postgres backend

	LoadRetryAttempts int
	LoadRetryDelay    time.Duration

	RefreshInterval time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Refresh announcement configuration.
	KafkaBrokers         []string
	KafkaAnnounceTopic   string
	KafkaAnnounceEnabled bool
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	sourceTimeout, err := parseDuration("SOURCE_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parseDuration("REFRESH_INTERVAL", "24h")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	loadRetryDelay, err := parseDuration("LOAD_RETRY_DELAY", "1s")
	if err != nil {
		return nil, err
	}
	loadRetryAttempts, err := parseInt("LOAD_RETRY_ATTEMPTS", 3)
	if err != nil {
		return nil, err
	}

	announceEnabled := false
	if v := os.Getenv("KAFKA_ANNOUNCE_ENABLED"); v != "" {
		announceEnabled = v == "true"
	}

	cfg := &Config{
		SourceURL:     envOrDefault("SOURCE_URL", "https://datausa.io/about/api/"),
		SourceTimeout: sourceTimeout,

		StoreBackend: envOrDefault("STORE_BACKEND", BackendCSV),
		DataFilePath: envOrDefault("DATA_FILE_PATH", "index_data.csv"),
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),

		LoadRetryAttempts: loadRetryAttempts,
		LoadRetryDelay:    loadRetryDelay,

		RefreshInterval: refreshInterval,

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers:         splitList(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaAnnounceTopic:   envOrDefault("KAFKA_ANNOUNCE_TOPIC", "index-refreshed"),
		KafkaAnnounceEnabled: announceEnabled,
	}

	if cfg.SourceURL == "" {
		return nil, errors.New("SOURCE_URL is required")
	}
	switch cfg.StoreBackend {
	case BackendCSV:
		if cfg.DataFilePath == "" {
			return nil, errors.New("DATA_FILE_PATH is required for the csv backend")
		}
	case BackendPostgres:
		if cfg.PostgresDSN == "" {
			return nil, errors.New("POSTGRES_DSN is required for the postgres backend")
		}
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND %q (want %s or %s)", cfg.StoreBackend, BackendCSV, BackendPostgres)
	}
	if cfg.KafkaAnnounceEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ANNOUNCE_ENABLED is true but KAFKA_BROKERS is empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
