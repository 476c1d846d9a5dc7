package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://datausa.io/about/api/", cfg.SourceURL)
	assert.Equal(t, 30*time.Second, cfg.SourceTimeout)
	assert.Equal(t, BackendCSV, cfg.StoreBackend)
	assert.Equal(t, "index_data.csv", cfg.DataFilePath)
	assert.Empty(t, cfg.PostgresDSN)
	assert.Equal(t, 3, cfg.LoadRetryAttempts)
	assert.Equal(t, time.Second, cfg.LoadRetryDelay)
	assert.Equal(t, 24*time.Hour, cfg.RefreshInterval)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "index-refreshed", cfg.KafkaAnnounceTopic)
	assert.False(t, cfg.KafkaAnnounceEnabled)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("SOURCE_URL", "http://localhost:9000/indicators")
	t.Setenv("SOURCE_TIMEOUT", "5s")
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("POSTGRES_DSN", "host=localhost dbname=index sslmode=disable")
	t.Setenv("LOAD_RETRY_ATTEMPTS", "5")
	t.Setenv("LOAD_RETRY_DELAY", "250ms")
	t.Setenv("REFRESH_INTERVAL", "1h")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_ANNOUNCE_TOPIC", "refreshes")
	t.Setenv("KAFKA_ANNOUNCE_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/indicators", cfg.SourceURL)
	assert.Equal(t, 5*time.Second, cfg.SourceTimeout)
	assert.Equal(t, BackendPostgres, cfg.StoreBackend)
	assert.Equal(t, "host=localhost dbname=index sslmode=disable", cfg.PostgresDSN)
	assert.Equal(t, 5, cfg.LoadRetryAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.LoadRetryDelay)
	assert.Equal(t, time.Hour, cfg.RefreshInterval)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "refreshes", cfg.KafkaAnnounceTopic)
	assert.True(t, cfg.KafkaAnnounceEnabled)
}

func TestLoad_InvalidRefreshInterval(t *testing.T) {
	t.Setenv("REFRESH_INTERVAL", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REFRESH_INTERVAL")
}

func TestLoad_NegativeRefreshInterval(t *testing.T) {
	t.Setenv("REFRESH_INTERVAL", "-1h")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REFRESH_INTERVAL")
}

func TestLoad_InvalidRetryAttempts(t *testing.T) {
	t.Setenv("LOAD_RETRY_ATTEMPTS", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOAD_RETRY_ATTEMPTS")
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "sqlite")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_BACKEND")
}

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_DSN")
}
