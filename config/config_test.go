package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, name := range []string{
		"COMMONS_CONFIG", "HTTP_ADDR", "REDIS_ADDR", "LOG_LEVEL", "ANALYTICS_WORKERS", "QUEUE_SIZE",
		"WINDOW_SIZE", "LOG_BUFFER", "ANOMALY_THRESHOLD", "RESULT_TTL",
	} {
		t.Setenv(name, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("ANALYTICS_WORKERS", "8")
	t.Setenv("QUEUE_SIZE", "2048")
	t.Setenv("WINDOW_SIZE", "3")
	t.Setenv("ANOMALY_THRESHOLD", "3.5")
	t.Setenv("RESULT_TTL", "90s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "redis:6380", cfg.RedisAddr)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 2048, cfg.QueueSize)
	assert.Equal(t, 3, cfg.WindowSize)
	assert.Equal(t, 3.5, cfg.AnomalyThreshold)
	assert.Equal(t, 90*time.Second, cfg.ResultTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_BadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("WINDOW_SIZE", "many")

	_, err := Load()
	assert.ErrorContains(t, err, "WINDOW_SIZE")
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("COMMONS_CONFIG", writeFile(t, "commons.yaml", `
http_addr: ":9090"
window_size: 10
result_ttl: 1m
`))
	t.Setenv("WINDOW_SIZE", "20")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 20, cfg.WindowSize, "env wins over file")
	assert.Equal(t, time.Minute, cfg.ResultTTL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoad_TOMLFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("COMMONS_CONFIG", writeFile(t, "commons.toml", `
redis_addr = "cache:6379"
anomaly_threshold = 2.5
log_buffer = 100
`))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.Equal(t, 2.5, cfg.AnomalyThreshold)
	assert.Equal(t, 100, cfg.LogBuffer)
}

func TestLoad_FileErrors(t *testing.T) {
	clearEnv(t)

	t.Setenv("COMMONS_CONFIG", writeFile(t, "commons.json", `{}`))
	_, err := Load()
	assert.ErrorContains(t, err, "unsupported format")

	t.Setenv("COMMONS_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load()
	assert.ErrorContains(t, err, "read config")

	t.Setenv("COMMONS_CONFIG", writeFile(t, "broken.yaml", "window_size: [1, 2"))
	_, err = Load()
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.WindowSize = 0
	cfg.AnomalyThreshold = -1
	cfg.Workers = -2
	cfg.QueueSize = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "window_size")
	assert.ErrorContains(t, err, "anomaly_threshold")
	assert.ErrorContains(t, err, "workers")
	assert.ErrorContains(t, err, "queue_size")
}
