package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("VISITOR_TIME_ZONE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:5000", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "Asia/Kolkata", cfg.Visitor.TimeZone)
	assert.Equal(t, 300, cfg.Visitor.QRCodeSize)
	assert.Equal(t, time.Minute, cfg.Visitor.VerifyWindow())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("VISITOR_TIME_ZONE", "UTC")
	t.Setenv("VISITOR_VERIFY_WINDOW_SECONDS", "5")
	t.Setenv("POSTGRES_MAX_CONNS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
	assert.Equal(t, 5*time.Second, cfg.Visitor.VerifyWindow())

	loc, err := cfg.Visitor.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_DB")
}

func TestVisitorConfig_Location_Invalid(t *testing.T) {
	_, err := VisitorConfig{TimeZone: "Mars/Olympus"}.Location()
	require.Error(t, err)
}

func TestAppConfig_RequestTimeout_Disabled(t *testing.T) {
	assert.Zero(t, AppConfig{RequestTimeoutSeconds: 0}.RequestTimeout())
}

func TestLoadClient(t *testing.T) {
	t.Setenv("GATECTL_API_URL", "http://gate.local/api")
	t.Setenv("GATECTL_SESSION_FILE", "/tmp/gatectl.json")
	t.Setenv("GATECTL_TIMEOUT_SECONDS", "3")

	cfg := LoadClient()
	assert.Equal(t, "http://gate.local/api", cfg.BaseURL)
	assert.Equal(t, "/tmp/gatectl.json", cfg.SessionFile)
	assert.Equal(t, 3*time.Second, cfg.Timeout())
}
