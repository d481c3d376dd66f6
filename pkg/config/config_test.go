package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MapsConfig(t *testing.T) {
	t.Setenv("GOOGLE_MAPS_API", "test-key")
	t.Setenv("MAPS_BASE_URL", "http://maps.local/api")
	t.Setenv("MAPS_TIMEOUT_MS", "250")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.Maps.APIKey)
	assert.Equal(t, "http://maps.local/api", cfg.Maps.BaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Maps.Timeout)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GOOGLE_MAPS_API", "")
	t.Setenv("MAPS_BASE_URL", "")
	t.Setenv("MAPS_TIMEOUT_MS", "")
	t.Setenv("CAPTAIN_STORE", "")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_PORT", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://maps.googleapis.com/maps/api", cfg.Maps.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Maps.Timeout)
	assert.Equal(t, CaptainStorePostgres, cfg.Captains.Backend)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "localhost:6379", cfg.Redis.RedisAddr())
}

func TestLoad_CaptainStore(t *testing.T) {
	t.Setenv("CAPTAIN_STORE", "Redis")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, CaptainStoreRedis, cfg.Captains.Backend)

	t.Setenv("CAPTAIN_STORE", "mongo")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_AllowedOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestDatabaseDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=d sslmode=disable", c.DatabaseDSN())
}
