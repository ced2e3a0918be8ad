package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresUpstreamAndSecret(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "")
	t.Setenv("JWT_SECRET", "s")

	_, err := Load()
	assert.ErrorContains(t, err, "UPSTREAM_BASE_URL")

	t.Setenv("UPSTREAM_BASE_URL", "http://backend/api/")
	t.Setenv("JWT_SECRET", "")
	_, err = Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "http://backend/api/")
	t.Setenv("JWT_SECRET", "s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://backend/api", cfg.UpstreamBaseURL)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, int64(5*1024*1024), cfg.UploadMaxBytes)
	assert.Equal(t, int64(40_000_000), cfg.UploadMaxPixels)
	assert.Equal(t, 15*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 0.8, cfg.UploadQuality)
	assert.False(t, cfg.MockAuth)
}

func TestLoad_DurationAsSeconds(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "http://backend")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("RATE_LIMIT_WINDOW", "30")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
}

func TestLoad_MockAuthRejectedInProd(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "http://backend")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("GO_ENV", "prod")
	t.Setenv("MOCK_AUTH", "true")

	_, err := Load()
	assert.ErrorContains(t, err, "MOCK_AUTH")
}

func TestPostgresDSN_PrefersDatabaseURL(t *testing.T) {
	cfg := Config{DatabaseURL: "postgres://x"}
	assert.Equal(t, "postgres://x", cfg.PostgresDSN())

	cfg = Config{PostgresHost: "h", PostgresPort: 1, PostgresUser: "u", PostgresPassword: "p", PostgresDB: "d", PostgresSSLMode: "disable"}
	assert.Equal(t, "host=h port=1 user=u password=p dbname=d sslmode=disable", cfg.PostgresDSN())
}
