package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("DEFAULT_LATITUDE", "")
	t.Setenv("ACCESS_TOKEN_MINUTES", "")

	cfg := Load()

	assert.Equal(t, "8780", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 10*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Nil(t, cfg.DefaultLatitude)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes)
	assert.False(t, cfg.LDAPEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DEFAULT_LATITUDE", "5.6037")
	t.Setenv("DEFAULT_LONGITUDE", "-0.1870")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("LDAP_SERVER", "ldap://dir:389")
	t.Setenv("LDAP_BASE_DN", "dc=example,dc=com")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	require.NotNil(t, cfg.DefaultLatitude)
	require.NotNil(t, cfg.DefaultLongitude)
	assert.InDelta(t, 5.6037, *cfg.DefaultLatitude, 1e-9)
	assert.InDelta(t, -0.1870, *cfg.DefaultLongitude, 1e-9)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.LDAPEnabled())
}

func TestGetEnvAsInt_Invalid(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	assert.Equal(t, 7, getEnvAsInt("REDIS_DB", 7))
}
