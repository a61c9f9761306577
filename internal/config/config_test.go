// internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Storefront Backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)

	assert.Equal(t, 50, cfg.Pricing.CategoryDepthLimit)
	assert.Equal(t, 24*time.Hour, cfg.Pricing.GuestCartTTL)
	assert.Equal(t, 20, cfg.Pricing.MaxCodeLength)

	assert.Equal(t, 12, cfg.Security.BcryptCost)
	assert.Contains(t, cfg.Security.CORSAllowedHeaders, "X-Session-ID")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PRICING_MAX_CODE_LENGTH", "32")
	t.Setenv("PRICING_GUEST_CART_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 32, cfg.Pricing.MaxCodeLength)
	assert.Equal(t, time.Hour, cfg.Pricing.GuestCartTTL)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("PRICING_MAX_CODE_LENGTH", "not-a-number")
	t.Setenv("SERVER_READ_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Pricing.MaxCodeLength)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
}
