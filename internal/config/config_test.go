package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/servicehub")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		setRequired(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.False(t, cfg.IsProduction)
		assert.Equal(t, ":8080", cfg.HTTPAddr)
		assert.Equal(t, 15*time.Minute, cfg.JWTAccessTokenTTL)
		assert.Equal(t, 12, cfg.BcryptCost)
		assert.Empty(t, cfg.RedisAddr)
		assert.Equal(t, time.Second, cfg.PaymentDelay)
		assert.Equal(t, 30*time.Second, cfg.PaymentSettleTimeout)
		assert.Equal(t, 0.9, cfg.PaymentSuccessRate)
	})

	t.Run("Overrides", func(t *testing.T) {
		setRequired(t)
		t.Setenv("APP_ENV", "prod")
		t.Setenv("REDIS_ADDR", "localhost:6379")
		t.Setenv("PAYMENT_DELAY", "250ms")
		t.Setenv("PAYMENT_SUCCESS_RATE", "0.5")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction)
		assert.Equal(t, "localhost:6379", cfg.RedisAddr)
		assert.Equal(t, 250*time.Millisecond, cfg.PaymentDelay)
		assert.Equal(t, 0.5, cfg.PaymentSuccessRate)
	})

	t.Run("Missing DSN", func(t *testing.T) {
		setRequired(t)
		t.Setenv("DB_DSN", "")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("Invalid Values", func(t *testing.T) {
		for key, val := range map[string]string{
			"BCRYPT_COST":          "high",
			"PAYMENT_DELAY":        "soon",
			"PAYMENT_SUCCESS_RATE": "1.5",
		} {
			t.Run(key, func(t *testing.T) {
				setRequired(t)
				t.Setenv(key, val)

				_, err := Load()
				assert.Error(t, err)
			})
		}
	})
}
