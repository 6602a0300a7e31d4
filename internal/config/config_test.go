package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Success loading from env", func(t *testing.T) {
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("DB_USER", "testuser")
		t.Setenv("DB_PASSWORD", "testpass")
		t.Setenv("DB_NAME", "testdb")
		t.Setenv("DB_PORT", "5432")
		t.Setenv("APP_PORT", "8081")
		t.Setenv("APP_ENV", "test")
		t.Setenv("MAIL_FROM", "shop@example.com")
		t.Setenv("MAIL_RATE_PER_MIN", "30")

		cfg := LoadConfig()

		assert.NotNil(t, cfg)
		assert.Equal(t, "localhost", cfg.DBHost)
		assert.Equal(t, "testuser", cfg.DBUser)
		assert.Equal(t, "testpass", cfg.DBPassword)
		assert.Equal(t, "testdb", cfg.DBName)
		assert.Equal(t, "5432", cfg.DBPort)
		assert.Equal(t, "8081", cfg.AppPort)
		assert.Equal(t, "test", cfg.AppEnv)
		assert.Equal(t, "shop@example.com", cfg.MailFrom)
		assert.Equal(t, 30, cfg.MailRatePerMin)
	})

	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("APP_PORT", "")
		t.Setenv("MAIL_RATE_PER_MIN", "")

		cfg := LoadConfig()

		assert.Equal(t, "8080", cfg.AppPort)
		assert.Equal(t, 60, cfg.MailRatePerMin)
	})

	t.Run("InvalidRateFallsBack", func(t *testing.T) {
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("MAIL_RATE_PER_MIN", "not-a-number")

		cfg := LoadConfig()
		assert.Equal(t, 60, cfg.MailRatePerMin)

		t.Setenv("MAIL_RATE_PER_MIN", "-5")
		cfg = LoadConfig()
		assert.Equal(t, 60, cfg.MailRatePerMin)
	})
}
