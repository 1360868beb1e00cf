package config_test

import (
	"testing"

	"membership-service/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("ENV", "test")

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, "3000", cfg.Server.Port)
		assert.Equal(t, "data/ave.db", cfg.Database.Path)
		assert.Equal(t, "changeme-admin-key", cfg.Auth.AdminKey)
		assert.Equal(t, "change-this-secret", cfg.Auth.SessionSecret)
		assert.Equal(t, "memory", cfg.Auth.SessionStore)
		assert.Equal(t, 8, cfg.Auth.SessionTTLHrs)
		assert.Equal(t, "log", cfg.Notify.Backend)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("EnvironmentOverrides", func(t *testing.T) {
		t.Setenv("ENV", "test")
		t.Setenv("PORT", "8080")
		t.Setenv("ADMIN_KEY", "s3cret")
		t.Setenv("SESSION_SECRET", "signing-key")
		t.Setenv("DATABASE_PATH", "/tmp/members.db")
		t.Setenv("SMTP_HOST", "smtp.example.org")
		t.Setenv("SMTP_PORT", "2525")
		t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
		t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, "s3cret", cfg.Auth.AdminKey)
		assert.Equal(t, "signing-key", cfg.Auth.SessionSecret)
		assert.Equal(t, "/tmp/members.db", cfg.Database.Path)
		assert.Equal(t, "smtp.example.org", cfg.SMTP.Host)
		assert.Equal(t, 2525, cfg.SMTP.Port)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	})

	t.Run("UnknownSessionStore", func(t *testing.T) {
		t.Setenv("ENV", "test")
		t.Setenv("SESSION_STORE", "memcached")

		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("UnknownNotifyBackend", func(t *testing.T) {
		t.Setenv("ENV", "test")
		t.Setenv("NOTIFY_BACKEND", "pigeon")

		_, err := config.Load()
		assert.Error(t, err)
	})
}
