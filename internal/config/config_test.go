package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "sqlite", cfg.DBDriver)
		assert.Equal(t, "0.0.0.0:8000", cfg.HTTPAddr())
		assert.Equal(t, "friendchat.db", cfg.DSN())
		assert.Equal(t, 10, cfg.SearchDefaultLimit)
		assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORSOrigins)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("MissingSecret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("Postgres", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("DB_DRIVER", "postgres")
		t.Setenv("POSTGRES_HOST", "db")
		t.Setenv("POSTGRES_USER", "chat")
		t.Setenv("POSTGRES_PASSWORD", "pw")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "postgres://chat:pw@db:5432/friendchat?sslmode=disable", cfg.DSN())
	})

	t.Run("UnknownDriver", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("DB_DRIVER", "mysql")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("BcryptCost", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("BCRYPT_COST", "12")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 12, cfg.BcryptCost)
	})

	t.Run("CORSOrigins", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	})
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, (&Config{LogLevel: "debug"}).SlogLevel())
	assert.Equal(t, slog.LevelInfo, (&Config{LogLevel: "nonsense"}).SlogLevel())
}
