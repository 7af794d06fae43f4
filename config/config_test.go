package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("MONGO_URI", "mongodb://localhost:27017")
		t.Setenv("JWT_SECRET", "secret")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "1414", cfg.Port)
		assert.Equal(t, "erp", cfg.MongoDatabase)
		assert.Equal(t, "JWT_SECRET", cfg.JWTSecretName)
		assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
		assert.Equal(t, 10, cfg.Redis.Limit)
		assert.Equal(t, time.Minute, cfg.Redis.Window)
		assert.Empty(t, cfg.MinIO.Endpoint)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("MONGO_URI", "mongodb://db:27017")
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("PORT", "8080")
		t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
		t.Setenv("RATE_WINDOW", "30s")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
		assert.Equal(t, 30*time.Second, cfg.Redis.Window)
	})

	t.Run("missing required", func(t *testing.T) {
		t.Setenv("MONGO_URI", "")
		t.Setenv("JWT_SECRET", "")
		os.Unsetenv("MONGO_URI")
		os.Unsetenv("JWT_SECRET")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestLocation(t *testing.T) {
	cfg := &Config{Timezone: "Asia/Yekaterinburg"}
	assert.Equal(t, "Asia/Yekaterinburg", cfg.Location().String())

	cfg.Timezone = "Nowhere/Invalid"
	assert.Equal(t, time.UTC, cfg.Location())
}
