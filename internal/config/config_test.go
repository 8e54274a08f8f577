package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("ACCEPT_MAX_ATTEMPTS", "")
	t.Setenv("ACCEPT_RETRY_BACKOFF", "")
	t.Setenv("CORS_ALLOW_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, 3, cfg.Accept.MaxAttempts)
	assert.Equal(t, 50*time.Millisecond, cfg.Accept.RetryBackoff)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("ACCEPT_MAX_ATTEMPTS", "5")
	t.Setenv("ACCEPT_RETRY_BACKOFF", "10ms")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_SSLMODE", "require")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, 5, cfg.Accept.MaxAttempts)
	assert.Equal(t, 10*time.Millisecond, cfg.Accept.RetryBackoff)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Contains(t, cfg.Database.DSN(), "host=db")
	assert.Contains(t, cfg.Database.DSN(), "sslmode=require")
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "mongo")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("ACCEPT_MAX_ATTEMPTS", "zero")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("ACCEPT_MAX_ATTEMPTS", "0")
	_, err = Load()
	assert.Error(t, err)
}
